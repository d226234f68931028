// Package history exports the in-memory conversation. Nothing is persisted
// unless the user asks for an export.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/geminichat/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format ExportFormat
	Title  string
	// Now stamps the export; zero means time.Now
	Now time.Time
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format: ExportFormatMarkdown,
		Title:  "Chat",
	}
}

func (o ExportOptions) timestamp() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// FormatFromPath picks the export format from a file extension
func FormatFromPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ExportFormatJSON
	}
	return ExportFormatMarkdown
}

// ExportMarkdown renders the conversation as a Markdown document
func ExportMarkdown(msgs []models.Message, opts ExportOptions) string {
	var sb strings.Builder

	title := opts.Title
	if title == "" {
		title = DefaultExportOptions().Title
	}
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	sb.WriteString("**Exported:** ")
	sb.WriteString(opts.timestamp().Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(msgs)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range msgs {
		sb.WriteString("## ")
		sb.WriteString(msg.Role.Label())
		sb.WriteString("\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportDocument struct {
	Title      string           `json:"title"`
	ExportedAt time.Time        `json:"exported_at"`
	Messages   []models.Message `json:"messages"`
}

// ExportJSON renders the conversation as indented JSON
func ExportJSON(msgs []models.Message, opts ExportOptions) ([]byte, error) {
	doc := exportDocument{
		Title:      opts.Title,
		ExportedAt: opts.timestamp().UTC(),
		Messages:   msgs,
	}
	if doc.Messages == nil {
		doc.Messages = []models.Message{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Export renders msgs in opts.Format
func Export(msgs []models.Message, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return ExportJSON(msgs, opts)
	case ExportFormatMarkdown, "":
		return []byte(ExportMarkdown(msgs, opts)), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", opts.Format)
	}
}

// WriteFile exports msgs to path, choosing the format from the extension
func WriteFile(path string, msgs []models.Message, opts ExportOptions) error {
	if len(msgs) == 0 {
		return fmt.Errorf("nothing to export")
	}
	opts.Format = FormatFromPath(path)

	data, err := Export(msgs, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
