package render

import (
	"strings"

	"github.com/diogo/geminichat/internal/markup"
)

// Markdown renders markdown content for terminal display.
// Uses a pooled renderer for better performance and thread safety.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders with default options at the given width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// Message renders a model answer with default options at width.
func Message(text string, width int) (string, error) {
	return MessageWithOptions(text, DefaultOptions().WithWidth(width))
}

// MessageWithOptions renders a model answer, stripping LaTeX first when
// opts.CleanLatex is set. Leading and trailing blank lines are trimmed.
func MessageWithOptions(text string, opts Options) (string, error) {
	if opts.CleanLatex {
		text = markup.CleanLatex(text)
	}
	out, err := Markdown(text, opts)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
