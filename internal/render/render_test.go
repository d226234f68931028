package render

import (
	"strings"
	"testing"

	"github.com/diogo/geminichat/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != ThemeDark {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap || !opts.CleanLatex {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func TestOptionsChaining(t *testing.T) {
	opts := DefaultOptions().
		WithWidth(100).
		WithStyle(ThemeLight).
		WithEmoji(false).
		WithPreserveNewLines(false).
		WithTableWrap(false).
		WithCleanLatex(false)

	want := Options{Width: 100, Style: ThemeLight}
	if opts != want {
		t.Errorf("got %+v, want %+v", opts, want)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	md := config.MarkdownConfig{Style: "dracula", EnableEmoji: false, TableWrap: true, CleanLatex: true}

	opts := OptionsFromConfig(md, 60)
	if opts.Style != "dracula" || opts.Width != 60 || opts.EnableEmoji || !opts.TableWrap || !opts.CleanLatex {
		t.Errorf("unexpected options: %+v", opts)
	}

	opts = OptionsFromConfig(config.MarkdownConfig{}, 0)
	if opts.Style != ThemeDark || opts.Width != 80 {
		t.Errorf("empty style and width should keep defaults: %+v", opts)
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Hello\n\nThis is **bold**.", DefaultOptions().WithStyle(ThemeNoTTY))
	if err != nil {
		t.Fatalf("Markdown() returned error: %v", err)
	}
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "bold") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestMarkdownWithWidth(t *testing.T) {
	long := strings.Repeat("word ", 40)
	out, err := MarkdownWithWidth(long, 30)
	if err != nil {
		t.Fatalf("MarkdownWithWidth() returned error: %v", err)
	}
	if strings.Count(out, "\n") < 3 {
		t.Errorf("expected wrapped output, got %q", out)
	}
}

func TestMarkdown_CustomStyles(t *testing.T) {
	for _, style := range []string{ThemeChat, ThemeChatLight} {
		t.Run(style, func(t *testing.T) {
			out, err := Markdown("## Section\n\ntext", DefaultOptions().WithStyle(style))
			if err != nil {
				t.Fatalf("Markdown() returned error: %v", err)
			}
			if !strings.Contains(out, "Section") {
				t.Errorf("unexpected output: %q", out)
			}
		})
	}
}

func TestMarkdown_InvalidStylePath(t *testing.T) {
	_, err := Markdown("x", DefaultOptions().WithStyle("/nonexistent/theme.json"))
	if err == nil {
		t.Error("expected error for missing style file")
	}
}

func TestMessageWithOptions_CleansLatex(t *testing.T) {
	opts := DefaultOptions().WithStyle(ThemeNoTTY)

	out, err := MessageWithOptions("$$2 \\times 3$$", opts)
	if err != nil {
		t.Fatalf("MessageWithOptions() returned error: %v", err)
	}
	if strings.Contains(out, "$$") || strings.Contains(out, "\\times") {
		t.Errorf("LaTeX should be stripped: %q", out)
	}
	if !strings.Contains(out, "×") {
		t.Errorf("expected multiplication sign: %q", out)
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("output should be trimmed: %q", out)
	}

	raw, err := MessageWithOptions("$$x$$", opts.WithCleanLatex(false))
	if err != nil {
		t.Fatalf("MessageWithOptions() returned error: %v", err)
	}
	if !strings.Contains(raw, "$$") {
		t.Errorf("LaTeX should be kept when disabled: %q", raw)
	}
}

func TestMessage(t *testing.T) {
	out, err := Message("plain answer", 80)
	if err != nil {
		t.Fatalf("Message() returned error: %v", err)
	}
	if !strings.Contains(out, "plain answer") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestThemes(t *testing.T) {
	for _, name := range ThemeNames() {
		if !IsBuiltinStyle(name) {
			t.Errorf("%s should be a builtin style", name)
		}
	}
	if IsBuiltinStyle("/path/to/theme.json") {
		t.Error("file paths are not builtin styles")
	}
	if StyleForDarkMode(true) != ThemeChat || StyleForDarkMode(false) != ThemeChatLight {
		t.Error("StyleForDarkMode returned unexpected styles")
	}
}
