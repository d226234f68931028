package render

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names
const (
	ThemeDark       = styles.DarkStyle
	ThemeLight      = styles.LightStyle
	ThemeDracula    = styles.DraculaStyle
	ThemeTokyoNight = styles.TokyoNightStyle
	ThemeNoTTY      = styles.NoTTYStyle
	ThemeASCII      = styles.AsciiStyle

	// ThemeChat and ThemeChatLight are the glamour dark/light styles with
	// flush margins and marked section headings.
	ThemeChat      = "geminichat"
	ThemeChatLight = "geminichat-light"
)

// customStyle returns the style config for our own themes
func customStyle(name string) (ansi.StyleConfig, bool) {
	var base ansi.StyleConfig
	switch name {
	case ThemeChat:
		base = styles.DarkStyleConfig
	case ThemeChatLight:
		base = styles.LightStyleConfig
	default:
		return ansi.StyleConfig{}, false
	}

	margin := uint(0)
	base.Document.Margin = &margin
	base.H2.Prefix = "▌ "
	base.H3.Prefix = "┃ "
	return base, true
}

// IsBuiltinStyle returns true if the style is a glamour style or one of ours.
func IsBuiltinStyle(style string) bool {
	if _, ok := styles.DefaultStyles[style]; ok {
		return true
	}
	_, ok := customStyle(style)
	return ok
}

// StyleForDarkMode returns the markdown style matching the TUI background
func StyleForDarkMode(dark bool) string {
	if dark {
		return ThemeChat
	}
	return ThemeChatLight
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the markdown styles that can be selected by name.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeChat, Description: "Dark theme without margins"},
		{Name: ThemeChatLight, Description: "Light theme without margins"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
