package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/logging"
	"github.com/diogo/geminichat/internal/render"
	"github.com/diogo/geminichat/internal/tui"
)

func newChatCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with Gemini.

Each message is sent on its own; the chain of models is tried in order
until one answers. Press Ctrl+E to edit a previous question, Ctrl+Y to
copy the last answer and Ctrl+T to switch between dark and light themes.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps, opts)
		},
	}
}

func runChat(deps *Dependencies, opts *rootOptions) error {
	cfg, err := loadConfig(deps, opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// the alt screen owns the terminal, so logs go to a file
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logPath, err := config.GetLogPath(cfg)
	if err != nil {
		return err
	}
	logger, closer, err := logging.NewFile(logPath, level)
	if err != nil {
		return err
	}
	defer closer.Close()
	logging.SetGlobal(logger)

	gen, release, err := deps.NewGenerator(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer release()

	applyTheme(cfg)

	session := newSession(cfg, gen, logger)
	logger.Info().Strs("models", cfg.Models).Msg("chat started")

	return deps.TUI.RunChat(session,
		tui.WithLogger(logger),
		tui.WithRenderOptions(chatRenderOptions(cfg)),
		tui.WithClipboard(deps.Clipboard),
	)
}

// applyTheme selects the configured TUI theme and dark/light variant
func applyTheme(cfg config.Config) {
	if cfg.TUITheme != "" {
		render.SetTUITheme(cfg.TUITheme)
	}
	render.SetDarkMode(cfg.DarkMode)
	tui.UpdateTheme()
}

// chatRenderOptions keeps an explicitly configured markdown style; the
// plain dark/light styles follow the TUI theme so Ctrl+T switches both.
func chatRenderOptions(cfg config.Config) render.Options {
	opts := render.OptionsFromConfig(cfg.Markdown, 0)
	switch opts.Style {
	case "", render.ThemeDark, render.ThemeLight:
		opts.Style = render.StyleForDarkMode(render.IsDarkMode())
	}
	return opts
}
