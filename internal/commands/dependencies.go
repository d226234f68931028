package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/diogo/geminichat/internal/api"
	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/tui"
	"github.com/diogo/geminichat/internal/web"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(session *chat.Session, opts ...tui.Option) error
}

// GeneratorFactory builds the API client for a resolved configuration.
// The returned function releases it.
type GeneratorFactory func(cfg config.Config, logger zerolog.Logger) (api.Generator, func(), error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	NewGenerator GeneratorFactory

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Serve runs the web server until ctx is done.
	Serve func(ctx context.Context, srv *web.Server) error

	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error

	// LoadConfig resolves .env, the config file and the environment.
	LoadConfig func() (config.Config, error)

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(session *chat.Session, opts ...tui.Option) error {
	return tui.RunChat(session, opts...)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewGenerator: newAPIClient,
		TUI:          &DefaultTUI{},
		Serve: func(ctx context.Context, srv *web.Server) error {
			return srv.Run(ctx)
		},
		Clipboard:  clipboard.WriteAll,
		LoadConfig: config.Load,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

func newAPIClient(cfg config.Config, logger zerolog.Logger) (api.Generator, func(), error) {
	client, err := api.NewClient(cfg.APIKey,
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// newSession builds a chat session over gen with the configured chain
func newSession(cfg config.Config, gen api.Generator, logger zerolog.Logger) *chat.Session {
	return chat.NewSession(chat.NewDispatcher(gen,
		chat.WithModels(cfg.Models),
		chat.WithApology(cfg.ApologyMessage),
		chat.WithLogger(logger),
	))
}
