package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/web"
)

func newServeCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat web UI",
		Long: `Serve a single-page chat UI. Every browser gets its own conversation,
kept in memory until the server stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), deps, opts, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, "+web.DefaultAddr+")")
	return cmd
}

func runServe(ctx context.Context, deps *Dependencies, opts *rootOptions, addr string) error {
	cfg, err := loadConfig(deps, opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.WebAddr
	}

	logger, err := newConsoleLogger(deps, cfg)
	if err != nil {
		return err
	}

	gen, release, err := deps.NewGenerator(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer release()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(func() *chat.Session {
		return newSession(cfg, gen, logger)
	},
		web.WithAddr(addr),
		web.WithLogger(logger),
		web.WithDarkMode(cfg.DarkMode),
	)

	fmt.Fprintf(deps.Stderr, "Serving Gemini Chat on http://%s (Ctrl+C to stop)\n", srv.Addr())
	return deps.Serve(ctx, srv)
}
