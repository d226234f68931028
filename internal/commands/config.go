package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/geminichat/internal/config"
)

func newConfigCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
		Long: `Manage the geminichat configuration file (~/.geminichat/config.json).

Settings are resolved in this order, later wins: defaults, config file,
.env in the working directory, environment variables, command flags.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (API key masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(deps, opts)
			if err != nil {
				return err
			}
			printConfig(deps.Stdout, cfg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with your API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(deps, opts, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}

func runConfigInit(deps *Dependencies, opts *rootOptions, force bool) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if len(opts.models) > 0 {
		cfg.Models = cleanModels(opts.models)
	}

	key := strings.TrimSpace(opts.apiKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(config.EnvAPIKey))
	}
	if key == "" {
		key, err = promptAPIKey(deps)
		if err != nil {
			return err
		}
	}
	if key == "" {
		return errors.New("no API key given")
	}
	cfg.APIKey = key

	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "✓ Config written to %s\n", path)
	return nil
}

// promptAPIKey reads the key from the terminal without echo, or one line
// from non-interactive input.
func promptAPIKey(deps *Dependencies) (string, error) {
	fmt.Fprint(deps.Stderr, "Gemini API key: ")
	if f, ok := deps.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(deps.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	line, err := bufio.NewReader(deps.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func printConfig(w io.Writer, cfg config.Config) {
	key := cfg.MaskedAPIKey()
	if key == "" {
		key = "(not set)"
	}
	fmt.Fprintf(w, "api_key:           %s\n", key)
	fmt.Fprintf(w, "models:            %s\n", strings.Join(cfg.Models, ", "))
	fmt.Fprintf(w, "apology_message:   %s\n", cfg.ApologyMessage)
	fmt.Fprintf(w, "base_url:          %s\n", cfg.BaseURL)
	fmt.Fprintf(w, "timeout:           %s\n", cfg.Timeout())
	fmt.Fprintf(w, "log_level:         %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "tui_theme:         %s\n", cfg.TUITheme)
	fmt.Fprintf(w, "dark_mode:         %t\n", cfg.DarkMode)
	fmt.Fprintf(w, "copy_to_clipboard: %t\n", cfg.CopyToClipboard)
	fmt.Fprintf(w, "web_addr:          %s\n", cfg.WebAddr)
	fmt.Fprintf(w, "markdown.style:    %s\n", cfg.Markdown.Style)
}
