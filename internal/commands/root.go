// Package commands provides CLI commands for geminichat.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/logging"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the flags shared by every command
type rootOptions struct {
	models   []string
	apiKey   string
	logLevel string

	output string
	file   string
	raw    bool
	html   bool
	copy   bool
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd builds the command tree over deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "geminichat [prompt]",
		Short: "Chat with Gemini models from the terminal or the browser",
		Long: `geminichat sends prompts to the Gemini generateContent API, trying a chain
of models in order until one answers.

Examples:
  geminichat chat                        Start interactive chat
  geminichat serve                       Open the web UI on 127.0.0.1:8080
  geminichat config init                 Write a config file with your API key
  geminichat "What is Go?"               Send a single query
  geminichat -f prompt.md                Read prompt from file
  cat prompt.md | geminichat             Read prompt from stdin
  geminichat "Hello" -o response.md      Save response to file
  geminichat -m gemini-1.5-flash "Hi"    Use a single model`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "geminichat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps, opts, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}
			return runQuery(cmd.Context(), deps, opts, prompt)
		},
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	// Global flags
	cmd.PersistentFlags().StringSliceVarP(&opts.models, "model", "m", nil,
		"Model to try, repeatable; replaces the configured fallback chain")
	cmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "API key (overrides "+config.EnvAPIKey+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save response to file")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the raw response text without decoration")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the response as the web UI's HTML markup")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the response to the clipboard")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")
	cmd.MarkFlagsMutuallyExclusive("raw", "html")

	cmd.AddCommand(newChatCmd(deps, opts))
	cmd.AddCommand(newServeCmd(deps, opts))
	cmd.AddCommand(newConfigCmd(deps, opts))
	cmd.AddCommand(newModelsCmd(deps, opts))

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// readPrompt picks the prompt from -f, the positional argument or piped
// stdin, in that order. ok is false when there is no input at all.
func readPrompt(deps *Dependencies, opts *rootOptions, args []string) (string, bool, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	// an argument wins over any non-terminal stdin
	if len(args) > 0 {
		return args[0], true, nil
	}

	if hasPipedInput(deps.Stdin) {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}
	return "", false, nil
}

// hasPipedInput reports whether r is stdin redirected from a pipe or file.
// Other readers (tests) count as piped when they are not nil.
func hasPipedInput(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// loadConfig resolves the configuration and applies the global flags
func loadConfig(deps *Dependencies, opts *rootOptions) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if key := strings.TrimSpace(opts.apiKey); key != "" {
		cfg.APIKey = key
	}
	if chain := cleanModels(opts.models); len(chain) > 0 {
		cfg.Models = chain
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

func cleanModels(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// newConsoleLogger builds the stderr logger used by the CLI and web server
func newConsoleLogger(deps *Dependencies, cfg config.Config) (zerolog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	logger := logging.NewConsole(deps.Stderr, level)
	logging.SetGlobal(logger)
	return logger, nil
}
