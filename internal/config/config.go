// Package config handles configuration loading for geminichat.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// Environment variables that override the config file
const (
	EnvAPIKey   = "GEMINI_API_KEY"
	EnvModels   = "GEMINI_MODELS"
	EnvLogLevel = "GEMINICHAT_LOG_LEVEL"
	EnvBaseURL  = "GEMINICHAT_BASE_URL"
	EnvWebAddr  = "GEMINICHAT_WEB_ADDR"
	EnvStyle    = "GLAMOUR_STYLE"
)

const (
	dirName  = ".geminichat"
	fileName = "config.json"
	logName  = "geminichat.log"
)

// MarkdownConfig configures terminal markdown rendering
type MarkdownConfig struct {
	Style            string `json:"style"`             // glamour style name or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`        // Enable word wrap in table cells
	CleanLatex       bool   `json:"clean_latex"`       // Strip LaTeX before rendering
}

// Config represents the user configuration
type Config struct {
	APIKey string `json:"api_key,omitempty"`
	// Models is the fallback chain, tried in order.
	Models         []string `json:"models"`
	ApologyMessage string   `json:"apology_message"`
	BaseURL        string   `json:"base_url"`
	TimeoutSeconds int      `json:"timeout_seconds"`

	LogLevel string `json:"log_level"`
	// LogFile is where the TUI writes its log; empty means the config dir.
	LogFile string `json:"log_file,omitempty"`

	TUITheme        string         `json:"tui_theme"`
	DarkMode        bool           `json:"dark_mode"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	WebAddr         string         `json:"web_addr"`
	Markdown        MarkdownConfig `json:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		CleanLatex:       true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Models:          models.DefaultModels(),
		ApologyMessage:  models.ApologyText,
		BaseURL:         models.DefaultBaseURL,
		TimeoutSeconds:  120,
		LogLevel:        "warn",
		TUITheme:        "tokyonight",
		DarkMode:        true,
		CopyToClipboard: false,
		WebAddr:         "127.0.0.1:8080",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// Timeout returns the per-request timeout
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaskedAPIKey returns the key with all but the last four characters hidden
func (c Config) MaskedAPIKey() string {
	key := c.APIKey
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// Validate checks the settings needed to talk to the API
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, fmt.Errorf("%w (use %s, --api-key or config.json)", apierrors.ErrNoAPIKey, EnvAPIKey))
	}
	if len(c.Models) == 0 {
		errs = append(errs, errors.New("model list is empty"))
	}
	return errors.Join(errs...)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the config file holds the API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, fileName), nil
}

// GetLogPath returns the TUI log file path
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, logName), nil
}

// LoadConfig loads the configuration file, falling back to defaults
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(cfg.Models) == 0 {
		cfg.Models = models.DefaultModels()
	}

	return cfg, nil
}

// Load reads .env, the config file and the environment, in increasing precedence
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return DefaultConfig(), err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadDotEnv loads variables from the given files (default ".env").
// Missing files are ignored; variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the environment
func ApplyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvAPIKey); ok && strings.TrimSpace(v) != "" {
		cfg.APIKey = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvModels); ok {
		if list := models.ParseModelList(v); len(list) > 0 {
			cfg.Models = list
		}
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvWebAddr); ok && v != "" {
		cfg.WebAddr = v
	}
	if v, ok := os.LookupEnv(EnvStyle); ok && v != "" {
		cfg.Markdown.Style = v
	}
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, fileName)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
