// Package config loads the boost daemon configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported chat backends.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all boost configuration.
type Config struct {
	// Listen is the loopback address of the control server.
	Listen string `yaml:"listen"`

	Logging LoggingConfig `yaml:"logging"`
	LLM     LLMConfig     `yaml:"llm"`
	Capture CaptureConfig `yaml:"capture"`

	// SystemPrompt overrides the default chat preamble when non-empty.
	SystemPrompt string `yaml:"system_prompt"`

	// SettingsDB is the SQLite file holding persisted user settings.
	SettingsDB string `yaml:"settings_db"`

	// ScreenshotDir receives captured display images.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// LLMConfig selects and configures the chat backend.
type LLMConfig struct {
	Provider      string `yaml:"provider"` // openai, ollama
	Model         string `yaml:"model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	APIKey        string `yaml:"api_key"`
	OllamaBaseURL string `yaml:"ollama_base_url"`
	StreamTimeout string `yaml:"stream_timeout"`
}

// CaptureConfig tunes context capture.
type CaptureConfig struct {
	ScriptTimeout   string   `yaml:"script_timeout"`
	ContentTimeout  string   `yaml:"content_timeout"`
	MaxContentChars int      `yaml:"max_content_chars"`
	Denylist        []string `yaml:"denylist,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen: "127.0.0.1:7878",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		LLM: LLMConfig{
			Provider:      ProviderOpenAI,
			Model:         "gpt-4o",
			OpenAIBaseURL: "https://api.openai.com/v1",
			OllamaBaseURL: "http://localhost:11434",
			StreamTimeout: "120s",
		},
		Capture: CaptureConfig{
			ScriptTimeout:   "5s",
			ContentTimeout:  "10s",
			MaxContentChars: 32000,
		},
		SettingsDB:    filepath.Join(configDir(), "settings.db"),
		ScreenshotDir: filepath.Join(os.TempDir(), "boost"),
	}
}

// DefaultPath returns ~/.config/boost/config.yaml.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".boost"
	}
	return filepath.Join(home, ".config", "boost")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment variables override file values in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("BOOST_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if provider := os.Getenv("BOOST_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.LLM.OllamaBaseURL = host
	}
	if listen := os.Getenv("BOOST_LISTEN"); listen != "" {
		c.Listen = listen
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider %q (want %s or %s)", c.LLM.Provider, ProviderOpenAI, ProviderOllama)
	}
	if c.Listen == "" {
		return errors.New("listen address is empty")
	}
	if c.Capture.MaxContentChars < 0 {
		return fmt.Errorf("max_content_chars must not be negative, got %d", c.Capture.MaxContentChars)
	}
	for name, value := range map[string]string{
		"llm.stream_timeout":      c.LLM.StreamTimeout,
		"capture.script_timeout":  c.Capture.ScriptTimeout,
		"capture.content_timeout": c.Capture.ContentTimeout,
	} {
		if _, err := parsePositive(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// StreamTimeout bounds one completion stream.
func (c *Config) StreamTimeout() time.Duration {
	d, _ := parsePositive(c.LLM.StreamTimeout)
	return d
}

// ScriptTimeout bounds one osascript or subprocess call.
func (c *Config) ScriptTimeout() time.Duration {
	d, _ := parsePositive(c.Capture.ScriptTimeout)
	return d
}

// ContentTimeout bounds the background content fetch of a capture.
func (c *Config) ContentTimeout() time.Duration {
	d, _ := parsePositive(c.Capture.ContentTimeout)
	return d
}

func parsePositive(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}
