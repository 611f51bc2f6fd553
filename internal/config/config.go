package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Engine   EngineConfig `yaml:"engine"`
	Audio    AudioConfig  `yaml:"audio"`
	LogLevel string       `yaml:"log_level"`
}

// EngineConfig selects and configures the transcription backend.
type EngineConfig struct {
	Backend     string `yaml:"backend"`      // "whisper" or "openai"
	ModelPath   string `yaml:"model_path"`   // whisper ggml model file
	OpenAIModel string `yaml:"openai_model"` // hosted model name
	Language    string `yaml:"language"`     // default target language code
}

// AudioConfig holds input limits and capture settings.
type AudioConfig struct {
	MaxInputMB      int    `yaml:"max_input_mb"`     // upload size cap
	CaptureRate     uint32 `yaml:"capture_rate"`     // mic capture sample rate
	CaptureChannels uint32 `yaml:"capture_channels"` // mic capture channels
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "voicebridge")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns the default directory for downloaded models.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "voicebridge", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Backend:     "whisper",
			ModelPath:   filepath.Join(DefaultModelsDir(), "ggml-base.en.bin"),
			OpenAIModel: "whisper-1",
			Language:    "en",
		},
		Audio: AudioConfig{
			MaxInputMB:      100,
			CaptureRate:     16000,
			CaptureChannels: 1,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in model_path is expanded to the user's home
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Engine.ModelPath = expandTilde(cfg.Engine.ModelPath)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.Engine.Backend {
	case "whisper":
		if c.Engine.ModelPath == "" {
			return fmt.Errorf("engine.model_path must not be empty for the whisper backend")
		}
	case "openai":
		if c.Engine.OpenAIModel == "" {
			return fmt.Errorf("engine.openai_model must not be empty for the openai backend")
		}
	default:
		return fmt.Errorf("engine.backend must be \"whisper\" or \"openai\", got %q", c.Engine.Backend)
	}

	if c.Engine.Language == "" {
		return fmt.Errorf("engine.language must not be empty")
	}

	if c.Audio.MaxInputMB <= 0 {
		return fmt.Errorf("audio.max_input_mb must be > 0")
	}

	if c.Audio.CaptureRate == 0 {
		return fmt.Errorf("audio.capture_rate must be > 0")
	}

	if c.Audio.CaptureChannels == 0 {
		return fmt.Errorf("audio.capture_channels must be > 0")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// MaxInputBytes returns the upload size cap in bytes.
func (c *Config) MaxInputBytes() int {
	return c.Audio.MaxInputMB * 1024 * 1024
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
