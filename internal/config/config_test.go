package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.Backend != "whisper" {
		t.Errorf("Engine.Backend = %q, want %q", cfg.Engine.Backend, "whisper")
	}
	if cfg.Engine.ModelPath == "" {
		t.Error("Engine.ModelPath should not be empty")
	}
	if cfg.Engine.Language != "en" {
		t.Errorf("Engine.Language = %q, want %q", cfg.Engine.Language, "en")
	}
	if cfg.Audio.MaxInputMB != 100 {
		t.Errorf("Audio.MaxInputMB = %d, want 100", cfg.Audio.MaxInputMB)
	}
	if cfg.Audio.CaptureRate != 16000 {
		t.Errorf("Audio.CaptureRate = %d, want 16000", cfg.Audio.CaptureRate)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
engine:
  backend: openai
  openai_model: whisper-1
  language: uk
audio:
  max_input_mb: 25
  capture_rate: 44100
  capture_channels: 2
log_level: debug
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.Backend != "openai" {
		t.Errorf("Engine.Backend = %q, want %q", cfg.Engine.Backend, "openai")
	}
	if cfg.Engine.Language != "uk" {
		t.Errorf("Engine.Language = %q, want %q", cfg.Engine.Language, "uk")
	}
	if cfg.Audio.MaxInputMB != 25 {
		t.Errorf("Audio.MaxInputMB = %d, want 25", cfg.Audio.MaxInputMB)
	}
	if cfg.Audio.CaptureRate != 44100 {
		t.Errorf("Audio.CaptureRate = %d, want 44100", cfg.Audio.CaptureRate)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}

	// Unset fields keep defaults.
	if cfg.Engine.ModelPath == "" {
		t.Error("Engine.ModelPath should keep its default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	yamlContent := "engine:\n  model_path: ~/models/ggml.bin\n"
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if strings.HasPrefix(cfg.Engine.ModelPath, "~") {
		t.Errorf("ModelPath = %q, tilde should be expanded", cfg.Engine.ModelPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown_backend",
			mutate:  func(c *Config) { c.Engine.Backend = "siri" },
			wantErr: "engine.backend",
		},
		{
			name: "whisper_without_model",
			mutate: func(c *Config) {
				c.Engine.Backend = "whisper"
				c.Engine.ModelPath = ""
			},
			wantErr: "model_path",
		},
		{
			name: "openai_without_model",
			mutate: func(c *Config) {
				c.Engine.Backend = "openai"
				c.Engine.OpenAIModel = ""
			},
			wantErr: "openai_model",
		},
		{
			name:    "empty_language",
			mutate:  func(c *Config) { c.Engine.Language = "" },
			wantErr: "language",
		},
		{
			name:    "zero_max_input",
			mutate:  func(c *Config) { c.Audio.MaxInputMB = 0 },
			wantErr: "max_input_mb",
		},
		{
			name:    "zero_capture_rate",
			mutate:  func(c *Config) { c.Audio.CaptureRate = 0 },
			wantErr: "capture_rate",
		},
		{
			name:    "bad_log_level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestMaxInputBytes(t *testing.T) {
	cfg := Default()
	if got := cfg.MaxInputBytes(); got != 100*1024*1024 {
		t.Errorf("MaxInputBytes() = %d, want %d", got, 100*1024*1024)
	}
}
