package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lowellowuor/voicebridge/internal/capture"
	"github.com/Lowellowuor/voicebridge/internal/config"
	"github.com/Lowellowuor/voicebridge/internal/metrics"
	"github.com/Lowellowuor/voicebridge/internal/models"
	"github.com/Lowellowuor/voicebridge/internal/pipeline"
	"github.com/Lowellowuor/voicebridge/internal/transcribe"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/voicebridge/config.yaml)")
	filePath := flag.String("file", "", "audio file to transcribe")
	micFor := flag.Duration("mic", 0, "record from the microphone for this long, then transcribe (e.g. 5s)")
	lang := flag.String("lang", "", "target language code (default: from config)")
	downloadModel := flag.Bool("download-model", false, "download the whisper model and exit")
	flag.Parse()

	// OPENAI_API_KEY for the hosted backend may live in a .env file.
	_ = godotenv.Load()

	if *downloadModel {
		if err := models.DownloadWhisper(); err != nil {
			fmt.Fprintf(os.Stderr, "model download: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	if *filePath == "" && *micFor <= 0 {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -file or -mic (see -help)")
		os.Exit(2)
	}

	language := cfg.Engine.Language
	if *lang != "" {
		language = *lang
	}

	slog.Info("loading transcription engine", "backend", cfg.Engine.Backend)
	start := time.Now()
	engine, err := transcribe.New(&cfg.Engine)
	if err != nil {
		slog.Error("engine init failed", "error", err)
		os.Exit(1)
	}
	defer engine.Close()
	slog.Info("engine ready", "status", engine.Status(), "elapsed", time.Since(start).Round(time.Millisecond))

	p := pipeline.New(engine, pipeline.Options{
		Metrics:       metrics.New(prometheus.NewRegistry()),
		MaxInputBytes: cfg.MaxInputBytes(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var result *pipeline.Result
	switch {
	case *filePath != "":
		result, err = transcribeFile(ctx, p, *filePath, language)
	default:
		result, err = transcribeMic(ctx, p, cfg, *micFor, language)
	}
	if err != nil {
		slog.Error("transcription failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		slog.Error("encoding result", "error", err)
		os.Exit(1)
	}
}

// transcribeFile runs one upload-style request through the full pipeline.
func transcribeFile(ctx context.Context, p *pipeline.Pipeline, path, language string) (*pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Process(ctx, pipeline.RawAudio{
		Data:     data,
		Filename: filepath.Base(path),
	}, language)
}

// transcribeMic records from the default microphone for the given duration
// and feeds the capture into the pipeline at the normalize step.
func transcribeMic(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, d time.Duration, language string) (*pipeline.Result, error) {
	rec, err := capture.NewRecorder(cfg.Audio.CaptureRate, cfg.Audio.CaptureChannels)
	if err != nil {
		return nil, fmt.Errorf("initializing recorder: %w", err)
	}
	defer rec.Close()

	if err := rec.Start(); err != nil {
		return nil, fmt.Errorf("starting capture: %w", err)
	}
	slog.Info("recording", "duration", d)

	select {
	case <-time.After(d):
	case <-ctx.Done():
	}

	decoded, ok := rec.Stop()
	if !ok {
		return nil, fmt.Errorf("recorder was not running")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return p.ProcessDecoded(ctx, decoded, language)
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, nil
	}

	return config.Default(), nil
}

// setupLogging installs a text slog handler at the configured level.
func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
