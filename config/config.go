// Package config provides configuration management for the service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	Server     ServerConfig
	Supabase   SupabaseConfig
	Upload     UploadConfig
	Probe      ProbeConfig
	Playback   PlaybackConfig
	Reconciler ReconcilerConfig
	Logging    LoggingConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// SupabaseConfig contains the backend project connection settings.
type SupabaseConfig struct {
	URL         string
	ServiceKey  string
	VideoBucket string
}

// UploadConfig contains the upload validation ceilings in bytes.
type UploadConfig struct {
	MaxVideoSize     int64
	MaxThumbnailSize int64
	MaxImageSize     int64
}

// ProbeConfig controls metadata extraction during processing.
type ProbeConfig struct {
	Timeout        time.Duration
	FFProbeEnabled bool
}

// PlaybackConfig contains playback-session tuning.
type PlaybackConfig struct {
	ViewThreshold float64
}

// ReconcilerConfig controls the stalled-record sweep.
type ReconcilerConfig struct {
	Workers    int
	QueueSize  int
	BatchLimit int
	JobTimeout time.Duration
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.SetEnvPrefix("APP")
	// Nested keys like supabase.url map to APP_SUPABASE_URL.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Supabase.URL == "" {
		return nil, fmt.Errorf("supabase.url is required (APP_SUPABASE_URL)")
	}
	if cfg.Supabase.ServiceKey == "" {
		return nil, fmt.Errorf("supabase.servicekey is required (APP_SUPABASE_SERVICEKEY)")
	}

	return &cfg, nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Supabase
	viper.SetDefault("supabase.url", "")
	viper.SetDefault("supabase.servicekey", "")
	viper.SetDefault("supabase.videobucket", "videos")

	// Upload ceilings
	viper.SetDefault("upload.maxvideosize", int64(500<<20))
	viper.SetDefault("upload.maxthumbnailsize", int64(10<<20))
	viper.SetDefault("upload.maximagesize", int64(5<<20))

	// Probing
	viper.SetDefault("probe.timeout", 30*time.Second)
	viper.SetDefault("probe.ffprobeenabled", true)

	// Playback
	viper.SetDefault("playback.viewthreshold", 0.25)

	// Reconciler
	viper.SetDefault("reconciler.workers", 3)
	viper.SetDefault("reconciler.queuesize", 100)
	viper.SetDefault("reconciler.batchlimit", 50)
	viper.SetDefault("reconciler.jobtimeout", 2*time.Minute)

	// Logging
	viper.SetDefault("logging.level", "info")
}
