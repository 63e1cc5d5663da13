// Package config provides the configuration structure for the audio
// description service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Default values applied to absent optional settings.
const (
	defaultEnhanceTimeoutSeconds    = 15
	defaultSynthesizeTimeoutSeconds = 60
	defaultEnhanceCalls             = 10
	defaultSynthesizeCalls          = 5
	defaultWindowSeconds            = 60
	defaultCacheTTLMinutes          = 30
	defaultDailyGenerationLimit     = 20
	defaultListenAddress            = ":8080"
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                         string `toml:"url"`
	DescriptionRequestedSubject string `toml:"description_requested_subject"`
	AudioObjectStoreBucket      string `toml:"audio_object_store_bucket"`
}

// EnhancementConfig holds the configuration for the text-enhancement service.
type EnhancementConfig struct {
	BaseURL           string `toml:"base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxCallsPerWindow int    `toml:"max_calls_per_window"`
	WindowSeconds     int    `toml:"window_seconds"`
}

// SynthesisConfig holds the configuration for the speech-synthesis service.
type SynthesisConfig struct {
	BaseURL           string `toml:"base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxCallsPerWindow int    `toml:"max_calls_per_window"`
	WindowSeconds     int    `toml:"window_seconds"`
}

// CacheConfig holds the configuration for the result cache.
type CacheConfig struct {
	TTLMinutes int `toml:"ttl_minutes"`
}

// SupabaseConfig holds the configuration for the history store.
type SupabaseConfig struct {
	URL          string `toml:"url"`
	APIKey       string `toml:"api_key"`
	HistoryTable string `toml:"history_table"`
}

// RedisConfig holds the configuration for the usage store.
type RedisConfig struct {
	Address              string `toml:"address"`
	Password             string `toml:"password"`
	DailyGenerationLimit int    `toml:"daily_generation_limit"`
}

// HTTPConfig holds the configuration for the HTTP API.
type HTTPConfig struct {
	ListenAddress string `toml:"listen_address"`
	AllowGuests   bool   `toml:"allow_guests"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS        NATSConfig        `toml:"nats"`
	Enhancement EnhancementConfig `toml:"enhancement"`
	Synthesis   SynthesisConfig   `toml:"synthesis"`
	Cache       CacheConfig       `toml:"cache"`
	Supabase    SupabaseConfig    `toml:"supabase"`
	Redis       RedisConfig       `toml:"redis"`
	HTTP        HTTPConfig        `toml:"http"`
	Paths       PathsConfig       `toml:"paths"`
}

// Load loads the configuration for the audio description service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills absent optional settings with the documented defaults.
func (c *Config) applyDefaults() {
	if c.Enhancement.TimeoutSeconds <= 0 {
		c.Enhancement.TimeoutSeconds = defaultEnhanceTimeoutSeconds
	}

	if c.Enhancement.MaxCallsPerWindow <= 0 {
		c.Enhancement.MaxCallsPerWindow = defaultEnhanceCalls
	}

	if c.Enhancement.WindowSeconds <= 0 {
		c.Enhancement.WindowSeconds = defaultWindowSeconds
	}

	if c.Synthesis.TimeoutSeconds <= 0 {
		c.Synthesis.TimeoutSeconds = defaultSynthesizeTimeoutSeconds
	}

	if c.Synthesis.MaxCallsPerWindow <= 0 {
		c.Synthesis.MaxCallsPerWindow = defaultSynthesizeCalls
	}

	if c.Synthesis.WindowSeconds <= 0 {
		c.Synthesis.WindowSeconds = defaultWindowSeconds
	}

	if c.Cache.TTLMinutes <= 0 {
		c.Cache.TTLMinutes = defaultCacheTTLMinutes
	}

	if c.Redis.DailyGenerationLimit <= 0 {
		c.Redis.DailyGenerationLimit = defaultDailyGenerationLimit
	}

	if c.HTTP.ListenAddress == "" {
		c.HTTP.ListenAddress = defaultListenAddress
	}
}
