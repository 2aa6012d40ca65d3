package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Services ServicesConfig `mapstructure:"services"`
	Topics   TopicsConfig   `mapstructure:"topics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PipelineConfig holds the options recognized on every run.
type PipelineConfig struct {
	MaxConcurrentSegments       int     `mapstructure:"max_concurrent_segments"`
	ClassificationRetryLimit    int     `mapstructure:"classification_retry_limit"`
	ClassificationTimeout       float64 `mapstructure:"classification_timeout"` // seconds
	TopicSentimentDropThreshold float64 `mapstructure:"topic_sentiment_drop_threshold"`
	StreamBuffer                int     `mapstructure:"stream_buffer"`
}

type Service struct {
	URL string `mapstructure:"url"`
}

// ServicesConfig points at the external capability services. An empty ASR
// URL selects the local transcript-file source.
type ServicesConfig struct {
	ASR                Service `mapstructure:"asr"`
	Sentiment          Service `mapstructure:"sentiment"`
	Question           Service `mapstructure:"question"`
	Emotion            Service `mapstructure:"emotion"`
	Topics             Service `mapstructure:"topics"`
	Timeout            int     `mapstructure:"timeout"` // seconds
	MaxConcurrentCalls int     `mapstructure:"max_concurrent_calls"`
}

// TopicsConfig selects the keyword-bucket definitions for the fallback tagger.
type TopicsConfig struct {
	BucketsFile string `mapstructure:"buckets_file"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load reads configuration from path (or the default search paths when
// path is empty), applies MEETING_* environment overrides, and validates.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	v.SetEnvPrefix("MEETING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Defaults plus env are a complete configuration; only an
		// explicitly named file must exist.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.max_concurrent_segments", 4)
	v.SetDefault("pipeline.classification_retry_limit", 2)
	v.SetDefault("pipeline.classification_timeout", 10)
	v.SetDefault("pipeline.topic_sentiment_drop_threshold", 15)
	v.SetDefault("pipeline.stream_buffer", 16)
	v.SetDefault("services.timeout", 60)
	v.SetDefault("services.max_concurrent_calls", 8)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("http.enabled", true)
	v.SetDefault("http.address", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}
	if err := c.Services.Validate(); err != nil {
		return fmt.Errorf("services config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}
	return nil
}

func (p *PipelineConfig) Validate() error {
	if p.MaxConcurrentSegments < 1 {
		return fmt.Errorf("max_concurrent_segments must be at least 1, got %d", p.MaxConcurrentSegments)
	}
	if p.ClassificationRetryLimit < 0 {
		return fmt.Errorf("classification_retry_limit cannot be negative, got %d", p.ClassificationRetryLimit)
	}
	if p.ClassificationTimeout <= 0 {
		return fmt.Errorf("classification_timeout must be positive, got %f", p.ClassificationTimeout)
	}
	if p.TopicSentimentDropThreshold <= 0 {
		return fmt.Errorf("topic_sentiment_drop_threshold must be positive, got %f", p.TopicSentimentDropThreshold)
	}
	if p.StreamBuffer < 1 {
		return fmt.Errorf("stream_buffer must be at least 1, got %d", p.StreamBuffer)
	}
	return nil
}

func (s *ServicesConfig) Validate() error {
	if s.Sentiment.URL == "" || s.Question.URL == "" || s.Emotion.URL == "" {
		return fmt.Errorf("sentiment, question and emotion service urls are required")
	}
	if s.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.Timeout)
	}
	if s.MaxConcurrentCalls < 1 {
		return fmt.Errorf("max_concurrent_calls must be at least 1, got %d", s.MaxConcurrentCalls)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be 'text' or 'json', got %q", l.Format)
	}
	return nil
}

func (h *HTTPConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}
	if h.Address == "" {
		return fmt.Errorf("address cannot be empty when http is enabled")
	}
	return nil
}

// ClassificationTimeoutDuration returns the per-call timeout as a Duration.
func (p *PipelineConfig) ClassificationTimeoutDuration() time.Duration {
	return time.Duration(p.ClassificationTimeout * float64(time.Second))
}

// TimeoutDuration returns the outbound HTTP timeout as a Duration.
func (s *ServicesConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
