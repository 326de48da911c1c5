// Package config loads hxsite.yaml, applies environment overrides and
// fills in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "hxsite.yaml"

// Environment variables that override file values.
const (
	EnvAddr           = "HXSITE_ADDR"
	EnvSecret         = "HXSITE_SECRET"
	EnvPexelsKey      = "PEXELS_API_KEY"
	EnvAWSAccessKey   = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretKey   = "AWS_SECRET_ACCESS_KEY"
	EnvNewsletterSink = "HXSITE_NEWSLETTER_SINK"
	EnvWebhookURL     = "HXSITE_NEWSLETTER_WEBHOOK"
)

// Config is the full site configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Gallery    GalleryConfig    `yaml:"gallery"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Views      ViewsConfig      `yaml:"views"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr,omitempty"`
	Secret          string        `yaml:"secret,omitempty"`
	ReadTimeout     time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// GalleryConfig configures the photo search.
type GalleryConfig struct {
	Keyword  string        `yaml:"keyword,omitempty"`
	PageSize int           `yaml:"page_size,omitempty"`
	APIKey   string        `yaml:"api_key,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// NewsletterConfig selects where sign-ups go.
type NewsletterConfig struct {
	Sink       string        `yaml:"sink,omitempty"`
	WebhookURL string        `yaml:"webhook_url,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	S3         S3Config      `yaml:"s3,omitempty"`
}

// S3Config configures the S3 sink.
type S3Config struct {
	Bucket          string `yaml:"bucket,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// ViewsConfig configures the page view store.
type ViewsConfig struct {
	TTL           time.Duration `yaml:"ttl,omitempty"`
	SweepInterval time.Duration `yaml:"sweep_interval,omitempty"`
	MaxViews      int           `yaml:"max_views,omitempty"`
	PollInterval  time.Duration `yaml:"poll_interval,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
	// Buckets overrides the remote call latency histogram buckets, in
	// seconds.
	Buckets []float64 `yaml:"buckets,omitempty"`
}

// On reports whether metrics are served.
func (m MetricsConfig) On() bool {
	return m.Enabled == nil || *m.Enabled
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Gallery: GalleryConfig{
			Keyword:  "ai generated art",
			PageSize: 80,
			BaseURL:  "https://api.pexels.com/v1",
			Timeout:  10 * time.Second,
		},
		Newsletter: NewsletterConfig{
			Sink:    "log",
			Timeout: 5 * time.Second,
			S3:      S3Config{Prefix: "newsletter/", Region: "us-east-1"},
		},
		Views: ViewsConfig{
			TTL:           30 * time.Minute,
			SweepInterval: time.Minute,
			MaxViews:      10000,
			PollInterval:  time.Second,
		},
		Metrics: MetricsConfig{Path: "/metrics"},
	}
}

// LoadOptional reads path if it exists. A missing file yields an empty
// Config.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Load reads path (or DefaultFile when empty), applies the environment and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	file, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	cfg := Resolve(*file, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve layers file values and environment variables over Default.
func Resolve(file Config, getenv func(string) string) Config {
	cfg := Default()
	merge(&cfg, file)

	setString(&cfg.Server.Addr, getenv(EnvAddr))
	setString(&cfg.Server.Secret, getenv(EnvSecret))
	setString(&cfg.Gallery.APIKey, getenv(EnvPexelsKey))
	setString(&cfg.Newsletter.Sink, getenv(EnvNewsletterSink))
	setString(&cfg.Newsletter.WebhookURL, getenv(EnvWebhookURL))
	setString(&cfg.Newsletter.S3.AccessKeyID, getenv(EnvAWSAccessKey))
	setString(&cfg.Newsletter.S3.SecretAccessKey, getenv(EnvAWSSecretKey))

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Newsletter.Sink = strings.ToLower(strings.TrimSpace(cfg.Newsletter.Sink))
	return cfg
}

// Validate checks values that have no usable default.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Secret != "" && len(c.Server.Secret) < 16 {
		errs = append(errs, fmt.Errorf("server.secret must be at least 16 bytes"))
	}
	if c.Gallery.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("gallery.page_size must be positive"))
	}
	if strings.TrimSpace(c.Gallery.Keyword) == "" {
		errs = append(errs, fmt.Errorf("gallery.keyword must not be empty"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch c.Newsletter.Sink {
	case "log", "memory":
	case "webhook":
		if c.Newsletter.WebhookURL == "" {
			errs = append(errs, fmt.Errorf("newsletter.webhook_url is required for the webhook sink"))
		}
	case "s3":
		if c.Newsletter.S3.Bucket == "" {
			errs = append(errs, fmt.Errorf("newsletter.s3.bucket is required for the s3 sink"))
		}
		if c.Newsletter.S3.AccessKeyID == "" || c.Newsletter.S3.SecretAccessKey == "" {
			errs = append(errs, fmt.Errorf("newsletter.s3 credentials are required for the s3 sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("newsletter.sink %q is not one of log, memory, webhook, s3", c.Newsletter.Sink))
	}
	for i, b := range c.Metrics.Buckets {
		if b <= 0 || (i > 0 && b <= c.Metrics.Buckets[i-1]) {
			errs = append(errs, fmt.Errorf("metrics.buckets must be positive and increasing"))
			break
		}
	}
	if c.Views.PollInterval < 100*time.Millisecond {
		errs = append(errs, fmt.Errorf("views.poll_interval must be at least 100ms"))
	}
	return errors.Join(errs...)
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds the slog logger described by l, writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// Redacted returns a copy with secrets masked, for printing.
func (c Config) Redacted() Config {
	mask := func(s *string) {
		if *s != "" {
			*s = "********"
		}
	}
	mask(&c.Server.Secret)
	mask(&c.Gallery.APIKey)
	mask(&c.Newsletter.S3.AccessKeyID)
	mask(&c.Newsletter.S3.SecretAccessKey)
	return c
}

// YAML renders the config.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func merge(dst *Config, src Config) {
	setString(&dst.Server.Addr, src.Server.Addr)
	setString(&dst.Server.Secret, src.Server.Secret)
	setDuration(&dst.Server.ReadTimeout, src.Server.ReadTimeout)
	setDuration(&dst.Server.WriteTimeout, src.Server.WriteTimeout)
	setDuration(&dst.Server.ShutdownTimeout, src.Server.ShutdownTimeout)

	setString(&dst.Log.Level, src.Log.Level)
	setString(&dst.Log.Format, src.Log.Format)

	setString(&dst.Gallery.Keyword, src.Gallery.Keyword)
	setInt(&dst.Gallery.PageSize, src.Gallery.PageSize)
	setString(&dst.Gallery.APIKey, src.Gallery.APIKey)
	setString(&dst.Gallery.BaseURL, src.Gallery.BaseURL)
	setDuration(&dst.Gallery.Timeout, src.Gallery.Timeout)

	setString(&dst.Newsletter.Sink, src.Newsletter.Sink)
	setString(&dst.Newsletter.WebhookURL, src.Newsletter.WebhookURL)
	setDuration(&dst.Newsletter.Timeout, src.Newsletter.Timeout)
	setString(&dst.Newsletter.S3.Bucket, src.Newsletter.S3.Bucket)
	setString(&dst.Newsletter.S3.Prefix, src.Newsletter.S3.Prefix)
	setString(&dst.Newsletter.S3.Region, src.Newsletter.S3.Region)
	setString(&dst.Newsletter.S3.Endpoint, src.Newsletter.S3.Endpoint)
	setString(&dst.Newsletter.S3.AccessKeyID, src.Newsletter.S3.AccessKeyID)
	setString(&dst.Newsletter.S3.SecretAccessKey, src.Newsletter.S3.SecretAccessKey)

	setDuration(&dst.Views.TTL, src.Views.TTL)
	setDuration(&dst.Views.SweepInterval, src.Views.SweepInterval)
	setInt(&dst.Views.MaxViews, src.Views.MaxViews)
	setDuration(&dst.Views.PollInterval, src.Views.PollInterval)

	if src.Metrics.Enabled != nil {
		dst.Metrics.Enabled = src.Metrics.Enabled
	}
	setString(&dst.Metrics.Path, src.Metrics.Path)
	if len(src.Metrics.Buckets) > 0 {
		dst.Metrics.Buckets = src.Metrics.Buckets
	}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
