package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samvad-hq/inference-console/internal/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported run modes.
const (
	ModeConsole = "console"
	ModeHealth  = "health"
	ModeInfer   = "infer"
	ModeHistory = "history"
)

// Config holds the application configuration loaded from flags, files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ServiceBaseURL     string        `mapstructure:"service_base_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	HealthPollSeconds  int64         `mapstructure:"health_poll_interval_seconds"`
	HealthPollInterval time.Duration `mapstructure:"-"`

	Mode          string `mapstructure:"mode"`
	Sample        string `mapstructure:"sample"`
	ReportersFile string `mapstructure:"reporters_file"`
	MetricsAddr   string `mapstructure:"metrics_addr"`
	NoColor       bool   `mapstructure:"no_color"`
}

// Load reads configuration from command-line flags, environment variables and configs/.env.
// Flags win over environment, environment wins over defaults.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "inference-console")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_base_url", "http://localhost:5000")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("health_poll_interval_seconds", 0) // disabled
	v.SetDefault("mode", ModeConsole)
	v.SetDefault("sample", domain.DefaultSample)
	v.SetDefault("reporters_file", "")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("no_color", false)

	v.AutomaticEnv()

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ServiceBaseURL = strings.TrimRight(strings.TrimSpace(cfg.ServiceBaseURL), "/")
	if cfg.ServiceBaseURL == "" {
		return nil, fmt.Errorf("service_base_url is required")
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.HealthPollSeconds < 0 {
		return nil, fmt.Errorf("invalid health_poll_interval_seconds (must be zero or positive seconds)")
	}
	cfg.HealthPollInterval = time.Duration(cfg.HealthPollSeconds) * time.Second

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch cfg.Mode {
	case ModeConsole, ModeHealth, ModeInfer, ModeHistory:
	default:
		return nil, fmt.Errorf("unsupported mode %q", cfg.Mode)
	}

	if strings.TrimSpace(cfg.Sample) == "" {
		return nil, fmt.Errorf("sample must not be empty")
	}

	return &cfg, nil
}

// newFlagSet declares the flags that can override config keys. Flag names use
// dashes; they are bound to the matching underscore keys.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("inference-console", pflag.ContinueOnError)
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
	})

	fs.String("service_base_url", "http://localhost:5000", "base address of the inference service")
	fs.Int64("http_timeout_seconds", 15, "transport timeout for each request")
	fs.Int64("health_poll_interval_seconds", 0, "poll /api/health on this interval (0 disables)")
	fs.String("mode", ModeConsole, "console, health, infer or history")
	fs.String("sample", domain.DefaultSample, "sample name sent with inference requests")
	fs.String("reporters_file", "", "YAML/JSON file declaring outcome reporters")
	fs.String("metrics_addr", "", "listen address for Prometheus metrics (empty disables)")
	fs.String("log_level", "info", "debug, info, warn or error")
	fs.Bool("no_color", false, "disable ANSI colors")
	return fs
}
