package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

type Config struct {
	Env             string     `yaml:"env" env:"ENV"`
	BaseURL         string     `yaml:"base_url" env:"BASE_URL"`
	ShortCodeLength int        `yaml:"short_code_length" env:"SHORT_CODE_LENGTH"`
	DefaultValidity int        `yaml:"default_validity" env:"DEFAULT_VALIDITY"`
	HTTPServer      HTTPServer `yaml:"http_server" envPrefix:"HTTP_"`
	Collector       Collector  `yaml:"collector" envPrefix:"COLLECTOR_"`
	Log             Log        `yaml:"log" envPrefix:"LOG_"`
	LogRelay        LogRelay   `yaml:"log_relay" envPrefix:"LOG_RELAY_"`
}

type HTTPServer struct {
	Port           int           `yaml:"port" env:"PORT"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	MaxHeaderBytes int           `yaml:"max_header_bytes" env:"MAX_HEADER_BYTES"`
	CertFile       string        `yaml:"cert_file" env:"CERT_FILE"`
	KeyFile        string        `yaml:"key_file" env:"KEY_FILE"`
}

var defaultHTTPServer = HTTPServer{
	Port:           3001,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Collector configures the log collector service.
type Collector struct {
	HTTPServer   `yaml:",inline"`
	DefaultLimit int `yaml:"default_limit" env:"DEFAULT_LIMIT"`
}

var defaultCollector = Collector{
	HTTPServer: HTTPServer{
		Port:           3002,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    time.Minute,
		MaxHeaderBytes: 1 << 20,
	},
	DefaultLimit: 100,
}

type Log struct {
	Level   string `yaml:"level" env:"LEVEL"`
	JSON    bool   `yaml:"json" env:"JSON"`
	Concise bool   `yaml:"concise" env:"CONCISE"`
}

var defaultLog = Log{
	Level:   "info",
	Concise: true,
}

// SlogLevel maps the configured level name to a slog level. Unknown names mean info.
func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogRelay configures forwarding of log records to the log collector.
// Forwarding is disabled when URL is empty.
type LogRelay struct {
	URL       string        `yaml:"url" env:"URL"`
	Service   string        `yaml:"service" env:"SERVICE"`
	Package   string        `yaml:"package" env:"PACKAGE"`
	Timeout   time.Duration `yaml:"timeout" env:"TIMEOUT"`
	QueueSize int           `yaml:"queue_size" env:"QUEUE_SIZE"`
	Workers   int           `yaml:"workers" env:"WORKERS"`
}

var defaultLogRelay = LogRelay{
	Service:   "url-shortener-microservice",
	Package:   "backend",
	Timeout:   5 * time.Second,
	QueueSize: 1024,
	Workers:   2,
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse environment: %w", op, err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.HTTPServer.Port)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.ShortCodeLength = 6
	cfg.DefaultValidity = 30
	cfg.HTTPServer = defaultHTTPServer
	cfg.Collector = defaultCollector
	cfg.Log = defaultLog
	cfg.LogRelay = defaultLogRelay
}
