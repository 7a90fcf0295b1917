package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Extract ExtractConfig `yaml:"extract"`
	Batch   BatchConfig   `yaml:"batch"`
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// StoreConfig holds extraction-run store configuration.
// An empty DSN disables the store.
type StoreConfig struct {
	DSN         string        `yaml:"dsn"`
	MaxConns    int32         `yaml:"max_conns"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// ExtractConfig tunes the extraction engine windows.
type ExtractConfig struct {
	ParallelFields    bool `yaml:"parallel_fields"`
	PaymentWindow     int  `yaml:"payment_window"`
	ContactWindow     int  `yaml:"contact_window"`
	CustomerLookahead int  `yaml:"customer_lookahead"`
}

// BatchConfig holds worker-queue settings for directory processing.
type BatchConfig struct {
	Workers   int           `yaml:"workers"`
	QueueSize int           `yaml:"queue_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string   `yaml:"http_addr"`
	GRPCAddr       string   `yaml:"grpc_addr"`
	CORSOrigins    []string `yaml:"cors_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

// ExportConfig holds output locations.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cfg := defaultConfig()
	applyEnv(cfg)
	return cfg
}

// LoadConfigFile reads a YAML file over the defaults, then applies environment overrides.
// An empty path behaves like LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "parse "+path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Store: StoreConfig{
			MaxConns:    10,
			DialTimeout: 3 * time.Second,
		},
		Extract: ExtractConfig{
			PaymentWindow:     20,
			ContactWindow:     120,
			CustomerLookahead: 4,
		},
		Batch: BatchConfig{
			Workers:   4,
			QueueSize: 64,
			Timeout:   time.Minute,
		},
		Server: ServerConfig{
			HTTPAddr:       ":8080",
			GRPCAddr:       ":9090",
			CORSOrigins:    []string{"*"},
			MaxUploadBytes: 50 << 20,
		},
		Export: ExportConfig{Dir: "./outputs"},
	}
}

func applyEnv(c *Config) {
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Store.DSN = getEnv("STORE_DSN", c.Store.DSN)
	c.Store.MaxConns = getEnvAsInt32("STORE_MAX_CONNS", c.Store.MaxConns)
	c.Store.DialTimeout = getEnvAsDuration("STORE_DIAL_TIMEOUT", c.Store.DialTimeout)

	c.Extract.ParallelFields = getEnvAsBool("EXTRACT_PARALLEL_FIELDS", c.Extract.ParallelFields)
	c.Extract.PaymentWindow = getEnvAsInt("EXTRACT_PAYMENT_WINDOW", c.Extract.PaymentWindow)
	c.Extract.ContactWindow = getEnvAsInt("EXTRACT_CONTACT_WINDOW", c.Extract.ContactWindow)
	c.Extract.CustomerLookahead = getEnvAsInt("EXTRACT_CUSTOMER_LOOKAHEAD", c.Extract.CustomerLookahead)

	c.Batch.Workers = getEnvAsInt("BATCH_WORKERS", c.Batch.Workers)
	c.Batch.QueueSize = getEnvAsInt("BATCH_QUEUE_SIZE", c.Batch.QueueSize)
	c.Batch.Timeout = getEnvAsDuration("BATCH_TIMEOUT", c.Batch.Timeout)

	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	c.Server.MaxUploadBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes)

	c.Export.Dir = getEnv("EXPORT_DIR", c.Export.Dir)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("log.level", c.Log.Level, OneOf("debug", "info", "warn", "error")).
		Field("log.format", c.Log.Format, OneOf("json", "text")).
		Field("extract.payment_window", c.Extract.PaymentWindow, Positive).
		Field("extract.contact_window", c.Extract.ContactWindow, Positive).
		Field("extract.customer_lookahead", c.Extract.CustomerLookahead, Positive).
		Field("batch.workers", c.Batch.Workers, Positive).
		Field("batch.queue_size", c.Batch.QueueSize, Positive).
		Field("batch.timeout", c.Batch.Timeout, Positive).
		Field("server.max_upload_bytes", c.Server.MaxUploadBytes, Positive)
	if err := v.Error(); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}
