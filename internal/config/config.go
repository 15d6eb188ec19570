package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Backend    BackendConfig    `yaml:"backend"`
	Completion CompletionConfig `yaml:"completion"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`
	Filter     FilterConfig     `yaml:"filter"`
	Health     HealthConfig     `yaml:"health"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// DatabaseConfig points at the conversation log. An empty Host disables it.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addresses []string `yaml:"addresses"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	PoolSize  int      `yaml:"pool_size"`
}

type TelemetryConfig struct {
	LogLevel        string  `yaml:"log_level"`
	LogFormat       string  `yaml:"log_format"`
	MetricsPort     int     `yaml:"metrics_port"`
	ServiceName     string  `yaml:"service_name"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// BackendConfig describes the university-management API the assistant reads from.
type BackendConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxIdleConns  int           `yaml:"max_idle_conns"`
	StudentsLimit int           `yaml:"students_limit"`
	NotifyLimit   int           `yaml:"notifications_limit"`
	AnnounceLimit int           `yaml:"announcements_limit"`
	RecentLimit   int           `yaml:"attendance_recent_limit"`

	// ScheduleFallback returns the first sessions of all time when the
	// current week is empty instead of reporting an empty week.
	ScheduleFallback      bool `yaml:"schedule_fallback"`
	ScheduleFallbackLimit int  `yaml:"schedule_fallback_limit"`
}

type CompletionConfig struct {
	Type        string            `yaml:"type"` // "openai" or "anthropic"
	BaseURL     string            `yaml:"base_url"`
	APIKey      string            `yaml:"api_key"`
	Model       string            `yaml:"model"`
	Temperature float64           `yaml:"temperature"`
	MaxTokens   int               `yaml:"max_tokens"`
	Timeout     time.Duration     `yaml:"timeout"`
	Headers     map[string]string `yaml:"headers"`
}

// HealthConfig sizes the circuit breakers kept per outbound dependency.
type HealthConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryInterval time.Duration `yaml:"recovery_interval"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

type FilterConfig struct {
	Injection InjectionFilterConfig `yaml:"injection"`
	Secrets   SecretsFilterConfig   `yaml:"secrets"`
}

type InjectionFilterConfig struct {
	Enabled        bool    `yaml:"enabled"`
	BlockThreshold float64 `yaml:"block_threshold"`
	FlagThreshold  float64 `yaml:"flag_threshold"`
}

// SecretsFilterConfig controls redaction of credentials pasted into messages
// or uploaded documents before they reach the completion provider.
type SecretsFilterConfig struct {
	Enabled bool `yaml:"enabled"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             5005,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
			MaxUploadBytes:   5 << 20,
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Port:            5432,
			Name:            "assistant",
			User:            "assistant",
			MaxOpenConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			DB:       0,
			PoolSize: 20,
		},
		Telemetry: TelemetryConfig{
			LogLevel:        "info",
			LogFormat:       "json",
			MetricsPort:     9090,
			ServiceName:     "campus-assistant",
			TraceSampleRate: 0.1,
		},
		Backend: BackendConfig{
			BaseURL:               "http://localhost:5001",
			Timeout:               30 * time.Second,
			MaxIdleConns:          20,
			StudentsLimit:         10,
			NotifyLimit:           10,
			AnnounceLimit:         5,
			RecentLimit:           10,
			ScheduleFallbackLimit: 10,
		},
		Completion: CompletionConfig{
			Type:        "openai",
			BaseURL:     "http://127.0.0.1:11434/v1",
			Model:       "llama3.1:8b",
			Temperature: 0.2,
			Timeout:     120 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
		},
		Filter: FilterConfig{
			Injection: InjectionFilterConfig{
				Enabled:        true,
				BlockThreshold: 0.9,
				FlagThreshold:  0.7,
			},
			Secrets: SecretsFilterConfig{Enabled: true},
		},
		Health: HealthConfig{
			FailureThreshold: 5,
			RecoveryInterval: 30 * time.Second,
		},
	}
}
