package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"QuoteLens/pkg/util"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"json"`
		Output     string `yaml:"output" default:"stdout"`
		MaxSizeMB  int    `yaml:"max_size_mb" default:"50"`
		MaxBackups int    `yaml:"max_backups" default:"5"`
		MaxAgeDays int    `yaml:"max_age_days" default:"14"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
	AlphaVantage struct {
		BaseURL string        `yaml:"base_url" default:"https://www.alphavantage.co/query"`
		APIKey  string        `yaml:"api_key" default:"demo"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"alpha_vantage"`
	Quotes struct {
		DefaultPeriod string `yaml:"default_period" default:"1mo"`
		RateLimit     struct {
			RPS   float64 `yaml:"rps" default:"2"`
			Burst int     `yaml:"burst" default:"5"`
		} `yaml:"rate_limit"`
		Cache struct {
			// none, memory or redis
			Backend string        `yaml:"backend" default:"memory"`
			TTL     time.Duration `yaml:"ttl" default:"5m"`
		} `yaml:"cache"`
	} `yaml:"quotes"`
	Store struct {
		// memory, redis or sqlite
		Backend string `yaml:"backend" default:"sqlite"`
	} `yaml:"store"`
	SQLite struct {
		Path string `yaml:"path" default:"data/quotelens.db"`
	} `yaml:"sqlite"`
	Redis struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"quotelens"`

		PoolSize     int           `yaml:"pool_size" default:"10"`
		MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	} `yaml:"redis"`
	Refresh struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule" default:"*/15 * * * *"`
		Period   string `yaml:"period" default:"1mo"`
	} `yaml:"refresh"`
	Archive struct {
		// none, kafka or clickhouse
		Backend string `yaml:"backend" default:"none"`
		Consume bool   `yaml:"consume"`
	} `yaml:"archive"`
	Kafka struct {
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		Topic        string   `yaml:"topic" default:"quotes.daily"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"quotelens-archiver"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"quotelens"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
	} `yaml:"clickhouse"`
	Live struct {
		Enabled        bool          `yaml:"enabled"`
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		MinInterval    time.Duration `yaml:"min_interval" default:"10s"`
	} `yaml:"live"`
}

var validPeriods = map[string]bool{"1mo": true, "3mo": true, "6mo": true, "1y": true, "2y": true}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads .env (when present), then the YAML file, and finally
// overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("QUOTELENS_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	c.Redis.DB = util.ParseIntDefault(os.Getenv("REDIS_DB"), c.Redis.DB)
	c.Quotes.RateLimit.RPS = util.ParseFloatDefault(os.Getenv("QUOTELENS_RATE_LIMIT_RPS"), c.Quotes.RateLimit.RPS)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Live.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Store.Backend {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("store.backend must be 'memory', 'redis' or 'sqlite', got '%s'", c.Store.Backend)
	}
	switch c.Quotes.Cache.Backend {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("quotes.cache.backend must be 'none', 'memory' or 'redis', got '%s'", c.Quotes.Cache.Backend)
	}
	switch c.Archive.Backend {
	case "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("archive.backend must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Archive.Backend)
	}
	if !validPeriods[c.Quotes.DefaultPeriod] {
		return fmt.Errorf("quotes.default_period '%s' is not a supported period", c.Quotes.DefaultPeriod)
	}
	if !validPeriods[c.Refresh.Period] {
		return fmt.Errorf("refresh.period '%s' is not a supported period", c.Refresh.Period)
	}
	if c.Archive.Backend == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when archive.backend is 'kafka'")
	}
	if c.Archive.Consume && c.Archive.Backend != "kafka" {
		return fmt.Errorf("archive.consume requires archive.backend 'kafka'")
	}
	if c.Live.Enabled && c.Live.APIKey == "" {
		return fmt.Errorf("live.api_key is required when live.enabled is set")
	}
	return nil
}

// IsDemoKey reports whether the remote quote API is used with the public demo credential.
func (c *Config) IsDemoKey() bool {
	return c.AlphaVantage.APIKey == "" || c.AlphaVantage.APIKey == "demo"
}
