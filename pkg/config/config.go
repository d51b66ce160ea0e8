package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	xutil "CosmicClock/pkg/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COSMIC_"

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logger struct {
		Level     string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format    string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic" default:"cosmic.logs"`
			FlushInterval  time.Duration `yaml:"flush_interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"logger"`
	Clock struct {
		Timezone         string        `yaml:"timezone" default:"UTC"`
		SampleInterval   time.Duration `yaml:"sample_interval" default:"1s"`
		ForecastInterval time.Duration `yaml:"forecast_interval" default:"1m"`
		Forecast         struct {
			Horizon      time.Duration `yaml:"horizon" default:"24h"`
			Cap          int           `yaml:"cap" default:"10" validate:"gte=1,lte=10"`
			PerPredicate int           `yaml:"per_predicate" default:"3" validate:"gte=1,lte=10"`
			CalendarDays int           `yaml:"calendar_days" default:"30" validate:"gte=1,lte=366"`
			MaxSteps     int           `yaml:"max_steps" default:"86400" validate:"gte=1,lte=86400"`
			CacheSize    int           `yaml:"cache_size" default:"256" validate:"gte=1"`
			// IDs is the forecast subset; "all" selects the whole catalog.
			IDs []string `yaml:"ids" default:"[\"palindrome\",\"hex-special\",\"triple-equal\"]" validate:"min=1,dive,required"`
		} `yaml:"forecast"`
	} `yaml:"clock"`
	History struct {
		Cap int `yaml:"cap" default:"10" validate:"gte=1,lte=1000"`
	} `yaml:"history"`
	Backend struct {
		Type           string        `yaml:"type" default:"none" validate:"oneof=kafka clickhouse postgres none"`
		ThrottleWindow time.Duration `yaml:"throttle_window" default:"1m"`
		BufferSize     int           `yaml:"buffer_size" default:"1000" validate:"gte=1"`
		RetryMin       time.Duration `yaml:"retry_min" default:"50ms"`
		RetryMax       time.Duration `yaml:"retry_max" default:"2s"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		Topic        string   `yaml:"topic" default:"cosmic.patterns"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"cosmic-clock"`
			Workers    int           `yaml:"workers" default:"4"`
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
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table" default:"pattern_events"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
	} `yaml:"clickhouse"`
	Postgres struct {
		DSN             string        `yaml:"dsn"`
		MaxConns        int32         `yaml:"max_conns" default:"10"`
		MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" default:"30m"`
	} `yaml:"postgres"`
	Redis struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"6379"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		Prefix       string        `yaml:"prefix" default:"cosmic"`
		PoolSize     int           `yaml:"pool_size" default:"10"`
		MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
		Timeout      time.Duration `yaml:"timeout" default:"3s"`
	} `yaml:"redis"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity" default:"30" validate:"gte=0"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"0.5" validate:"gte=0"`
	} `yaml:"ratelimit"`
}

var validate = validator.New()

// Default returns a config holding only default values.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file over the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with COSMIC_* environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = xutil.SplitCSV(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("ENVIRONMENT", &c.Environment)
	str("LOG_LEVEL", &c.Logger.Level)
	str("LOG_FORMAT", &c.Logger.Format)
	str("TIMEZONE", &c.Clock.Timezone)
	list("FORECAST_IDS", &c.Clock.Forecast.IDs)
	str("BACKEND", &c.Backend.Type)
	list("KAFKA_BROKERS", &c.Kafka.Brokers)
	str("KAFKA_TOPIC", &c.Kafka.Topic)
	str("CLICKHOUSE_HOST", &c.ClickHouse.Host)
	str("CLICKHOUSE_PASSWORD", &c.ClickHouse.Password)
	str("POSTGRES_DSN", &c.Postgres.DSN)
	str("REDIS_HOST", &c.Redis.Host)
	str("REDIS_PASSWORD", &c.Redis.Password)

	for key, dst := range map[string]*int{
		"SERVER_PORT":     &c.Server.Port,
		"CLICKHOUSE_PORT": &c.ClickHouse.Port,
		"REDIS_PORT":      &c.Redis.Port,
		"HISTORY_CAP":     &c.History.Cap,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"REDIS_ENABLED":          &c.Redis.Enabled,
		"KAFKA_CONSUMER_ENABLED": &c.Kafka.Consumer.Enabled,
		"LOG_COLLECTOR_ENABLED":  &c.Logger.Collector.Enabled,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks tag rules and the cross-field constraints tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
		return fmt.Errorf("clock.timezone: %w", err)
	}
	if c.Clock.SampleInterval <= 0 || c.Clock.ForecastInterval <= 0 {
		return fmt.Errorf("clock intervals must be positive")
	}
	if c.Clock.Forecast.Horizon <= 0 {
		return fmt.Errorf("clock.forecast.horizon must be positive")
	}

	needKafka := c.Backend.Type == "kafka" || c.Kafka.Consumer.Enabled || c.Logger.Collector.Enabled
	if needKafka {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required")
		}
	}
	switch c.ArchiveType() {
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required")
		}
	}
	if c.Backend.RetryMin > c.Backend.RetryMax {
		return fmt.Errorf("backend.retry_min must not exceed backend.retry_max")
	}
	return nil
}

// ArchiveType names the store behind archive stats and the Kafka sink:
// postgres or clickhouse when that is the backend, clickhouse when the
// consumer sinks a kafka backend, otherwise empty.
func (c *Config) ArchiveType() string {
	switch {
	case c.Backend.Type == "postgres":
		return "postgres"
	case c.Backend.Type == "clickhouse", c.Kafka.Consumer.Enabled:
		return "clickhouse"
	default:
		return ""
	}
}
