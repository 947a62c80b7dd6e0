package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	AES          AESConfig          `mapstructure:"aes"`
	Webhook      WebhookConfig      `mapstructure:"webhook"`
	Distribution DistributionConfig `mapstructure:"distribution"`
	Payout       PayoutConfig       `mapstructure:"payout"`
	Ledger       LedgerConfig       `mapstructure:"ledger"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres, memory
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// StatementTimeout bounds every statement server-side, including the
	// guarded ledger insert that runs under the category lock.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	ApplicationName  string        `mapstructure:"application_name"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`

	// OpTimeout bounds dial, read and write. Zero keeps go-redis defaults.
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig validates operator tokens issued by the auth subsystem.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for vendor payout destinations
}

type WebhookConfig struct {
	Secret    string        `mapstructure:"secret"` // empty disables signature verification
	Tolerance time.Duration `mapstructure:"tolerance"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type DistributionConfig struct {
	// StandardAmounts maps category label to a decimal disbursement amount.
	// Viper lowercases map keys; labels are resolved case-insensitively.
	StandardAmounts map[string]string `mapstructure:"standard_amounts"`
	BatchSize       int               `mapstructure:"batch_size"`
	CooldownDays    int               `mapstructure:"cooldown_days"`
	VendorSelection string            `mapstructure:"vendor_selection"` // random, round_robin
	Async           bool              `mapstructure:"async"`
	QueueSize       int               `mapstructure:"queue_size"`
}

type PayoutConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LedgerConfig struct {
	RecipientHashSecret string        `mapstructure:"recipient_hash_secret"`
	DefaultPageSize     int           `mapstructure:"default_page_size"`
	MaxPageSize         int           `mapstructure:"max_page_size"`
	StatsCacheTTL       time.Duration `mapstructure:"stats_cache_ttl"`
	ExportBatchSize     int           `mapstructure:"export_batch_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: AIDL_.
// Nested keys use underscore: AIDL_DATABASE_HOST, AIDL_WEBHOOK_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "aid_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.statement_timeout", "15s")
	v.SetDefault("database.application_name", "aid-ledger")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.op_timeout", "500ms")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "1h")
	v.SetDefault("jwt.issuer", "aid-ledger")
	v.SetDefault("aes.key", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.tolerance", "5m")
	v.SetDefault("webhook.cache_ttl", "72h")
	v.SetDefault("distribution.standard_amounts", map[string]string{
		"housing":   "150.00",
		"transport": "45.00",
		"tech":      "100.00",
	})
	v.SetDefault("distribution.batch_size", 10)
	v.SetDefault("distribution.cooldown_days", 30)
	v.SetDefault("distribution.vendor_selection", "random")
	v.SetDefault("distribution.async", false)
	v.SetDefault("distribution.queue_size", 100)
	v.SetDefault("payout.base_url", "http://localhost:9090")
	v.SetDefault("payout.api_key", "")
	v.SetDefault("payout.timeout", "10s")
	v.SetDefault("ledger.recipient_hash_secret", "")
	v.SetDefault("ledger.default_page_size", 20)
	v.SetDefault("ledger.max_page_size", 100)
	v.SetDefault("ledger.stats_cache_ttl", "30s")
	v.SetDefault("ledger.export_batch_size", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: AIDL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("AIDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage.driver must be postgres or memory, got %q", c.Storage.Driver)
	}
	switch c.Distribution.VendorSelection {
	case "random", "round_robin":
	default:
		return fmt.Errorf("distribution.vendor_selection must be random or round_robin, got %q", c.Distribution.VendorSelection)
	}
	if c.Distribution.BatchSize < 1 {
		return fmt.Errorf("distribution.batch_size must be positive")
	}
	if c.Distribution.CooldownDays < 0 {
		return fmt.Errorf("distribution.cooldown_days must not be negative")
	}
	if c.Ledger.MaxPageSize < 1 || c.Ledger.DefaultPageSize < 1 || c.Ledger.DefaultPageSize > c.Ledger.MaxPageSize {
		return fmt.Errorf("ledger page sizes must satisfy 1 <= default_page_size <= max_page_size")
	}
	return nil
}
