package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/Cheertaboi/gift-voucher-service/pkg/db"
)

type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database db.PostgresConfig `mapstructure:"db"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Log      LogConfig         `mapstructure:"log"`
	Mail     MailConfig        `mapstructure:"mail"`
	Stripe   StripeConfig      `mapstructure:"stripe"`
	Voucher  VoucherConfig     `mapstructure:"voucher"`
	Delivery DeliveryConfig    `mapstructure:"delivery"`
	Cache    CacheConfig       `mapstructure:"cache"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig: an empty Addr keeps the cache in process.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type StripeConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type VoucherConfig struct {
	CodePrefix        string `mapstructure:"code_prefix"`
	Timezone          string `mapstructure:"timezone"`
	ExpiryWarningDays int    `mapstructure:"expiry_warning_days"`
	RestaurantName    string `mapstructure:"restaurant_name"`
}

// Location loads the restaurant's time zone.
func (c VoucherConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type DeliveryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`

	// StallAfter is how long an online voucher may stay not_attempted
	// before resend-failed treats its delivery as lost.
	StallAfter time.Duration `mapstructure:"stall_after"`
}

type CacheConfig struct {
	ExclusionTTL time.Duration `mapstructure:"exclusion_ttl"`
}

var prefixRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Load reads defaults, then the config file, then VOUCHER_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "vouchers")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("mail.smtp_host", "localhost")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "vouchers@localhost")

	v.SetDefault("stripe.webhook_secret", "")

	v.SetDefault("voucher.code_prefix", "INF")
	v.SetDefault("voucher.timezone", "Europe/Paris")
	v.SetDefault("voucher.expiry_warning_days", 30)
	v.SetDefault("voucher.restaurant_name", "Restaurant")

	v.SetDefault("delivery.max_attempts", 3)
	v.SetDefault("delivery.initial_backoff", "2s")
	v.SetDefault("delivery.max_backoff", "30s")
	v.SetDefault("delivery.stall_after", "15m")

	v.SetDefault("cache.exclusion_ttl", "5m")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("VOUCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	if !prefixRe.MatchString(c.Voucher.CodePrefix) {
		return fmt.Errorf("config: voucher.code_prefix must be 3 uppercase letters, got %q", c.Voucher.CodePrefix)
	}
	if _, err := c.Voucher.Location(); err != nil {
		return fmt.Errorf("config: voucher.timezone: %w", err)
	}
	if c.Delivery.MaxAttempts < 1 {
		return fmt.Errorf("config: delivery.max_attempts must be at least 1")
	}
	if c.Delivery.StallAfter <= 0 {
		return fmt.Errorf("config: delivery.stall_after must be positive")
	}
	if c.Voucher.ExpiryWarningDays < 0 {
		return fmt.Errorf("config: voucher.expiry_warning_days must not be negative")
	}
	return nil
}
