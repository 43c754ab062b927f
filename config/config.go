package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisLockDB    int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payments and push.
	StripeKey               string `mapstructure:"STRIPE_KEY"`
	PaymentCurrency         string `mapstructure:"PAYMENT_CURRENCY"`
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`

	// Scheduling.
	Timezone                string        `mapstructure:"TIMEZONE"`
	BookingHorizonDays      int           `mapstructure:"BOOKING_HORIZON_DAYS"`
	BookingLockTTL          time.Duration `mapstructure:"BOOKING_LOCK_TTL"`
	BookingSessionTTL       time.Duration `mapstructure:"BOOKING_SESSION_TTL"`
	CancellationNoticeHours int           `mapstructure:"CANCELLATION_NOTICE_HOURS"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "appointly")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("REDIS_LOCK_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("BOOKING_HORIZON_DAYS", 30)
	v.SetDefault("BOOKING_LOCK_TTL", "10s")
	v.SetDefault("BOOKING_SESSION_TTL", "15m")
	v.SetDefault("CANCELLATION_NOTICE_HOURS", 24)
}

// Load reads configuration from config.yaml (current or ./config directory),
// environment variables and defaults, in increasing order of precedence for env.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates the global AppConfig.
func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Println("JWT_SECRET is empty, authenticated routes will reject every token")
	}
	AppConfig = cfg
}

// Location returns the configured business timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("unknown TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
