package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	StaticDir       string        `env:"STATIC_DIR"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	GinMode   string `env:"GIN_MODE" envDefault:"release"`

	Database Database
	Pricing  Pricing
	PayPal   PayPal
	SMTP     SMTP
	Notify   Notify
	Kafka    Kafka
}

type Database struct {
	URL             string        `env:"DATABASE_URL,required,notEmpty"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	QueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	MigrationsTable string        `env:"MIGRATIONS_TABLE" envDefault:"payment_schema_migrations"`
}

// Pricing holds the server-side price rules. A zero floor disables the check.
type Pricing struct {
	MinServicePrice decimal.Decimal `env:"MIN_SERVICE_PRICE" envDefault:"300"`
	MinCustomAmount decimal.Decimal `env:"MIN_CUSTOM_AMOUNT" envDefault:"50"`
	DefaultCurrency string          `env:"DEFAULT_CURRENCY" envDefault:"USD"`
}

type PayPal struct {
	ClientID string `env:"PAYPAL_CLIENT_ID"`
}

type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM"`
	PoolSize int    `env:"SMTP_POOL_SIZE" envDefault:"2"`
}

// Enabled reports whether receipts can be mailed at all.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.From != ""
}

type Notify struct {
	Workers     int           `env:"NOTIFY_WORKERS" envDefault:"2"`
	QueueSize   int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"100"`
	MaxAttempts int           `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"3"`
	RetryDelay  time.Duration `env:"NOTIFY_RETRY_DELAY" envDefault:"1s"`
}

type Kafka struct {
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS"`
	Topic            string `env:"KAFKA_TOPIC" envDefault:"successful_payments"`
	GroupID          string `env:"KAFKA_GROUP_ID" envDefault:"payment_notification_group"`
}

func (k Kafka) Enabled() bool {
	return k.BootstrapServers != ""
}

// Load reads .env files when present and parses the environment.
func Load(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			log.WithError(err).Warn("Could not load .env file.")
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Pricing.MinServicePrice.IsNegative() || cfg.Pricing.MinCustomAmount.IsNegative() {
		return nil, fmt.Errorf("price floors must not be negative")
	}
	if len(cfg.Pricing.DefaultCurrency) != 3 {
		return nil, fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code, got %q", cfg.Pricing.DefaultCurrency)
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("GIN_MODE must be debug, release or test, got %q", cfg.GinMode)
	}
	return &cfg, nil
}

// SetupLogger applies the configured level and format to the global logger.
func (c *Config) SetupLogger() {
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("log_level", c.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
