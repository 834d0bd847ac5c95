package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Политики списания по колбэку вывода средств.
const (
	PolicyDebitOnSuccess                = "debit-on-success-only"
	PolicyDebitOnRequestRefundOnFailure = "debit-on-request-credit-on-failure"
)

type Config struct {
	HTTPPort     string        `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`

	DB     DBConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Wallet WalletConfig
	Log    LogConfig
}

type DBConfig struct {
	Host          string        `envconfig:"DB_HOST" default:"localhost"`
	Port          string        `envconfig:"DB_PORT" default:"5432"`
	User          string        `envconfig:"DB_USER" required:"true"`
	Password      string        `envconfig:"DB_PASSWORD" required:"true"`
	Name          string        `envconfig:"DB_NAME" required:"true"`
	SSLMode       string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns      int32         `envconfig:"DB_MAX_CONNS" default:"100"`
	MinConns      int32         `envconfig:"DB_MIN_CONNS" default:"20"`
	LockTimeout   time.Duration `envconfig:"DB_LOCK_TIMEOUT" default:"5s"`
	MigrationsDir string        `envconfig:"DB_MIGRATIONS_DIR" default:"migrations"`
}

// DSN в URL-форме: пароль экранируется и может содержать пробелы и кавычки.
func (c DBConfig) DSN() string {
	return c.url().String()
}

// MigrationURL совпадает с DSN, golang-migrate принимает ту же схему postgres://.
func (c DBConfig) MigrationURL() string {
	return c.url().String()
}

func (c DBConfig) url() *url.URL {
	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: query.Encode(),
	}
}

type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"60s"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type KafkaConfig struct {
	Brokers       []string      `envconfig:"KAFKA_BROKERS"`
	Topic         string        `envconfig:"KAFKA_TOPIC" default:"wallet.balance-events"`
	RelayInterval time.Duration `envconfig:"OUTBOX_RELAY_INTERVAL" default:"1s"`
	RelayBatch    int           `envconfig:"OUTBOX_RELAY_BATCH" default:"500"`
	RelayWorkers  int           `envconfig:"OUTBOX_RELAY_WORKERS" default:"2"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type WalletConfig struct {
	WithdrawalPolicy string `envconfig:"WALLET_WITHDRAWAL_POLICY" default:"debit-on-success-only"`
	TopupPrefix      string `envconfig:"WALLET_TOPUP_PREFIX" default:"topup"`
}

type LogConfig struct {
	Production bool   `envconfig:"LOG_PRODUCTION" default:"false"`
	ErrorFile  string `envconfig:"LOG_ERROR_FILE" default:"errors.log"`
}

func NewConfig() (*Config, error) {
	// .env необязателен: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Wallet.WithdrawalPolicy {
	case PolicyDebitOnSuccess, PolicyDebitOnRequestRefundOnFailure:
	default:
		return fmt.Errorf("неизвестная политика вывода %q", c.Wallet.WithdrawalPolicy)
	}
	if c.Wallet.TopupPrefix == "" || strings.Contains(c.Wallet.TopupPrefix, "-") {
		return fmt.Errorf("префикс пополнения не может быть пустым или содержать '-': %q", c.Wallet.TopupPrefix)
	}
	if c.DB.LockTimeout <= 0 {
		return fmt.Errorf("DB_LOCK_TIMEOUT должен быть положительным")
	}
	if c.Kafka.RelayInterval <= 0 {
		return fmt.Errorf("OUTBOX_RELAY_INTERVAL должен быть положительным")
	}
	if c.Kafka.RelayBatch <= 0 {
		return fmt.Errorf("OUTBOX_RELAY_BATCH должен быть положительным")
	}
	// число воркеров задает шардирование outbox и должно совпадать во всех экземплярах
	if c.Kafka.RelayWorkers <= 0 {
		return fmt.Errorf("OUTBOX_RELAY_WORKERS должен быть положительным")
	}
	return nil
}
