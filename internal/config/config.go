package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Log       Log
	Redis     Redis
	HTTP      HTTP
	Telegram  Telegram
	Postgres  Postgres
	Snapshots Snapshots
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY" env-default:"false"`
}

// Redis holds the connection factory options. Every timeout the facade is
// subject to is configured here, the facade itself enforces none.
type Redis struct {
	// URL takes precedence over Addr, Password and DB when set.
	URL          string        `yaml:"url" env:"REDIS_URL"`
	Addr         string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize     int           `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolTimeout  time.Duration `yaml:"pool_timeout" env:"REDIS_POOL_TIMEOUT" env-default:"4s"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Telegram bot is started only when BotToken is set.
type Telegram struct {
	BotToken        string        `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	LongPollerDelay time.Duration `yaml:"long_poller_delay" env:"TELEGRAM_LONG_POLLER_DELAY" env-default:"10s"`
	AdminID         int64         `yaml:"admin_id" env:"TELEGRAM_ADMIN_ID"`
	// DeleteConfirmTTL bounds how long a /del confirmation button stays valid.
	DeleteConfirmTTL time.Duration `yaml:"delete_confirm_ttl" env:"TELEGRAM_DELETE_CONFIRM_TTL" env-default:"1m"`
}

// Postgres is optional, snapshots history is off without a DSN.
type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

type Snapshots struct {
	Delay time.Duration `yaml:"delay" env:"SNAPSHOTS_DELAY" env-default:"1m"`
}

// New reads the configuration from CONFIG_PATH when it is set and from the environment otherwise.
func New() (*Config, error) {
	cfg := &Config{}

	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cleanenv.Read: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Redis.URL == "" && c.Redis.Addr == "" {
		return errors.New("redis addr or url is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis db must not be negative, got %d", c.Redis.DB)
	}
	if c.Redis.PoolSize < 1 {
		return fmt.Errorf("redis pool size must be positive, got %d", c.Redis.PoolSize)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http addr is required")
	}
	if c.Telegram.BotToken != "" && c.Telegram.AdminID == 0 {
		return errors.New("telegram admin id is required when the bot is enabled")
	}
	if c.SnapshotsEnabled() && c.Snapshots.Delay <= 0 {
		return fmt.Errorf("snapshots delay must be positive, got %s", c.Snapshots.Delay)
	}

	return nil
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

func (c *Config) SnapshotsEnabled() bool {
	return c.Postgres.DSN != ""
}

// Description returns the list of supported environment variables.
func Description() string {
	help, _ := cleanenv.GetDescription(&Config{}, nil)
	return help
}
