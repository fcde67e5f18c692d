package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"auction-engine/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "AUCTION"

// Store drivers accepted by store-driver
const (
	DriverMemory   = repository.DriverMemory
	DriverSQLite   = repository.DriverSQLite
	DriverPostgres = repository.DriverPostgres
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	ServerAddr string
	LogLevel   string

	StoreDriver string
	StoreDSN    string

	SchedulerInterval     time.Duration
	SchedulerWorkers      int
	SchedulerSweepTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	AMQPURL      string
	AMQPExchange string

	MailboxSize int
	SeedDemo    bool
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("auction-engine", pflag.ContinueOnError)

	fs.String("config", "", "optional config file (yaml, json or toml)")

	// server
	fs.String("server-addr", ":8080", "HTTP listen address")
	fs.String("log-level", "info", "debug | info | warn | error")

	// store
	fs.String("store-driver", DriverMemory, "memory | sqlite | postgres")
	fs.String("store-dsn", "", "database DSN for sqlite or postgres")

	// closing scheduler
	fs.Duration("scheduler-interval", time.Minute, "time between closing sweeps")
	fs.Int("scheduler-workers", 4, "auctions processed concurrently per sweep")
	fs.Duration("scheduler-sweep-timeout", 30*time.Second, "upper bound for a single sweep")

	// rate limit
	fs.Float64("rate-limit-rps", 10, "requests per second allowed per client IP")
	fs.Int("rate-limit-burst", 20, "burst allowed per client IP")

	// event export
	fs.String("amqp-url", "", "AMQP broker URL, empty disables export")
	fs.String("amqp-exchange", "auction.events", "topic exchange for auction events")

	fs.Int("mailbox-size", 16, "notices held per offline user")
	fs.Bool("seed-demo", true, "create demo wallets and auctions on start")
	return fs
}

// Load reads .env, command line flags, AUCTION_* env vars and an optional
// config file, in increasing order of precedence for flags set explicitly.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("config: bind flags: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	cfg := Config{
		ServerAddr:            v.GetString("server-addr"),
		LogLevel:              v.GetString("log-level"),
		StoreDriver:           strings.ToLower(v.GetString("store-driver")),
		StoreDSN:              v.GetString("store-dsn"),
		SchedulerInterval:     v.GetDuration("scheduler-interval"),
		SchedulerWorkers:      v.GetInt("scheduler-workers"),
		SchedulerSweepTimeout: v.GetDuration("scheduler-sweep-timeout"),
		RateLimitRPS:          v.GetFloat64("rate-limit-rps"),
		RateLimitBurst:        v.GetInt("rate-limit-burst"),
		AMQPURL:               v.GetString("amqp-url"),
		AMQPExchange:          v.GetString("amqp-exchange"),
		MailboxSize:           v.GetInt("mailbox-size"),
		SeedDemo:              v.GetBool("seed-demo"),
	}

	// PORT is what most hosting platforms inject
	if p := os.Getenv("PORT"); p != "" && !fs.Changed("server-addr") && os.Getenv(envPrefix+"_SERVER_ADDR") == "" {
		cfg.ServerAddr = ":" + p
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("config: %w - store-dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("config: %w - unknown store-driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.ServerAddr == "" {
		return fmt.Errorf("config: %w - server-addr is empty", ErrInvalidConfig)
	}
	if c.SchedulerInterval <= 0 {
		return fmt.Errorf("config: %w - scheduler-interval must be positive", ErrInvalidConfig)
	}
	if c.SchedulerWorkers <= 0 {
		return fmt.Errorf("config: %w - scheduler-workers must be positive", ErrInvalidConfig)
	}
	if c.SchedulerSweepTimeout <= 0 {
		return fmt.Errorf("config: %w - scheduler-sweep-timeout must be positive", ErrInvalidConfig)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("config: %w - rate limit must be positive", ErrInvalidConfig)
	}
	if c.MailboxSize <= 0 {
		return fmt.Errorf("config: %w - mailbox-size must be positive", ErrInvalidConfig)
	}
	return nil
}
