// Package config loads server configuration from an optional YAML file,
// SPIN_-prefixed environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	SUI       SUIConfig       `mapstructure:"sui"`
	Spin      SpinConfig      `mapstructure:"spin"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type StorageConfig struct {
	UseMemory        bool   `mapstructure:"use_memory"`
	PostgresDSN      string `mapstructure:"postgres_dsn"`
	PostgresMaxConns int32  `mapstructure:"postgres_max_conns"`
	ClickhouseDSN    string `mapstructure:"clickhouse_dsn"`
}

// RedisConfig configures the shared rate limiter. An empty Addr selects
// the in-process limiter.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SUIConfig struct {
	RPCEndpoint     string        `mapstructure:"rpc_endpoint"`
	TreasuryAddress string        `mapstructure:"treasury_address"`
	SpinPriceMist   int64         `mapstructure:"spin_price_mist"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

type SpinConfig struct {
	CommissionPercent float64       `mapstructure:"commission_percent"`
	InitialSpins      int64         `mapstructure:"initial_spins"`
	DailyFreeSpins    int64         `mapstructure:"daily_free_spins"`
	RateLimit         int64         `mapstructure:"rate_limit"`
	RateWindow        time.Duration `mapstructure:"rate_window"`
	PrizeCacheTTL     time.Duration `mapstructure:"prize_cache_ttl"`
	HistoryLimit      int           `mapstructure:"history_limit"`
}

type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DailyGrant   string `mapstructure:"daily_grant"`
	PrizeRefresh string `mapstructure:"prize_refresh"`
}

// Load reads configuration. An empty path uses environment and defaults only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")

	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)

	v.SetDefault("storage.use_memory", false)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.postgres_max_conns", 10)
	v.SetDefault("storage.clickhouse_dsn", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("sui.rpc_endpoint", "https://fullnode.mainnet.sui.io:443")
	v.SetDefault("sui.treasury_address", "")
	v.SetDefault("sui.spin_price_mist", 1_000_000_000)
	v.SetDefault("sui.timeout", "15s")
	v.SetDefault("sui.max_retries", 3)

	v.SetDefault("spin.commission_percent", 10)
	v.SetDefault("spin.initial_spins", 1)
	v.SetDefault("spin.daily_free_spins", 1)
	v.SetDefault("spin.rate_limit", 10)
	v.SetDefault("spin.rate_window", "1m")
	v.SetDefault("spin.prize_cache_ttl", "30s")
	v.SetDefault("spin.history_limit", 100)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.daily_grant", "0 0 * * *")
	v.SetDefault("scheduler.prize_refresh", "@every 1m")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that have no usable default.
func (c Config) Validate() error {
	var errs []error

	if !c.Storage.UseMemory && c.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("storage.postgres_dsn is required unless storage.use_memory is set"))
	}
	if c.SUI.SpinPriceMist <= 0 {
		errs = append(errs, errors.New("sui.spin_price_mist must be positive"))
	}
	if c.Spin.CommissionPercent < 0 || c.Spin.CommissionPercent > 100 {
		errs = append(errs, errors.New("spin.commission_percent must be within [0, 100]"))
	}
	if c.Spin.InitialSpins < 0 || c.Spin.DailyFreeSpins < 0 {
		errs = append(errs, errors.New("spin.initial_spins and spin.daily_free_spins must not be negative"))
	}
	if c.Spin.RateLimit > 0 && c.Spin.RateWindow <= 0 {
		errs = append(errs, errors.New("spin.rate_window must be positive when spin.rate_limit is set"))
	}
	if c.Spin.PrizeCacheTTL <= 0 {
		errs = append(errs, errors.New("spin.prize_cache_ttl must be positive"))
	}
	if c.Spin.HistoryLimit <= 0 {
		errs = append(errs, errors.New("spin.history_limit must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
