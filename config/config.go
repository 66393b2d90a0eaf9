package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Konsultn-Engineering/sqldsl/connector"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
	"github.com/Konsultn-Engineering/sqldsl/logger"
	"github.com/Konsultn-Engineering/sqldsl/visitor"
)

const envPrefix = "SQLDSL"

// Config is the full configuration of an engine.
type Config struct {
	Dialect  string           `mapstructure:"dialect"`
	Quote    string           `mapstructure:"quote"`
	Cache    CacheConfig      `mapstructure:"cache"`
	Log      logger.Config    `mapstructure:"log"`
	Database connector.Config `mapstructure:"database"`
}

// CacheConfig sizes the render cache. A zero TTL keeps entries until they
// are evicted; a zero size disables the cache.
type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// Load reads configuration with precedence env > file > defaults. An empty
// path skips the file. Environment keys use the SQLDSL_ prefix with dots
// replaced by underscores, e.g. SQLDSL_DATABASE_HOST.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := connector.DefaultConfig()

	v.SetDefault("dialect", "postgres")
	v.SetDefault("quote", "never")

	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", time.Duration(0))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.path", "")

	v.SetDefault("database.driver", def.Driver)
	v.SetDefault("database.host", def.Host)
	v.SetDefault("database.port", def.Port)
	v.SetDefault("database.database", "")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", def.SSLMode)
	v.SetDefault("database.connect_timeout", def.ConnectTimeout)
	v.SetDefault("database.statement_cache", 0)
	v.SetDefault("database.pool.max_open", def.Pool.MaxOpen)
	v.SetDefault("database.pool.max_idle", def.Pool.MaxIdle)
	v.SetDefault("database.pool.max_lifetime", def.Pool.MaxLifetime)
	v.SetDefault("database.pool.max_idle_time", def.Pool.MaxIdleTime)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := dialect.ByName(c.Dialect); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := visitor.ParseQuotePolicy(c.Quote); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("config: negative cache size %d", c.Cache.Size)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("config: database: %w", err)
	}
	return nil
}
