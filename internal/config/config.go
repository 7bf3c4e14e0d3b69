// Package config loads CLI configuration with viper. Precedence, lowest to
// highest: defaults, config file, TERMSTORE_* environment variables, flags.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/schema"
)

// EnvPrefix prefixes every environment variable, e.g. TERMSTORE_DB or
// TERMSTORE_CACHE_DYNAMIC.
const EnvPrefix = "TERMSTORE"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the resolved CLI configuration.
type Config struct {
	DB      string      `mapstructure:"db"`
	Format  string      `mapstructure:"format"`
	Verbose bool        `mapstructure:"verbose"`
	Cache   CacheConfig `mapstructure:"cache"`
}

// CacheConfig sizes the two usage description cache tiers.
type CacheConfig struct {
	Dynamic int `mapstructure:"dynamic"`
	Static  int `mapstructure:"static"`
}

// SetDefaults installs the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db", "termstore.db")
	v.SetDefault("format", FormatText)
	v.SetDefault("verbose", false)
	v.SetDefault("cache.dynamic", schema.DefaultDynamicCapacity)
	v.SetDefault("cache.static", schema.DefaultStaticCapacity)
}

// Load resolves the configuration. configFile may be empty; its format is
// taken from the extension (YAML or TOML). Flags named like top-level keys
// (db, format, verbose) override everything else once changed.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set up environment variable binding
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.WrapConfiguration(err, "read config file %s", configFile)
		}
	}

	if flags != nil {
		for _, key := range []string{"db", "format", "verbose"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errs.Wrapf(err, "bind flag %s", key)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.WrapConfiguration(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	if c.DB == "" {
		return errs.Configurationf("db path is empty")
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return errs.Configurationf("unknown format %q (want %s or %s)", c.Format, FormatText, FormatJSON)
	}
	if c.Cache.Dynamic <= 0 || c.Cache.Static <= 0 {
		return errs.Configurationf("cache capacities must be positive, got dynamic=%d static=%d",
			c.Cache.Dynamic, c.Cache.Static)
	}
	return nil
}
