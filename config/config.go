// Package config loads the settings of tankerlog from a file (yaml, toml or json) and TANKERLOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Compufreak345/dbg"
	"github.com/spf13/viper"

	"github.com/scgdepot/tankerlog/dbMan"
	"github.com/scgdepot/tankerlog/translate"
)

const cTag = dbg.Tag("tankerlog/config")

// EnvPrefix is the prefix of environment overrides, e.g. TANKERLOG_STORE_BACKEND.
const EnvPrefix = "TANKERLOG"

var ErrInvalidConfig = errors.New("Invalid configuration")

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Key     string `mapstructure:"key"`
}

type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	FontFile string `mapstructure:"fontFile"`
	Version  string `mapstructure:"version"`
}

type ReportConfig struct {
	DefaultLanguage string `mapstructure:"defaultLanguage"`
}

type HTTPConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret"`
}

// Config holds all settings.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Export ExportConfig `mapstructure:"export"`
	Report ReportConfig `mapstructure:"report"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", dbMan.BackendBadger)
	v.SetDefault("store.path", "data/records")
	v.SetDefault("store.key", dbMan.DefaultKey)
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.fontFile", "")
	v.SetDefault("export.version", "")
	v.SetDefault("report.defaultLanguage", translate.DefaultLang)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowOrigins", []string{"*"})
	v.SetDefault("auth.secret", "")
}

// Default returns the configuration used when no file and no environment overrides are given.
func Default() *Config {
	c, err := load(viper.New(), "")
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads the file at path, if path is not empty, and applies environment overrides.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			dbg.E(cTag, "Unable to read config %s : %s", path, err)
			return nil, err
		}
		dbg.I(cTag, "Using config file %s", v.ConfigFileUsed())
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the values that can not be used as they are and normalizes the default language.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case dbMan.BackendBadger, dbMan.BackendSQLite, dbMan.BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Store.Backend != dbMan.BackendMemory && c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required for %s", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("%w: export.dir is required", ErrInvalidConfig)
	}
	c.Report.DefaultLanguage = translate.NormalizeLanguage(c.Report.DefaultLanguage)
	return nil
}
