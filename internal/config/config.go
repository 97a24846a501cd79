// Package config loads the recordtree configuration from defaults, an
// optional recordtree.yaml and RECORDTREE_ environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "RECORDTREE"

// Config represents the recordtree configuration
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Document DocumentConfig `mapstructure:"document"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

// SiteConfig represents site-wide rendering switches
type SiteConfig struct {
	Debug           bool     `mapstructure:"debug"`
	AsXML           bool     `mapstructure:"as_xml"`
	DefaultLanguage string   `mapstructure:"default_language"`
	Languages       []string `mapstructure:"languages"`
}

// DocumentConfig represents output transformer configuration
type DocumentConfig struct {
	XMLContentType  string `mapstructure:"xml_content_type"`
	PrettyPrint     bool   `mapstructure:"pretty_print"`
	JSONPrettyPrint bool   `mapstructure:"json_pretty_print"`
	Template        string `mapstructure:"template"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// CacheConfig represents the translation and option cache
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
	Size      int           `mapstructure:"size"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Supported database drivers and cache backends
var (
	Drivers       = []string{"pgx", "postgres", "sqlite3"}
	CacheBackends = []string{"memory", "redis"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.debug", false)
	v.SetDefault("site.as_xml", false)
	v.SetDefault("site.default_language", "en")
	v.SetDefault("site.languages", []string{"en"})
	v.SetDefault("document.xml_content_type", "application/xml")
	v.SetDefault("document.pretty_print", false)
	v.SetDefault("document.json_pretty_print", false)
	v.SetDefault("document.template", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.size", 4096)
	v.SetDefault("log.level", "info")
}

// Load loads the configuration. An empty path looks for recordtree.yaml in
// the working directory; a missing file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("recordtree")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration without any file or environment input
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if !contains(Drivers, cfg.Database.Driver) {
		return fmt.Errorf("database.driver must be one of %s, got: %s",
			strings.Join(Drivers, ", "), cfg.Database.Driver)
	}
	if !contains(CacheBackends, cfg.Cache.Backend) {
		return fmt.Errorf("cache.backend must be one of %s, got: %s",
			strings.Join(CacheBackends, ", "), cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == "redis" && cfg.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if cfg.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive, got: %d", cfg.Cache.Size)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}
	if cfg.Site.DefaultLanguage == "" {
		return fmt.Errorf("site.default_language must not be empty")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
