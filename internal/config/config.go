// Package config holds the application's root configuration, loaded through
// viper from file, environment and flags.
package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/maproute/api/schemas"
)

var (
	instance *Config
	mu       sync.RWMutex
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Resolver ResolverConfig `mapstructure:"resolver"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" json:"level" yaml:"level"`
	Format      string `mapstructure:"format" json:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" json:"compress" yaml:"compress"`
}

// PostgresConfig holds settings for the database connection.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// ResolverConfig holds the settings of the route resolver.
type ResolverConfig struct {
	// TopK is how many cheapest routes ranking keeps per composition level.
	TopK int `mapstructure:"top_k"`
	// MaxDepth bounds the recursion depth of the backward walk.
	MaxDepth int `mapstructure:"max_depth"`
	// Predicates overrides the predicate vocabulary. Empty fields fall back
	// to the defaults.
	Predicates schemas.Predicates `mapstructure:"predicates"`
}

// EffectivePredicates merges the configured predicate overrides over the
// defaults.
func (r ResolverConfig) EffectivePredicates() schemas.Predicates {
	p := schemas.DefaultPredicates()
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&p.MapsTo, r.Predicates.MapsTo)
	override(&p.SubClassOf, r.Predicates.SubClassOf)
	override(&p.InstanceOf, r.Predicates.InstanceOf)
	override(&p.Label, r.Predicates.Label)
	override(&p.Unit, r.Predicates.Unit)
	override(&p.Cost, r.Predicates.Cost)
	override(&p.Expects, r.Predicates.Expects)
	override(&p.Returns, r.Predicates.Returns)
	override(&p.First, r.Predicates.First)
	override(&p.Rest, r.Predicates.Rest)
	override(&p.Nil, r.Predicates.Nil)
	return p
}

// Validate checks the configuration for values the application cannot run
// with.
func (c *Config) Validate() error {
	if c.Resolver.TopK < 1 {
		return fmt.Errorf("resolver.top_k must be at least 1, got %d", c.Resolver.TopK)
	}
	if c.Resolver.MaxDepth < 1 {
		return fmt.Errorf("resolver.max_depth must be at least 1, got %d", c.Resolver.MaxDepth)
	}
	switch c.Logger.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got '%s'", c.Logger.Format)
	}
	return nil
}

// SetDefaults registers default values so the app can run with a minimal
// config.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "maproute")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("resolver.top_k", 5)
	v.SetDefault("resolver.max_depth", 64)
}

// Load unmarshals the configuration from viper, validates it and stores it
// globally.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	Set(&cfg)
	return &cfg, nil
}

// Set stores the configuration globally.
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// Get returns the loaded configuration instance.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}
