package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EdoDBConfig campus EDO database settings
type EdoDBConfig struct {
	Driver       string `yaml:"driver"` // oracle | pgx
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Service      string `yaml:"service"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Fake         bool   `yaml:"fake"`
	FakeDSN      string `yaml:"fake_dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	SlowQueryMS  int    `yaml:"slow_query_ms"`
}

// TermsConfig term definition source
type TermsConfig struct {
	UseTermDefinitionsFile bool   `yaml:"use_term_definitions_file"`
	DefinitionsPath        string `yaml:"definitions_path"`
	FakeNow                string `yaml:"fake_now"`
}

// FeaturesConfig feature flags
type FeaturesConfig struct {
	HubTermAPI bool `yaml:"hub_term_api"`
}

// RedisConfig Redis settings, an empty Addr disables the reference cache
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// OtelConfig tracing settings
type OtelConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
}

// LogConfig logger settings
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the full application configuration.
type Config struct {
	EdoDB    EdoDBConfig    `yaml:"edodb"`
	Terms    TermsConfig    `yaml:"terms"`
	Features FeaturesConfig `yaml:"features"`
	Redis    RedisConfig    `yaml:"redis"`
	Otel     OtelConfig     `yaml:"otel"`
	Log      LogConfig      `yaml:"log"`
}

// Defaults returns a Config with every optional field populated.
func Defaults() Config {
	return Config{
		EdoDB: EdoDBConfig{
			Driver:       "oracle",
			Port:         1521,
			MaxOpenConns: 10,
			SlowQueryMS:  500,
		},
		Terms: TermsConfig{
			UseTermDefinitionsFile: true,
			DefinitionsPath:        "config/term_definitions.yaml",
		},
		Redis: RedisConfig{TTLSeconds: 3600},
		Otel:  OtelConfig{ServiceName: "edoquery"},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads the layered configuration for env from configDir and decodes it
// on top of Defaults. Environment variables win over every file.
func Load(env, configDir string) (*Config, error) {
	merged, err := LoadConfig(env, configDir)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(merged)
	if err != nil {
		return nil, err
	}
	OverrideEdoDBFromEnv(&cfg.EdoDB)
	OverrideRedisFromEnv(&cfg.Redis)
	return cfg, nil
}

// Decode converts a merged map into a typed Config.
func Decode(merged map[string]interface{}) (*Config, error) {
	raw, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged config: %w", err)
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.EdoDB.Driver = strings.ToLower(strings.TrimSpace(cfg.EdoDB.Driver))
	return &cfg, nil
}

// OverrideEdoDBFromEnv applies EDODB_* environment variables.
func OverrideEdoDBFromEnv(cfg *EdoDBConfig) {
	if host := os.Getenv("EDODB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("EDODB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if service := os.Getenv("EDODB_SERVICE"); service != "" {
		cfg.Service = service
	}
	if user := os.Getenv("EDODB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("EDODB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if fake := os.Getenv("EDODB_FAKE"); fake != "" {
		if b, err := strconv.ParseBool(fake); err == nil {
			cfg.Fake = b
		}
	}
}

// OverrideRedisFromEnv applies REDIS_* environment variables.
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}
