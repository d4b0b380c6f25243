package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for dealsight-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Reporting database (SQL Server)
	MSSQL MSSQLConfig `yaml:"mssql"`

	// Language model endpoint
	LLM LLMConfig `yaml:"llm"`

	// Optional Redis tier for the schema snapshot cache
	Redis RedisConfig `yaml:"redis"`

	// Schema registry refresh policy
	Schema SchemaConfig `yaml:"schema"`
}

// MSSQLConfig holds SQL Server connection configuration.
type MSSQLConfig struct {
	Host                   string `yaml:"host" env:"MSSQL_HOST" env-default:"localhost"`
	Port                   int    `yaml:"port" env:"MSSQL_PORT" env-default:"1433"`
	User                   string `yaml:"user" env:"MSSQL_USER" env-default:"sa"`
	Password               string `yaml:"-" env:"MSSQL_PASSWORD"` // Secret - not in YAML
	Database               string `yaml:"database" env:"MSSQL_DATABASE" env-default:"DealerReporting"`
	Encrypt                bool   `yaml:"encrypt" env:"MSSQL_ENCRYPT" env-default:"false"`
	TrustServerCertificate bool   `yaml:"trust_server_certificate" env:"MSSQL_TRUST_SERVER_CERT" env-default:"true"`
	ConnectionTimeout      int    `yaml:"connection_timeout" env:"MSSQL_CONNECTION_TIMEOUT" env-default:"30"`
	MaxOpenConns           int    `yaml:"max_open_conns" env:"MSSQL_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns           int    `yaml:"max_idle_conns" env:"MSSQL_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" env:"MSSQL_CONN_MAX_LIFETIME_MINUTES" env-default:"30"`
}

// LLMConfig holds language model endpoint configuration.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model          string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	APIKey         string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"60"`
	MaxTokens      int    `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
}

// RedisConfig holds optional Redis cache configuration.
// Redis is disabled when Host is empty.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// IsConfigured returns true if a Redis host is set.
func (c *RedisConfig) IsConfigured() bool {
	return c.Host != ""
}

// SchemaConfig holds schema registry cache settings.
type SchemaConfig struct {
	// CacheTTLMinutes is how long a schema snapshot is served before a refresh.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" env:"SCHEMA_CACHE_TTL_MINUTES" env-default:"15"`
	// LiveRefresh enables refreshing the snapshot from INFORMATION_SCHEMA.
	// When false the compiled-in static schema is always used.
	LiveRefresh bool `yaml:"live_refresh" env:"SCHEMA_LIVE_REFRESH" env-default:"false"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// When config.yaml does not exist, configuration comes from the environment alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	return cfg, nil
}

// ConnectionString returns a sqlserver:// connection URL for go-mssqldb.
func (c *MSSQLConfig) ConnectionString() string {
	query := url.Values{}
	query.Add("database", c.Database)

	if c.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if c.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if c.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", c.ConnectionTimeout))
	}

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		query.Encode(),
	)
}
