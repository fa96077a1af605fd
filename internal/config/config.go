package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Goals     GoalsConfig     `yaml:"goals"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey    string        `yaml:"api_key"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// GoalsConfig sets the default weekly targets seeded for new users.
type GoalsConfig struct {
	Strength  int `yaml:"strength"`
	Cardio    int `yaml:"cardio"`
	Recovery  int `yaml:"recovery"`
	StepsGoal int `yaml:"steps_goal"`
}

// BridgeConfig selects where widget snapshots are written.
type BridgeConfig struct {
	Backend         string        `yaml:"backend"` // "sqlite" or "redis"
	Path            string        `yaml:"path"`    // sqlite: directory for the db file
	Addr            string        `yaml:"addr"`    // redis: host:port
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix STRIDETRACK_ and underscore-separated paths:
//
//	STRIDETRACK_SERVER_HOST, STRIDETRACK_SERVER_PORT,
//	STRIDETRACK_DB_HOST, STRIDETRACK_DB_PORT, STRIDETRACK_DB_NAME,
//	STRIDETRACK_DB_USER, STRIDETRACK_DB_PASSWORD, STRIDETRACK_DB_SSLMODE,
//	STRIDETRACK_AUTH_API_KEY, STRIDETRACK_AUTH_JWT_SECRET,
//	STRIDETRACK_BRIDGE_BACKEND, STRIDETRACK_BRIDGE_PATH, STRIDETRACK_BRIDGE_ADDR,
//	STRIDETRACK_BRIDGE_PASSWORD
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STRIDETRACK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("STRIDETRACK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STRIDETRACK_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("STRIDETRACK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("STRIDETRACK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("STRIDETRACK_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("STRIDETRACK_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("STRIDETRACK_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("STRIDETRACK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("STRIDETRACK_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("STRIDETRACK_BRIDGE_BACKEND"); v != "" {
		cfg.Bridge.Backend = v
	}
	if v := os.Getenv("STRIDETRACK_BRIDGE_PATH"); v != "" {
		cfg.Bridge.Path = v
	}
	if v := os.Getenv("STRIDETRACK_BRIDGE_ADDR"); v != "" {
		cfg.Bridge.Addr = v
	}
	if v := os.Getenv("STRIDETRACK_BRIDGE_PASSWORD"); v != "" {
		cfg.Bridge.Password = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Goals.Strength == 0 {
		cfg.Goals.Strength = 4
	}
	if cfg.Goals.Cardio == 0 {
		cfg.Goals.Cardio = 3
	}
	if cfg.Goals.Recovery == 0 {
		cfg.Goals.Recovery = 2
	}
	if cfg.Goals.StepsGoal == 0 {
		cfg.Goals.StepsGoal = 10000
	}
	if cfg.Bridge.Backend == "" {
		cfg.Bridge.Backend = "sqlite"
	}
	if cfg.Bridge.Path == "" {
		cfg.Bridge.Path = "data"
	}
	if cfg.Bridge.RefreshInterval == 0 {
		cfg.Bridge.RefreshInterval = 30 * time.Minute
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	switch c.Bridge.Backend {
	case "sqlite":
		if c.Bridge.Path == "" {
			return fmt.Errorf("bridge.path is required for the sqlite backend")
		}
	case "redis":
		if c.Bridge.Addr == "" {
			return fmt.Errorf("bridge.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("bridge.backend must be sqlite or redis, got %q", c.Bridge.Backend)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
