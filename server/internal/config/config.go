package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"sigs.k8s.io/yaml"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	JWT      JWTConfig      `json:"jwt"`
	Crypto   CryptoConfig   `json:"crypto"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string   `json:"secret"`
	TTL    Duration `json:"ttl"`
}

// Duration accepts Go duration strings such as "24h" in config files
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"24h\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// CryptoConfig holds defaults for the encryption endpoints
type CryptoConfig struct {
	DefaultMode      string `json:"defaultMode"`
	PBKDF2Iterations int    `json:"pbkdf2Iterations"`
}

// ConfigFileEnv names the environment variable pointing at an optional YAML file
const ConfigFileEnv = "SEALBOX_CONFIG"

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "sealbox",
			SSLMode:  "disable",
		},
		JWT: JWTConfig{
			Secret: "your-secret-key-change-in-production",
			TTL:    Duration{24 * time.Hour},
		},
		Crypto: CryptoConfig{
			DefaultMode:      "CBC",
			PBKDF2Iterations: 100000,
		},
	}
}

// Load builds the configuration from the defaults, then the YAML file named
// by SEALBOX_CONFIG (if set), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("DB_NAME", c.Database.Database)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	if ttl, err := time.ParseDuration(getEnv("JWT_TTL", "")); err == nil {
		c.JWT.TTL = Duration{ttl}
	}

	c.Crypto.DefaultMode = getEnv("CRYPTO_DEFAULT_MODE", c.Crypto.DefaultMode)
	c.Crypto.PBKDF2Iterations = getEnvInt("CRYPTO_PBKDF2_ITERATIONS", c.Crypto.PBKDF2Iterations)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`
Server: %s:%d
Database: postgres://%s@%s:%d/%s
JWT Secret: *** (ttl %v)
Default mode: %s, PBKDF2 iterations: %d`,
		c.Server.Host, c.Server.Port,
		c.Database.User, c.Database.Host, c.Database.Port, c.Database.Database,
		c.JWT.TTL.Duration,
		c.Crypto.DefaultMode, c.Crypto.PBKDF2Iterations,
	)
}
