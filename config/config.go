// Package config loads service configuration.
//
// Precedence, lowest first: built-in defaults, the YAML file named by CONFIG_FILE
// (default config.yaml, optional), then environment variables. Outside production a
// .env file is loaded first and overrides the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yaml"

// Config holds everything the service needs at startup
type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

// DatabaseConfig is either a full URL or the individual connection parts
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// Defaults returns the configuration used when nothing else is set
func Defaults() Config {
	return Config{
		Env:    "development",
		Server: ServerConfig{Port: "8080"},
		Log:    LogConfig{Mode: "development"},
		Database: DatabaseConfig{
			Port:    "5432",
			SSLMode: "disable",
		},
	}
}

// Load loads .env (outside production), the optional YAML file, then env overrides.
// The returned notes describe what was loaded; the logger does not exist yet at this point.
func Load() (Config, []string, error) {
	var notes []string
	if os.Getenv("ENV") != "production" {
		// Overload so .env values win over the shell environment during development
		if err := godotenv.Overload(".env"); err != nil {
			notes = append(notes, "no .env file loaded, using process environment")
		} else {
			notes = append(notes, "loaded environment from .env")
		}
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = defaultConfigFile
	}
	cfg, found, err := LoadFile(path)
	if err != nil {
		return Config{}, notes, err
	}
	if found {
		notes = append(notes, "loaded config file "+path)
	}

	applyEnv(&cfg)
	return cfg, notes, nil
}

// LoadFile reads a YAML config on top of Defaults. A missing file is not an error.
func LoadFile(path string) (Config, bool, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, false, nil
	}
	if err != nil {
		return Config{}, false, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, true, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Env, "ENV")
	setFromEnv(&cfg.Server.Port, "PORT")
	setFromEnv(&cfg.Log.Mode, "LOG_MODE")
	setFromEnv(&cfg.Database.URL, "DATABASE_URL")
	setFromEnv(&cfg.Database.Host, "DB_HOST")
	setFromEnv(&cfg.Database.Port, "DB_PORT")
	setFromEnv(&cfg.Database.User, "DB_USER")
	setFromEnv(&cfg.Database.Password, "DB_PASSWORD")
	setFromEnv(&cfg.Database.Name, "DB_NAME")
	setFromEnv(&cfg.Database.SSLMode, "DB_SSLMODE")

	// PORT from some hosts comes as ":8080"
	cfg.Server.Port = strings.TrimPrefix(cfg.Server.Port, ":")
}

func setFromEnv(dst *string, key string) {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		*dst = strings.TrimSpace(val)
	}
}

// Addr is the listen address for the HTTP server
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Server.Port
}

// IsProduction reports whether the service runs in production mode
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DSN builds the database connection string. DATABASE_URL wins over the parts.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	port := d.Port
	if port == "" {
		port = "5432"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid database port %q", port)
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, port, d.User, d.Password, d.Name, sslmode), nil
}
