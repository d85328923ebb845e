package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config application configuration loaded from yaml + environment
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port            int    `yaml:"port"`
	Env             string `yaml:"env"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig MySQL settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// RedisConfig Redis settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig token settings
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessMinutes  int    `yaml:"access_minutes"`
	RefreshMinutes int    `yaml:"refresh_minutes"`
}

// CORSConfig allowed origins, comma-separated
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

// LoadDotEnv loads env files for local development, most specific first:
// .env.local, then .env.<APP_ENV> when APP_ENV is set, then .env.
// godotenv.Load never overwrites variables that are already set, so the OS
// environment wins over every file and earlier files win over later ones.
// Returns the files actually loaded.
func LoadDotEnv() []string {
	candidates := []string{".env.local"}
	if env := os.Getenv("APP_ENV"); env != "" {
		candidates = append(candidates, ".env."+env)
	}
	candidates = append(candidates, ".env")

	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// Load reads the yaml config file and applies environment overrides.
// Environment variables always win over file values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured (set JWT_SECRET)")
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Env:             "local",
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    3306,
			User:    "fitlink",
			Name:    "fitlink",
			Charset: "utf8mb4",
		},
		Redis: RedisConfig{
			Host:     "127.0.0.1",
			Port:     6379,
			DB:       0,
			PoolSize: 10,
		},
		JWT: JWTConfig{
			AccessMinutes:  15,
			RefreshMinutes: 1440,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Env, "APP_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.CORS.AllowedOrigins, "CORS_ALLOWED_ORIGINS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
