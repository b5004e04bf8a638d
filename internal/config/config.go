package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Catalog sources
const (
	CatalogSourceStatic   = "static"
	CatalogSourcePostgres = "postgres"
)

// Config holds all configuration for the restaurant site
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ServerConfig holds HTTP settings for the site service
type ServerConfig struct {
	Port            int      `yaml:"port"`
	SessionCapacity int      `yaml:"session_capacity"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// TelegramConfig holds the staff chat that receives confirmations.
// An empty token disables the Telegram sink.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// CatalogConfig selects where the menu is read from at startup
type CatalogConfig struct {
	Source string `yaml:"source"`
}

// Default returns the configuration used when a key is absent
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "restaurant_user",
			Database: "restaurant_db",
		},
		RabbitMQ: RabbitMQConfig{
			Host: "localhost",
			Port: 5672,
			User: "guest",
		},
		Server: ServerConfig{
			Port:            3000,
			SessionCapacity: 1024,
			AllowedOrigins:  []string{"*"},
		},
		Catalog: CatalogConfig{
			Source: CatalogSourceStatic,
		},
	}
}

// Load reads configuration from a YAML file, then applies environment
// overrides. A .env file in the working directory is loaded first if present.
func Load(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := Default()
	scanner := bufio.NewScanner(file)

	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Check for section headers
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			currentSection = strings.TrimSuffix(line, ":")
			continue
		}

		// Parse key-value pairs
		if strings.Contains(line, ":") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

			if err := config.setValue(currentSection, key, value); err != nil {
				return nil, fmt.Errorf("failed to set config value %s.%s: %w", currentSection, key, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	_ = godotenv.Load()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceStatic, CatalogSourcePostgres:
	default:
		return fmt.Errorf("catalog.source must be one of: %s, %s", CatalogSourceStatic, CatalogSourcePostgres)
	}
	if c.Server.SessionCapacity <= 0 {
		return fmt.Errorf("server.session_capacity must be positive")
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when telegram.token is set")
	}
	return nil
}

// setValue sets a configuration value based on section and key
func (c *Config) setValue(section, key, value string) error {
	switch section {
	case "database":
		return c.setDatabaseValue(key, value)
	case "rabbitmq":
		return c.setRabbitMQValue(key, value)
	case "server":
		return c.setServerValue(key, value)
	case "telegram":
		return c.setTelegramValue(key, value)
	case "catalog":
		return c.setCatalogValue(key, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

// setDatabaseValue sets database configuration values
func (c *Config) setDatabaseValue(key, value string) error {
	switch key {
	case "host":
		c.Database.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.Database.Port = port
	case "user":
		c.Database.User = value
	case "password":
		c.Database.Password = value
	case "database":
		c.Database.Database = value
	default:
		return fmt.Errorf("unknown database key: %s", key)
	}
	return nil
}

// setRabbitMQValue sets RabbitMQ configuration values
func (c *Config) setRabbitMQValue(key, value string) error {
	switch key {
	case "enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid enabled value: %w", err)
		}
		c.RabbitMQ.Enabled = enabled
	case "host":
		c.RabbitMQ.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.RabbitMQ.Port = port
	case "user":
		c.RabbitMQ.User = value
	case "password":
		c.RabbitMQ.Password = value
	default:
		return fmt.Errorf("unknown rabbitmq key: %s", key)
	}
	return nil
}

func (c *Config) setServerValue(key, value string) error {
	switch key {
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.Server.Port = port
	case "session_capacity":
		capacity, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid session_capacity value: %w", err)
		}
		c.Server.SessionCapacity = capacity
	case "allowed_origins":
		c.Server.AllowedOrigins = splitList(value)
	default:
		return fmt.Errorf("unknown server key: %s", key)
	}
	return nil
}

func (c *Config) setTelegramValue(key, value string) error {
	switch key {
	case "token":
		c.Telegram.Token = value
	case "chat_id":
		if value == "" {
			c.Telegram.ChatID = 0
			return nil
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat_id value: %w", err)
		}
		c.Telegram.ChatID = id
	default:
		return fmt.Errorf("unknown telegram key: %s", key)
	}
	return nil
}

func (c *Config) setCatalogValue(key, value string) error {
	switch key {
	case "source":
		c.Catalog.Source = value
	default:
		return fmt.Errorf("unknown catalog key: %s", key)
	}
	return nil
}

// envOverrides maps environment variables onto section keys
var envOverrides = []struct {
	env, section, key string
}{
	{"DB_HOST", "database", "host"},
	{"DB_PORT", "database", "port"},
	{"DB_USER", "database", "user"},
	{"DB_PASSWORD", "database", "password"},
	{"DB_NAME", "database", "database"},
	{"RABBITMQ_ENABLED", "rabbitmq", "enabled"},
	{"RABBITMQ_HOST", "rabbitmq", "host"},
	{"RABBITMQ_PORT", "rabbitmq", "port"},
	{"RABBITMQ_USER", "rabbitmq", "user"},
	{"RABBITMQ_PASSWORD", "rabbitmq", "password"},
	{"SITE_PORT", "server", "port"},
	{"SITE_SESSION_CAPACITY", "server", "session_capacity"},
	{"SITE_ALLOWED_ORIGINS", "server", "allowed_origins"},
	{"TELEGRAM_TOKEN", "telegram", "token"},
	{"TELEGRAM_CHAT_ID", "telegram", "chat_id"},
	{"CATALOG_SOURCE", "catalog", "source"},
}

func (c *Config) applyEnv() error {
	for _, o := range envOverrides {
		v, ok := os.LookupEnv(o.env)
		if !ok || v == "" {
			continue
		}
		if err := c.setValue(o.section, o.key, v); err != nil {
			return fmt.Errorf("failed to apply %s: %w", o.env, err)
		}
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
