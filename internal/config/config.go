package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// MySQL configuration (accounts + persisted chat log)
	Database DatabaseConfig `json:"database"`

	// MongoDB configuration (GridFS blob store)
	MongoDB MongoDBConfig `json:"mongodb"`

	// Relay tuning
	Relay RelayConfig `json:"relay"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host             string `json:"host"`
	RelayPort        string `json:"relay_port"`
	MediaServicePort string `json:"media_service_port"`
	ReadTimeout      int    `json:"read_timeout"`
	WriteTimeout     int    `json:"write_timeout"`
}

// DatabaseConfig contains MySQL connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// MongoDBConfig contains blob store connection configuration
type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// RelayConfig contains websocket relay tuning knobs
type RelayConfig struct {
	SendBufferSize  int `json:"send_buffer_size"`  // per-connection outbound queue
	MaxPayloadBytes int `json:"max_payload_bytes"` // cap on decoded image/audio blobs
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			RelayPort:        getEnvOrDefault("RELAY_PORT", "5000"),
			MediaServicePort: getEnvOrDefault("MEDIA_PORT", "8080"),
			ReadTimeout:      getEnvIntOrDefault("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:     getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "relaychat"),
			Password:     getEnvOrDefault("DB_PASSWORD", "relaychat123"),
			DatabaseName: getEnvOrDefault("DB_NAME", "relaychat"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USER", ""),
			Password: getEnvOrDefault("MONGO_PASSWORD", ""),
			Database: getEnvOrDefault("MONGO_DB", "relaychat"),
		},
		Relay: RelayConfig{
			SendBufferSize:  getEnvIntOrDefault("RELAY_SEND_BUFFER", 256),
			MaxPayloadBytes: getEnvIntOrDefault("RELAY_MAX_PAYLOAD_BYTES", 8<<20),
		},
	}
}

// DSN builds the MySQL connection string from the database section
func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

// GetMongoURI builds the MongoDB connection string from the mongodb section
func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s",
			cfg.MongoDB.Username,
			cfg.MongoDB.Password,
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s", cfg.MongoDB.Host, cfg.MongoDB.Port)
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
