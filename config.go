package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is the full service configuration, loaded from config.yaml with
// environment overrides for secrets and deployment settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Blob    BlobConfig    `yaml:"blob"`
	Storage StorageConfig `yaml:"storage"`
	// LogLevel is one of the go-logging level names (DEBUG, INFO, ...).
	LogLevel string `yaml:"log_level"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// BaseURL is the externally visible address share links are built from.
	// Defaults to http://localhost:<port>.
	BaseURL string `yaml:"base_url"`
}

type BlobConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type StorageConfig struct {
	TempDir string `yaml:"temp_dir"`
}

// LoadConfig reads config.yaml (or CONFIG_PATH) and applies environment
// overrides. A missing or broken config file falls back to defaults.
func LoadConfig() *Config {
	// .env is optional, same as the config file.
	_ = godotenv.Load()

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	config := defaultConfig()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			log.Printf("Failed to parse config file, using defaults: %v", err)
			config = defaultConfig()
		}
	}

	if v := os.Getenv("BLOB_ACCOUNT"); v != "" {
		config.Blob.Bucket = v
	}
	if v := os.Getenv("BLOB_ACCESS_KEY"); v != "" {
		config.Blob.AccessKey = v
	}
	if v := os.Getenv("BLOB_ACCESS_SECRET"); v != "" {
		config.Blob.SecretKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		config.Server.Port = v
	}
	if config.Server.BaseURL == "" {
		config.Server.BaseURL = "http://localhost:" + config.Server.Port
	}

	return config
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "5000",
		},
		Blob: BlobConfig{
			Region: "us-east-1",
		},
		Storage: StorageConfig{
			TempDir: "tmp",
		},
		LogLevel: "INFO",
	}
}
