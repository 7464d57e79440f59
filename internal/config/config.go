package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	APNS     APNSConfig     `yaml:"apns"`
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds S3 blob storage configuration
type AWSConfig struct {
	Region     string `yaml:"region"`
	S3Bucket   string `yaml:"s3_bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"`   // custom endpoint for S3-compatible storage
	PublicURL  string `yaml:"public_url"` // base URL blobs are served from
	DisableSSL bool   `yaml:"disable_ssl"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// AuthConfig holds social login configuration
type AuthConfig struct {
	Providers []OIDCProviderConfig `yaml:"providers"`
}

// OIDCProviderConfig configures ID-token verification for one provider
type OIDCProviderConfig struct {
	Name     string `yaml:"name"` // "google" or "facebook"
	Issuer   string `yaml:"issuer"`
	ClientID string `yaml:"client_id"`
}

// APNSConfig holds Apple push notification configuration
type APNSConfig struct {
	Enabled bool   `yaml:"enabled"`
	KeyFile string `yaml:"key_file"` // .p8 auth key
	KeyID   string `yaml:"key_id"`
	TeamID  string `yaml:"team_id"`
	Topic   string `yaml:"topic"`
	Sandbox bool   `yaml:"sandbox"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	BaseURL    string `yaml:"base_url"`    // public URL events are joined from
	QREndpoint string `yaml:"qr_endpoint"` // QR image rendering endpoint
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.App.QREndpoint == "" {
		cfg.App.QREndpoint = "https://api.qrserver.com/v1/create-qr-code/"
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
