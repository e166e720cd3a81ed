package config

import "time"

// ModelConfig represents the configuration for the classification model artifact
type ModelConfig struct {
	Path string
}

// StorageConfig represents the configuration for the email store
type StorageConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// ServerConfig represents the configuration for the HTTP API server
type ServerConfig struct {
	ListenAddress   string
	ShutdownTimeout time.Duration
}

// GetModel returns the model configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Path: c.GetString("model.path"),
	}
}

// GetStorage returns the storage configuration
func (c *Config) GetStorage() StorageConfig {
	return StorageConfig{
		Type:       c.GetString("storage.type"),
		SQLitePath: c.GetString("storage.sqlite_path"),
		MySQLDSN:   c.GetString("storage.mysql_dsn"),
	}
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	timeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		ShutdownTimeout: timeout,
	}
}
