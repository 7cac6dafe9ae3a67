package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	baseURLVar    = "BASE_URL"
	dataDirVar    = "DATA_DIR"
	redisURLVar   = "REDIS_URL"
	serverDescVar = "SERVER_DESCRIPTION"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetServerDescription() string
	GetBaseURL() string
	GetDataFolder() string
	GetRedisURL() string
	GetEnv() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Consent Bridge")
}

// GetServerDescription is shown on the consent dialog under the server name
func (EnvVars) GetServerDescription() string {
	return GetEnv(serverDescVar, "Authorization gateway for MCP clients")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(dataDirVar, "./data")
}

// GetRedisURL returns the redis connection URL backing the state store.
// Empty means the in-memory store is used instead.
func (EnvVars) GetRedisURL() string {
	return GetEnv(redisURLVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the externally visible base URL of the bridge
// (e.g., "https://connect.example.com"). Used to build the upstream
// redirect URI.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
