package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	apiBaseURLVar = "API_BASE_URL"
	authModeVar   = "AUTH_MODE"
	oauthIssuer   = "OAUTH_ISSUER"
	oauthClientID = "OAUTH_CLIENT_ID"
	storageVar    = "SESSION_STORAGE"
	storagePath   = "SESSION_STORAGE_PATH"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Dashboard")
}

func (EnvVars) GetEnv() string {
	return GetEnv("ENV", "development")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8000")
}

func (EnvVars) GetAuthMode() string {
	return GetEnv(authModeVar, "http")
}

func (EnvVars) GetOAuthIssuer() string {
	return GetEnv(oauthIssuer, "")
}

func (EnvVars) GetOAuthClientID() string {
	return GetEnv(oauthClientID, "")
}

func (EnvVars) GetStorageBackend() string {
	return GetEnv(storageVar, "file")
}

func (EnvVars) GetStoragePath() string {
	return GetEnv(storagePath, "session.json")
}

func GetEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
