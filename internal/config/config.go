package config

type Config interface {
	EnvConfig
	AuthConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

// AuthConfig describes how the process reaches the backend auth contract.
type AuthConfig interface {
	GetAPIBaseURL() string
	GetAuthMode() string // "http" (default) or "oauth2"
	GetOAuthIssuer() string
	GetOAuthClientID() string
}

// StorageConfig selects the session persistence backend.
type StorageConfig interface {
	GetStorageBackend() string // "file" (default) or "sqlite"
	GetStoragePath() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
