package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileValues mirrors the optional YAML config file. Any field left empty
// falls back to the environment variable, then to the built-in default.
type fileValues struct {
	Port          string `yaml:"port"`
	AppName       string `yaml:"app_name"`
	Env           string `yaml:"env"`
	APIBaseURL    string `yaml:"api_base_url"`
	AuthMode      string `yaml:"auth_mode"`
	OAuthIssuer   string `yaml:"oauth_issuer"`
	OAuthClientID string `yaml:"oauth_client_id"`
	Storage       string `yaml:"storage"`
	StoragePath   string `yaml:"storage_path"`
}

type fileConfig struct {
	EnvVars
	values fileValues
}

var _ Config = fileConfig{}

// FromFile loads configuration from a YAML file layered over the
// environment. A missing file is not an error; a malformed one is.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config.FromFile: %w", err)
	}

	var values fileValues
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("config.FromFile parse %q: %w", path, err)
	}
	return fileConfig{values: values}, nil
}

func (c fileConfig) GetPort() string {
	if c.values.Port != "" {
		port := c.values.Port
		if port[0] != ':' {
			port = fmt.Sprintf(":%s", port)
		}
		return port
	}
	return c.EnvVars.GetPort()
}

func (c fileConfig) GetAppName() string {
	if c.values.AppName != "" {
		return c.values.AppName
	}
	return c.EnvVars.GetAppName()
}

func (c fileConfig) GetEnv() string {
	if c.values.Env != "" {
		return c.values.Env
	}
	return c.EnvVars.GetEnv()
}

func (c fileConfig) GetAPIBaseURL() string {
	if c.values.APIBaseURL != "" {
		return c.values.APIBaseURL
	}
	return c.EnvVars.GetAPIBaseURL()
}

func (c fileConfig) GetAuthMode() string {
	if c.values.AuthMode != "" {
		return c.values.AuthMode
	}
	return c.EnvVars.GetAuthMode()
}

func (c fileConfig) GetOAuthIssuer() string {
	if c.values.OAuthIssuer != "" {
		return c.values.OAuthIssuer
	}
	return c.EnvVars.GetOAuthIssuer()
}

func (c fileConfig) GetOAuthClientID() string {
	if c.values.OAuthClientID != "" {
		return c.values.OAuthClientID
	}
	return c.EnvVars.GetOAuthClientID()
}

func (c fileConfig) GetStorageBackend() string {
	if c.values.Storage != "" {
		return c.values.Storage
	}
	return c.EnvVars.GetStorageBackend()
}

func (c fileConfig) GetStoragePath() string {
	if c.values.StoragePath != "" {
		return c.values.StoragePath
	}
	return c.EnvVars.GetStoragePath()
}
