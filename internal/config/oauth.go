package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// OAuthClientConfig is the "installed app" client downloaded from the Google Cloud console.
// Only Google Sheets roster import and Gmail notifications need it.
type OAuthClientConfig struct {
	Installed OAuthInstalled `json:"installed"`
}

// OAuthInstalled holds the fields google.ConfigFromJSON reads
type OAuthInstalled struct {
	ClientID     string   `json:"client_id" yaml:"client_id" validate:"required"`
	ProjectID    string   `json:"project_id,omitempty" yaml:"project_id"`
	AuthURI      string   `json:"auth_uri" yaml:"auth_uri" validate:"required,url"`
	TokenURI     string   `json:"token_uri" yaml:"token_uri" validate:"required,url"`
	ClientSecret string   `json:"client_secret" yaml:"client_secret" validate:"required"`
	RedirectURIs []string `json:"redirect_uris" yaml:"redirect_uris" validate:"required,min=1,dive,uri"`
}

// LoadOAuthClientWithEnv loads oauthClient.<env>.json, or oauthClient.json when env is empty
func LoadOAuthClientWithEnv(envName string) (*OAuthClientConfig, error) {
	fileName := "oauthClient.json"
	if envName != "" {
		fileName = "oauthClient." + envName + ".json"
	}

	path, err := findFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client file: %w", err)
	}

	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath loads and validates the OAuth client configuration from a specific path
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var oauthCfg OAuthClientConfig
	if err := json.Unmarshal(data, &oauthCfg); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file: %w", err)
	}

	if err := validate.Struct(&oauthCfg); err != nil {
		return nil, fmt.Errorf("oauth client validation failed: %w", err)
	}

	return &oauthCfg, nil
}
