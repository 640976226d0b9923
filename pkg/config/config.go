// Package config provides configuration management for billed.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Remote  RemoteConfig
	Debug   bool
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Port         string
	Locale       string
	FetchTimeout time.Duration
	// APIClients maps client IDs to secrets for the token endpoint.
	// When empty the bill API is served without authentication.
	APIClients map[string]string
}

// StorageConfig represents local storage configuration.
type StorageConfig struct {
	DataDir     string
	StorePath   string
	HistoryPath string
}

// RemoteConfig points the bills page at a remote bill API instead of the local store.
type RemoteConfig struct {
	URL          string
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Enabled reports whether a remote bill API is configured.
func (r RemoteConfig) Enabled() bool {
	return r.URL != ""
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	timeout, err := parseDurationEnv("BILLED_FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	clients, err := parseClients(os.Getenv("BILLED_API_CLIENTS"))
	if err != nil {
		return nil, err
	}

	remoteURL := os.Getenv("BILLED_API_URL")
	config := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("BILLED_PORT", "8080"),
			Locale:       getEnvOrDefault("BILLED_LOCALE", "fr"),
			FetchTimeout: timeout,
			APIClients:   clients,
		},
		Storage: StorageConfig{
			DataDir:     getEnvOrDefault("BILLED_DATA_DIR", "./data"),
			StorePath:   os.Getenv("BILLED_STORE_PATH"),
			HistoryPath: os.Getenv("BILLED_HISTORY_PATH"),
		},
		Remote: RemoteConfig{
			URL:          remoteURL,
			ClientID:     os.Getenv("BILLED_API_CLIENT_ID"),
			ClientSecret: os.Getenv("BILLED_API_CLIENT_SECRET"),
			TokenURL:     getEnvOrDefault("BILLED_API_TOKEN_URL", defaultTokenURL(remoteURL)),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate checks that the named settings are set.
// Names are dot-separated, e.g. "remote.url" or "storage.dataDir".
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, name := range required {
		var value string
		switch name {
		case "server.port":
			value = c.Server.Port
		case "server.locale":
			value = c.Server.Locale
		case "storage.dataDir":
			value = c.Storage.DataDir
		case "remote.url":
			value = c.Remote.URL
		case "remote.clientId":
			value = c.Remote.ClientID
		case "remote.clientSecret":
			value = c.Remote.ClientSecret
		case "remote.tokenUrl":
			value = c.Remote.TokenURL
		default:
			return fmt.Errorf("unknown configuration key %q", name)
		}

		if value == "" {
			missing = append(missing, name)
		}
	}

	if c.Server.FetchTimeout <= 0 {
		return fmt.Errorf("BILLED_FETCH_TIMEOUT must be positive, got %s", c.Server.FetchTimeout)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationEnv parses a duration from an environment variable.
// A bare integer is read as seconds.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}
	return d, nil
}

// parseClients parses "id:secret,id2:secret2".
func parseClients(value string) (map[string]string, error) {
	clients := make(map[string]string)
	if value == "" {
		return clients, nil
	}

	for _, pair := range strings.Split(value, ",") {
		id, secret, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || id == "" || secret == "" {
			return nil, fmt.Errorf("invalid BILLED_API_CLIENTS entry %q, expected id:secret", pair)
		}
		clients[id] = secret
	}
	return clients, nil
}

func defaultTokenURL(apiURL string) string {
	if apiURL == "" {
		return ""
	}
	return strings.TrimRight(apiURL, "/") + "/oauth/token"
}
