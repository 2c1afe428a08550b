package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const credentialsVersion = 1

// fileMutex serialises credential writes within the process
var fileMutex sync.Mutex

// Credentials is the persisted login session.
type Credentials struct {
	Version     int       `yaml:"version"`
	APIURL      string    `yaml:"api_url,omitempty"` // backend that issued the token
	Email       string    `yaml:"email,omitempty"`
	AccessToken string    `yaml:"access_token,omitempty"`
	SavedAt     time.Time `yaml:"saved_at,omitempty"`
}

// LoggedIn reports whether a token is present
func (c *Credentials) LoggedIn() bool {
	return c != nil && c.AccessToken != ""
}

// TokenFor returns the token when it was issued by apiURL, else "".
// Tokens saved without a URL are sent everywhere.
func (c *Credentials) TokenFor(apiURL string) string {
	if !c.LoggedIn() {
		return ""
	}
	if c.APIURL != "" && c.APIURL != apiURL {
		return ""
	}
	return c.AccessToken
}

// LoadCredentials reads credentials from the default location.
func LoadCredentials() (*Credentials, error) {
	path, err := GetCredentialsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials path: %w", err)
	}
	return LoadCredentialsFrom(path)
}

// LoadCredentialsFrom reads credentials from path. A missing file yields
// empty credentials.
func LoadCredentialsFrom(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Credentials{Version: credentialsVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if creds.Version != credentialsVersion {
		return nil, fmt.Errorf("unsupported credentials version: %d (expected %d)", creds.Version, credentialsVersion)
	}
	return &creds, nil
}

// Save writes credentials to the default location
func (c *Credentials) Save() error {
	path, err := GetCredentialsPath()
	if err != nil {
		return fmt.Errorf("failed to get credentials path: %w", err)
	}
	return c.SaveTo(path)
}

// SaveTo writes credentials to path atomically with user-only permissions.
func (c *Credentials) SaveTo(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	c.Version = credentialsVersion
	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now().UTC()
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	header := []byte(`# autobuilder credentials
# Written by "autobuilder login". Delete with "autobuilder logout".

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary credentials file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save credentials file: %w", err)
	}
	return nil
}

// ClearCredentials removes the default credentials file
func ClearCredentials() error {
	path, err := GetCredentialsPath()
	if err != nil {
		return fmt.Errorf("failed to get credentials path: %w", err)
	}
	return ClearCredentialsAt(path)
}

// ClearCredentialsAt removes the credentials file at path. A missing file is
// not an error.
func ClearCredentialsAt(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}
