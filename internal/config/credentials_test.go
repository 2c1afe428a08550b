package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if !strings.Contains(dir, "autobuilder") {
		t.Errorf("GetConfigDir() = %v, should contain 'autobuilder'", dir)
	}
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		if !strings.Contains(dir, ".config") && os.Getenv("XDG_CONFIG_HOME") == "" {
			t.Errorf("Unix config dir should contain '.config', got: %v", dir)
		}
	}
}

func TestCredentials_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")

	creds := &Credentials{
		APIURL:      "https://api.example.com",
		Email:       "dev@example.com",
		AccessToken: "tok-123",
	}
	if err := creds.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := LoadCredentialsFrom(path)
	if err != nil {
		t.Fatalf("LoadCredentialsFrom() error = %v", err)
	}
	if loaded.Email != creds.Email || loaded.AccessToken != creds.AccessToken {
		t.Errorf("loaded %+v", loaded)
	}
	if loaded.SavedAt.IsZero() {
		t.Error("SavedAt not recorded")
	}

	if err := ClearCredentialsAt(path); err != nil {
		t.Fatalf("ClearCredentialsAt() error = %v", err)
	}
	if err := ClearCredentialsAt(path); err != nil {
		t.Errorf("second clear should be a no-op, got %v", err)
	}

	empty, err := LoadCredentialsFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if empty.LoggedIn() {
		t.Error("expected logged out after clear")
	}
}

func TestCredentials_TokenFor(t *testing.T) {
	c := &Credentials{APIURL: "https://a.example.com", AccessToken: "tok"}
	if c.TokenFor("https://a.example.com") != "tok" {
		t.Error("token should be sent to the issuing backend")
	}
	if c.TokenFor("https://b.example.com") != "" {
		t.Error("token must not leak to another backend")
	}

	anywhere := &Credentials{AccessToken: "tok"}
	if anywhere.TokenFor("https://b.example.com") != "tok" {
		t.Error("token without URL should be sent everywhere")
	}

	var none *Credentials
	if none.TokenFor("x") != "" {
		t.Error("nil credentials should have no token")
	}
}

func TestLoadCredentials_BadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := os.WriteFile(path, []byte("version: 9\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCredentialsFrom(path); err == nil {
		t.Error("expected version error")
	}
}
