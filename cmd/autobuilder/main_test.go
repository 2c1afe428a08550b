package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/sandbox"
)

func TestParseHostedID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseHostedID(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHostedID(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseHostedID(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}

func TestReadPasswordFromPipe(t *testing.T) {
	got, err := readPassword(strings.NewReader("s3cret-pass\r\nignored\n"), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("readPassword() error = %v", err)
	}
	if got != "s3cret-pass" {
		t.Errorf("readPassword() = %q, want %q", got, "s3cret-pass")
	}

	if _, err := readPassword(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("readPassword() on empty input should fail")
	}
}

func TestTypeList(t *testing.T) {
	list := typeList()
	for _, typ := range automation.AllTypes() {
		if !strings.Contains(list, string(typ)) {
			t.Errorf("typeList() = %q, missing %q", list, typ)
		}
	}
}

func TestHints(t *testing.T) {
	if got := hints(automation.FieldErrors{"url": "Invalid URL format"}); got != nil {
		t.Errorf("hints(FieldErrors) = %v, want nil", got)
	}
	netErr := api.NewNetworkError("Connection refused", errors.New("dial tcp: connection refused"))
	if got := hints(netErr); len(got) == 0 || got[0] == "" {
		t.Errorf("hints(network error) = %v, want troubleshooting text", got)
	}
}

// execute runs the root command against a sandbox and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCloudCommands(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("AUTOBUILDER_LOG_LEVEL", "")

	server, err := sandbox.New(nil)
	if err != nil {
		t.Fatalf("sandbox.New() error = %v", err)
	}
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	common := []string{"--api-url", ts.URL, "--format", "json"}

	out, err := execute(t, append([]string{"cloud", "create",
		"--name", "Pricing page",
		"--url", "https://example.com/pricing",
		"--discord", "https://discord.com/api/webhooks/1/abc",
		"--interval", "30",
	}, common...)...)
	if err != nil {
		t.Fatalf("cloud create error = %v", err)
	}
	var created automation.HostedAutomation
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("cloud create output is not JSON: %v\n%s", err, out)
	}
	if created.ID != 1 || created.Name != "Pricing page" || created.IntervalMinutes != 30 {
		t.Errorf("created = %+v", created)
	}

	out, err = execute(t, append([]string{"cloud", "list"}, common...)...)
	if err != nil {
		t.Fatalf("cloud list error = %v", err)
	}
	var list []automation.HostedAutomation
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("cloud list output is not JSON: %v\n%s", err, out)
	}
	if len(list) != 1 || !list[0].IsActive {
		t.Fatalf("list = %+v, want one active automation", list)
	}

	if _, err := execute(t, append([]string{"cloud", "delete", "1", "--yes"}, common...)...); err != nil {
		t.Fatalf("cloud delete error = %v", err)
	}
	if got := len(server.Store().Hosted()); got != 0 {
		t.Errorf("store holds %d hosted automations after delete, want 0", got)
	}

	_, err = execute(t, append([]string{"cloud", "toggle", "zero"}, common...)...)
	if err == nil || !strings.Contains(err.Error(), "invalid automation ID") {
		t.Errorf("toggle with bad ID error = %v", err)
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := execute(t, "list", "--format", "xml", "--api-url", "http://127.0.0.1:1")
	if err == nil || !strings.Contains(err.Error(), "unknown --format") {
		t.Errorf("error = %v, want unknown --format", err)
	}
	// flags persist on the shared root command
	outputFormat = "detailed"
}
