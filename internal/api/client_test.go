package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agenticauto/autobuilder/internal/automation"
)

const mockDesignResponse = `{
	"nodes": [
		{"id": "1", "type": "trigger", "label": "Every hour", "description": "Schedule"},
		{"id": "2", "type": "fetch", "label": "Fetch page", "description": "GET the URL"},
		{"id": "3", "type": "notify", "label": "Send to Discord", "description": "Webhook"}
	],
	"edges": [{"source": "1", "target": "2"}, {"source": "2", "target": "3"}],
	"description": "Checks the page hourly and posts changes",
	"estimated_tokens": 1200
}`

func TestNewClient(t *testing.T) {
	client := NewClient("https://api.example.com/")

	if client.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %s, want trailing slash trimmed", client.BaseURL)
	}
	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should not be nil")
	}
	if client.HTTPClient.Timeout != 0 {
		t.Errorf("Timeout = %v, want none", client.HTTPClient.Timeout)
	}

	client.SetTimeout(5 * time.Second)
	if client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.HTTPClient.Timeout)
	}
}

func TestDesignWorkflow(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/workflows/design" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if _, err := uuid.Parse(r.Header.Get("X-Request-ID")); err != nil {
			t.Errorf("X-Request-ID not a uuid: %q", r.Header.Get("X-Request-ID"))
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-1" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockDesignResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("tok-1")

	design, err := client.DesignWorkflow(context.Background(), automation.DesignRequest{
		TaskDescription: "Watch the pricing page",
		AutomationType:  automation.WebsiteMonitor,
	})
	if err != nil {
		t.Fatalf("DesignWorkflow() error = %v", err)
	}

	if len(design.Nodes) != 3 || design.Nodes[1].Label != "Fetch page" {
		t.Errorf("nodes = %+v", design.Nodes)
	}
	if len(design.Edges) != 2 || design.EstimatedTokens != 1200 {
		t.Errorf("design = %+v", design)
	}
	if gotBody["task_description"] != "Watch the pricing page" || gotBody["automation_type"] != "website_monitor" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestDesignWorkflow_OmitsEmptyType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "automation_type") {
			t.Errorf("body should omit automation_type: %s", body)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("no Authorization header expected without a token")
		}
		_, _ = w.Write([]byte(mockDesignResponse))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).DesignWorkflow(context.Background(), automation.DesignRequest{TaskDescription: "x"}); err != nil {
		t.Fatalf("DesignWorkflow() error = %v", err)
	}
}

func TestCreateAutomation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/automations/create" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req automation.CreateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Schedule != "@every 60m" || req.Config["target_price"] != 99.5 {
			t.Errorf("request = %+v", req)
		}
		_, _ = w.Write([]byte(`{"id":"a1","name":"n","workflow_code":"print('hi')\n","status":"active"}`))
	}))
	defer server.Close()

	req := automation.NewCreateRequest("Track the price", automation.PriceTracker, automation.Config{
		automation.FieldProductURL:  "https://shop.example.com/1",
		automation.FieldTargetPrice: "99.5",
		automation.FieldWebhookURL:  "https://discord.com/api/webhooks/1/a",
	}, 60)

	created, err := NewClient(server.URL).CreateAutomation(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateAutomation() error = %v", err)
	}
	if created.WorkflowCode != "print('hi')\n" || created.Status != automation.StatusActive {
		t.Errorf("created = %+v", created)
	}
}

// TestHostedEndpoints checks method and path for each hosted call
func TestHostedEndpoints(t *testing.T) {
	type call struct{ method, path string }
	var calls []call

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		switch r.URL.Path {
		case "/api/hosted-automations/list":
			_, _ = w.Write([]byte(`[{"id":4,"automation_type":"website_monitor","name":"a","config":{},"interval_minutes":30,"is_active":false,"last_run":"2026-03-01T10:00:00","created_at":"2026-02-01T10:00:00"}]`))
		case "/api/hosted-automations/create":
			var req automation.HostedCreateRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Config.CSSSelector != "body" {
				t.Errorf("css_selector = %q, want default", req.Config.CSSSelector)
			}
			_, _ = w.Write([]byte(`{"id":5,"automation_type":"website_monitor","name":"b","config":{},"interval_minutes":60,"is_active":true,"last_run":null,"created_at":"2026-03-02T10:00:00"}`))
		default:
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL)

	list, err := client.ListHostedAutomations(ctx)
	if err != nil || len(list) != 1 || list[0].ID != 4 || list[0].LastRunTime() == nil {
		t.Fatalf("ListHostedAutomations() = %+v, %v", list, err)
	}

	created, err := client.CreateHostedAutomation(ctx, automation.HostedCreateRequest{
		AutomationType:  automation.WebsiteMonitor,
		Name:            "b",
		IntervalMinutes: 60,
		Config:          automation.HostedConfig{URL: "https://example.com", DiscordWebhook: "https://discord.com/api/webhooks/1/a"},
	})
	if err != nil || created.ID != 5 {
		t.Fatalf("CreateHostedAutomation() = %+v, %v", created, err)
	}

	if err := client.ToggleHostedAutomation(ctx, 5); err != nil {
		t.Fatalf("ToggleHostedAutomation() error = %v", err)
	}
	if err := client.DeleteHostedAutomation(ctx, 5); err != nil {
		t.Fatalf("DeleteHostedAutomation() error = %v", err)
	}

	want := []call{
		{http.MethodGet, "/api/hosted-automations/list"},
		{http.MethodPost, "/api/hosted-automations/create"},
		{http.MethodPut, "/api/hosted-automations/5/toggle"},
		{http.MethodDelete, "/api/hosted-automations/5"},
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestDownloadModeEndpoints(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		switch {
		case r.URL.Path == "/api/automations/list":
			_, _ = w.Write([]byte(`[{"id":"a 1","name":"n","description":"d","type":"website_monitor","status":"paused"}]`))
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"id":"a 1","workflow_code":"x = 1"}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL)

	list, err := client.ListAutomations(ctx)
	if err != nil || len(list) != 1 || list[0].Status != automation.StatusPaused {
		t.Fatalf("ListAutomations() = %+v, %v", list, err)
	}
	a, err := client.GetAutomation(ctx, "a 1")
	if err != nil || a.WorkflowCode != "x = 1" {
		t.Fatalf("GetAutomation() = %+v, %v", a, err)
	}
	if err := client.DeleteAutomation(ctx, "a 1"); err != nil {
		t.Fatalf("DeleteAutomation() error = %v", err)
	}

	want := []string{"GET /api/automations/list", "GET /api/automations/a%201", "DELETE /api/automations/a%201"}
	for i, p := range want {
		if i >= len(paths) || paths[i] != p {
			t.Errorf("path %d = %v, want %s", i, paths, p)
		}
	}
}

// TestErrorDetail checks that backend detail text reaches the caller
func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantAuth   bool
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Free tier limit reached (3 automations)"}`, "Free tier limit reached (3 automations)", false},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","url"],"msg":"field required","type":"missing"}]}`, "url: field required", false},
		{"no detail", http.StatusInternalServerError, `{"error":"boom"}`, "", false},
		{"html page", http.StatusBadGateway, `<html>bad gateway</html>`, "", false},
		{"plain text", http.StatusServiceUnavailable, `maintenance`, "maintenance", false},
		{"unauthorised", http.StatusUnauthorized, `{"detail":"Not authenticated"}`, "Not authenticated", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).ListHostedAutomations(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			apiErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("error type = %T", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d", apiErr.StatusCode)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
			if IsAuthError(err) != tt.wantAuth {
				t.Errorf("IsAuthError = %v", IsAuthError(err))
			}
			if apiErr.RequestID == "" {
				t.Error("RequestID not recorded")
			}
			if tt.wantDetail != "" && Message(err) != tt.wantDetail {
				t.Errorf("Message() = %q", Message(err))
			}
			if got := MessageOr(err, "Failed to create automation"); tt.wantDetail == "" && got != "Failed to create automation" {
				t.Errorf("MessageOr() = %q", got)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"nodes": "not a list"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).DesignWorkflow(context.Background(), automation.DesignRequest{TaskDescription: "x"})
	apiErr, ok := err.(*Error)
	if !ok || apiErr.Type != ErrTypeParse {
		t.Fatalf("error = %v, want parse error", err)
	}
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).ListHostedAutomations(context.Background())
	if !IsNetworkError(err) {
		t.Fatalf("IsNetworkError(%v) = false", err)
	}
	if hint := GetTroubleshootingHint(err); hint == "" {
		t.Error("expected a hint")
	}
}

func TestCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL).ListHostedAutomations(ctx)
	if !IsCanceled(err) {
		t.Fatalf("IsCanceled(%v) = false", err)
	}
}

func TestAuthEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/signup", "/api/auth/login":
			var creds automation.Credentials
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds.Email != "dev@example.com" || creds.Password != "hunter22" {
				t.Errorf("creds = %+v", creds)
			}
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
		case "/api/auth/logout":
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Error("logout should send the token")
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL)
	creds := automation.Credentials{Email: "dev@example.com", Password: "hunter22"}

	if s, err := client.Signup(ctx, creds); err != nil || s.AccessToken != "tok" {
		t.Fatalf("Signup() = %+v, %v", s, err)
	}
	s, err := client.Login(ctx, creds)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	client.SetToken(s.AccessToken)
	if err := client.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
}
