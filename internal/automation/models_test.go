package automation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestHostedAutomation_Decode(t *testing.T) {
	raw := `{
		"id": 7,
		"automation_type": "website_monitor",
		"name": "Pricing page",
		"config": {"url": "https://example.com/pricing", "css_selector": "body"},
		"interval_minutes": 60,
		"is_active": true,
		"last_run": null,
		"created_at": "2026-03-01T10:00:00.123456"
	}`

	var h HostedAutomation
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if h.ID != 7 || h.AutomationType != WebsiteMonitor || !h.IsActive {
		t.Errorf("decoded %+v", h)
	}
	if h.LastRunTime() != nil {
		t.Error("last_run null should decode to nil")
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 123456000, time.UTC)
	if !h.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", h.CreatedAt, want)
	}
	if h.URL() != "https://example.com/pricing" {
		t.Errorf("URL() = %q", h.URL())
	}
	if h.StatusLabel() != "Active" {
		t.Errorf("StatusLabel() = %q", h.StatusLabel())
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2026-03-01T10:00:00Z",
		"2026-03-01T12:00:00+02:00",
		"2026-03-01T10:00:00",
		"2026-03-01 10:00:00.5",
	} {
		ts, err := ParseTimestamp(s)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error = %v", s, err)
			continue
		}
		if ts.UTC().Hour() != 10 {
			t.Errorf("ParseTimestamp(%q) hour = %d", s, ts.UTC().Hour())
		}
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error")
	}
}

func TestConfig_Payload(t *testing.T) {
	cfg := Config{
		FieldProductURL:  " https://shop.example.com/item ",
		FieldTargetPrice: "49.5",
		FieldCSSSelector: "",
	}
	p := cfg.Payload()
	if p[FieldTargetPrice] != 49.5 {
		t.Errorf("target_price = %#v, want number", p[FieldTargetPrice])
	}
	if p[FieldProductURL] != "https://shop.example.com/item" {
		t.Errorf("product_url = %#v", p[FieldProductURL])
	}
	if _, ok := p[FieldCSSSelector]; ok {
		t.Error("empty optional field should be dropped")
	}
}

func TestNewCreateRequest(t *testing.T) {
	req := NewCreateRequest("  Watch the pricing page  ", WebsiteMonitor, Config{FieldURL: "https://example.com"}, 30)
	if req.Name != "Watch the pricing page" || req.Description != "Watch the pricing page" {
		t.Errorf("name/description = %q / %q", req.Name, req.Description)
	}
	if req.Schedule != "@every 30m" || req.Type != WebsiteMonitor {
		t.Errorf("request = %+v", req)
	}

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"name"`, `"description"`, `"type"`, `"config"`, `"schedule"`} {
		if !strings.Contains(string(body), key) {
			t.Errorf("body %s missing %s", body, key)
		}
	}
}

func TestDeriveName(t *testing.T) {
	if got := DeriveName("   "); got != "Untitled automation" {
		t.Errorf("DeriveName(blank) = %q", got)
	}
	long := strings.Repeat("monitor the competitor pricing page ", 5)
	got := DeriveName(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) > maxDerivedName+3 {
		t.Errorf("DeriveName(long) = %q", got)
	}
}

func TestHostedCreateRequest_Normalize(t *testing.T) {
	r := HostedCreateRequest{Name: " x ", Config: HostedConfig{URL: " https://a.example "}}.Normalize()
	if r.Name != "x" || r.Config.URL != "https://a.example" || r.Config.CSSSelector != DefaultCSSSelector {
		t.Errorf("Normalize() = %+v", r)
	}

	body, _ := json.Marshal(r)
	for _, key := range []string{"url", "discord_webhook", "email", "css_selector"} {
		if !strings.Contains(string(body), `"`+key+`"`) {
			t.Errorf("config missing %q: %s", key, body)
		}
	}
}
