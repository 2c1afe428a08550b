package automation

import (
	"strings"
	"testing"
)

// TestValidateURL tests absolute URL validation
func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"Valid: https", "https://example.com", false},
		{"Valid: with port and path", "http://localhost:8080/watch?q=1", false},
		{"Valid: other scheme", "ftp://files.example.com/x", false},
		{"Valid: surrounding spaces", "  https://example.com  ", false},
		{"Invalid: empty", "", true},
		{"Invalid: no scheme", "example.com", true},
		{"Invalid: plain words", "not-a-url", true},
		{"Invalid: no host", "https://", true},
		{"Invalid: opaque", "mailto:someone@example.com", true},
		{"Invalid: inner space", "https://exa mple.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil && err.Error() != MsgInvalidURL {
				t.Errorf("message = %q, want %q", err.Error(), MsgInvalidURL)
			}
		})
	}
}

// TestParseTargetPrice tests that only positive finite prices pass
func TestParseTargetPrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"99.99", 99.99, false},
		{"1", 1, false},
		{"1e3", 1000, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTargetPrice(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTargetPrice(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil {
				if err.Error() != MsgInvalidPrice {
					t.Errorf("message = %q", err.Error())
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseTargetPrice(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"you@example.com", "a.b+c@sub.example.org"} {
		if err := ValidateEmail(ok); err != nil {
			t.Errorf("ValidateEmail(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "not-an-email", "Bob <bob@example.com>", "@example.com"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("ValidateEmail(%q) accepted", bad)
		}
	}
}

// TestValidateConfig tests whole-form validation per automation type
func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name       string
		typ        Type
		cfg        Config
		wantFields map[string]string
	}{
		{
			name: "Valid website monitor",
			typ:  WebsiteMonitor,
			cfg: Config{
				FieldURL:        "https://example.com",
				FieldWebhookURL: "https://discord.com/api/webhooks/1/abc",
			},
		},
		{
			name: "Website monitor with bad URL",
			typ:  WebsiteMonitor,
			cfg: Config{
				FieldURL:        "not-a-url",
				FieldWebhookURL: "https://discord.com/api/webhooks/1/abc",
			},
			wantFields: map[string]string{FieldURL: MsgInvalidURL},
		},
		{
			name: "Empty price tracker reports every field",
			typ:  PriceTracker,
			cfg:  Config{},
			wantFields: map[string]string{
				FieldProductURL:  "Product URL is required",
				FieldTargetPrice: MsgInvalidPrice,
				FieldWebhookURL:  MsgWebhookRequired,
			},
		},
		{
			name: "Price tracker with negative price",
			typ:  PriceTracker,
			cfg: Config{
				FieldProductURL:  "https://shop.example.com/item",
				FieldTargetPrice: "-5",
				FieldWebhookURL:  "https://discord.com/api/webhooks/1/abc",
			},
			wantFields: map[string]string{FieldTargetPrice: MsgInvalidPrice},
		},
		{
			name: "Slack notifier with optional channel omitted",
			typ:  SlackNotifier,
			cfg: Config{
				FieldWebhookURL: "https://hooks.slack.com/services/T/B/X",
				FieldMessage:    "deploy finished",
			},
		},
		{
			name: "Email digest with bad address",
			typ:  EmailDigest,
			cfg:  Config{FieldEmail: "nope", FieldTopic: "news"},
			wantFields: map[string]string{FieldEmail: MsgInvalidEmail},
		},
		{
			name: "Field from another type is rejected",
			typ:  DiscordNotifier,
			cfg: Config{
				FieldWebhookURL:  "https://discord.com/api/webhooks/1/abc",
				FieldMessage:     "hi",
				FieldTargetPrice: "10",
			},
			wantFields: map[string]string{FieldTargetPrice: "not a field of Discord Notifier"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateConfig(tt.typ, tt.cfg)
			if len(tt.wantFields) == 0 {
				if errs != nil {
					t.Fatalf("ValidateConfig() = %v, want nil", errs)
				}
				return
			}
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, len(tt.wantFields))
			}
			for field, msg := range tt.wantFields {
				if errs[field] != msg {
					t.Errorf("errs[%q] = %q, want %q", field, errs[field], msg)
				}
			}
		})
	}
}

func TestValidateConfig_UnknownType(t *testing.T) {
	errs := ValidateConfig(Type("teleporter"), Config{})
	if !errs.Has("type") {
		t.Fatalf("expected type error, got %v", errs)
	}
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{"url": MsgInvalidURL, "target_price": MsgInvalidPrice}
	got := errs.Error()
	if !strings.HasPrefix(got, "invalid configuration: target_price:") {
		t.Errorf("Error() = %q, want sorted fields", got)
	}
	if fields := errs.Fields(); len(fields) != 2 || fields[0] != "target_price" {
		t.Errorf("Fields() = %v", fields)
	}
}

// TestValidateHostedRequest tests the cloud form submission rules
func TestValidateHostedRequest(t *testing.T) {
	valid := HostedCreateRequest{
		AutomationType:  WebsiteMonitor,
		Name:            "Watch pricing page",
		IntervalMinutes: 60,
		Config: HostedConfig{
			URL:            "https://example.com/pricing",
			DiscordWebhook: "https://discord.com/api/webhooks/1/abc",
			CSSSelector:    "body",
		},
	}

	tests := []struct {
		name      string
		mutate    func(r *HostedCreateRequest)
		wantField string
	}{
		{"Valid", func(r *HostedCreateRequest) {}, ""},
		{"Email only is enough", func(r *HostedCreateRequest) {
			r.Config.DiscordWebhook = ""
			r.Config.Email = "you@example.com"
		}, ""},
		{"Missing name", func(r *HostedCreateRequest) { r.Name = "  " }, "name"},
		{"Missing URL", func(r *HostedCreateRequest) { r.Config.URL = "" }, FieldURL},
		{"Bad URL", func(r *HostedCreateRequest) { r.Config.URL = "example" }, FieldURL},
		{"No channel", func(r *HostedCreateRequest) { r.Config.DiscordWebhook = "" }, "notifications"},
		{"Bad webhook", func(r *HostedCreateRequest) { r.Config.DiscordWebhook = "discord" }, "discord_webhook"},
		{"Odd interval", func(r *HostedCreateRequest) { r.IntervalMinutes = 45 }, "interval_minutes"},
		{"Non-cloud type", func(r *HostedCreateRequest) { r.AutomationType = EmailDigest }, "automation_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			errs := ValidateHostedRequest(req)
			if tt.wantField == "" {
				if errs != nil {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			if !errs.Has(tt.wantField) {
				t.Errorf("expected error on %q, got %v", tt.wantField, errs)
			}
		})
	}
}
