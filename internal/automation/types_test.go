package automation

import "testing"

func TestParseType(t *testing.T) {
	got, err := ParseType(" Price_Tracker ")
	if err != nil || got != PriceTracker {
		t.Fatalf("ParseType() = %q, %v", got, err)
	}
	if _, err := ParseType("teleporter"); err == nil {
		t.Error("expected error for unknown type")
	}
}

// TestFieldSets checks each type exposes exactly its own fields in order
func TestFieldSets(t *testing.T) {
	tests := []struct {
		typ      Type
		want     []string
		required []string
	}{
		{WebsiteMonitor, []string{FieldURL, FieldWebhookURL, FieldCSSSelector}, []string{FieldURL, FieldWebhookURL}},
		{PriceTracker, []string{FieldProductURL, FieldTargetPrice, FieldWebhookURL, FieldCSSSelector}, []string{FieldProductURL, FieldTargetPrice, FieldWebhookURL}},
		{DiscordNotifier, []string{FieldWebhookURL, FieldMessage}, []string{FieldWebhookURL, FieldMessage}},
		{SlackNotifier, []string{FieldWebhookURL, FieldMessage, FieldChannel}, []string{FieldWebhookURL, FieldMessage}},
		{EmailDigest, []string{FieldEmail, FieldTopic}, []string{FieldEmail, FieldTopic}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			fields := tt.typ.Fields()
			if len(fields) != len(tt.want) {
				t.Fatalf("got %d fields, want %d", len(fields), len(tt.want))
			}
			var required []string
			for i, f := range fields {
				if f.Name != tt.want[i] {
					t.Errorf("field %d = %q, want %q", i, f.Name, tt.want[i])
				}
				if f.Required {
					required = append(required, f.Name)
				}
			}
			if len(required) != len(tt.required) {
				t.Errorf("required = %v, want %v", required, tt.required)
			}
		})
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	fields := WebsiteMonitor.Fields()
	fields[0].Name = "mutated"
	if WebsiteMonitor.Fields()[0].Name != FieldURL {
		t.Error("Fields() exposed the shared field set")
	}
}

func TestTypeLabels(t *testing.T) {
	if got := PriceTracker.Label(); got != "Price Tracker" {
		t.Errorf("Label() = %q", got)
	}
	if got := Type("rss_reader").Label(); got != "rss reader" {
		t.Errorf("fallback Label() = %q", got)
	}
	if !WebsiteMonitor.IsCloud() || SlackNotifier.IsCloud() {
		t.Error("IsCloud mismatch")
	}
}
