package automation

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Validation messages shown beside form fields
const (
	MsgInvalidURL      = "Invalid URL format"
	MsgInvalidPrice    = "Target price must be a positive number"
	MsgWebhookRequired = "Webhook URL is required"
	MsgInvalidEmail    = "Invalid email address"
	MsgNeedChannel     = "Add at least one notification method"
	MsgInvalidInterval = "Choose one of the offered intervals"
)

// FieldErrors maps a field name to the message shown beside it.
// A nil or empty FieldErrors means the input is valid.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "no validation errors"
	}
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, fe[name])
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Has reports whether field has an error
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Fields returns the names of all fields with errors, sorted
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateURL accepts absolute URLs with a scheme and host.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return fmt.Errorf("%s", MsgInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s", MsgInvalidURL)
	}
	return nil
}

// ParseTargetPrice parses a target price. Only finite values above zero are
// accepted.
func ParseTargetPrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%s", MsgInvalidPrice)
	}
	return v, nil
}

// ValidateEmail accepts a single bare address such as you@example.com
func ValidateEmail(raw string) error {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return fmt.Errorf("%s", MsgInvalidEmail)
	}
	return nil
}

// ValidateField checks a single value against its field definition.
// It returns the message to show beside the field, or "" when valid.
func ValidateField(f Field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		if !f.Required {
			return ""
		}
		switch {
		case f.Kind == KindPrice:
			return MsgInvalidPrice
		case f.Name == FieldWebhookURL:
			return MsgWebhookRequired
		}
		return f.Label + " is required"
	}

	switch f.Kind {
	case KindURL:
		if err := ValidateURL(value); err != nil {
			return err.Error()
		}
	case KindPrice:
		if _, err := ParseTargetPrice(value); err != nil {
			return err.Error()
		}
	case KindEmail:
		if err := ValidateEmail(value); err != nil {
			return err.Error()
		}
	}
	return ""
}

// ValidateConfig validates cfg against the field set of t, collecting every
// error in one pass. Keys that are not part of the field set are rejected.
// It returns nil when cfg is valid.
func ValidateConfig(t Type, cfg Config) FieldErrors {
	errs := FieldErrors{}
	if !t.Valid() {
		errs["type"] = fmt.Sprintf("unknown automation type %q", t)
		return errs
	}

	for _, f := range fieldSets[t] {
		if msg := ValidateField(f, cfg[f.Name]); msg != "" {
			errs[f.Name] = msg
		}
	}
	for name := range cfg {
		if _, ok := t.Field(name); !ok {
			errs[name] = fmt.Sprintf("not a field of %s", t.Label())
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateHostedRequest validates a cloud automation request before it is
// posted. At least one notification channel is required.
func ValidateHostedRequest(req HostedCreateRequest) FieldErrors {
	errs := FieldErrors{}

	if !req.AutomationType.IsCloud() {
		errs["automation_type"] = fmt.Sprintf("%s cannot run in the cloud yet", req.AutomationType.Label())
	}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(req.Config.URL) == "" {
		errs[FieldURL] = "URL is required"
	} else if err := ValidateURL(req.Config.URL); err != nil {
		errs[FieldURL] = err.Error()
	}
	if !IsIntervalOption(req.IntervalMinutes) {
		errs["interval_minutes"] = MsgInvalidInterval
	}

	discord := strings.TrimSpace(req.Config.DiscordWebhook)
	email := strings.TrimSpace(req.Config.Email)
	if discord == "" && email == "" {
		errs["notifications"] = MsgNeedChannel
	}
	if discord != "" {
		if err := ValidateURL(discord); err != nil {
			errs["discord_webhook"] = err.Error()
		}
	}
	if email != "" {
		if err := ValidateEmail(email); err != nil {
			errs[FieldEmail] = err.Error()
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
