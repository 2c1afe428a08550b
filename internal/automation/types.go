package automation

import (
	"fmt"
	"strings"
)

// Type is the automation type tag. It selects which configuration fields are
// required and how forms render.
type Type string

const (
	WebsiteMonitor  Type = "website_monitor"
	PriceTracker    Type = "price_tracker"
	DiscordNotifier Type = "discord_notifier"
	SlackNotifier   Type = "slack_notifier"
	EmailDigest     Type = "email_digest"
)

// FieldKind selects the validator applied to a field
type FieldKind int

const (
	KindText FieldKind = iota
	KindURL
	KindPrice
	KindEmail
)

// Configuration field names
const (
	FieldURL         = "url"
	FieldProductURL  = "product_url"
	FieldTargetPrice = "target_price"
	FieldWebhookURL  = "webhook_url"
	FieldCSSSelector = "css_selector"
	FieldMessage     = "message"
	FieldChannel     = "channel"
	FieldEmail       = "email"
	FieldTopic       = "topic"
)

// Field describes one configuration input for an automation type.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Required    bool
	Placeholder string
	Help        string
}

var (
	webhookField = Field{
		Name:        FieldWebhookURL,
		Label:       "Webhook URL",
		Kind:        KindURL,
		Required:    true,
		Placeholder: "https://discord.com/api/webhooks/...",
		Help:        "Where change notifications are delivered",
	}
	selectorField = Field{
		Name:        FieldCSSSelector,
		Label:       "CSS Selector",
		Kind:        KindText,
		Placeholder: "body",
		Help:        "Leave empty to compare the whole page, or use '.price' / '#content'",
	}
)

var fieldSets = map[Type][]Field{
	WebsiteMonitor: {
		{Name: FieldURL, Label: "Website URL", Kind: KindURL, Required: true, Placeholder: "https://example.com", Help: "The page to watch for changes"},
		webhookField,
		selectorField,
	},
	PriceTracker: {
		{Name: FieldProductURL, Label: "Product URL", Kind: KindURL, Required: true, Placeholder: "https://shop.example.com/item/42"},
		{Name: FieldTargetPrice, Label: "Target Price", Kind: KindPrice, Required: true, Placeholder: "99.99", Help: "Alert when the price drops to or below this value"},
		webhookField,
		selectorField,
	},
	DiscordNotifier: {
		{Name: FieldWebhookURL, Label: "Discord Webhook URL", Kind: KindURL, Required: true, Placeholder: "https://discord.com/api/webhooks/..."},
		{Name: FieldMessage, Label: "Message", Kind: KindText, Required: true, Placeholder: "Daily standup in 10 minutes"},
	},
	SlackNotifier: {
		{Name: FieldWebhookURL, Label: "Slack Webhook URL", Kind: KindURL, Required: true, Placeholder: "https://hooks.slack.com/services/..."},
		{Name: FieldMessage, Label: "Message", Kind: KindText, Required: true, Placeholder: "Deploy finished"},
		{Name: FieldChannel, Label: "Channel", Kind: KindText, Placeholder: "#general"},
	},
	EmailDigest: {
		{Name: FieldEmail, Label: "Email Address", Kind: KindEmail, Required: true, Placeholder: "you@example.com"},
		{Name: FieldTopic, Label: "Topic", Kind: KindText, Required: true, Placeholder: "Hacker News front page"},
	},
}

var typeLabels = map[Type]string{
	WebsiteMonitor:  "Website Monitor",
	PriceTracker:    "Price Tracker",
	DiscordNotifier: "Discord Notifier",
	SlackNotifier:   "Slack Notifier",
	EmailDigest:     "Email Digest",
}

var typeSummaries = map[Type]string{
	WebsiteMonitor:  "Track changes",
	PriceTracker:    "Monitor prices",
	DiscordNotifier: "Post to a Discord channel",
	SlackNotifier:   "Post to a Slack channel",
	EmailDigest:     "Summarise a topic by email",
}

// AllTypes returns every automation type in display order
func AllTypes() []Type {
	return []Type{WebsiteMonitor, PriceTracker, DiscordNotifier, SlackNotifier, EmailDigest}
}

// CloudTypes returns the types that can run as hosted automations
func CloudTypes() []Type {
	return []Type{WebsiteMonitor, PriceTracker}
}

// ParseType converts a tag into a Type, rejecting unknown values.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown automation type %q (valid: %s)", s, joinTypes(AllTypes()))
	}
	return t, nil
}

// Valid reports whether t is a known automation type
func (t Type) Valid() bool {
	_, ok := fieldSets[t]
	return ok
}

// IsCloud reports whether t can run as a hosted automation
func (t Type) IsCloud() bool {
	for _, c := range CloudTypes() {
		if c == t {
			return true
		}
	}
	return false
}

// Label returns the human-readable name, e.g. "Price Tracker"
func (t Type) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return strings.ReplaceAll(string(t), "_", " ")
}

// Summary returns a short description for type pickers
func (t Type) Summary() string {
	return typeSummaries[t]
}

// Fields returns the ordered field set for t. The returned slice is a copy.
func (t Type) Fields() []Field {
	set := fieldSets[t]
	out := make([]Field, len(set))
	copy(out, set)
	return out
}

// Field looks up a field of t by name
func (t Type) Field(name string) (Field, bool) {
	for _, f := range fieldSets[t] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func joinTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
