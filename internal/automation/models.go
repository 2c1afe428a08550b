package automation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Config holds configuration values keyed by field name, as entered by the
// user.
type Config map[string]string

// Payload converts the config into the JSON object sent to the backend.
// target_price is sent as a number; empty optional values are dropped.
func (c Config) Payload() map[string]any {
	out := make(map[string]any, len(c))
	for k, v := range c {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if k == FieldTargetPrice {
			if price, err := ParseTargetPrice(v); err == nil {
				out[k] = price
				continue
			}
		}
		out[k] = v
	}
	return out
}

// Timestamp accepts the timestamp layouts the backend emits, including
// ISO 8601 values without a zone offset, which are treated as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses s using the accepted layouts
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// WorkflowNode is one step of a designed workflow
type WorkflowNode struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// WorkflowEdge connects two nodes by ID
type WorkflowEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// WorkflowDesign is the backend's proposed workflow for a task. Node order
// is the order in which steps are displayed.
type WorkflowDesign struct {
	Nodes           []WorkflowNode `json:"nodes"`
	Edges           []WorkflowEdge `json:"edges"`
	Description     string         `json:"description"`
	EstimatedTokens int            `json:"estimated_tokens"`
}

// DesignRequest is the body of a workflow design call
type DesignRequest struct {
	TaskDescription string `json:"task_description"`
	AutomationType  Type   `json:"automation_type,omitempty"`
}

// Status is the lifecycle state of a download-mode automation
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusFailed    Status = "failed"
	StatusCompleted Status = "completed"
)

// Automation is a download-mode automation record
type Automation struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Type         Type           `json:"type"`
	Status       Status         `json:"status"`
	Config       map[string]any `json:"config"`
	WorkflowCode string         `json:"workflow_code"`
	CreatedAt    Timestamp      `json:"created_at"`
	NextRun      *Timestamp     `json:"next_run,omitempty"`
}

// CreateRequest is the body of a download-mode automation create call
type CreateRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        Type           `json:"type"`
	Config      map[string]any `json:"config"`
	Schedule    string         `json:"schedule"`
}

const maxDerivedName = 50

// NewCreateRequest builds a create request from wizard state. The name is
// derived from the task description.
func NewCreateRequest(task string, t Type, cfg Config, intervalMinutes int) CreateRequest {
	task = strings.TrimSpace(task)
	return CreateRequest{
		Name:        DeriveName(task),
		Description: task,
		Type:        t,
		Config:      cfg.Payload(),
		Schedule:    ScheduleFor(intervalMinutes),
	}
}

// DeriveName shortens a task description into an automation name.
func DeriveName(task string) string {
	task = strings.Join(strings.Fields(task), " ")
	if task == "" {
		return "Untitled automation"
	}
	runes := []rune(task)
	if len(runes) <= maxDerivedName {
		return task
	}
	cut := string(runes[:maxDerivedName])
	if i := strings.LastIndex(cut, " "); i > maxDerivedName/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

// HostedConfig is the configuration of a cloud automation
type HostedConfig struct {
	URL            string `json:"url"`
	DiscordWebhook string `json:"discord_webhook"`
	Email          string `json:"email"`
	CSSSelector    string `json:"css_selector"`
}

// DefaultCSSSelector compares the whole page body
const DefaultCSSSelector = "body"

// HostedCreateRequest is the body of a cloud automation create call
type HostedCreateRequest struct {
	AutomationType  Type         `json:"automation_type"`
	Name            string       `json:"name"`
	IntervalMinutes int          `json:"interval_minutes"`
	Config          HostedConfig `json:"config"`
}

// Normalize trims every field and applies the default CSS selector.
func (r HostedCreateRequest) Normalize() HostedCreateRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Config.URL = strings.TrimSpace(r.Config.URL)
	r.Config.DiscordWebhook = strings.TrimSpace(r.Config.DiscordWebhook)
	r.Config.Email = strings.TrimSpace(r.Config.Email)
	r.Config.CSSSelector = strings.TrimSpace(r.Config.CSSSelector)
	if r.Config.CSSSelector == "" {
		r.Config.CSSSelector = DefaultCSSSelector
	}
	return r
}

// HostedAutomation is a cloud automation polled by the backend
type HostedAutomation struct {
	ID              int            `json:"id"`
	AutomationType  Type           `json:"automation_type"`
	Name            string         `json:"name"`
	Config          map[string]any `json:"config"`
	IntervalMinutes int            `json:"interval_minutes"`
	IsActive        bool           `json:"is_active"`
	LastRun         *Timestamp     `json:"last_run"`
	CreatedAt       Timestamp      `json:"created_at"`
}

// URL returns the watched URL from the config, if any
func (h HostedAutomation) URL() string {
	for _, key := range []string{FieldURL, FieldProductURL} {
		if v, ok := h.Config[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// StatusLabel returns "Active" or "Paused"
func (h HostedAutomation) StatusLabel() string {
	if h.IsActive {
		return "Active"
	}
	return "Paused"
}

// LastRunTime returns the last run as a *time.Time, nil when never run
func (h HostedAutomation) LastRunTime() *time.Time {
	if h.LastRun == nil || h.LastRun.IsZero() {
		return nil
	}
	t := h.LastRun.Time
	return &t
}

// Credentials are sent to the auth endpoints
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by signup and login
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Email       string `json:"email,omitempty"`
}
