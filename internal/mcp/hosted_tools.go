package mcpserver

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agenticauto/autobuilder/internal/automation"
)

func registerHostedTools(server *mcpsdk.Server, t *tools) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_hosted_automations",
		Description: "List cloud automations with their status, interval and last run, plus free tier usage",
	}, t.listHosted)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create_hosted_automation",
		Description: "Create a cloud automation that the backend checks on a schedule. Needs a Discord webhook or an email address.",
	}, t.createHosted)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "toggle_hosted_automation",
		Description: "Pause an active cloud automation or resume a paused one",
	}, t.toggleHosted)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete_hosted_automation",
		Description: "Delete a cloud automation permanently",
	}, t.deleteHosted)
}

type hostedInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Status   string `json:"status"`
	Interval string `json:"interval"`
	LastRun  string `json:"last_run"`
	NextRun  string `json:"next_run"`
}

func describeHosted(h automation.HostedAutomation, now time.Time) hostedInfo {
	return hostedInfo{
		ID:       h.ID,
		Name:     h.Name,
		Type:     h.AutomationType.Label(),
		URL:      h.URL(),
		Status:   h.StatusLabel(),
		Interval: automation.FormatInterval(h.IntervalMinutes),
		LastRun:  automation.FormatLastRun(h.LastRunTime(), now),
		NextRun:  automation.FormatNextRun(h, now),
	}
}

// list_hosted_automations

type listHostedInput struct{}

type listHostedOutput struct {
	Automations []hostedInfo `json:"automations"`
	Active      int          `json:"active"`
	Total       int          `json:"total"`
	Limit       int          `json:"limit"`
	Available   int          `json:"available"`
}

func (t *tools) listHosted(ctx context.Context, req *mcpsdk.CallToolRequest, input listHostedInput) (*mcpsdk.CallToolResult, listHostedOutput, error) {
	list, err := t.backend.ListHostedAutomations(ctx)
	if err != nil {
		return nil, listHostedOutput{}, backendError(err, "Failed to load hosted automations")
	}

	now := time.Now()
	stats := automation.ComputeStats(list)
	out := listHostedOutput{
		Automations: make([]hostedInfo, len(list)),
		Active:      stats.Active,
		Total:       stats.Total,
		Limit:       stats.Limit,
		Available:   stats.Available(),
	}
	for i, h := range list {
		out.Automations[i] = describeHosted(h, now)
	}
	return nil, out, nil
}

// create_hosted_automation

type createHostedInput struct {
	Name            string `json:"name" jsonschema:"Display name"`
	URL             string `json:"url" jsonschema:"Page to watch"`
	AutomationType  string `json:"automation_type,omitempty" jsonschema:"website_monitor (default) or price_tracker"`
	IntervalMinutes int    `json:"interval_minutes,omitempty" jsonschema:"Check interval: 10, 30, 60, 180, 360, 720 or 1440. Defaults to 60"`
	DiscordWebhook  string `json:"discord_webhook,omitempty" jsonschema:"Discord webhook URL for notifications"`
	Email           string `json:"email,omitempty" jsonschema:"Email address for notifications"`
	CSSSelector     string `json:"css_selector,omitempty" jsonschema:"Element to compare; defaults to body"`
}

func (t *tools) createHosted(ctx context.Context, req *mcpsdk.CallToolRequest, input createHostedInput) (*mcpsdk.CallToolResult, hostedInfo, error) {
	typ := automation.WebsiteMonitor
	if input.AutomationType != "" {
		parsed, err := automation.ParseType(input.AutomationType)
		if err != nil {
			return nil, hostedInfo{}, err
		}
		typ = parsed
	}
	interval := input.IntervalMinutes
	if interval == 0 {
		interval = automation.DefaultIntervalMinutes
	}

	hreq := automation.HostedCreateRequest{
		AutomationType:  typ,
		Name:            input.Name,
		IntervalMinutes: interval,
		Config: automation.HostedConfig{
			URL:            input.URL,
			DiscordWebhook: input.DiscordWebhook,
			Email:          input.Email,
			CSSSelector:    input.CSSSelector,
		},
	}.Normalize()
	if errs := automation.ValidateHostedRequest(hreq); errs != nil {
		return nil, hostedInfo{}, errs
	}

	rec, err := t.backend.CreateHostedAutomation(ctx, hreq)
	if err != nil {
		return nil, hostedInfo{}, backendError(err, "Failed to create automation")
	}
	return nil, describeHosted(*rec, time.Now()), nil
}

// toggle_hosted_automation / delete_hosted_automation

type hostedIDInput struct {
	ID int `json:"id" jsonschema:"Cloud automation ID from list_hosted_automations"`
}

type toggleHostedOutput struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

func (t *tools) toggleHosted(ctx context.Context, req *mcpsdk.CallToolRequest, input hostedIDInput) (*mcpsdk.CallToolResult, toggleHostedOutput, error) {
	if input.ID <= 0 {
		return nil, toggleHostedOutput{}, fmt.Errorf("id must be a positive automation ID")
	}
	if err := t.backend.ToggleHostedAutomation(ctx, input.ID); err != nil {
		return nil, toggleHostedOutput{}, backendError(err, "Failed to toggle automation")
	}

	// report the state after the flip; an unreadable list leaves it unknown
	out := toggleHostedOutput{ID: input.ID, Status: "Unknown"}
	if list, err := t.backend.ListHostedAutomations(ctx); err == nil {
		for _, h := range list {
			if h.ID == input.ID {
				out.Status = h.StatusLabel()
			}
		}
	}
	return nil, out, nil
}

type deleteHostedOutput struct {
	ID      int  `json:"id"`
	Deleted bool `json:"deleted"`
}

func (t *tools) deleteHosted(ctx context.Context, req *mcpsdk.CallToolRequest, input hostedIDInput) (*mcpsdk.CallToolResult, deleteHostedOutput, error) {
	if input.ID <= 0 {
		return nil, deleteHostedOutput{}, fmt.Errorf("id must be a positive automation ID")
	}
	if err := t.backend.DeleteHostedAutomation(ctx, input.ID); err != nil {
		return nil, deleteHostedOutput{}, backendError(err, "Failed to delete automation")
	}
	return nil, deleteHostedOutput{ID: input.ID, Deleted: true}, nil
}
