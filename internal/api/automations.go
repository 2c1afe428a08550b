package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/agenticauto/autobuilder/internal/automation"
)

// DesignWorkflow asks the backend to design a workflow for a task
func (c *Client) DesignWorkflow(ctx context.Context, req automation.DesignRequest) (*automation.WorkflowDesign, error) {
	var design automation.WorkflowDesign
	if err := c.do(ctx, http.MethodPost, "/api/workflows/design", req, &design, "design workflow"); err != nil {
		return nil, err
	}
	return &design, nil
}

// CreateAutomation generates the script for a download-mode automation.
// The returned record carries the generated code in WorkflowCode.
func (c *Client) CreateAutomation(ctx context.Context, req automation.CreateRequest) (*automation.Automation, error) {
	var created automation.Automation
	if err := c.do(ctx, http.MethodPost, "/api/automations/create", req, &created, "create automation"); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListAutomations returns the download-mode automations
func (c *Client) ListAutomations(ctx context.Context) ([]automation.Automation, error) {
	var list []automation.Automation
	if err := c.do(ctx, http.MethodGet, "/api/automations/list", nil, &list, "list automations"); err != nil {
		return nil, err
	}
	return list, nil
}

// GetAutomation fetches one download-mode automation, including its code
func (c *Client) GetAutomation(ctx context.Context, id string) (*automation.Automation, error) {
	var a automation.Automation
	path := "/api/automations/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &a, "get automation"); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAutomation removes a download-mode automation
func (c *Client) DeleteAutomation(ctx context.Context, id string) error {
	path := "/api/automations/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "delete automation")
}

// CreateHostedAutomation registers a cloud automation. The request is
// normalised before sending; validation is the caller's job.
func (c *Client) CreateHostedAutomation(ctx context.Context, req automation.HostedCreateRequest) (*automation.HostedAutomation, error) {
	var h automation.HostedAutomation
	if err := c.do(ctx, http.MethodPost, "/api/hosted-automations/create", req.Normalize(), &h, "create automation"); err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHostedAutomations returns all cloud automations
func (c *Client) ListHostedAutomations(ctx context.Context) ([]automation.HostedAutomation, error) {
	var list []automation.HostedAutomation
	if err := c.do(ctx, http.MethodGet, "/api/hosted-automations/list", nil, &list, "list hosted automations"); err != nil {
		return nil, err
	}
	return list, nil
}

// ToggleHostedAutomation flips a cloud automation between active and paused
func (c *Client) ToggleHostedAutomation(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/hosted-automations/%d/toggle", id)
	return c.do(ctx, http.MethodPut, path, nil, nil, "toggle automation")
}

// DeleteHostedAutomation removes a cloud automation
func (c *Client) DeleteHostedAutomation(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/hosted-automations/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "delete automation")
}
