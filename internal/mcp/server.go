// Package mcpserver exposes the automation builder to MCP clients. Agents
// can design workflows, generate scripts and manage cloud automations
// through the same backend the CLI talks to.
package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/version"
)

// Backend is the subset of the API client the tools call
type Backend interface {
	DesignWorkflow(ctx context.Context, req automation.DesignRequest) (*automation.WorkflowDesign, error)
	CreateAutomation(ctx context.Context, req automation.CreateRequest) (*automation.Automation, error)
	ListHostedAutomations(ctx context.Context) ([]automation.HostedAutomation, error)
	CreateHostedAutomation(ctx context.Context, req automation.HostedCreateRequest) (*automation.HostedAutomation, error)
	ToggleHostedAutomation(ctx context.Context, id int) error
	DeleteHostedAutomation(ctx context.Context, id int) error
}

// NewServer builds an MCP server with every tool registered against backend
func NewServer(backend Backend) *mcpsdk.Server {
	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "autobuilder",
			Version: version.Version,
		},
		nil,
	)

	t := &tools{backend: backend}

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "design_workflow",
		Description: "Design a workflow for a plain-language automation task. Returns the ordered steps.",
	}, t.designWorkflow)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "generate_script",
		Description: "Generate a runnable Python script for an automation and optionally save it as automation.py",
	}, t.generateScript)

	registerHostedTools(server, t)

	return server
}

// RunServer serves the tools over stdio until ctx is done or the client
// disconnects.
func RunServer(ctx context.Context, backend Backend) error {
	return NewServer(backend).Run(ctx, &mcpsdk.StdioTransport{})
}
