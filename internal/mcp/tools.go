package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/codeview"
)

type tools struct {
	backend Backend
}

// backendError turns an API failure into the message an agent sees
func backendError(err error, fallback string) error {
	if api.IsCanceled(err) {
		return err
	}
	return errors.New(api.MessageOr(err, fallback))
}

func parseOptionalType(s string) (automation.Type, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return automation.ParseType(s)
}

// design_workflow

type designWorkflowInput struct {
	TaskDescription string `json:"task_description" jsonschema:"What the automation should do, in plain language"`
	AutomationType  string `json:"automation_type,omitempty" jsonschema:"Optional type: website_monitor, price_tracker, discord_notifier, slack_notifier or email_digest"`
}

type designStep struct {
	Number      int    `json:"number"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type designWorkflowOutput struct {
	Description     string       `json:"description"`
	Steps           []designStep `json:"steps"`
	EstimatedTokens int          `json:"estimated_tokens"`
}

func (t *tools) designWorkflow(ctx context.Context, req *mcpsdk.CallToolRequest, input designWorkflowInput) (*mcpsdk.CallToolResult, designWorkflowOutput, error) {
	task := strings.TrimSpace(input.TaskDescription)
	if task == "" {
		return nil, designWorkflowOutput{}, fmt.Errorf("task_description is required")
	}
	typ, err := parseOptionalType(input.AutomationType)
	if err != nil {
		return nil, designWorkflowOutput{}, err
	}

	design, err := t.backend.DesignWorkflow(ctx, automation.DesignRequest{TaskDescription: task, AutomationType: typ})
	if err != nil {
		return nil, designWorkflowOutput{}, backendError(err, "Failed to design workflow")
	}

	out := designWorkflowOutput{
		Description:     design.Description,
		Steps:           make([]designStep, len(design.Nodes)),
		EstimatedTokens: design.EstimatedTokens,
	}
	for i, n := range design.Nodes {
		out.Steps[i] = designStep{Number: i + 1, Type: n.Type, Label: n.Label, Description: n.Description}
	}
	return nil, out, nil
}

// generate_script

type generateScriptInput struct {
	TaskDescription string            `json:"task_description" jsonschema:"What the automation should do; also used to name it"`
	AutomationType  string            `json:"automation_type" jsonschema:"website_monitor, price_tracker, discord_notifier, slack_notifier or email_digest"`
	Config          map[string]string `json:"config" jsonschema:"Configuration fields for the type, e.g. url and webhook_url for website_monitor"`
	IntervalMinutes int               `json:"interval_minutes,omitempty" jsonschema:"Run interval: 10, 30, 60, 180, 360, 720 or 1440. Defaults to 60"`
	OutputDir       string            `json:"output_dir,omitempty" jsonschema:"Directory to write automation.py into; the script is only returned when empty"`
	Overwrite       bool              `json:"overwrite,omitempty" jsonschema:"Replace an existing automation.py in output_dir"`
}

type generateScriptOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Lines int    `json:"lines"`
	Path  string `json:"path,omitempty"`
}

func (t *tools) generateScript(ctx context.Context, req *mcpsdk.CallToolRequest, input generateScriptInput) (*mcpsdk.CallToolResult, generateScriptOutput, error) {
	task := strings.TrimSpace(input.TaskDescription)
	if task == "" {
		return nil, generateScriptOutput{}, fmt.Errorf("task_description is required")
	}
	typ, err := automation.ParseType(input.AutomationType)
	if err != nil {
		return nil, generateScriptOutput{}, err
	}

	interval := input.IntervalMinutes
	if interval == 0 {
		interval = automation.DefaultIntervalMinutes
	}
	if !automation.IsIntervalOption(interval) {
		return nil, generateScriptOutput{}, fmt.Errorf("interval_minutes: %s", automation.MsgInvalidInterval)
	}

	cfg := automation.Config(input.Config)
	if errs := automation.ValidateConfig(typ, cfg); errs != nil {
		return nil, generateScriptOutput{}, errs
	}

	created, err := t.backend.CreateAutomation(ctx, automation.NewCreateRequest(task, typ, cfg, interval))
	if err != nil {
		return nil, generateScriptOutput{}, backendError(err, "Failed to create automation")
	}

	out := generateScriptOutput{
		ID:    created.ID,
		Name:  created.Name,
		Code:  created.WorkflowCode,
		Lines: codeview.LineCount(created.WorkflowCode),
	}
	if input.OutputDir != "" {
		path, err := codeview.Save(input.OutputDir, created.WorkflowCode, input.Overwrite)
		if err != nil {
			return nil, generateScriptOutput{}, fmt.Errorf("script generated but not saved: %w", err)
		}
		out.Path = path
	}
	return nil, out, nil
}
