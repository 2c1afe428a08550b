package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/wizard"
)

var threeSteps = &automation.WorkflowDesign{
	Nodes: []automation.WorkflowNode{
		{ID: "a", Type: "fetch", Label: "Fetch page"},
		{ID: "b", Type: "compare", Label: "Compare snapshot", Description: "Diff against the last run"},
		{ID: "c", Type: "notify", Label: "Send alert"},
	},
	Edges: []automation.WorkflowEdge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
}

func TestRenderWorkflowKeepsNodeOrder(t *testing.T) {
	out := RenderWorkflow(threeSteps, 80)

	last := -1
	for i, want := range []string{"1. Fetch page", "2. Compare snapshot", "3. Send alert"} {
		idx := strings.Index(out, want)
		if idx < 0 {
			t.Fatalf("card %d %q missing from:\n%s", i, want, out)
		}
		if idx <= last {
			t.Errorf("card %q rendered out of order", want)
		}
		last = idx
	}
	if !strings.Contains(out, "Diff against the last run") {
		t.Error("node description not rendered")
	}
}

func TestRenderWorkflowEmpty(t *testing.T) {
	for _, d := range []*automation.WorkflowDesign{nil, {}} {
		if out := RenderWorkflow(d, 80); !strings.Contains(out, "no steps") {
			t.Errorf("RenderWorkflow(%v) = %q", d, out)
		}
	}
}

// designed drives a wizard through step 1 with fake's design
func designed(t *testing.T, fake *fakeAPI, typ automation.Type) WizardModel {
	t.Helper()
	m := NewWizardModel(&Services{Client: fake, OutputDir: t.TempDir()})
	m.Task.SetValue("Tell me when the pricing page changes")
	m.TypeSelect.Select(string(typ))

	m, cmd := m.Update(keyType(tea.KeyCtrlS))
	if !m.Flow.Pending() {
		t.Fatalf("design not started, Err = %q", m.Err)
	}
	done, ok := findMsg[designDoneMsg](collect(cmd))
	if !ok {
		t.Fatal("design command did not return a result")
	}
	m, _ = m.Update(done)
	return m
}

func TestWizardEmptyTaskBlocked(t *testing.T) {
	fake := newFakeAPI()
	m := NewWizardModel(&Services{Client: fake})
	m.Task.SetValue("   ")

	m, cmd := m.Update(keyType(tea.KeyCtrlS))
	if cmd != nil {
		t.Error("empty task should not issue a request")
	}
	if m.Flow.Step() != wizard.StepDescribe || m.Err == "" {
		t.Errorf("step = %v, Err = %q", m.Flow.Step(), m.Err)
	}
	if fake.count("design") != 0 {
		t.Error("backend called for an empty task")
	}
}

func TestWizardFullFlow(t *testing.T) {
	fake := newFakeAPI()
	fake.design = threeSteps
	fake.created = &automation.Automation{ID: "7", Name: "Pricing", WorkflowCode: "print('hi')\n"}

	m := designed(t, fake, automation.WebsiteMonitor)
	if m.Flow.Step() != wizard.StepDesign {
		t.Fatalf("step = %v, want design; Err = %q", m.Flow.Step(), m.Err)
	}
	m.setSize(100, 60)
	if view := m.View(); !strings.Contains(view, "3. Send alert") {
		t.Error("design view does not show the workflow cards")
	}

	m, _ = m.Update(keyType(tea.KeyEnter))
	if m.Flow.Step() != wizard.StepConfigure || m.ChoosingType {
		t.Fatalf("step = %v choosing = %v", m.Flow.Step(), m.ChoosingType)
	}
	if m.Form.Type != automation.WebsiteMonitor {
		t.Errorf("form type = %v", m.Form.Type)
	}

	m.Form.SetValue(automation.FieldURL, "https://example.com/pricing")
	m.Form.SetValue(automation.FieldWebhookURL, "https://discord.com/api/webhooks/1/x")
	m, cmd := m.Update(keyType(tea.KeyCtrlS))
	if !m.Flow.Pending() || !m.Form.Disabled {
		t.Fatalf("create not pending, form errors = %v", m.Form.Errors)
	}

	// a second submit while pending is ignored
	if _, again := m.Update(keyType(tea.KeyCtrlS)); again != nil {
		t.Error("submit while pending should do nothing")
	}

	done, ok := findMsg[createDoneMsg](collect(cmd))
	if !ok {
		t.Fatal("create command did not return a result")
	}
	m, _ = m.Update(done)
	if m.Flow.Step() != wizard.StepDownload {
		t.Fatalf("step = %v, Err = %q", m.Flow.Step(), m.Err)
	}
	if m.Viewer.Code != "print('hi')\n" {
		t.Errorf("viewer code = %q", m.Viewer.Code)
	}
	if fake.count("create") != 1 {
		t.Errorf("create called %d times", fake.count("create"))
	}

	m, _ = m.Update(keyRunes("n"))
	if m.Flow.Step() != wizard.StepDescribe || m.Task.Value() != "" {
		t.Errorf("create another did not reset: step=%v task=%q", m.Flow.Step(), m.Task.Value())
	}
}

func TestWizardAutoTypeAsksForType(t *testing.T) {
	fake := newFakeAPI()
	fake.design = threeSteps

	m := designed(t, fake, "")
	m, _ = m.Update(keyType(tea.KeyEnter))
	if !m.ChoosingType {
		t.Fatal("expected the type chooser after confirming an untyped design")
	}

	m, _ = m.Update(keyType(tea.KeyRight))
	m, _ = m.Update(keyType(tea.KeyEnter))
	if m.ChoosingType || m.Flow.Type() != automation.PriceTracker {
		t.Errorf("type = %v choosing = %v", m.Flow.Type(), m.ChoosingType)
	}
	if _, ok := m.Form.Type.Field(automation.FieldTargetPrice); !ok {
		t.Error("price tracker form missing target price")
	}
}

func TestWizardDesignErrorShowsDetail(t *testing.T) {
	fake := newFakeAPI()
	fake.designErr = &api.Error{Type: api.ErrTypeHTTP, StatusCode: 422, Detail: "Task description too vague"}

	m := designed(t, fake, automation.WebsiteMonitor)
	if m.Flow.Step() != wizard.StepDescribe {
		t.Errorf("step = %v, want describe", m.Flow.Step())
	}
	if m.Err != "Task description too vague" {
		t.Errorf("Err = %q", m.Err)
	}

	// without a detail the generic message is used
	fake.designErr = errors.New("boom")
	m = designed(t, fake, automation.WebsiteMonitor)
	if !strings.Contains(m.Err, "Failed to design workflow") {
		t.Errorf("Err = %q", m.Err)
	}
}

func TestWizardCreateErrorStaysOnConfigure(t *testing.T) {
	fake := newFakeAPI()
	fake.design = threeSteps
	fake.createErr = &api.Error{Type: api.ErrTypeHTTP, StatusCode: 500, Detail: "Code generation failed"}

	m := designed(t, fake, automation.DiscordNotifier)
	m, _ = m.Update(keyType(tea.KeyEnter))
	m.Form.SetValue(automation.FieldWebhookURL, "https://discord.com/api/webhooks/1/x")
	m.Form.SetValue(automation.FieldMessage, "standup")

	m, cmd := m.Update(keyType(tea.KeyCtrlS))
	done, _ := findMsg[createDoneMsg](collect(cmd))
	m, _ = m.Update(done)

	if m.Flow.Step() != wizard.StepConfigure || m.Flow.Pending() {
		t.Errorf("step = %v pending = %v", m.Flow.Step(), m.Flow.Pending())
	}
	if m.Err != "Code generation failed" || m.Form.Disabled {
		t.Errorf("Err = %q disabled = %v", m.Err, m.Form.Disabled)
	}
	if got := m.Form.Values()[automation.FieldMessage]; got != "standup" {
		t.Errorf("form input lost: %q", got)
	}
}

func TestWizardStaleDesignIgnored(t *testing.T) {
	fake := newFakeAPI()
	m := NewWizardModel(&Services{Client: fake})

	m, _ = m.Update(designDoneMsg{design: threeSteps})
	if m.Flow.Step() != wizard.StepDescribe || m.Flow.Design() != nil {
		t.Error("a result for no outstanding request must be ignored")
	}
}
