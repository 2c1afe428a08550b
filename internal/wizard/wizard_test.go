package wizard

import (
	"errors"
	"testing"

	"github.com/agenticauto/autobuilder/internal/automation"
)

var testDesign = &automation.WorkflowDesign{
	Nodes: []automation.WorkflowNode{
		{ID: "1", Label: "Fetch"},
		{ID: "2", Label: "Compare"},
	},
}

var validConfig = automation.Config{
	automation.FieldURL:        "https://example.com",
	automation.FieldWebhookURL: "https://discord.com/api/webhooks/1/a",
}

// toConfigure drives a fresh wizard to StepConfigure
func toConfigure(t *testing.T) *Wizard {
	t.Helper()
	w := New()
	if err := w.SetTask("Watch the pricing page"); err != nil {
		t.Fatal(err)
	}
	if err := w.SetType(automation.WebsiteMonitor); err != nil {
		t.Fatal(err)
	}
	if _, err := w.BeginDesign(); err != nil {
		t.Fatal(err)
	}
	if err := w.CompleteDesign(testDesign, nil); err != nil {
		t.Fatal(err)
	}
	if err := w.ConfirmDesign(); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestHappyPath(t *testing.T) {
	w := toConfigure(t)
	if w.Step() != StepConfigure {
		t.Fatalf("Step() = %v", w.Step())
	}

	req, err := w.BeginCreate(validConfig, 30)
	if err != nil {
		t.Fatalf("BeginCreate() error = %v", err)
	}
	if req.Type != automation.WebsiteMonitor || req.Schedule != "@every 30m" || req.Description != "Watch the pricing page" {
		t.Errorf("request = %+v", req)
	}
	if !w.Pending() {
		t.Error("expected pending after BeginCreate")
	}

	if err := w.CompleteCreate("print('ok')", nil); err != nil {
		t.Fatalf("CompleteCreate() error = %v", err)
	}
	if w.Step() != StepDownload || w.Code() != "print('ok')" || w.Pending() {
		t.Errorf("final state step=%v code=%q pending=%v", w.Step(), w.Code(), w.Pending())
	}
}

func TestCanDescribe(t *testing.T) {
	w := New()
	if w.CanDescribe() {
		t.Error("empty task should not enable design")
	}
	_ = w.SetTask("   \n ")
	if w.CanDescribe() {
		t.Error("whitespace task should not enable design")
	}
	if _, err := w.BeginDesign(); !errors.Is(err, ErrEmptyTask) {
		t.Errorf("BeginDesign() error = %v, want ErrEmptyTask", err)
	}
	_ = w.SetTask("do it")
	if !w.CanDescribe() {
		t.Error("task should enable design")
	}
}

// TestFailureLeavesStep checks a failed call does not advance the cursor
func TestFailureLeavesStep(t *testing.T) {
	w := New()
	_ = w.SetTask("x")
	if _, err := w.BeginDesign(); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	if err := w.CompleteDesign(nil, boom); !errors.Is(err, boom) {
		t.Errorf("CompleteDesign() = %v, want boom", err)
	}
	if w.Step() != StepDescribe || w.Pending() || w.Design() != nil {
		t.Errorf("state after failure: step=%v pending=%v", w.Step(), w.Pending())
	}

	w = toConfigure(t)
	if _, err := w.BeginCreate(validConfig, 60); err != nil {
		t.Fatal(err)
	}
	if err := w.CompleteCreate("", boom); !errors.Is(err, boom) {
		t.Errorf("CompleteCreate() = %v", err)
	}
	if w.Step() != StepConfigure || w.Code() != "" {
		t.Errorf("create failure advanced to %v", w.Step())
	}
}

func TestDoubleSubmission(t *testing.T) {
	w := New()
	_ = w.SetTask("x")
	if _, err := w.BeginDesign(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.BeginDesign(); !errors.Is(err, ErrPending) {
		t.Errorf("second BeginDesign() = %v, want ErrPending", err)
	}
	if err := w.SetTask("y"); !errors.Is(err, ErrPending) {
		t.Errorf("SetTask while pending = %v", err)
	}
	if w.CanDescribe() {
		t.Error("CanDescribe should be false while pending")
	}
}

func TestNoSkipping(t *testing.T) {
	w := New()
	var stepErr *StepError

	if err := w.ConfirmDesign(); !errors.As(err, &stepErr) {
		t.Errorf("ConfirmDesign at step 1 = %v", err)
	}
	if _, err := w.BeginCreate(validConfig, 60); !errors.As(err, &stepErr) {
		t.Errorf("BeginCreate at step 1 = %v", err)
	}
	if err := w.CompleteDesign(testDesign, nil); !errors.As(err, &stepErr) {
		t.Errorf("CompleteDesign without BeginDesign = %v", err)
	}
	if w.Step() != StepDescribe {
		t.Errorf("Step() = %v", w.Step())
	}
}

func TestBeginCreate_Validation(t *testing.T) {
	w := toConfigure(t)

	_, err := w.BeginCreate(automation.Config{automation.FieldURL: "not-a-url"}, 60)
	var fieldErrs automation.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("BeginCreate() error = %v, want FieldErrors", err)
	}
	if fieldErrs[automation.FieldURL] != automation.MsgInvalidURL || fieldErrs[automation.FieldWebhookURL] != automation.MsgWebhookRequired {
		t.Errorf("field errors = %v", fieldErrs)
	}
	if w.Pending() {
		t.Error("invalid config must not mark pending")
	}
}

func TestBeginCreate_NeedsType(t *testing.T) {
	w := New()
	_ = w.SetTask("x")
	_, _ = w.BeginDesign()
	_ = w.CompleteDesign(testDesign, nil)
	_ = w.ConfirmDesign()

	if _, err := w.BeginCreate(validConfig, 60); !errors.Is(err, ErrNoType) {
		t.Errorf("BeginCreate() = %v, want ErrNoType", err)
	}
	if err := w.SetType(automation.WebsiteMonitor); err != nil {
		t.Fatalf("SetType at configure = %v", err)
	}
	if _, err := w.BeginCreate(validConfig, 60); err != nil {
		t.Errorf("BeginCreate() = %v", err)
	}
}

// TestReset checks the cursor bounds and that reset clears everything
func TestReset(t *testing.T) {
	w := toConfigure(t)
	_, _ = w.BeginCreate(validConfig, 60)
	_ = w.CompleteCreate("code", nil)

	if w.Step() != StepDownload {
		t.Fatalf("Step() = %v", w.Step())
	}
	w.advance()
	if w.Step() != StepDownload {
		t.Errorf("cursor exceeded 4: %v", w.Step())
	}

	w.Reset()
	if w.Step() != StepDescribe || w.Task() != "" || w.Type() != "" || w.Design() != nil || w.Code() != "" || w.Pending() {
		t.Errorf("Reset left state behind: %+v", w)
	}
}

func TestSetType_Invalid(t *testing.T) {
	w := New()
	if err := w.SetType("teleporter"); err == nil {
		t.Error("expected error for unknown type")
	}
	if err := w.SetType(""); err != nil {
		t.Errorf("clearing type = %v", err)
	}
}

func TestStepString(t *testing.T) {
	want := []string{"Describe", "Design", "Configure", "Download"}
	for i, s := range Steps {
		if s.String() != want[i] || int(s) != i+1 {
			t.Errorf("step %d = %d %q", i, s, s.String())
		}
	}
}
