package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenticauto/autobuilder/internal/automation"
)

// Step is the wizard cursor, always between StepDescribe and StepDownload
type Step int

const (
	StepDescribe Step = iota + 1
	StepDesign
	StepConfigure
	StepDownload
)

// Steps lists every step in order
var Steps = []Step{StepDescribe, StepDesign, StepConfigure, StepDownload}

func (s Step) String() string {
	switch s {
	case StepDescribe:
		return "Describe"
	case StepDesign:
		return "Design"
	case StepConfigure:
		return "Configure"
	case StepDownload:
		return "Download"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

var (
	// ErrPending is returned when an action starts while a request is in flight
	ErrPending = errors.New("a request is already in progress")
	// ErrEmptyTask is returned when designing without a task description
	ErrEmptyTask = errors.New("describe what you want to automate first")
	// ErrNoType is returned when creating without an automation type
	ErrNoType = errors.New("choose an automation type first")
)

// StepError reports an action attempted at the wrong step
type StepError struct {
	Action string
	Want   Step
	Got    Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("cannot %s at step %d (%s); expected step %d (%s)",
		e.Action, e.Got, e.Got, e.Want, e.Want)
}

// Wizard is the state of one run through the creation flow.
// The zero value is not ready for use; call New.
type Wizard struct {
	step     Step
	task     string
	typ      automation.Type
	design   *automation.WorkflowDesign
	config   automation.Config
	interval int
	code     string
	pending  bool
}

// New returns a wizard at StepDescribe
func New() *Wizard {
	w := &Wizard{}
	w.Reset()
	return w
}

// Reset returns to StepDescribe and clears all inputs and results
func (w *Wizard) Reset() {
	*w = Wizard{step: StepDescribe, interval: automation.DefaultIntervalMinutes}
}

func (w *Wizard) Step() Step { return w.step }
func (w *Wizard) Task() string { return w.task }
func (w *Wizard) Type() automation.Type { return w.typ }
func (w *Wizard) Design() *automation.WorkflowDesign { return w.design }
func (w *Wizard) Config() automation.Config { return w.config }
func (w *Wizard) Interval() int { return w.interval }
func (w *Wizard) Code() string { return w.code }
func (w *Wizard) Pending() bool { return w.pending }

func (w *Wizard) expect(action string, want Step) error {
	if w.step != want {
		return &StepError{Action: action, Want: want, Got: w.step}
	}
	if w.pending {
		return ErrPending
	}
	return nil
}

// advance moves the cursor forward by one, never past StepDownload
func (w *Wizard) advance() {
	if w.step < StepDownload {
		w.step++
	}
}

// SetTask records the task description
func (w *Wizard) SetTask(task string) error {
	if err := w.expect("edit the task", StepDescribe); err != nil {
		return err
	}
	w.task = task
	return nil
}

// SetType records the automation type. An empty type clears it. The type
// can be chosen while describing or while configuring.
func (w *Wizard) SetType(t automation.Type) error {
	if w.pending {
		return ErrPending
	}
	if w.step != StepDescribe && w.step != StepConfigure {
		return &StepError{Action: "change the type", Want: StepConfigure, Got: w.step}
	}
	if t != "" && !t.Valid() {
		return fmt.Errorf("unknown automation type %q", t)
	}
	w.typ = t
	return nil
}

// CanDescribe reports whether the design action is enabled
func (w *Wizard) CanDescribe() bool {
	return w.step == StepDescribe && !w.pending && strings.TrimSpace(w.task) != ""
}

// BeginDesign marks the design request as in flight and returns it
func (w *Wizard) BeginDesign() (automation.DesignRequest, error) {
	if err := w.expect("design", StepDescribe); err != nil {
		return automation.DesignRequest{}, err
	}
	task := strings.TrimSpace(w.task)
	if task == "" {
		return automation.DesignRequest{}, ErrEmptyTask
	}
	w.pending = true
	return automation.DesignRequest{TaskDescription: task, AutomationType: w.typ}, nil
}

// CompleteDesign reports the design outcome. On success the design is
// stored and the wizard moves to StepDesign; on failure the step is
// unchanged and err is returned.
func (w *Wizard) CompleteDesign(design *automation.WorkflowDesign, err error) error {
	if !w.pending || w.step != StepDescribe {
		return &StepError{Action: "complete a design", Want: StepDescribe, Got: w.step}
	}
	w.pending = false
	if err != nil {
		return err
	}
	if design == nil {
		return errors.New("backend returned no design")
	}
	w.design = design
	w.advance()
	return nil
}

// ConfirmDesign accepts the design and moves to StepConfigure
func (w *Wizard) ConfirmDesign() error {
	if err := w.expect("confirm the design", StepDesign); err != nil {
		return err
	}
	w.advance()
	return nil
}

// BeginCreate validates cfg for the chosen type and, when valid, marks the
// create request as in flight and returns it. Validation failures are
// returned as automation.FieldErrors.
func (w *Wizard) BeginCreate(cfg automation.Config, intervalMinutes int) (automation.CreateRequest, error) {
	if err := w.expect("create", StepConfigure); err != nil {
		return automation.CreateRequest{}, err
	}
	if w.typ == "" {
		return automation.CreateRequest{}, ErrNoType
	}
	if errs := automation.ValidateConfig(w.typ, cfg); errs != nil {
		return automation.CreateRequest{}, errs
	}
	if intervalMinutes <= 0 {
		intervalMinutes = automation.DefaultIntervalMinutes
	}

	w.config = cfg
	w.interval = intervalMinutes
	w.pending = true
	return automation.NewCreateRequest(w.task, w.typ, cfg, intervalMinutes), nil
}

// CompleteCreate reports the create outcome. On success the generated
// code is stored and the wizard moves to StepDownload.
func (w *Wizard) CompleteCreate(code string, err error) error {
	if !w.pending || w.step != StepConfigure {
		return &StepError{Action: "complete a create", Want: StepConfigure, Got: w.step}
	}
	w.pending = false
	if err != nil {
		return err
	}
	w.code = code
	w.advance()
	return nil
}
