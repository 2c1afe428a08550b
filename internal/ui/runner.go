package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a multi-step command
type RunnerConfig struct {
	Title      string            // Command title (e.g., "Generate automation")
	Command    string            // Full command (e.g., "autobuilder generate")
	Params     map[string]string // Parameters to display in header
	TotalSteps int               // Total number of steps (for progress)
	StepNames  []string          // Names for each step
	Output     io.Writer         // Output writer (default: os.Stdout)

	// Hints returns troubleshooting tips for a failure
	Hints func(err error) []string
}

// Runner prints the header, a line per finished step and a result box for
// a command made of several backend calls.
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()
	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	var prog *Progress
	if config.TotalSteps > 0 {
		prog = NewProgress("", config.TotalSteps)
		prog.SetWidth(width)
		prog.SetStepNames(config.StepNames)
	}

	return &Runner{
		config:   config,
		header:   header,
		progress: prog,
		output:   config.Output,
		width:    width,
	}
}

// Operation is the work a Runner wraps. It reports progress through onStep
// and returns the details shown in the success box.
type Operation func(onStep StepCallback) (map[string]string, error)

// Run prints the header, executes op and prints the outcome
func (r *Runner) Run(op Operation) (map[string]string, error) {
	start := time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := op(r.onStep)
	duration := time.Since(start).Round(time.Millisecond)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		var hints []string
		if r.config.Hints != nil {
			hints = r.config.Hints(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, hints)
		result.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return details, err
	}

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = duration.String()
	result := NewSuccessResult(r.config.Title+" complete", details)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return details, nil
}

// onStep updates the progress tracker and prints finished steps
func (r *Runner) onStep(stepNumber int, name string, status StepStatus, message string) {
	if r.progress == nil || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	if name != "" {
		r.progress.Steps[stepNumber-1].Name = name
	}
	r.progress.UpdateStep(stepNumber, status, message)

	line := r.progress.RenderStep(r.progress.Steps[stepNumber-1])
	if status.Done() {
		_, _ = fmt.Fprintln(r.output, line)
	} else if status == StepRunning {
		// overwritten when the step finishes
		_, _ = fmt.Fprint(r.output, line+"\r")
	}
}
