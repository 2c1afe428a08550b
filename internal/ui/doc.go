// Package ui renders the output of the non-interactive autobuilder commands.
//
// Unlike the full-screen TUI, these components print once and return:
//
//   - Header: command banner with the parameters it runs with
//   - Progress and Runner: step list for commands made of several backend
//     calls, such as design then generate then save
//   - Result: success, failure and warning boxes; failures carry
//     troubleshooting hints
//   - CodeBox: a generated script under its file name
//   - Printer: the above plus tables and JSON for --format json
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:      "Generate automation",
//	    Command:    "autobuilder generate",
//	    Params:     map[string]string{"Backend": baseURL},
//	    TotalSteps: 3,
//	    StepNames:  []string{"Design workflow", "Generate code", "Save"},
//	    Hints: func(err error) []string {
//	        return []string{api.GetTroubleshootingHint(err)}
//	    },
//	})
//
//	_, err := runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    // ... call the backend ...
//	    onStep(1, "", ui.StepComplete, "4 steps")
//	    return map[string]string{"File": path}, nil
//	})
//
// Logging stays silent unless AUTOBUILDER_LOG_LEVEL or --log-level is set,
// so these boxes are the only output by default.
package ui
