// Package wizard holds the state of the automation creation flow.
//
// The flow is a linear four-step machine with a single cursor:
//
//	1 Describe   task text and an optional automation type
//	2 Design     the backend's workflow design, shown as step cards
//	3 Configure  type-specific settings collected by the configuration form
//	4 Download   the generated script, ready to copy or save
//
// The cursor moves forward only when the action for the current step
// completes successfully, and moves back only through Reset. While a
// request is in flight the wizard is pending and refuses to start another,
// so a double submission cannot issue two calls.
//
// Wizard performs no I/O. Callers take the request returned by BeginDesign
// or BeginCreate, perform it, and report the outcome with CompleteDesign or
// CompleteCreate. The Bubble Tea screens in package tui drive it this way.
package wizard
