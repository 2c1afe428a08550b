// Package automation defines the data model shared by every autobuilder
// surface: automation types and their configuration field sets, workflow
// designs returned by the backend, download-mode and hosted automation
// records, and the synchronous validators that gate every submission.
//
// The package performs no I/O. The API client serialises these types, the
// TUI renders them, and the CLI and MCP tools validate user input with the
// same functions the interactive forms use.
//
// # Field Sets
//
// Each Type owns an ordered list of Fields. Forms render exactly that list
// and ValidateConfig rejects anything outside it:
//
//	website_monitor   url*, webhook_url*, css_selector
//	price_tracker     product_url*, target_price*, webhook_url*, css_selector
//	discord_notifier  webhook_url*, message*
//	slack_notifier    webhook_url*, message*, channel
//	email_digest      email*, topic*
//
// # Validation
//
// Validation accumulates every field error in one pass into FieldErrors,
// keyed by field name, so a form can show each message beside its field.
package automation
