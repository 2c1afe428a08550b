// Package sandbox is an in-memory stand-in for the automation builder
// backend.
//
// It serves the same HTTP API as the hosted service so the CLI, the TUI
// and the MCP server can be exercised without network access or an
// account:
//
//   - POST /api/workflows/design returns a fixed workflow per automation
//     type; tasks without a type are matched on keywords
//   - POST /api/automations/create renders a runnable Python script
//   - /api/hosted-automations/* keeps cloud automations with the free tier
//     limit of 3
//   - /api/auth/* issues bearer tokens for in-memory accounts
//   - GET /ws/hosted-automations streams {"event","id"} for every hosted
//     create, toggle and delete
//
// Errors use FastAPI's {"detail": ...} envelope: a string for domain
// errors and a list of {loc, msg, type} entries for validation errors.
//
// # Usage Example
//
//	srv, err := sandbox.New(&sandbox.Config{Port: 8000, Advertise: true})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
//
// With Advertise set the sandbox registers "_autobuilder._tcp" over mDNS,
// so "autobuilder discover" and the TUI's backend finder list it.
//
// State is lost when the process exits.
package sandbox
