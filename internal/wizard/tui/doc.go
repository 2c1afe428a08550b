// Package tui implements the full-screen terminal interface of the automation builder.
//
// Built on Bubble Tea, every screen is a model with its own Update and View;
// AppModel owns them all and swaps between them on screenTransitionMsg and
// goBackMsg. Backend calls run as tea.Cmds built in commands.go so Update
// never blocks.
//
// # Screens
//
//   - Home: entry menu
//   - Wizard: Describe, Design, Configure and Download steps for a
//     download-mode automation
//   - CloudForm: creates a hosted automation and redirects to the list
//   - Hosted: cloud automations with stats, toggle and delete
//   - Automations: previously generated scripts
//   - CodeViewer: highlighted script with copy and download
//   - Discovery: mDNS browse for local backends, or manual URL entry
//
// # Usage Example
//
//	svc := &tui.Services{Client: client, BaseURL: settings.APIURL}
//	app := tui.NewAppModel(svc, tui.ScreenHome)
//	program := tea.NewProgram(app, tea.WithAltScreen())
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Layout
//
// All screens use RenderApplicationContainer for the header, the content
// area and the context-sensitive help footer. Colours and borders live in
// styles.go.
//
// # Requests
//
// A screen marks itself pending while a request is in flight and ignores
// the keys that would start another one. Failures are shown inline using
// the server's detail message when there is one; list fetch failures fall
// back to the empty state and are logged.
package tui
