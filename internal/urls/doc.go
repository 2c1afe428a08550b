// Package urls holds the URLs the CLI points users at: the backends it
// talks to by default and the help pages linked from forms and hints.
//
// Usage:
//
//	import "github.com/agenticauto/autobuilder/internal/urls"
//
//	fmt.Printf("Create one first: %s\n", urls.DiscordWebhookHelp)
package urls
