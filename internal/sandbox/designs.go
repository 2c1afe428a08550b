package sandbox

import (
	"strconv"
	"strings"

	"github.com/agenticauto/autobuilder/internal/automation"
)

type step struct {
	kind, label, description string
}

var designSteps = map[automation.Type][]step{
	automation.WebsiteMonitor: {
		{"trigger", "Schedule", "Runs on the chosen interval"},
		{"fetch", "Fetch page", "Download the watched page"},
		{"compare", "Compare content", "Hash the selected element and compare it with the previous run"},
		{"notify", "Send notification", "Post to the webhook when the content changed"},
	},
	automation.PriceTracker: {
		{"trigger", "Schedule", "Runs on the chosen interval"},
		{"fetch", "Fetch product page", "Download the product page"},
		{"extract", "Extract price", "Read the price from the selected element"},
		{"compare", "Check target price", "Continue only when the price is at or below the target"},
		{"notify", "Send alert", "Post the new price to the webhook"},
	},
	automation.DiscordNotifier: {
		{"trigger", "Schedule", "Runs on the chosen interval"},
		{"compose", "Compose message", "Fill in the message text"},
		{"notify", "Post to Discord", "Send the message through the Discord webhook"},
	},
	automation.SlackNotifier: {
		{"trigger", "Schedule", "Runs on the chosen interval"},
		{"compose", "Compose message", "Fill in the message and target channel"},
		{"notify", "Post to Slack", "Send the message through the Slack webhook"},
	},
	automation.EmailDigest: {
		{"trigger", "Schedule", "Runs on the chosen interval"},
		{"fetch", "Collect articles", "Search for recent items about the topic"},
		{"summarise", "Summarise", "Condense the items into a short digest"},
		{"notify", "Send email", "Mail the digest to the configured address"},
	},
}

// keywords map task words to a type when the request leaves the type open.
// The first match in this order wins.
var keywords = []struct {
	words []string
	t     automation.Type
}{
	{[]string{"price", "cheaper", "discount", "deal"}, automation.PriceTracker},
	{[]string{"slack"}, automation.SlackNotifier},
	{[]string{"discord"}, automation.DiscordNotifier},
	{[]string{"email", "digest", "newsletter", "summary"}, automation.EmailDigest},
}

// InferType picks an automation type for a task description. Tasks that
// mention nothing recognisable become website monitors.
func InferType(task string) automation.Type {
	lower := strings.ToLower(task)
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(lower, w) {
				return k.t
			}
		}
	}
	return automation.WebsiteMonitor
}

// Design returns the workflow for a request. The same request always yields
// the same design.
func Design(req automation.DesignRequest) automation.WorkflowDesign {
	t := req.AutomationType
	if !t.Valid() {
		t = InferType(req.TaskDescription)
	}

	steps := designSteps[t]
	design := automation.WorkflowDesign{
		Nodes:       make([]automation.WorkflowNode, len(steps)),
		Edges:       make([]automation.WorkflowEdge, 0, len(steps)-1),
		Description: t.Label() + ": " + strings.Join(strings.Fields(req.TaskDescription), " "),
	}
	for i, s := range steps {
		id := strconv.Itoa(i + 1)
		design.Nodes[i] = automation.WorkflowNode{ID: id, Type: s.kind, Label: s.label, Description: s.description}
		if i > 0 {
			design.Edges = append(design.Edges, automation.WorkflowEdge{Source: strconv.Itoa(i), Target: id})
		}
	}
	design.EstimatedTokens = 400 + 150*len(steps) + len([]rune(req.TaskDescription))
	return design
}
