package urls

// Backend locations

// HostedBackend is the public automation builder API
const HostedBackend = "https://agentic-automation-api.onrender.com"

// LocalBackend is where "autobuilder sandbox" listens by default
const LocalBackend = "http://localhost:8000"

// Help pages linked from forms and error hints

// DiscordWebhookHelp explains how to create a Discord webhook for a channel.
const DiscordWebhookHelp = "https://support.discord.com/hc/en-us/articles/228383668-Intro-to-Webhooks"
