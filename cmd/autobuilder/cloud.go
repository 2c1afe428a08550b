package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/ui"
	"github.com/agenticauto/autobuilder/internal/urls"
)

var (
	cloudType     string
	cloudName     string
	cloudURL      string
	cloudDiscord  string
	cloudEmail    string
	cloudSelector string
)

var cloudCmd = &cobra.Command{
	Use:   "cloud",
	Short: "Manage cloud automations",
	Long: `Cloud automations are website monitors the backend checks on a
schedule. Changes are reported through a Discord webhook or by email.
The free tier allows 3 automations.`,
}

func init() {
	rootCmd.AddCommand(cloudCmd)
	cloudCmd.AddCommand(cloudCreateCmd, cloudListCmd, cloudToggleCmd, cloudDeleteCmd, cloudWatchCmd)

	f := cloudCreateCmd.Flags()
	f.StringVar(&cloudName, "name", "", "Display name")
	f.StringVar(&cloudURL, "url", "", "Page to watch")
	f.StringVarP(&cloudType, "type", "t", string(automation.WebsiteMonitor), "Automation type (website_monitor, price_tracker)")
	f.IntVar(&intervalMins, "interval", automation.DefaultIntervalMinutes, "Check interval in minutes (10, 30, 60, 180, 360, 720, 1440)")
	f.StringVar(&cloudDiscord, "discord", "", "Discord webhook URL for notifications (see "+urls.DiscordWebhookHelp+")")
	f.StringVar(&cloudEmail, "email", "", "Email address for notifications")
	f.StringVar(&cloudSelector, "selector", "", "CSS selector of the element to compare (default body)")
	_ = cloudCreateCmd.MarkFlagRequired("name")
	_ = cloudCreateCmd.MarkFlagRequired("url")

	cloudDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

var cloudCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a cloud automation",
	Example: `  autobuilder cloud create --name "Pricing page" --url https://example.com/pricing \
    --discord https://discord.com/api/webhooks/1/abc --interval 30`,
	Args: cobra.NoArgs,
	RunE: runCloudCreate,
}

func runCloudCreate(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	typ, err := automation.ParseType(cloudType)
	if err != nil {
		return err
	}

	req := automation.HostedCreateRequest{
		AutomationType:  typ,
		Name:            cloudName,
		IntervalMinutes: intervalMins,
		Config: automation.HostedConfig{
			URL:            cloudURL,
			DiscordWebhook: cloudDiscord,
			Email:          cloudEmail,
			CSSSelector:    cloudSelector,
		},
	}.Normalize()
	if errs := automation.ValidateHostedRequest(req); errs != nil {
		return errs
	}

	rec, err := s.client.CreateHostedAutomation(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("%s: %w", api.MessageOr(err, "Failed to create automation"), err)
	}
	if s.jsonOutput() {
		return s.printer.PrintJSON(rec)
	}
	s.printer.PrintSuccess("Cloud automation created", map[string]string{
		"ID":       strconv.Itoa(rec.ID),
		"Name":     rec.Name,
		"URL":      rec.URL(),
		"Interval": automation.FormatInterval(rec.IntervalMinutes),
	})
	return nil
}

var cloudListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cloud automations and free tier usage",
	Args:  cobra.NoArgs,
	RunE:  runCloudList,
}

func runCloudList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	list, err := s.client.ListHostedAutomations(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list cloud automations: %w", err)
	}
	if s.jsonOutput() {
		return s.printer.PrintJSON(list)
	}

	now := time.Now()
	rows := make([][]string, len(list))
	for i, h := range list {
		rows[i] = []string{
			strconv.Itoa(h.ID),
			h.Name,
			h.URL(),
			ui.Badge(h.IsActive),
			automation.FormatInterval(h.IntervalMinutes),
			automation.FormatLastRun(h.LastRunTime(), now),
			automation.FormatNextRun(h, now),
		}
	}
	s.printer.PrintTable([]string{"ID", "Name", "URL", "Status", "Interval", "Last run", "Next check"}, rows,
		"No cloud automations yet. Create one with 'autobuilder cloud create'.")

	stats := automation.ComputeStats(list)
	s.printer.Println(ui.StepNoteStyle.Render(fmt.Sprintf("  Active %d/%d · %d slots available",
		stats.Active, stats.Limit, stats.Available())))
	return nil
}

func parseHostedID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid automation ID %q", arg)
	}
	return id, nil
}

// findHosted looks a cloud automation up by ID for its name
func findHosted(s *session, cmd *cobra.Command, id int) (*automation.HostedAutomation, error) {
	list, err := s.client.ListHostedAutomations(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to list cloud automations: %w", err)
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("no cloud automation with ID %d", id)
}

var cloudToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Pause or resume a cloud automation",
	Args:  cobra.ExactArgs(1),
	RunE:  runCloudToggle,
}

func runCloudToggle(cmd *cobra.Command, args []string) error {
	id, err := parseHostedID(args[0])
	if err != nil {
		return err
	}
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	if err := s.client.ToggleHostedAutomation(cmd.Context(), id); err != nil {
		return fmt.Errorf("%s: %w", api.MessageOr(err, "Failed to toggle automation"), err)
	}
	h, err := findHosted(s, cmd, id)
	if err != nil {
		return err
	}
	if s.jsonOutput() {
		return s.printer.PrintJSON(h)
	}
	s.printer.PrintSuccess("Cloud automation "+h.StatusLabel(), map[string]string{
		"ID":   strconv.Itoa(h.ID),
		"Name": h.Name,
	})
	return nil
}

var cloudDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a cloud automation",
	Args:  cobra.ExactArgs(1),
	RunE:  runCloudDelete,
}

func runCloudDelete(cmd *cobra.Command, args []string) error {
	id, err := parseHostedID(args[0])
	if err != nil {
		return err
	}
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	h, err := findHosted(s, cmd, id)
	if err != nil {
		return err
	}
	if !assumeYes && !ui.ConfirmDelete(cmd.InOrStdin(), cmd.OutOrStdout(), "cloud automation", h.Name) {
		return nil
	}

	if err := s.client.DeleteHostedAutomation(cmd.Context(), id); err != nil {
		return fmt.Errorf("%s: %w", api.MessageOr(err, "Failed to delete automation"), err)
	}
	if s.jsonOutput() {
		return s.printer.PrintJSON(map[string]any{"id": id, "deleted": true})
	}
	s.printer.PrintSuccess("Cloud automation deleted", map[string]string{"Name": h.Name})
	return nil
}

var cloudWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print cloud automation changes as they happen",
	Long: `Follow the backend event feed and print a line whenever a cloud
automation is created, paused, resumed or deleted. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runCloudWatch,
}

func runCloudWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	events := make(chan api.Event)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Watch(cmd.Context(), events)
		close(events)
	}()

	if !s.jsonOutput() {
		s.printer.Println(ui.StepNoteStyle.Render("  Watching " + s.settings.APIURL + " (Ctrl+C to stop)"))
	}
	for ev := range events {
		if s.jsonOutput() {
			if err := s.printer.PrintJSON(ev); err != nil {
				return err
			}
			continue
		}
		s.printer.Println(fmt.Sprintf("  %s  %-8s  #%d", time.Now().Format(time.TimeOnly), ev.Event, ev.ID))
	}

	err = <-done
	if errors.Is(err, api.ErrFeedUnavailable) {
		return fmt.Errorf("%s does not offer an event feed", s.settings.APIURL)
	}
	return err
}
