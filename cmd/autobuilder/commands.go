package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/codeview"
	"github.com/agenticauto/autobuilder/internal/config"
	"github.com/agenticauto/autobuilder/internal/discovery"
	"github.com/agenticauto/autobuilder/internal/logging"
	"github.com/agenticauto/autobuilder/internal/ui"
	"github.com/agenticauto/autobuilder/internal/wizard/tui"
)

// Global flags
var (
	cfgFile      string
	outputFormat string
)

// Command flags
var (
	automationType string
	configValues   map[string]string
	intervalMins   int
	force          bool
	assumeYes      bool
	maxLines       int
	saveCode       bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: <config dir>/autobuilder/config.yaml)")
	pf.String("api-url", config.DefaultAPIURL, "Backend base URL")
	pf.Duration("timeout", 0, "HTTP timeout per request (0 = none)")
	pf.String("log-level", "", "Log level (debug, info, warn, error); silent when empty")
	pf.String("log-file", "", "Write logs to this file instead of stderr")
	pf.String("output-dir", ".", "Directory automation.py is written to")
	pf.Bool("watch", true, "Refresh the cloud list from the backend event feed")
	pf.StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(designCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}

// session is what a command needs after settings are resolved
type session struct {
	settings *config.Settings
	creds    *config.Credentials
	client   *api.Client
	printer  *ui.Printer
}

func (s *session) jsonOutput() bool {
	return outputFormat == "json"
}

// newSession resolves settings, starts logging and builds the API client.
// logFallback is used when no log file is configured.
func newSession(cmd *cobra.Command, logFallback string) (*session, error) {
	switch outputFormat {
	case "detailed", "json":
	default:
		return nil, fmt.Errorf("unknown --format %q (valid: detailed, json)", outputFormat)
	}

	settings, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logFile := settings.LogFile
	if logFile == "" {
		logFile = logFallback
	}
	if err := logging.Initialize(settings.LogLevel, logFile); err != nil {
		return nil, err
	}
	logging.Debug("Settings loaded",
		zap.String("api_url", settings.APIURL),
		zap.Duration("timeout", settings.Timeout),
		zap.String("config_file", settings.ConfigFile),
	)

	creds, err := config.LoadCredentials()
	if err != nil {
		logging.Warn("Ignoring unreadable credentials", zap.Error(err))
		creds = &config.Credentials{}
	}

	return &session{
		settings: settings,
		creds:    creds,
		client:   newClient(settings, creds, settings.APIURL),
		printer:  ui.NewPrinter(cmd.OutOrStdout()),
	}, nil
}

// newClient builds a client for baseURL. The saved token is only attached
// when it was issued by that backend.
func newClient(settings *config.Settings, creds *config.Credentials, baseURL string) *api.Client {
	client := api.NewClient(baseURL)
	client.SetTimeout(settings.Timeout)
	client.SetToken(creds.TokenFor(client.BaseURL))
	return client
}

func (s *session) params() map[string]string {
	return map[string]string{"Backend": s.settings.APIURL}
}

// hints wraps the API troubleshooting text for result boxes
func hints(err error) []string {
	if errors.As(err, new(automation.FieldErrors)) {
		return nil
	}
	return strings.Split(api.GetTroubleshootingHint(err), "\n")
}

// ─── interactive ───────────────────────────────────────────

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Create an automation step by step",
	Long: `Open the four-step wizard: describe the task, review the designed
workflow, configure it and download the generated script.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tui.ScreenWizard)
	},
}

func runTUI(cmd *cobra.Command, start tui.Screen) error {
	if !ui.IsTerminal() {
		return fmt.Errorf("the interactive screens need a terminal; see 'autobuilder --help' for scriptable commands")
	}

	// logs would corrupt the screen, so they go to a file
	fallback := ""
	if dir, err := config.GetConfigDir(); err == nil && os.MkdirAll(dir, 0700) == nil {
		fallback = filepath.Join(dir, "autobuilder.log")
	}
	s, err := newSession(cmd, fallback)
	if err != nil {
		return err
	}

	svc := &tui.Services{
		Ctx:       cmd.Context(),
		Client:    s.client,
		BaseURL:   s.client.BaseURL,
		OutputDir: s.settings.OutputDir,
		Watch:     s.settings.Watch,
		Clipboard: codeview.SystemClipboard,
		Scan:      discovery.QuickScan,
		Connect: func(baseURL string) tui.API {
			return newClient(s.settings, s.creds, baseURL)
		},
	}

	logging.Info("Starting interactive session", zap.String("screen", string(start)))
	p := tea.NewProgram(tui.NewAppModel(svc, start), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("interactive session error: %w", err)
	}
	return nil
}

// ─── design ────────────────────────────────────────────────

var designCmd = &cobra.Command{
	Use:   "design <task description>",
	Short: "Design a workflow for a task",
	Long: `Ask the backend to design a workflow for a plain-language task and
print its steps. Without --type the backend picks the automation type.`,
	Example: `  autobuilder design "Tell me when example.com changes"
  autobuilder design --type price_tracker "Watch the headphones on my wishlist"
  autobuilder design "Post a standup reminder to Slack" --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDesign,
}

func init() {
	designCmd.Flags().StringVarP(&automationType, "type", "t", "", "Automation type ("+typeList()+")")
}

func typeList() string {
	names := make([]string, 0, len(automation.AllTypes()))
	for _, t := range automation.AllTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func runDesign(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	task := strings.Join(args, " ")

	var typ automation.Type
	if automationType != "" {
		if typ, err = automation.ParseType(automationType); err != nil {
			return err
		}
	}

	design, err := s.client.DesignWorkflow(cmd.Context(), automation.DesignRequest{TaskDescription: task, AutomationType: typ})
	if err != nil {
		return fmt.Errorf("failed to design workflow: %w", err)
	}

	if s.jsonOutput() {
		return s.printer.PrintJSON(design)
	}

	s.printer.PrintHeader("Workflow design", "autobuilder design", s.params())
	s.printer.Println(ui.ResultValueStyle.Render("  " + design.Description))
	s.printer.Newline()

	rows := make([][]string, len(design.Nodes))
	for i, n := range design.Nodes {
		rows[i] = []string{fmt.Sprintf("%d", i+1), n.Label, n.Description}
	}
	s.printer.PrintTable([]string{"#", "Step", "What it does"}, rows, "The backend returned no steps")
	s.printer.Println(ui.StepNoteStyle.Render(fmt.Sprintf("  Estimated tokens: %d", design.EstimatedTokens)))
	return nil
}

// ─── generate ──────────────────────────────────────────────

var generateCmd = &cobra.Command{
	Use:   "generate <task description>",
	Short: "Design, generate and save an automation script",
	Long: `Run the whole wizard without the interactive screens: design the
workflow, generate the Python script and save it as automation.py in
--output-dir.

Configuration values are passed with --set; the fields depend on --type:
  website_monitor   url, webhook_url, css_selector
  price_tracker     product_url, target_price, webhook_url, css_selector
  discord_notifier  webhook_url, message
  slack_notifier    webhook_url, message, channel
  email_digest      email, topic`,
	Example: `  autobuilder generate --type website_monitor \
    --set url=https://example.com \
    --set webhook_url=https://discord.com/api/webhooks/1/abc \
    "Tell me when example.com changes"

  # Check every 30 minutes and replace an existing script
  autobuilder generate -t price_tracker --interval 30 --force \
    --set product_url=https://shop.example.com/item/42 --set target_price=99.99 \
    --set webhook_url=https://discord.com/api/webhooks/1/abc \
    "Alert me when the headphones drop below 100"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&automationType, "type", "t", "", "Automation type ("+typeList()+")")
	generateCmd.Flags().StringToStringVar(&configValues, "set", nil, "Configuration value as key=value (repeatable)")
	generateCmd.Flags().IntVar(&intervalMins, "interval", automation.DefaultIntervalMinutes, "Run interval in minutes (10, 30, 60, 180, 360, 720, 1440)")
	generateCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing automation.py")
	_ = generateCmd.MarkFlagRequired("type")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	task := strings.Join(args, " ")

	typ, err := automation.ParseType(automationType)
	if err != nil {
		return err
	}
	if !automation.IsIntervalOption(intervalMins) {
		return fmt.Errorf("--interval: %s", automation.MsgInvalidInterval)
	}
	cfg := automation.Config(configValues)
	if errs := automation.ValidateConfig(typ, cfg); errs != nil {
		return errs
	}

	generate := func(ctx context.Context, onStep ui.StepCallback) (map[string]string, error) {
		onStep(1, "", ui.StepRunning, "")
		design, err := s.client.DesignWorkflow(ctx, automation.DesignRequest{TaskDescription: task, AutomationType: typ})
		if err != nil {
			onStep(1, "", ui.StepFailed, "")
			return nil, fmt.Errorf("failed to design workflow: %w", err)
		}
		onStep(1, "", ui.StepComplete, fmt.Sprintf("%d steps", len(design.Nodes)))

		onStep(2, "", ui.StepRunning, "")
		created, err := s.client.CreateAutomation(ctx, automation.NewCreateRequest(task, typ, cfg, intervalMins))
		if err != nil {
			onStep(2, "", ui.StepFailed, "")
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}
		onStep(2, "", ui.StepComplete, fmt.Sprintf("%d lines", codeview.LineCount(created.WorkflowCode)))

		onStep(3, "", ui.StepRunning, "")
		path, err := codeview.Save(s.settings.OutputDir, created.WorkflowCode, force)
		if err != nil {
			onStep(3, "", ui.StepFailed, "")
			return nil, err
		}
		onStep(3, "", ui.StepComplete, path)

		return map[string]string{
			"ID":       created.ID,
			"Name":     created.Name,
			"File":     path,
			"Schedule": automation.FormatInterval(intervalMins),
			"Run it":   "python " + path,
		}, nil
	}

	if s.jsonOutput() {
		details, err := generate(cmd.Context(), func(int, string, ui.StepStatus, string) {})
		if err != nil {
			return err
		}
		return s.printer.PrintJSON(details)
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:      "Generate automation",
		Command:    "autobuilder generate",
		Params:     map[string]string{"Backend": s.settings.APIURL, "Type": typ.Label()},
		TotalSteps: 3,
		StepNames:  []string{"Design workflow", "Generate code", "Save " + codeview.FileName},
		Output:     cmd.OutOrStdout(),
		Hints:      hints,
	})
	_, err = runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
		return generate(cmd.Context(), onStep)
	})
	return err
}

// ─── download-mode records ─────────────────────────────────

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated automations",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	list, err := s.client.ListAutomations(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list automations: %w", err)
	}
	if s.jsonOutput() {
		return s.printer.PrintJSON(list)
	}

	rows := make([][]string, len(list))
	for i, a := range list {
		rows[i] = []string{a.ID, a.Name, a.Type.Label(), string(a.Status), formatTime(a.CreatedAt)}
	}
	s.printer.PrintTable([]string{"ID", "Name", "Type", "Status", "Created"}, rows,
		"No automations yet. Create one with 'autobuilder wizard'.")
	return nil
}

func formatTime(t automation.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the generated script of an automation",
	Example: `  autobuilder show 3f2c...
  autobuilder show 3f2c... --save --force`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().IntVar(&maxLines, "max-lines", 0, "Show at most this many lines (0 = all)")
	showCmd.Flags().BoolVar(&saveCode, "save", false, "Also save the script as automation.py")
	showCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing automation.py")
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	a, err := s.client.GetAutomation(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load automation: %w", err)
	}
	if s.jsonOutput() {
		return s.printer.PrintJSON(a)
	}

	code := a.WorkflowCode
	if ui.IsTerminal() {
		// plain code is still readable when highlighting fails
		code, _ = codeview.Highlight(code, codeview.Options{})
	}
	s.printer.PrintCode(a.Name+" · "+codeview.FileName, code, maxLines)

	if saveCode {
		path, err := codeview.Save(s.settings.OutputDir, a.WorkflowCode, force)
		if err != nil {
			return err
		}
		s.printer.PrintSuccess("Script saved", map[string]string{"File": path})
	}
	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a generated automation",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	a, err := s.client.GetAutomation(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load automation: %w", err)
	}
	if !assumeYes && !ui.ConfirmDelete(cmd.InOrStdin(), cmd.OutOrStdout(), "automation", a.Name) {
		return nil
	}

	if err := s.client.DeleteAutomation(cmd.Context(), a.ID); err != nil {
		return fmt.Errorf("failed to delete automation: %w", err)
	}
	if s.jsonOutput() {
		return s.printer.PrintJSON(map[string]any{"id": a.ID, "deleted": true})
	}
	s.printer.PrintSuccess("Automation deleted", map[string]string{"Name": a.Name})
	return nil
}
