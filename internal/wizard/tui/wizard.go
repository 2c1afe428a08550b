package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/logging"
	"github.com/agenticauto/autobuilder/internal/wizard"
)

// describeKeyMap defines key bindings for the describe step
type describeKeyMap struct {
	Switch key.Binding
	Type   key.Binding
	Design key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k describeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Type, k.Design, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k describeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Switch, k.Type, k.Design, k.Back}}
}

// designKeyMap defines key bindings for the design review step
type designKeyMap struct {
	Confirm key.Binding
	Restart key.Binding
	Back    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k designKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Restart, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k designKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Restart, k.Back}}
}

// configureKeyMap defines key bindings for the configure step
type configureKeyMap struct {
	Form       configFormKeyMap
	ChangeType key.Binding
	Back       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k configureKeyMap) ShortHelp() []key.Binding {
	return append(k.Form.ShortHelp(), k.ChangeType, k.Back)
}

// FullHelp returns keybindings for the expanded help view
func (k configureKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// typeChoiceKeyMap defines key bindings for picking a type on the configure step
type typeChoiceKeyMap struct {
	Cycle  key.Binding
	Choose key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k typeChoiceKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cycle, k.Choose, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k typeChoiceKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Cycle, k.Choose, k.Back}}
}

// downloadKeyMap defines key bindings for the final step
type downloadKeyMap struct {
	Viewer  codeViewerKeyMap
	Another key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k downloadKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Viewer.Copy, k.Viewer.Download, k.Another, k.Viewer.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k downloadKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Viewer.Up, k.Viewer.Down}, k.ShortHelp()}
}

// WizardModel drives the four-step creation flow on screen. Step
// transitions are owned by wizard.Wizard; this model only renders the
// current step and turns key presses into wizard actions and backend
// calls.
type WizardModel struct {
	Flow *wizard.Wizard

	// Step 1
	Task       textarea.Model
	TypeSelect selector
	focusType  bool

	// Step 3
	ChoosingType bool
	TypeChoice   selector
	Form         ConfigForm

	// Step 4
	Created *automation.Automation
	Viewer  CodeViewerModel

	// Err is the inline error of the last failed action
	Err string

	Spinner spinner.Model
	Width   int
	Height  int

	Help          help.Model
	DescribeKeys  describeKeyMap
	DesignKeys    designKeyMap
	ConfigureKeys configureKeyMap
	TypeKeys      typeChoiceKeyMap
	DownloadKeys  downloadKeyMap

	svc *Services
}

// NewWizardModel starts a fresh run at the describe step
func NewWizardModel(svc *Services) WizardModel {
	ta := textarea.New()
	ta.Placeholder = "e.g. Tell me on Discord when the price of the Sony WH-1000XM5 on example-shop.com drops below $250"
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetWidth(MinTerminalWidth - 10)
	ta.SetHeight(5)
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := WizardModel{
		Flow:       wizard.New(),
		Task:       ta,
		TypeSelect: newTypeSelector(true),
		TypeChoice: newTypeSelector(false),
		Spinner:    s,
		Help:       help.New(),
		svc:        svc,
	}
	m.DescribeKeys = describeKeyMap{
		Switch: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field")),
		Type:   key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "type")),
		Design: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "design workflow")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "home")),
	}
	m.DesignKeys = designKeyMap{
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "looks good, configure")),
		Restart: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "start over")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "home")),
	}
	m.ConfigureKeys = configureKeyMap{
		Form:       newConfigFormKeys(),
		ChangeType: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "change type")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "home")),
	}
	m.TypeKeys = typeChoiceKeyMap{
		Cycle:  key.NewBinding(key.WithKeys("left", "right", "h", "l"), key.WithHelp("←/→", "choose")),
		Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "home")),
	}
	m.DownloadKeys = downloadKeyMap{
		Viewer:  newCodeViewerKeys(),
		Another: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "create another")),
	}
	return m
}

func newTypeSelector(withAuto bool) selector {
	var opts []option
	if withAuto {
		opts = append(opts, option{Label: "Auto", Value: ""})
	}
	for _, t := range automation.AllTypes() {
		opts = append(opts, option{Label: t.Label(), Value: string(t)})
	}
	return newSelector(opts, "")
}

// Init starts the cursor blink
func (m WizardModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update routes input to the current step
func (m WizardModel) Update(msg tea.Msg) (WizardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.Flow.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case designDoneMsg:
		return m.handleDesignDone(msg), nil

	case createDoneMsg:
		return m.handleCreateDone(msg), nil

	case copyRevertMsg:
		var cmd tea.Cmd
		m.Viewer, cmd = m.Viewer.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Flow.Pending() {
			// one request per action; ignore input until it resolves
			if msg.String() == "esc" {
				return m, goBack
			}
			return m, nil
		}
		switch m.Flow.Step() {
		case wizard.StepDescribe:
			return m.updateDescribe(msg)
		case wizard.StepDesign:
			return m.updateDesign(msg)
		case wizard.StepConfigure:
			return m.updateConfigure(msg)
		case wizard.StepDownload:
			return m.updateDownload(msg)
		}
	}

	if m.Flow.Step() == wizard.StepDescribe && !m.focusType {
		var cmd tea.Cmd
		m.Task, cmd = m.Task.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *WizardModel) setSize(w, h int) {
	m.Width = w
	m.Height = h
	cw := ContentWidth(w)
	m.Task.SetWidth(cw - 4)
	m.Form.SetWidth(cw)
	m.Viewer.SetSize(w, h, 16)
}

func (m WizardModel) updateDescribe(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.DescribeKeys.Back):
		return m, goBack
	case key.Matches(msg, m.DescribeKeys.Design):
		return m.startDesign()
	case key.Matches(msg, m.DescribeKeys.Switch):
		m.focusType = !m.focusType
		if m.focusType {
			m.Task.Blur()
			return m, nil
		}
		return m, m.Task.Focus()
	}

	if m.focusType {
		switch msg.String() {
		case "left", "h":
			m.TypeSelect.Prev()
		case "right", "l", " ":
			m.TypeSelect.Next()
		case "enter":
			return m.startDesign()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Task, cmd = m.Task.Update(msg)
	m.Err = ""
	return m, cmd
}

// startDesign sends the task to the backend
func (m WizardModel) startDesign() (WizardModel, tea.Cmd) {
	if err := m.Flow.SetTask(m.Task.Value()); err != nil {
		m.Err = err.Error()
		return m, nil
	}
	if err := m.Flow.SetType(automation.Type(m.TypeSelect.Value())); err != nil {
		m.Err = err.Error()
		return m, nil
	}
	if !m.Flow.CanDescribe() {
		m.Err = wizard.ErrEmptyTask.Error()
		return m, nil
	}
	req, err := m.Flow.BeginDesign()
	if err != nil {
		m.Err = err.Error()
		return m, nil
	}
	m.Err = ""
	logging.Debug("Designing workflow", zap.String("type", string(req.AutomationType)))
	return m, tea.Batch(designCmd(m.svc, req), m.Spinner.Tick)
}

func (m WizardModel) handleDesignDone(msg designDoneMsg) WizardModel {
	if !m.Flow.Pending() || m.Flow.Step() != wizard.StepDescribe {
		return m
	}
	if err := m.Flow.CompleteDesign(msg.design, msg.err); err != nil {
		m.Err = api.MessageOr(err, "Failed to design workflow. Please try again.")
		logging.Warn("Workflow design failed", zap.Error(err))
		return m
	}
	m.Err = ""
	return m
}

func (m WizardModel) updateDesign(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.DesignKeys.Back):
		return m, goBack
	case key.Matches(msg, m.DesignKeys.Restart):
		return m.restart()
	case key.Matches(msg, m.DesignKeys.Confirm):
		if err := m.Flow.ConfirmDesign(); err != nil {
			m.Err = err.Error()
			return m, nil
		}
		if m.Flow.Type() == "" {
			m.ChoosingType = true
			return m, nil
		}
		m.buildForm(m.Flow.Type())
	}
	return m, nil
}

func (m *WizardModel) buildForm(t automation.Type) {
	m.ChoosingType = false
	svc := m.svc
	flow := m.Flow
	m.Form = NewConfigForm(t, func(cfg automation.Config, interval int) tea.Cmd {
		req, err := flow.BeginCreate(cfg, interval)
		if err != nil {
			return func() tea.Msg { return createDoneMsg{err: err, rejected: true} }
		}
		return createCmd(svc, req)
	})
	m.Form.SetInterval(m.Flow.Interval())
	m.Form.SetWidth(ContentWidth(m.Width))
}

func (m WizardModel) updateConfigure(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	if key.Matches(msg, m.ConfigureKeys.Back) {
		return m, goBack
	}

	if m.ChoosingType {
		switch {
		case key.Matches(msg, m.TypeKeys.Choose):
			t := automation.Type(m.TypeChoice.Value())
			if err := m.Flow.SetType(t); err != nil {
				m.Err = err.Error()
				return m, nil
			}
			m.buildForm(t)
		case msg.String() == "left" || msg.String() == "h":
			m.TypeChoice.Prev()
		case msg.String() == "right" || msg.String() == "l":
			m.TypeChoice.Next()
		}
		return m, nil
	}

	if key.Matches(msg, m.ConfigureKeys.ChangeType) {
		m.TypeChoice.Select(string(m.Flow.Type()))
		m.ChoosingType = true
		return m, nil
	}

	var cmd tea.Cmd
	m.Form, cmd = m.Form.Update(msg)
	if m.Flow.Pending() {
		m.Err = ""
		m.Form.Disabled = true
		return m, tea.Batch(cmd, m.Spinner.Tick)
	}
	return m, cmd
}

func (m WizardModel) handleCreateDone(msg createDoneMsg) WizardModel {
	m.Form.Disabled = false

	if msg.rejected {
		if fe, ok := msg.err.(automation.FieldErrors); ok {
			m.Form.Errors = fe
		} else {
			m.Err = msg.err.Error()
		}
		return m
	}
	if !m.Flow.Pending() || m.Flow.Step() != wizard.StepConfigure {
		return m
	}

	code := ""
	if msg.automation != nil {
		code = msg.automation.WorkflowCode
	}
	if err := m.Flow.CompleteCreate(code, msg.err); err != nil {
		m.Err = api.MessageOr(err, "Failed to create automation. Please try again.")
		logging.Warn("Automation create failed", zap.Error(err))
		return m
	}

	m.Err = ""
	m.Created = msg.automation
	m.Viewer = NewCodeViewerModel("", code, m.svc.outputDir(), m.svc.clipboard())
	m.Viewer.SetSize(m.Width, m.Height, 16)
	return m
}

func (m WizardModel) updateDownload(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.DownloadKeys.Another):
		return m.restart()
	case key.Matches(msg, m.DownloadKeys.Viewer.Back):
		return m, goBack
	}
	var cmd tea.Cmd
	m.Viewer, cmd = m.Viewer.Update(msg)
	return m, cmd
}

// restart is "Create Another": back to step 1 with everything cleared
func (m WizardModel) restart() (WizardModel, tea.Cmd) {
	fresh := NewWizardModel(m.svc)
	fresh.setSize(m.Width, m.Height)
	return fresh, fresh.Init()
}

// View renders the current step inside the application container
func (m WizardModel) View() string {
	var b strings.Builder

	labels := make([]string, len(wizard.Steps))
	for i, s := range wizard.Steps {
		labels[i] = s.String()
	}
	b.WriteString("\n  ")
	b.WriteString(RenderStepIndicator(labels, int(m.Flow.Step())))
	b.WriteString("\n\n")

	var helpText string
	switch m.Flow.Step() {
	case wizard.StepDescribe:
		b.WriteString(m.buildDescribe())
		helpText = m.Help.View(m.DescribeKeys)
	case wizard.StepDesign:
		b.WriteString(m.buildDesign())
		helpText = m.Help.View(m.DesignKeys)
	case wizard.StepConfigure:
		b.WriteString(m.buildConfigure())
		if m.ChoosingType {
			helpText = m.Help.View(m.TypeKeys)
		} else {
			helpText = m.Help.View(m.ConfigureKeys)
		}
	case wizard.StepDownload:
		b.WriteString(m.buildDownload())
		helpText = m.Help.View(m.DownloadKeys)
	}

	if m.Flow.Pending() {
		b.WriteString("\n")
		b.WriteString(SpinnerStyle.Render(m.Spinner.View() + " " + m.pendingText()))
		b.WriteString("\n")
	}
	if m.Err != "" {
		b.WriteString("\n")
		b.WriteString(RenderError(m.Err))
		b.WriteString("\n")
	}

	return RenderApplicationContainer(b.String(), helpText, m.Width, m.Height)
}

func (m WizardModel) pendingText() string {
	if m.Flow.Step() == wizard.StepDescribe {
		return "Designing your workflow..."
	}
	return "Generating your automation..."
}

func (m WizardModel) buildDescribe() string {
	var b strings.Builder
	b.WriteString(RenderTitle("What do you want to automate?"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("Describe the task in plain language. The designer turns it into a workflow."))
	b.WriteString("\n\n")
	b.WriteString(m.Task.View())
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Bold(true).Render("  Automation type")
	if m.focusType {
		label = FocusedInputStyle.Render("→ Automation type")
	}
	b.WriteString(label)
	b.WriteString("\n")
	b.WriteString(m.TypeSelect.View(m.focusType))
	b.WriteString("\n")
	if t := automation.Type(m.TypeSelect.Value()); t != "" {
		b.WriteString(RenderSubtitle("  " + t.Summary()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m WizardModel) buildDesign() string {
	design := m.Flow.Design()
	if design == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(RenderTitle("Your workflow"))
	b.WriteString("\n")
	if design.Description != "" {
		b.WriteString("  " + design.Description)
		b.WriteString("\n\n")
	}
	b.WriteString(RenderWorkflow(design, ContentWidth(m.Width)))
	b.WriteString("\n")
	if design.EstimatedTokens > 0 {
		b.WriteString(RenderSubtitle(fmt.Sprintf("  Estimated tokens per run: %d", design.EstimatedTokens)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderWorkflow renders the design's nodes as cards, one per node in the
// order the backend returned them, joined by arrows
func RenderWorkflow(design *automation.WorkflowDesign, width int) string {
	if design == nil || len(design.Nodes) == 0 {
		return RenderSubtitle("  The design has no steps.")
	}

	typeStyle := lipgloss.NewStyle().Foreground(AccentColor)
	arrow := lipgloss.NewStyle().Foreground(SubtleColor).PaddingLeft(6).Render("│\n▼")
	cardWidth := width - 6
	if cardWidth < 30 {
		cardWidth = 30
	}

	cards := make([]string, 0, len(design.Nodes)*2)
	for i, node := range design.Nodes {
		var c strings.Builder
		c.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d. %s", i+1, node.Label)))
		if node.Type != "" {
			c.WriteString("  ")
			c.WriteString(typeStyle.Render(node.Type))
		}
		if node.Description != "" {
			c.WriteString("\n")
			c.WriteString(node.Description)
		}
		if i > 0 {
			cards = append(cards, arrow)
		}
		cards = append(cards, CardStyle(cardWidth, false).Render(c.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m WizardModel) buildConfigure() string {
	var b strings.Builder
	if m.ChoosingType {
		b.WriteString(RenderTitle("Choose an automation type"))
		b.WriteString("\n")
		b.WriteString(m.TypeChoice.View(true))
		b.WriteString("\n\n")
		b.WriteString(RenderSubtitle("  " + automation.Type(m.TypeChoice.Value()).Summary()))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(RenderTitle("Configure your " + m.Flow.Type().Label()))
	b.WriteString("\n")
	b.WriteString(m.Form.View())
	return b.String()
}

func (m WizardModel) buildDownload() string {
	var b strings.Builder
	b.WriteString(RenderSuccess("Your automation is ready!"))
	b.WriteString("\n")
	if m.Created != nil && m.Created.Name != "" {
		b.WriteString(RenderSubtitle("  " + m.Created.Name))
		b.WriteString("\n")
	}
	b.WriteString(m.Viewer.buildContent())
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("  Run it with: python " + m.savedName()))
	b.WriteString("\n")
	return b.String()
}

func (m WizardModel) savedName() string {
	if m.Viewer.SavedPath != "" {
		return m.Viewer.SavedPath
	}
	return "automation.py"
}
