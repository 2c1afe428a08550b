package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/logging"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenHome        Screen = "home"
	ScreenWizard      Screen = "wizard"
	ScreenCloudForm   Screen = "cloudform"
	ScreenHosted      Screen = "hosted"
	ScreenAutomations Screen = "automations"
	ScreenCodeViewer  Screen = "codeviewer"
	ScreenDiscovery   Screen = "discovery"
)

// Messages for screen transitions
type screenTransitionMsg struct {
	screen Screen
	data   interface{}
}

type goBackMsg struct{}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	HomeModel        HomeModel
	WizardModel      WizardModel
	CloudFormModel   CloudFormModel
	HostedModel      HostedModel
	AutomationsModel AutomationsModel
	CodeViewerModel  CodeViewerModel
	DiscoveryModel   DiscoveryModel

	// Shared application state
	Services *Services

	// UI state
	Width  int
	Height int
}

// NewAppModel creates a new application model starting at the specified screen
func NewAppModel(svc *Services, startScreen Screen) AppModel {
	if svc == nil {
		svc = &Services{}
	}
	SetHeaderTarget(svc.BaseURL)

	model := AppModel{
		CurrentScreen: ScreenHome,
		HomeModel:     NewHomeModel(svc.Connect != nil),
		Services:      svc,
	}
	if startScreen != "" && startScreen != ScreenHome {
		model.PreviousScreen = ScreenHome
		model = model.initScreen(startScreen, nil)
	}
	return model
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenWizard:
		return m.WizardModel.Init()
	case ScreenCloudForm:
		return m.CloudFormModel.Init()
	case ScreenHosted:
		return m.HostedModel.Init()
	case ScreenAutomations:
		return m.AutomationsModel.Init()
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resize()
		// the discovery list sizes itself
		if m.CurrentScreen == ScreenDiscovery {
			return m.updateCurrentScreen(msg)
		}
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			m.HostedModel.Close()
			return m, tea.Quit
		}

	case screenTransitionMsg:
		return m.transitionTo(msg.screen, msg.data)

	case goBackMsg:
		return m.goBack()
	}

	return m.updateCurrentScreen(msg)
}

// resize propagates the terminal size to the active screen; the others
// are rebuilt on entry
func (m *AppModel) resize() {
	w, h := m.Width, m.Height
	m.HomeModel.Width, m.HomeModel.Height = w, h

	switch m.CurrentScreen {
	case ScreenWizard:
		m.WizardModel.setSize(w, h)
	case ScreenCloudForm:
		m.CloudFormModel.Width, m.CloudFormModel.Height = w, h
	case ScreenHosted:
		m.HostedModel.Width, m.HostedModel.Height = w, h
	case ScreenAutomations:
		m.AutomationsModel.Width, m.AutomationsModel.Height = w, h
	case ScreenCodeViewer:
		m.CodeViewerModel.SetSize(w, h, 12)
	case ScreenDiscovery:
		m.DiscoveryModel.Width, m.DiscoveryModel.Height = w, h
	}
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenHome:
		m.HomeModel, cmd = m.HomeModel.Update(msg)

	case ScreenWizard:
		m.WizardModel, cmd = m.WizardModel.Update(msg)

	case ScreenCloudForm:
		m.CloudFormModel, cmd = m.CloudFormModel.Update(msg)

	case ScreenHosted:
		m.HostedModel, cmd = m.HostedModel.Update(msg)

	case ScreenAutomations:
		m.AutomationsModel, cmd = m.AutomationsModel.Update(msg)

	case ScreenCodeViewer:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.CodeViewerModel.Keys.Back) {
			return m.goBack()
		}
		m.CodeViewerModel, cmd = m.CodeViewerModel.Update(msg)

	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		// Check if user selected a backend
		if url := m.DiscoveryModel.SelectedURL(); url != "" {
			return m.connect(url)
		}
	}

	return m, cmd
}

// connect points every screen at the backend at url
func (m AppModel) connect(url string) (tea.Model, tea.Cmd) {
	svc := m.Services
	if svc.Connect != nil {
		svc.Client = svc.Connect(url)
		svc.BaseURL = url
		SetHeaderTarget(url)
		m.HomeModel.Notice = "Connected to " + url
		logging.Info("Switched backend", zap.String("url", url))
	}
	m.PreviousScreen = ""
	return m.transitionTo(ScreenHome, nil)
}

// initScreen builds a fresh model for screen without running its Init
func (m AppModel) initScreen(screen Screen, data interface{}) AppModel {
	if m.CurrentScreen == ScreenHosted && screen != ScreenHosted {
		m.HostedModel.Close()
	}
	m.CurrentScreen = screen
	svc := m.Services

	switch screen {
	case ScreenWizard:
		m.WizardModel = NewWizardModel(svc)
	case ScreenCloudForm:
		m.CloudFormModel = NewCloudFormModel(svc)
	case ScreenHosted:
		m.HostedModel = NewHostedModel(svc)
	case ScreenAutomations:
		m.AutomationsModel = NewAutomationsModel(svc)
	case ScreenCodeViewer:
		title, code := "Generated code", ""
		if a, ok := data.(*automation.Automation); ok && a != nil {
			title, code = a.Name, a.WorkflowCode
		}
		m.CodeViewerModel = NewCodeViewerModel(title, code, svc.outputDir(), svc.clipboard())
	case ScreenDiscovery:
		m.DiscoveryModel = NewDiscoveryModel(svc)
	}
	m.resize()
	return m
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen, data interface{}) (tea.Model, tea.Cmd) {
	if screen != m.CurrentScreen {
		m.PreviousScreen = m.CurrentScreen
	}
	m = m.initScreen(screen, data)
	cmd := m.Init()

	if screen == ScreenDiscovery {
		// the list needs a size message to lay out
		w, h := m.Width, m.Height
		sizeCmd := func() tea.Msg { return tea.WindowSizeMsg{Width: w, Height: h} }
		if w > 0 {
			cmd = tea.Batch(cmd, sizeCmd)
		}
	}
	return m, cmd
}

// goBack returns to the screen a user would expect from the current one
func (m AppModel) goBack() (tea.Model, tea.Cmd) {
	switch m.CurrentScreen {
	case ScreenHome:
		return m, tea.Quit

	case ScreenCodeViewer:
		if m.PreviousScreen == ScreenAutomations {
			return m.transitionTo(ScreenAutomations, nil)
		}

	case ScreenCloudForm:
		if m.PreviousScreen == ScreenHosted {
			return m.transitionTo(ScreenHosted, nil)
		}
	}

	m.PreviousScreen = ""
	return m.transitionTo(ScreenHome, nil)
}

// View renders the current screen
// Each screen handles its own container using RenderApplicationContainer()
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenHome:
		return m.HomeModel.View()
	case ScreenWizard:
		return m.WizardModel.View()
	case ScreenCloudForm:
		return m.CloudFormModel.View()
	case ScreenHosted:
		return m.HostedModel.View()
	case ScreenAutomations:
		return m.AutomationsModel.View()
	case ScreenCodeViewer:
		return m.CodeViewerModel.View()
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	default:
		return "Unknown screen"
	}
}
