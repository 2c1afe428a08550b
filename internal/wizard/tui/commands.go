package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/codeview"
	"github.com/agenticauto/autobuilder/internal/discovery"
	"github.com/agenticauto/autobuilder/internal/logging"
)

// API is the subset of api.Client the screens call
type API interface {
	DesignWorkflow(ctx context.Context, req automation.DesignRequest) (*automation.WorkflowDesign, error)
	CreateAutomation(ctx context.Context, req automation.CreateRequest) (*automation.Automation, error)
	ListAutomations(ctx context.Context) ([]automation.Automation, error)
	GetAutomation(ctx context.Context, id string) (*automation.Automation, error)
	DeleteAutomation(ctx context.Context, id string) error
	CreateHostedAutomation(ctx context.Context, req automation.HostedCreateRequest) (*automation.HostedAutomation, error)
	ListHostedAutomations(ctx context.Context) ([]automation.HostedAutomation, error)
	ToggleHostedAutomation(ctx context.Context, id int) error
	DeleteHostedAutomation(ctx context.Context, id int) error
	Watch(ctx context.Context, events chan<- api.Event) error
}

var _ API = (*api.Client)(nil)

// Services carries what the screens share: the backend client, the
// program context and local settings.
type Services struct {
	Ctx       context.Context
	Client    API
	BaseURL   string
	OutputDir string
	Watch     bool

	// Connect builds a client for a backend picked on the discovery screen.
	// Nil disables switching backends.
	Connect func(baseURL string) API

	// Clipboard defaults to the system clipboard
	Clipboard codeview.CopyFunc

	// Scan defaults to an mDNS browse
	Scan func(ctx context.Context) ([]*discovery.Backend, error)

	// Now defaults to time.Now
	Now func() time.Time
}

func (s *Services) context() context.Context {
	if s == nil || s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

func (s *Services) outputDir() string {
	if s == nil || s.OutputDir == "" {
		return "."
	}
	return s.OutputDir
}

func (s *Services) clipboard() codeview.CopyFunc {
	if s == nil {
		return nil
	}
	return s.Clipboard
}

func (s *Services) now() time.Time {
	if s == nil || s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Results of backend calls
type designDoneMsg struct {
	design *automation.WorkflowDesign
	err    error
}

type createDoneMsg struct {
	automation *automation.Automation
	err        error

	// rejected is set when the request never left the client
	rejected bool
}

type hostedLoadedMsg struct {
	items []automation.HostedAutomation
	err   error
}

type hostedMutatedMsg struct {
	action string
	id     int
	err    error
}

type cloudCreatedMsg struct {
	record *automation.HostedAutomation
	err    error
}

type automationsLoadedMsg struct {
	items []automation.Automation
	err   error
}

type automationFetchedMsg struct {
	automation *automation.Automation
	err        error
}

type automationDeletedMsg struct {
	id  string
	err error
}

type backendsFoundMsg struct {
	backends []*discovery.Backend
	err      error
}

// watchEventMsg carries one event from the hosted automation feed
type watchEventMsg struct {
	event api.Event
	ch    <-chan api.Event
}

// watchStoppedMsg is sent once the event channel closes
type watchStoppedMsg struct{}

func designCmd(s *Services, req automation.DesignRequest) tea.Cmd {
	return func() tea.Msg {
		design, err := s.Client.DesignWorkflow(s.context(), req)
		return designDoneMsg{design: design, err: err}
	}
}

func createCmd(s *Services, req automation.CreateRequest) tea.Cmd {
	return func() tea.Msg {
		a, err := s.Client.CreateAutomation(s.context(), req)
		return createDoneMsg{automation: a, err: err}
	}
}

func loadHostedCmd(s *Services) tea.Cmd {
	return func() tea.Msg {
		items, err := s.Client.ListHostedAutomations(s.context())
		return hostedLoadedMsg{items: items, err: err}
	}
}

func toggleHostedCmd(s *Services, id int) tea.Cmd {
	return func() tea.Msg {
		err := s.Client.ToggleHostedAutomation(s.context(), id)
		return hostedMutatedMsg{action: "toggle", id: id, err: err}
	}
}

func deleteHostedCmd(s *Services, id int) tea.Cmd {
	return func() tea.Msg {
		err := s.Client.DeleteHostedAutomation(s.context(), id)
		return hostedMutatedMsg{action: "delete", id: id, err: err}
	}
}

func createHostedCmd(s *Services, req automation.HostedCreateRequest) tea.Cmd {
	return func() tea.Msg {
		rec, err := s.Client.CreateHostedAutomation(s.context(), req)
		return cloudCreatedMsg{record: rec, err: err}
	}
}

func loadAutomationsCmd(s *Services) tea.Cmd {
	return func() tea.Msg {
		items, err := s.Client.ListAutomations(s.context())
		return automationsLoadedMsg{items: items, err: err}
	}
}

func fetchAutomationCmd(s *Services, id string) tea.Cmd {
	return func() tea.Msg {
		a, err := s.Client.GetAutomation(s.context(), id)
		return automationFetchedMsg{automation: a, err: err}
	}
}

func deleteAutomationCmd(s *Services, id string) tea.Cmd {
	return func() tea.Msg {
		return automationDeletedMsg{id: id, err: s.Client.DeleteAutomation(s.context(), id)}
	}
}

func scanBackendsCmd(s *Services) tea.Cmd {
	return func() tea.Msg {
		scan := s.Scan
		if scan == nil {
			scanner := discovery.NewScanner()
			scanner.Timeout = ScanDuration
			scan = scanner.ScanForBackendsWithContext
		}
		backends, err := scan(s.context())
		return backendsFoundMsg{backends: backends, err: err}
	}
}

// startWatch subscribes to the hosted automation feed until ctx is done.
// A backend without the feed ends the subscription silently.
func startWatch(ctx context.Context, client API) tea.Cmd {
	ch := make(chan api.Event, 8)
	go func() {
		defer close(ch)
		err := client.Watch(ctx, ch)
		switch {
		case err == nil, api.IsCanceled(err):
		case errors.Is(err, api.ErrFeedUnavailable):
			logging.Debug("Hosted automation feed not offered by backend")
		default:
			logging.Warn("Hosted automation feed stopped", zap.Error(err))
		}
	}()
	return waitForEvent(ch)
}

// waitForEvent blocks on the next feed event
func waitForEvent(ch <-chan api.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watchStoppedMsg{}
		}
		return watchEventMsg{event: ev, ch: ch}
	}
}

func transition(screen Screen, data interface{}) tea.Cmd {
	return func() tea.Msg {
		return screenTransitionMsg{screen: screen, data: data}
	}
}

func goBack() tea.Msg { return goBackMsg{} }
