package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
)

// fakeAPI records calls and returns canned results
type fakeAPI struct {
	mu sync.Mutex

	design    *automation.WorkflowDesign
	designErr error

	created   *automation.Automation
	createErr error

	automations []automation.Automation
	hosted      []automation.HostedAutomation
	listErr     error

	hostedRecord    *automation.HostedAutomation
	hostedCreateErr error
	mutateErr       error

	calls   map[string]int
	toggled []int
	deleted []int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) DesignWorkflow(ctx context.Context, req automation.DesignRequest) (*automation.WorkflowDesign, error) {
	f.record("design")
	return f.design, f.designErr
}

func (f *fakeAPI) CreateAutomation(ctx context.Context, req automation.CreateRequest) (*automation.Automation, error) {
	f.record("create")
	return f.created, f.createErr
}

func (f *fakeAPI) ListAutomations(ctx context.Context) ([]automation.Automation, error) {
	f.record("list")
	return f.automations, f.listErr
}

func (f *fakeAPI) GetAutomation(ctx context.Context, id string) (*automation.Automation, error) {
	f.record("get")
	for _, a := range f.automations {
		if a.ID == id {
			a.WorkflowCode = "print('" + id + "')"
			return &a, nil
		}
	}
	return nil, &api.Error{Type: api.ErrTypeHTTP, StatusCode: 404, Detail: "Automation not found"}
}

func (f *fakeAPI) DeleteAutomation(ctx context.Context, id string) error {
	f.record("delete")
	return f.mutateErr
}

func (f *fakeAPI) CreateHostedAutomation(ctx context.Context, req automation.HostedCreateRequest) (*automation.HostedAutomation, error) {
	f.record("create_hosted")
	return f.hostedRecord, f.hostedCreateErr
}

func (f *fakeAPI) ListHostedAutomations(ctx context.Context) ([]automation.HostedAutomation, error) {
	f.record("list_hosted")
	return f.hosted, f.listErr
}

func (f *fakeAPI) ToggleHostedAutomation(ctx context.Context, id int) error {
	f.record("toggle_hosted")
	f.mu.Lock()
	f.toggled = append(f.toggled, id)
	f.mu.Unlock()
	return f.mutateErr
}

func (f *fakeAPI) DeleteHostedAutomation(ctx context.Context, id int) error {
	f.record("delete_hosted")
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return f.mutateErr
}

func (f *fakeAPI) Watch(ctx context.Context, events chan<- api.Event) error {
	return api.ErrFeedUnavailable
}

// collect runs cmd and flattens batches into the messages they produce.
// Callers must not pass commands built with tea.Tick.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// findMsg returns the first message of type T
func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyType(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}
