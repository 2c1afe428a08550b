package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/codeview"
)

func TestSelectorSkipsDisabled(t *testing.T) {
	s := newSelector([]option{
		{Label: "A", Value: "a"},
		{Label: "B", Value: "b", Disabled: true},
		{Label: "C", Value: "c"},
	}, "a")

	s.Next()
	if s.Value() != "c" {
		t.Errorf("Next() landed on %q, want c", s.Value())
	}
	s.Next()
	if s.Value() != "a" {
		t.Errorf("Next() should wrap to a, got %q", s.Value())
	}
	s.Prev()
	if s.Value() != "c" {
		t.Errorf("Prev() should wrap to c, got %q", s.Value())
	}

	s.Select("b")
	if s.Value() != "c" {
		t.Errorf("Select() picked a disabled option: %q", s.Value())
	}

	first := newSelector([]option{{Label: "soon", Disabled: true}, {Label: "X", Value: "x"}}, "")
	if first.Value() != "x" {
		t.Errorf("initial selection on disabled option: %q", first.Value())
	}
}

func TestConfigFormValidation(t *testing.T) {
	var gotCfg automation.Config
	var gotInterval int
	calls := 0
	form := NewConfigForm(automation.WebsiteMonitor, func(cfg automation.Config, interval int) tea.Cmd {
		calls++
		gotCfg, gotInterval = cfg, interval
		return nil
	})

	form, _ = form.Submit()
	if calls != 0 {
		t.Fatal("OnSubmit called with an invalid form")
	}
	for _, name := range []string{automation.FieldURL, automation.FieldWebhookURL} {
		if !form.Errors.Has(name) {
			t.Errorf("missing error for %s: %v", name, form.Errors)
		}
	}
	if form.Errors.Has(automation.FieldCSSSelector) {
		t.Error("optional selector reported as invalid")
	}
	if form.Focused() != automation.FieldURL {
		t.Errorf("focus = %q, want first invalid field", form.Focused())
	}
	if view := form.View(); !strings.Contains(view, form.Errors[automation.FieldURL]) {
		t.Error("error message not rendered beside the field")
	}

	// editing a field clears only its own error
	form, _ = form.Update(keyRunes("h"))
	if form.Errors.Has(automation.FieldURL) {
		t.Error("url error not cleared after edit")
	}
	if !form.Errors.Has(automation.FieldWebhookURL) {
		t.Error("webhook error cleared by an unrelated edit")
	}

	form.SetValue(automation.FieldURL, "not a url")
	form.SetValue(automation.FieldWebhookURL, "https://discord.com/api/webhooks/1/x")
	form, _ = form.Submit()
	if form.Errors[automation.FieldURL] != automation.MsgInvalidURL {
		t.Errorf("url error = %q", form.Errors[automation.FieldURL])
	}

	form.SetValue(automation.FieldURL, "https://example.com")
	form.SetInterval(30)
	form, _ = form.Submit()
	if calls != 1 {
		t.Fatalf("OnSubmit calls = %d, errors = %v", calls, form.Errors)
	}
	if gotInterval != 30 || gotCfg[automation.FieldURL] != "https://example.com" {
		t.Errorf("submitted %v every %d", gotCfg, gotInterval)
	}
}

func TestConfigFormEnterAdvances(t *testing.T) {
	calls := 0
	form := NewConfigForm(automation.DiscordNotifier, func(automation.Config, int) tea.Cmd {
		calls++
		return nil
	})

	form, _ = form.Update(keyType(tea.KeyEnter))
	if form.Focused() != automation.FieldMessage {
		t.Errorf("focus = %q after enter", form.Focused())
	}
	form, _ = form.Update(keyType(tea.KeyEnter))
	if form.Focused() != "interval" {
		t.Errorf("focus = %q, want interval", form.Focused())
	}

	form, _ = form.Update(keyType(tea.KeyRight))
	if form.IntervalMinutes() != 180 {
		t.Errorf("interval = %d after right", form.IntervalMinutes())
	}

	form, _ = form.Update(keyType(tea.KeyEnter))
	if calls != 0 || form.Errors == nil {
		t.Error("enter on the last row should validate and reject the empty form")
	}
}

func TestConfigFormDisabled(t *testing.T) {
	calls := 0
	form := NewConfigForm(automation.EmailDigest, func(automation.Config, int) tea.Cmd {
		calls++
		return nil
	})
	form.SetValue(automation.FieldEmail, "a@b.co")
	form.SetValue(automation.FieldTopic, "news")
	form.Disabled = true

	form, _ = form.Submit()
	if calls != 0 {
		t.Error("disabled form submitted")
	}
}

func fillCloudForm(m *CloudFormModel) {
	m.Name.SetValue("Pricing watch")
	m.URL.SetValue("https://example.com/pricing")
	m.Discord.SetValue("https://discord.com/api/webhooks/1/x")
}

func TestCloudFormValidation(t *testing.T) {
	fake := newFakeAPI()
	m := NewCloudFormModel(&Services{Client: fake})

	if m.TypeSelect.Value() != string(automation.WebsiteMonitor) {
		t.Errorf("default type = %q", m.TypeSelect.Value())
	}
	if m.IntervalSelect.Value() != "60" {
		t.Errorf("default interval = %q", m.IntervalSelect.Value())
	}

	m, cmd := m.Update(keyType(tea.KeyCtrlS))
	if cmd != nil || m.Submitting {
		t.Fatal("invalid form was submitted")
	}
	for _, name := range []string{"name", automation.FieldURL, "notifications"} {
		if !m.Errors.Has(name) {
			t.Errorf("missing error %q in %v", name, m.Errors)
		}
	}

	view := m.View()
	if !strings.Contains(view, EmailPlaceholder) {
		t.Error("email field should show the coming soon placeholder")
	}
	if !strings.Contains(view, automation.MsgNeedChannel) {
		t.Error("notification error not shown")
	}
	if fake.count("create_hosted") != 0 {
		t.Error("backend called for an invalid form")
	}
}

func TestCloudFormCreateAndRedirect(t *testing.T) {
	fake := newFakeAPI()
	fake.hostedRecord = &automation.HostedAutomation{ID: 4, Name: "Pricing watch", IsActive: true}
	m := NewCloudFormModel(&Services{Client: fake})
	fillCloudForm(&m)

	m, cmd := m.Submit()
	if !m.Submitting || m.CanSubmit() {
		t.Fatalf("submit did not start: errors = %v", m.Errors)
	}
	created, ok := findMsg[cloudCreatedMsg](collect(cmd))
	if !ok {
		t.Fatal("create command did not return a result")
	}

	m, cmd = m.Update(created)
	if m.Created == nil || m.Submitting {
		t.Fatal("success panel not shown")
	}
	if cmd == nil {
		t.Error("expected a redirect timer")
	}
	if !strings.Contains(m.View(), "Pricing watch") {
		t.Error("success panel does not name the automation")
	}

	// keys are ignored once created
	if _, again := m.Update(keyType(tea.KeyCtrlS)); again != nil {
		t.Error("form accepted input after create")
	}

	_, cmd = m.Update(redirectMsg{})
	msg, ok := cmd().(screenTransitionMsg)
	if !ok || msg.screen != ScreenHosted {
		t.Errorf("redirect produced %#v", msg)
	}
}

func TestCloudFormServerErrorStays(t *testing.T) {
	fake := newFakeAPI()
	fake.hostedCreateErr = &api.Error{Type: api.ErrTypeHTTP, StatusCode: 403, Detail: "Free tier limit reached (3 automations)"}
	m := NewCloudFormModel(&Services{Client: fake})
	fillCloudForm(&m)

	m, cmd := m.Submit()
	created, _ := findMsg[cloudCreatedMsg](collect(cmd))
	m, cmd = m.Update(created)

	if cmd != nil || m.Created != nil {
		t.Error("failed create must not redirect")
	}
	if m.Err != "Free tier limit reached (3 automations)" {
		t.Errorf("Err = %q", m.Err)
	}
	if !strings.Contains(m.View(), "Free tier limit reached") {
		t.Error("detail not shown on the form")
	}
	if !m.CanSubmit() || m.Name.Value() != "Pricing watch" {
		t.Error("form should stay editable with its input")
	}
}

func TestCloudFormDiscordEditClearsNotificationError(t *testing.T) {
	m := NewCloudFormModel(&Services{Client: newFakeAPI()})
	m, _ = m.Submit()
	if !m.Errors.Has("notifications") {
		t.Fatal("expected a notifications error")
	}

	m.setFocus(cloudRowDiscord)
	m, _ = m.Update(keyRunes("h"))
	if m.Errors.Has("notifications") {
		t.Error("typing a webhook should clear the notifications error")
	}
}

func TestCodeViewerCopyLabel(t *testing.T) {
	var clipboard string
	v := NewCodeViewerModel("Demo", "print('x')\n", t.TempDir(), func(s string) error {
		clipboard = s
		return nil
	})

	v, first := v.Update(keyRunes("c"))
	if clipboard != "print('x')\n" {
		t.Errorf("clipboard = %q", clipboard)
	}
	if v.Copier.Label() != codeview.LabelCopied || first == nil {
		t.Fatalf("label = %q", v.Copier.Label())
	}
	if !strings.Contains(v.View(), codeview.LabelCopied) {
		t.Error("button does not read Copied!")
	}

	// a second copy keeps the label through the first timer
	v, _ = v.Update(keyRunes("c"))
	v, _ = v.Update(copyRevertMsg{gen: 1})
	if !v.Copier.Copied() {
		t.Error("stale revert reset the label")
	}
	v, _ = v.Update(copyRevertMsg{gen: 2})
	if v.Copier.Label() != codeview.LabelCopy {
		t.Errorf("label = %q after revert", v.Copier.Label())
	}
}

func TestCodeViewerCopyFailure(t *testing.T) {
	v := NewCodeViewerModel("Demo", "x", t.TempDir(), func(string) error {
		return errors.New("no clipboard")
	})
	v, cmd := v.Update(keyRunes("c"))
	if cmd != nil || v.Copier.Copied() {
		t.Error("failed copy must not switch the label")
	}
	if !v.StatusErr || !strings.Contains(v.Status, "no clipboard") {
		t.Errorf("status = %q", v.Status)
	}
}

func TestCodeViewerDownload(t *testing.T) {
	dir := t.TempDir()
	v := NewCodeViewerModel("Demo", "print(1)\n", dir, func(string) error { return nil })

	v, _ = v.Update(keyRunes("s"))
	want := filepath.Join(dir, codeview.FileName)
	if v.SavedPath != want {
		t.Fatalf("SavedPath = %q, status = %q", v.SavedPath, v.Status)
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "print(1)\n" {
		t.Fatalf("saved %q, %v", data, err)
	}

	v.Code = "print(2)\n"
	v, _ = v.Update(keyRunes("s"))
	if !v.StatusErr || !strings.Contains(v.Status, "already exists") {
		t.Errorf("status = %q", v.Status)
	}

	v, _ = v.Update(keyRunes("S"))
	data, _ = os.ReadFile(want)
	if string(data) != "print(2)\n" || v.StatusErr {
		t.Errorf("overwrite failed: %q, status %q", data, v.Status)
	}
}
