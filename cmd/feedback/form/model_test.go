package form

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/airsulG/interactive-feedback-magic/internal/enhance"
	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func key(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_CloseWithoutSubmit(t *testing.T) {
	m := sized(t, New(Options{Prompt: "anything to add?"}))
	m = key(m, tea.KeyMsg{Type: tea.KeyEsc})

	want := feedback.DefaultTerminateResult()
	got := m.Result()
	if got.InteractiveFeedback != want.InteractiveFeedback ||
		got.SessionControl != want.SessionControl ||
		len(got.Images) != 0 {
		t.Errorf("close-without-submit must yield the terminate default, got %+v", got)
	}
}

func TestModel_SubmitOptionsAndText(t *testing.T) {
	m := sized(t, New(Options{
		Prompt:            "review",
		PredefinedOptions: []string{"A", "B"},
	}))

	// Tab into the options zone, check A and B.
	m = key(m, tea.KeyMsg{Type: tea.KeyTab})
	m = key(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")})
	m = key(m, tea.KeyMsg{Type: tea.KeyDown})
	m = key(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")})

	m.textarea.SetValue("hello")
	m = key(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	got := m.Result()
	if got.InteractiveFeedback != "A; B\n\nhello" {
		t.Errorf("expected joined submission, got %q", got.InteractiveFeedback)
	}
	if got.SessionControl != feedback.DirectiveContinue {
		t.Errorf("expected continue default, got %s", got.SessionControl)
	}
}

func TestModel_DirectiveToggle(t *testing.T) {
	m := sized(t, New(Options{Prompt: "p"}))

	// No options configured, so tab lands on the directive row.
	m = key(m, tea.KeyMsg{Type: tea.KeyTab})
	m = key(m, tea.KeyMsg{Type: tea.KeyRight})
	m = key(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if got := m.Result().SessionControl; got != feedback.DirectiveTerminate {
		t.Errorf("expected terminate after toggle, got %s", got)
	}
}

func TestModel_EnhanceOverwritesBuffer(t *testing.T) {
	m := sized(t, New(Options{Prompt: "p"}))
	m.textarea.SetValue("original")
	m.enhancing = true

	next, _ := m.Update(enhanceUpdateMsg(enhance.Update{Text: "rewrite so far"}))
	m = next.(Model)
	if m.textarea.Value() != "rewrite so far" {
		t.Errorf("buffer must equal the accumulator, got %q", m.textarea.Value())
	}

	next, _ = m.Update(enhanceUpdateMsg(enhance.Update{Text: "rewrite so far and more", Done: true}))
	m = next.(Model)
	if m.textarea.Value() != "rewrite so far and more" {
		t.Errorf("final buffer mismatch: %q", m.textarea.Value())
	}
	if m.enhancing {
		t.Error("expected enhancing to stop after Done")
	}
}

func TestModel_EnhanceErrorRestoresOriginal(t *testing.T) {
	m := sized(t, New(Options{Prompt: "p"}))
	m.textarea.SetValue("original")
	m.enhancing = true

	next, _ := m.Update(enhanceUpdateMsg(enhance.Update{Text: "ok chunk"}))
	m = next.(Model)

	next, _ = m.Update(enhanceUpdateMsg(enhance.Update{
		Text: "original",
		Done: true,
		Err:  enhance.ErrUpstream,
	}))
	m = next.(Model)

	if m.textarea.Value() != "original" {
		t.Errorf("expected original restored, got %q", m.textarea.Value())
	}
	if !m.noticeErr || m.notice == "" {
		t.Error("expected an error notice after failed enhancement")
	}
}

func TestModel_EnhanceEmptyInputNotice(t *testing.T) {
	m := sized(t, New(Options{Prompt: "p", Capability: availableFake{}}))

	m = key(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	if !m.noticeErr {
		t.Error("expected error notice for empty enhancement input")
	}
	if m.enhancing {
		t.Error("empty input must not start an enhancement")
	}
}

func TestModel_SubmitBlockedWhileEnhancing(t *testing.T) {
	m := sized(t, New(Options{Prompt: "p"}))
	m.enhancing = true
	m = key(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.submitted {
		t.Error("submission must be blocked while an enhancement is in flight")
	}
}

func TestModel_RemoveLastAttachmentSpansGroups(t *testing.T) {
	m := sized(t, New(Options{Prompt: "p", ImagesEnabled: true}))
	if err := m.store.Add(feedback.ImagePayload{BytesBase64: "picked"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	m.inline = append(m.inline, feedback.ImagePayload{BytesBase64: "inline"})

	// The inline capture is the overall-last attachment, so it goes first.
	m = key(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if len(m.inline) != 0 {
		t.Fatalf("expected inline capture removed, got %d", len(m.inline))
	}
	if m.store.Len() != 1 {
		t.Fatalf("store must be untouched while inline captures remain, got %d", m.store.Len())
	}

	m = key(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if m.store.Len() != 0 {
		t.Errorf("expected store attachment removed next, got %d", m.store.Len())
	}
}

// availableFake satisfies RewriteCapability for keypress-level tests.
type availableFake struct{}

func (availableFake) IsAvailable() bool { return true }

func (availableFake) Rewrite(ctx context.Context, systemPrompt, userText string) (<-chan string, <-chan error) {
	contentChan := make(chan string)
	errorChan := make(chan error, 1)
	close(contentChan)
	close(errorChan)
	return contentChan, errorChan
}
