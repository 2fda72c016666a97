// Package form implements the interactive feedback form: a prompt pane,
// predefined option checkboxes, a free-text editor with streaming prompt
// enhancement, an image attachment strip, and the session directive row.
//
// The form is the only mutator of its own state; background work
// (enhancement streaming, file reads) hands results back through messages.
package form

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/airsulG/interactive-feedback-magic/cmd/feedback/ui"
	"github.com/airsulG/interactive-feedback-magic/internal/attachments"
	"github.com/airsulG/interactive-feedback-magic/internal/enhance"
	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

// Options configures one form run.
type Options struct {
	Prompt            string
	PredefinedOptions []string
	ContextInfo       string
	ImagesEnabled     bool
	MaxImages         int
	Capability        enhance.RewriteCapability
}

// focusZone determines which section receives key input.
type focusZone int

const (
	focusText focusZone = iota
	focusOptions
	focusDirective
)

// =============================================================================
// MESSAGES
// =============================================================================

type enhanceUpdateMsg enhance.Update

// enhanceClosedMsg signals the update stream has drained.
type enhanceClosedMsg struct{}

// Model is the bubbletea model for the feedback form.
type Model struct {
	opts   Options
	styles ui.Styles

	viewport   viewport.Model
	textarea   textarea.Model
	spinner    spinner.Model
	filepicker filepicker.Model
	renderer   *glamour.TermRenderer

	focus        focusZone
	options      []feedback.Option
	optionCursor int

	selector        *feedback.DirectiveSelector
	directiveCursor int // 0=continue 1=terminate

	store  *attachments.Store
	inline []feedback.ImagePayload

	orchestrator   *enhance.Orchestrator
	enhanceUpdates <-chan enhance.Update
	enhanceCancel  context.CancelFunc
	enhancing      bool

	picking   bool
	notice    string
	noticeErr bool

	submitted bool
	result    feedback.FeedbackResult

	width  int
	height int
	ready  bool
}

// New builds the form model from launch options.
func New(opts Options) Model {
	styles := ui.DefaultStyles()

	ta := textarea.New()
	ta.Placeholder = "Type your feedback here..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	fp := filepicker.New()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"}
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	options := make([]feedback.Option, len(opts.PredefinedOptions))
	for i, label := range opts.PredefinedOptions {
		options[i] = feedback.Option{Label: label}
	}

	capability := opts.Capability
	if capability == nil {
		capability = enhance.Unavailable()
	}

	maxImages := opts.MaxImages
	if maxImages == 0 {
		maxImages = attachments.DefaultMaxImages
	}

	return Model{
		opts:         opts,
		styles:       styles,
		textarea:     ta,
		spinner:      sp,
		filepicker:   fp,
		options:      options,
		selector:     feedback.NewDirectiveSelector(),
		store:        attachments.NewStore(maxImages),
		orchestrator: enhance.NewOrchestrator(capability),
	}
}

// Result returns the frozen outcome of the run. Closing without submitting
// yields the implicit-terminate default.
func (m Model) Result() feedback.FeedbackResult {
	if m.submitted {
		return m.result
	}
	return feedback.DefaultTerminateResult()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if !m.ready {
			m.ready = true
			m.renderPrompt()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.enhancing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case enhanceUpdateMsg:
		return m.handleEnhanceUpdate(enhance.Update(msg))

	case enhanceClosedMsg:
		m.enhancing = false
		m.enhanceUpdates = nil
		return m, nil
	}

	if m.picking {
		return m.updateFilePicker(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picking {
		switch msg.String() {
		case "esc", "ctrl+c":
			m.picking = false
			return m, nil
		}
		return m.updateFilePicker(msg)
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		// Close without submitting: implicit terminate, partial
		// enhancement discarded.
		if m.enhanceCancel != nil {
			m.enhanceCancel()
		}
		return m, tea.Quit

	case "ctrl+s":
		return m.submit()

	case "tab":
		m.cycleFocus()
		return m, nil

	case "ctrl+e":
		return m.startEnhancement()

	case "ctrl+p":
		if !m.opts.ImagesEnabled {
			return m.withNotice("image attachments are disabled", true)
		}
		m.picking = true
		return m, m.filepicker.Init()

	case "ctrl+v":
		if m.opts.ImagesEnabled {
			if handled, model, cmd := m.tryClipboardImage(); handled {
				return model, cmd
			}
		}

	case "ctrl+x":
		// Attachments merge store-first then inline, so the overall-last
		// one is the newest inline capture when any exist.
		switch {
		case len(m.inline) > 0:
			m.inline = m.inline[:len(m.inline)-1]
			return m.withNotice("removed last attachment", false)
		case m.store.Len() > 0:
			m.store.RemoveAt(m.store.Len() - 1)
			return m.withNotice("removed last attachment", false)
		}
		return m, nil
	}

	switch m.focus {
	case focusOptions:
		return m.handleOptionsKey(msg)
	case focusDirective:
		return m.handleDirectiveKey(msg)
	default:
		if m.enhancing {
			// The buffer mirrors the rewrite stream while enhancing;
			// user edits would race it.
			return m, nil
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
}

func (m Model) handleOptionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case "down", "j":
		if m.optionCursor < len(m.options)-1 {
			m.optionCursor++
		}
	case " ", "enter":
		if len(m.options) > 0 {
			m.options[m.optionCursor].Checked = !m.options[m.optionCursor].Checked
		}
	}
	return m, nil
}

func (m Model) handleDirectiveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "right", "l", " ", "enter":
		m.directiveCursor = 1 - m.directiveCursor
		if m.directiveCursor == 0 {
			m.selector.Select(feedback.DirectiveContinue)
		} else {
			m.selector.Select(feedback.DirectiveTerminate)
		}
	}
	return m, nil
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case focusText:
		if len(m.options) > 0 {
			m.focus = focusOptions
		} else {
			m.focus = focusDirective
		}
		m.textarea.Blur()
	case focusOptions:
		m.focus = focusDirective
	case focusDirective:
		m.focus = focusText
		m.textarea.Focus()
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.enhancing {
		return m.withNotice("enhancement in progress, wait or press esc", true)
	}

	assembler := feedback.Assembler{ImagesEnabled: m.opts.ImagesEnabled}
	m.result = assembler.Assemble(m.options, m.textarea.Value(), m.selector, m.store.ToOrderedList(), m.inline)
	m.submitted = true
	return m, tea.Quit
}

// =============================================================================
// ENHANCEMENT
// =============================================================================

func (m Model) startEnhancement() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	updates, err := m.orchestrator.Start(ctx, m.textarea.Value(), m.opts.ContextInfo)
	if err != nil {
		cancel()
		switch {
		case errors.Is(err, enhance.ErrEmptyInput):
			return m.withNotice("nothing to enhance yet", true)
		case errors.Is(err, enhance.ErrServiceUnavailable):
			return m.withNotice("enhancement unavailable: set GEMINI_API_KEY", true)
		case errors.Is(err, enhance.ErrAlreadyRunning):
			return m, nil
		default:
			return m.withNotice(err.Error(), true)
		}
	}

	m.enhancing = true
	m.enhanceUpdates = updates
	m.enhanceCancel = cancel
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, waitForEnhanceUpdate(updates))
}

func (m Model) handleEnhanceUpdate(u enhance.Update) (tea.Model, tea.Cmd) {
	// Overwrite, never append: the buffer always equals the rewrite so far.
	m.textarea.SetValue(u.Text)

	if u.Err != nil {
		m.enhancing = false
		m.notice = u.Err.Error()
		m.noticeErr = true
	} else if u.Done {
		m.enhancing = false
		m.notice = "enhancement complete, edit freely"
		m.noticeErr = false
	}

	if m.enhanceUpdates == nil {
		return m, nil
	}
	return m, waitForEnhanceUpdate(m.enhanceUpdates)
}

// waitForEnhanceUpdate relays one update from the stream into the event
// loop, re-armed after each delivery.
func waitForEnhanceUpdate(ch <-chan enhance.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return enhanceClosedMsg{}
		}
		return enhanceUpdateMsg(u)
	}
}

// =============================================================================
// IMAGES
// =============================================================================

func (m Model) updateFilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.picking = false
		if err := m.store.AddFile(path); err != nil {
			// A failed image never blocks the rest of the submission.
			return m.withNotice("could not attach image: "+err.Error(), true)
		}
		return m.withNotice("attached "+path, false)
	}
	return m, cmd
}

// tryClipboardImage captures a copied image path as an inline attachment.
// Returns handled=false when the clipboard holds ordinary text, so the
// keystroke falls through to the textarea paste.
func (m Model) tryClipboardImage() (bool, tea.Model, tea.Cmd) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return false, m, nil
	}
	path := strings.TrimSpace(text)
	if path == "" || !isImagePath(path) {
		return false, m, nil
	}
	if _, err := os.Stat(path); err != nil {
		return false, m, nil
	}

	p, err := attachments.FromFile(path)
	if err != nil {
		model, cmd := m.withNotice("could not capture clipboard image: "+err.Error(), true)
		return true, model, cmd
	}
	m.inline = append(m.inline, p)
	model, cmd := m.withNotice("captured clipboard image "+path, false)
	return true, model, cmd
}

func isImagePath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (m Model) withNotice(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.notice = text
	m.noticeErr = isErr
	return m, nil
}
