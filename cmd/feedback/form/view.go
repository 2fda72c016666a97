package form

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

const (
	minPromptHeight = 3
	textareaHeight  = 6
)

// layout resizes the panes to the current terminal dimensions.
func (m *Model) layout() {
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	promptHeight := m.height - textareaHeight - len(m.options) - 8
	if promptHeight < minPromptHeight {
		promptHeight = minPromptHeight
	}

	if !m.ready {
		m.viewport = viewport.New(width, promptHeight)
	} else {
		m.viewport.Width = width
		m.viewport.Height = promptHeight
	}
	m.textarea.SetWidth(width)
	m.textarea.SetHeight(textareaHeight)
}

// renderPrompt fills the viewport with the glamour-rendered prompt and
// context. Falls back to plain text when rendering fails.
func (m *Model) renderPrompt() {
	content := m.opts.Prompt
	if m.opts.ContextInfo != "" {
		content += "\n\n---\n\n" + m.opts.ContextInfo
	}

	if m.renderer == nil {
		style := glamour.WithStandardStyle("light")
		if m.styles.Theme.IsDark {
			style = glamour.WithStandardStyle("dark")
		}
		renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(m.viewport.Width))
		if err == nil {
			m.renderer = renderer
		}
	}

	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			m.viewport.SetContent(rendered)
			return
		}
	}
	m.viewport.SetContent(content)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.picking {
		return m.styles.Title.Render("Attach an image") + "\n\n" +
			m.filepicker.View() + "\n" +
			m.styles.Help.Render("enter: select • esc: cancel")
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Feedback requested"))
	b.WriteString("\n")
	b.WriteString(m.styles.PromptPane.Render(m.viewport.View()))
	b.WriteString("\n")

	if len(m.options) > 0 {
		b.WriteString(m.renderOptions())
		b.WriteString("\n")
	}

	b.WriteString(m.styles.InputPane.Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.renderDirectives())
	b.WriteString("\n")

	if m.opts.ImagesEnabled {
		b.WriteString(m.renderImages())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderOptions() string {
	var b strings.Builder
	for i, opt := range m.options {
		box := "[ ]"
		style := m.styles.OptionUnchecked
		if opt.Checked {
			box = "[x]"
			style = m.styles.OptionChecked
		}
		line := fmt.Sprintf("%s %s", box, opt.Label)
		if m.focus == focusOptions && i == m.optionCursor {
			line = m.styles.OptionFocused.Render(line)
		} else {
			line = style.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderDirectives() string {
	render := func(label string, d feedback.SessionDirective) string {
		marker := "( )"
		style := m.styles.DirectiveInactive
		if m.selector.Current() == d {
			marker = "(•)"
			style = m.styles.DirectiveActive
		}
		return style.Render(fmt.Sprintf("%s %s", marker, label))
	}

	row := "  " + render("continue", feedback.DirectiveContinue) +
		"   " + render("terminate", feedback.DirectiveTerminate) +
		"   " + m.styles.DirectiveDisabled.Render("( ) pause")
	if m.focus == focusDirective {
		row += "  " + m.styles.Muted.Render("← →")
	}
	return row
}

func (m Model) renderImages() string {
	total := m.store.Len() + len(m.inline)
	if total == 0 {
		return "  " + m.styles.Muted.Render("no images attached (ctrl+p: pick, ctrl+v: paste path)")
	}
	return "  " + m.styles.ImageBadge.Render(fmt.Sprintf("%d image(s)", total)) +
		" " + m.styles.Muted.Render("ctrl+x removes the last one")
}

func (m Model) renderStatus() string {
	if m.enhancing {
		return "  " + m.spinner.View() + m.styles.Muted.Render(" enhancing...")
	}
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return "  " + m.styles.Error.Render(m.notice)
	}
	return "  " + m.styles.Success.Render(m.notice)
}

func (m Model) helpLine() string {
	parts := []string{"ctrl+s: submit", "tab: focus", "ctrl+e: enhance"}
	if m.opts.ImagesEnabled {
		parts = append(parts, "ctrl+p: image")
	}
	parts = append(parts, "esc: close")
	return strings.Join(parts, " • ")
}
