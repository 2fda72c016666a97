package feedback

import (
	"strings"
	"unicode"
)

// pathMarker is the fixed bilingual-safe annotation wrapped around
// path-like tokens in submitted feedback.
const pathMarker = "用户提供文件路径："

// Option is one caller-supplied selectable label shown alongside free text.
type Option struct {
	Label   string
	Checked bool
}

// Assembler produces the final FeedbackResult at the moment of submission.
// ImagesEnabled is passed in explicitly rather than read from process-wide
// state, so the two transports cannot disagree about it.
type Assembler struct {
	ImagesEnabled bool
}

// Assemble builds the FeedbackResult from the current UI state and freezes
// the selector. Empty submissions are valid and mean "no specific feedback".
func (a Assembler) Assemble(options []Option, freeText string, selector *DirectiveSelector, storeImages, inlineImages []ImagePayload) FeedbackResult {
	var checked []string
	for _, opt := range options {
		if opt.Checked {
			checked = append(checked, opt.Label)
		}
	}
	optionsLine := strings.Join(checked, "; ")
	text := strings.TrimSpace(freeText)

	var combined string
	switch {
	case optionsLine != "" && text != "":
		combined = optionsLine + "\n\n" + text
	case optionsLine != "":
		combined = optionsLine
	default:
		combined = text
	}
	combined = AnnotatePaths(combined)

	selector.Freeze()

	// nil when collection is disabled so the images key is omitted from
	// the wire payload; empty-but-present when enabled with no attachments.
	var images []ImagePayload
	if a.ImagesEnabled {
		images = []ImagePayload{}
		images = append(images, storeImages...)
		images = append(images, inlineImages...)
	}

	return FeedbackResult{
		InteractiveFeedback: combined,
		SessionControl:      selector.Current(),
		Images:              images,
	}
}

// AnnotatePaths wraps path-like tokens as 用户提供文件路径："<token>" so the
// caller can spot file references in free text. The heuristic is lossy on
// purpose: any whitespace-delimited token containing a path separator that
// is not an http(s) URL gets wrapped, fractions and dates included.
// Whitespace runs are preserved exactly.
func AnnotatePaths(text string) string {
	if text == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		start := i
		ws := unicode.IsSpace(runes[i])
		for i < len(runes) && unicode.IsSpace(runes[i]) == ws {
			i++
		}
		segment := string(runes[start:i])
		if ws {
			b.WriteString(segment)
			continue
		}
		b.WriteString(annotateToken(segment))
	}
	return b.String()
}

func annotateToken(token string) string {
	if !strings.ContainsAny(token, `/\`) {
		return token
	}
	if strings.HasPrefix(token, "http://") || strings.HasPrefix(token, "https://") {
		return token
	}
	if strings.HasPrefix(token, pathMarker) {
		return token
	}
	return pathMarker + `"` + token + `"`
}
