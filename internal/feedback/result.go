// Package feedback defines the data contract for a completed feedback
// interaction and the logic that assembles it at submission time.
package feedback

import "encoding/json"

// SessionDirective tells the orchestrating caller whether to keep
// requesting feedback after this interaction.
type SessionDirective string

const (
	// DirectiveContinue asks the caller to keep the interactive loop going.
	DirectiveContinue SessionDirective = "continue"
	// DirectiveTerminate asks the caller to stop requesting feedback.
	DirectiveTerminate SessionDirective = "terminate"
	// DirectivePause is reserved. It appears in the wire vocabulary but is
	// not selectable; the selector rejects it.
	DirectivePause SessionDirective = "pause"
)

// Valid reports whether d is a selectable directive.
func (d SessionDirective) Valid() bool {
	return d == DirectiveContinue || d == DirectiveTerminate
}

// ImagePayload is one attached image, base64-encoded.
// Payloads are immutable once created; edits replace rather than mutate.
type ImagePayload struct {
	BytesBase64 string `json:"bytesBase64Encoded"`
	MimeType    string `json:"mimeType"`
}

// FeedbackResult is the exchange payload produced exactly once per UI run.
// Images is nil when image collection is disabled for the run and non-nil
// (possibly empty) when enabled; the images key is serialized iff enabled.
type FeedbackResult struct {
	InteractiveFeedback string           `json:"interactive_feedback"`
	SessionControl      SessionDirective `json:"session_control"`
	Images              []ImagePayload   `json:"images"`
}

// MarshalJSON emits the images key only when image collection was enabled.
// A bare omitempty would also drop the key for an enabled run with zero
// images, so nil (disabled) and empty (enabled, nothing attached) must
// serialize differently.
func (r FeedbackResult) MarshalJSON() ([]byte, error) {
	type wire struct {
		InteractiveFeedback string           `json:"interactive_feedback"`
		SessionControl      SessionDirective `json:"session_control"`
		Images              *[]ImagePayload  `json:"images,omitempty"`
	}
	w := wire{
		InteractiveFeedback: r.InteractiveFeedback,
		SessionControl:      r.SessionControl,
	}
	if r.Images != nil {
		w.Images = &r.Images
	}
	return json.Marshal(w)
}

// DefaultTerminateResult is what the caller receives when the user closes
// the interaction surface without ever submitting. An implicit terminate,
// not an error.
func DefaultTerminateResult() FeedbackResult {
	return FeedbackResult{
		InteractiveFeedback: "",
		SessionControl:      DirectiveTerminate,
		Images:              []ImagePayload{},
	}
}
