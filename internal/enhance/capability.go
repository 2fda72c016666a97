// Package enhance drives streaming prompt enhancement: it hands the user's
// raw feedback to a remote rewrite capability and republishes the rewritten
// text chunk by chunk, with a strict restore-on-failure contract.
package enhance

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// RewriteCapability is the external streaming text-transform service.
// Implementations deliver incremental chunks on the content channel and at
// most one terminal error on the error channel; both channels are closed
// when the stream ends.
type RewriteCapability interface {
	// IsAvailable reports whether the capability can be called at all
	// (credential present, client constructed). Resolved at startup, not
	// probed per call.
	IsAvailable() bool

	// Rewrite opens a single logical stream. Chunks arrive in order; the
	// caller must stop reading once the content channel closes.
	Rewrite(ctx context.Context, systemPrompt, userText string) (<-chan string, <-chan error)
}

// defaultStreamTimeout bounds a rewrite when the caller's context carries
// no deadline of its own.
const defaultStreamTimeout = 120 * time.Second

// GeminiCapability implements RewriteCapability against the Gemini API.
type GeminiCapability struct {
	client *genai.Client
	model  string
}

// NewGeminiCapability constructs the capability. An empty API key is not an
// error here; it yields a capability whose IsAvailable is false, so the UI
// can render the affordance disabled instead of failing at call time.
func NewGeminiCapability(ctx context.Context, apiKey, model string) (*GeminiCapability, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if apiKey == "" {
		return &GeminiCapability{model: model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiCapability{client: client, model: model}, nil
}

// IsAvailable reports whether a client was constructed.
func (g *GeminiCapability) IsAvailable() bool {
	return g != nil && g.client != nil
}

// Rewrite streams the rewritten text. Chunk order follows the upstream
// stream exactly; no batching or reordering.
func (g *GeminiCapability) Rewrite(ctx context.Context, systemPrompt, userText string) (<-chan string, <-chan error) {
	contentChan := make(chan string, 100)
	errorChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(errorChan)

		if !g.IsAvailable() {
			errorChan <- ErrServiceUnavailable
			return
		}

		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultStreamTimeout)
			defer cancel()
		}

		config := &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.7),
			ResponseMIMEType: "text/plain",
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: systemPrompt}},
			},
		}

		stream := g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(userText), config)
		for resp, err := range stream {
			if err != nil {
				errorChan <- fmt.Errorf("stream error: %w", err)
				return
			}
			chunk := resp.Text()
			if chunk == "" {
				continue
			}
			select {
			case contentChan <- chunk:
			case <-ctx.Done():
				errorChan <- ctx.Err()
				return
			}
		}
	}()

	return contentChan, errorChan
}

// Unavailable returns a capability stub whose Rewrite immediately fails
// with ErrServiceUnavailable. Injected when no credential is configured.
func Unavailable() RewriteCapability {
	return unavailableCapability{}
}

type unavailableCapability struct{}

func (unavailableCapability) IsAvailable() bool { return false }

func (unavailableCapability) Rewrite(context.Context, string, string) (<-chan string, <-chan error) {
	contentChan := make(chan string)
	errorChan := make(chan error, 1)
	errorChan <- ErrServiceUnavailable
	close(contentChan)
	close(errorChan)
	return contentChan, errorChan
}
