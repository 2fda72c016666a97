package enhance

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// errorChunkPrefix is the sentinel convention: a chunk beginning with this
// literal marker carries an upstream failure message, not rewritten text.
const errorChunkPrefix = "错误："

// Update is one state change published while an enhancement runs. Text is
// always the full buffer content — the rewrite so far on progress, or the
// restored original on failure — so the consumer overwrites, never appends.
type Update struct {
	Text string
	Done bool
	Err  error
}

// Orchestrator drives at most one enhancement at a time against an injected
// RewriteCapability. Consumers drain the Update channel from their own event
// loop; the orchestrator never mutates caller state directly.
type Orchestrator struct {
	capability RewriteCapability

	mu      sync.Mutex
	running bool
}

// NewOrchestrator creates an orchestrator bound to the given capability.
func NewOrchestrator(capability RewriteCapability) *Orchestrator {
	if capability == nil {
		capability = Unavailable()
	}
	return &Orchestrator{capability: capability}
}

// Running reports whether an enhancement is in flight. The UI disables the
// enhancement affordance while this is true.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Start begins a streaming enhancement of originalText. Validation failures
// return synchronously with no state change; otherwise updates arrive on the
// returned channel, ending with exactly one Update where Done is true. On
// any failure the final update carries the original text, discarding every
// partial chunk.
func (o *Orchestrator) Start(ctx context.Context, originalText, contextInfo string) (<-chan Update, error) {
	trimmed := strings.TrimSpace(originalText)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}
	if !o.capability.IsAvailable() {
		return nil, ErrServiceUnavailable
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	updates := make(chan Update, 100)

	go func() {
		defer close(updates)
		defer func() {
			o.mu.Lock()
			o.running = false
			o.mu.Unlock()
		}()

		userContent := BuildUserContent(trimmed, strings.TrimSpace(contextInfo))
		contentChan, errorChan := o.capability.Rewrite(ctx, systemPromptTemplate, userContent)

		var accumulated strings.Builder
		received := 0

		for chunk := range contentChan {
			if strings.HasPrefix(chunk, errorChunkPrefix) {
				drain(contentChan)
				updates <- Update{
					Text: originalText,
					Done: true,
					Err:  fmt.Errorf("%w: %s", ErrUpstream, strings.TrimPrefix(chunk, errorChunkPrefix)),
				}
				return
			}
			accumulated.WriteString(chunk)
			received++
			select {
			case updates <- Update{Text: accumulated.String()}:
			case <-ctx.Done():
				updates <- Update{Text: originalText, Done: true, Err: ctx.Err()}
				return
			}
		}

		if err := <-errorChan; err != nil {
			updates <- Update{Text: originalText, Done: true, Err: fmt.Errorf("%w: %v", ErrUpstream, err)}
			return
		}
		if received == 0 {
			updates <- Update{Text: originalText, Done: true, Err: ErrEmptyResponse}
			return
		}
		updates <- Update{Text: accumulated.String(), Done: true}
	}()

	return updates, nil
}

// drain consumes the remainder of an aborted stream so the producer
// goroutine can exit.
func drain(ch <-chan string) {
	go func() {
		for range ch {
		}
	}()
}
