package enhance

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeCapability replays a scripted stream.
type fakeCapability struct {
	chunks    []string
	err       error
	available bool
}

func (f *fakeCapability) IsAvailable() bool { return f.available }

func (f *fakeCapability) Rewrite(ctx context.Context, systemPrompt, userText string) (<-chan string, <-chan error) {
	contentChan := make(chan string, len(f.chunks)+1)
	errorChan := make(chan error, 1)
	go func() {
		defer close(contentChan)
		defer close(errorChan)
		for _, c := range f.chunks {
			contentChan <- c
		}
		if f.err != nil {
			errorChan <- f.err
		}
	}()
	return contentChan, errorChan
}

// collect drains the update stream and returns the terminal update.
func collect(t *testing.T, updates <-chan Update) (progress []Update, final Update) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return progress, final
			}
			if u.Done {
				final = u
			} else {
				progress = append(progress, u)
			}
		case <-deadline:
			t.Fatal("timed out waiting for updates")
		}
	}
}

func TestOrchestrator_AccumulatesAndOverwrites(t *testing.T) {
	o := NewOrchestrator(&fakeCapability{available: true, chunks: []string{"任务目标", "：重构"}})

	updates, err := o.Start(context.Background(), "vague ask", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	progress, final := collect(t, updates)
	if final.Err != nil {
		t.Fatalf("unexpected terminal error: %v", final.Err)
	}
	if final.Text != "任务目标：重构" {
		t.Errorf("expected full rewrite, got %q", final.Text)
	}
	// Each progress update carries the whole accumulator, not a delta.
	want := []string{"任务目标", "任务目标：重构"}
	if len(progress) != len(want) {
		t.Fatalf("expected %d progress updates, got %d", len(want), len(progress))
	}
	for i, w := range want {
		if progress[i].Text != w {
			t.Errorf("progress %d: expected %q, got %q", i, w, progress[i].Text)
		}
	}
}

func TestOrchestrator_AbortOnErrorChunk(t *testing.T) {
	o := NewOrchestrator(&fakeCapability{available: true, chunks: []string{"ok chunk", "错误：boom"}})

	updates, err := o.Start(context.Background(), "original text", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, final := collect(t, updates)
	if !errors.Is(final.Err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", final.Err)
	}
	// No partial enhancement survives an error chunk.
	if final.Text != "original text" {
		t.Errorf("expected original text restored, got %q", final.Text)
	}
}

func TestOrchestrator_EmptyInput(t *testing.T) {
	o := NewOrchestrator(&fakeCapability{available: true})
	if _, err := o.Start(context.Background(), "   \n ", ""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestOrchestrator_Unavailable(t *testing.T) {
	o := NewOrchestrator(Unavailable())
	if _, err := o.Start(context.Background(), "text", ""); !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestOrchestrator_EmptyResponse(t *testing.T) {
	o := NewOrchestrator(&fakeCapability{available: true})

	updates, err := o.Start(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, final := collect(t, updates)
	if !errors.Is(final.Err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", final.Err)
	}
	if final.Text != "text" {
		t.Errorf("expected original restored, got %q", final.Text)
	}
}

func TestOrchestrator_UpstreamError(t *testing.T) {
	o := NewOrchestrator(&fakeCapability{available: true, err: errors.New("transport down")})

	updates, err := o.Start(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, final := collect(t, updates)
	if !errors.Is(final.Err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", final.Err)
	}
	if final.Text != "text" {
		t.Errorf("expected original restored, got %q", final.Text)
	}
}

func TestOrchestrator_SingleFlight(t *testing.T) {
	slow := &blockingCapability{release: make(chan struct{})}
	o := NewOrchestrator(slow)

	updates, err := o.Start(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if !o.Running() {
		t.Error("expected Running() while stream is open")
	}

	if _, err := o.Start(context.Background(), "other", ""); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	close(slow.release)
	collect(t, updates)
	if o.Running() {
		t.Error("expected Running() to reset after completion")
	}
}

func TestBuildUserContent(t *testing.T) {
	if got := BuildUserContent("do the thing", ""); got != "do the thing" {
		t.Errorf("no context should pass through, got %q", got)
	}

	got := BuildUserContent("do the thing", "repo uses Go")
	want := "**项目上下文信息：**\nrepo uses Go\n\n**用户需求：**\ndo the thing"
	if got != want {
		t.Errorf("BuildUserContent = %q, want %q", got, want)
	}
}

// blockingCapability holds the stream open until released.
type blockingCapability struct {
	release chan struct{}
}

func (b *blockingCapability) IsAvailable() bool { return true }

func (b *blockingCapability) Rewrite(ctx context.Context, systemPrompt, userText string) (<-chan string, <-chan error) {
	contentChan := make(chan string, 1)
	errorChan := make(chan error, 1)
	go func() {
		defer close(contentChan)
		defer close(errorChan)
		contentChan <- "chunk"
		<-b.release
	}()
	return contentChan, errorChan
}
