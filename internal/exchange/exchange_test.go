package exchange

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

func sampleResult() feedback.FeedbackResult {
	return feedback.FeedbackResult{
		InteractiveFeedback: "A; B\n\nlooks good",
		SessionControl:      feedback.DirectiveContinue,
		Images: []feedback.ImagePayload{
			{BytesBase64: "aGVsbG8=", MimeType: "image/png"},
		},
	}
}

func TestResultFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	want := sampleResult()

	if err := WriteResultFile(path, want); err != nil {
		t.Fatalf("WriteResultFile: %v", err)
	}

	got, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("ReadResultFile: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	// The handoff consumes the file.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected result file deleted after read, stat err=%v", err)
	}
}

func TestReadResultFile_Missing(t *testing.T) {
	_, err := ReadResultFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrMissingResultFile) {
		t.Errorf("expected ErrMissingResultFile, got %v", err)
	}
}

func TestReadResultFile_MalformedDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := ReadResultFile(path)
	if !errors.Is(err, ErrResultReadFailure) {
		t.Errorf("expected ErrResultReadFailure, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("malformed file must still be cleaned up, stat err=%v", err)
	}
}

func TestLaunch_ChildWritesResult(t *testing.T) {
	want := sampleResult()

	result, err := Launch(context.Background(), LaunchOptions{
		Prompt: "review this",
		Command: func(resultFile string) (string, []string) {
			// Stand-in child: write the result file and exit 0.
			data, merr := os.ReadFile(writeFixture(t, want))
			if merr != nil {
				t.Fatalf("fixture: %v", merr)
			}
			script := fmt.Sprintf("cat > %q <<'EOF'\n%s\nEOF", resultFile, data)
			return "sh", []string{"-c", script}
		},
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestLaunch_NonZeroExit(t *testing.T) {
	var resultFile string
	_, err := Launch(context.Background(), LaunchOptions{
		Prompt: "p",
		Command: func(rf string) (string, []string) {
			resultFile = rf
			return "sh", []string{"-c", "exit 1"}
		},
	})
	if !errors.Is(err, ErrLaunchFailure) {
		t.Fatalf("expected ErrLaunchFailure, got %v", err)
	}
	if _, statErr := os.Stat(resultFile); !os.IsNotExist(statErr) {
		t.Errorf("no temp file may remain after a failed launch")
	}
}

func TestLaunch_ZeroExitWithoutFile(t *testing.T) {
	_, err := Launch(context.Background(), LaunchOptions{
		Prompt: "p",
		Command: func(string) (string, []string) {
			return "sh", []string{"-c", "true"}
		},
	})
	if !errors.Is(err, ErrMissingResultFile) {
		t.Errorf("expected ErrMissingResultFile, got %v", err)
	}
}

func TestSplitOptions(t *testing.T) {
	got := SplitOptions("A|||B|||C")
	if len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Errorf("SplitOptions = %v", got)
	}
	if SplitOptions("") != nil {
		t.Error("empty input should yield nil")
	}
	if got := SplitOptions("solo"); len(got) != 1 || got[0] != "solo" {
		t.Errorf("single option parse failed: %v", got)
	}
}

// writeFixture serializes a result to a throwaway file and returns the path.
func writeFixture(t *testing.T, r feedback.FeedbackResult) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := WriteResultFile(path, r); err != nil {
		t.Fatalf("WriteResultFile fixture: %v", err)
	}
	return path
}
