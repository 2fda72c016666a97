// Package exchange implements the boundary protocol between an
// orchestrating caller and the interactive feedback surface: a child
// process writes a single JSON result to a file, the caller reads and
// deletes it.
package exchange

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

// OptionsDelimiter separates predefined option labels on the child argv.
const OptionsDelimiter = "|||"

// WriteResultFile serializes the result as one UTF-8 JSON document at path.
// The write goes through a temp file and rename so a reader can never
// observe a half-written result.
func WriteResultFile(path string, result feedback.FeedbackResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create result directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize result file: %w", err)
	}
	return nil
}

// ReadResultFile reads, parses, and deletes the result file. The file is
// removed even when parsing fails, so no temp file outlives the handoff.
func ReadResultFile(path string) (feedback.FeedbackResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return feedback.FeedbackResult{}, fmt.Errorf("%w: %s", ErrMissingResultFile, path)
		}
		os.Remove(path)
		return feedback.FeedbackResult{}, fmt.Errorf("%w: %v", ErrResultReadFailure, err)
	}
	os.Remove(path)

	var result feedback.FeedbackResult
	if err := json.Unmarshal(data, &result); err != nil {
		return feedback.FeedbackResult{}, fmt.Errorf("%w: %v", ErrResultReadFailure, err)
	}
	return result, nil
}
