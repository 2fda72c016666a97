// Package attachments maintains the ordered list of image payloads pending
// inclusion in a feedback submission.
package attachments

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

// ErrStoreFull is returned by Add when the configured image cap is reached.
var ErrStoreFull = errors.New("attachment store is full")

// DefaultMaxImages caps the store unless the config says otherwise.
const DefaultMaxImages = 10

// Store is an ordered, index-addressable collection of image payloads.
// The UI owns it, but every operation is mutex-guarded so a background
// ingest (clipboard, file read) can never corrupt it.
type Store struct {
	mu     sync.RWMutex
	images []feedback.ImagePayload
	max    int
}

// NewStore creates a store capped at max images. max <= 0 means unlimited.
func NewStore(max int) *Store {
	return &Store{max: max}
}

// Add appends a payload. No de-duplication.
func (s *Store) Add(p feedback.ImagePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.images) >= s.max {
		return fmt.Errorf("%w (max %d)", ErrStoreFull, s.max)
	}
	s.images = append(s.images, p)
	return nil
}

// RemoveAt deletes the payload at index. Out-of-bounds indices are a
// silent no-op, matching forgiving UI semantics.
func (s *Store) RemoveAt(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.images) {
		return
	}
	s.images = append(s.images[:index], s.images[index+1:]...)
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = nil
}

// Len returns the number of pending payloads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// ToOrderedList returns a snapshot for inclusion in a FeedbackResult.
// The snapshot never aliases internal state.
func (s *Store) ToOrderedList() []feedback.ImagePayload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]feedback.ImagePayload, len(s.images))
	copy(out, s.images)
	return out
}

// AddFile reads an image file, base64-encodes it, and adds it to the store.
// A failed read or decode affects only this file.
func (s *Store) AddFile(path string) error {
	p, err := FromFile(path)
	if err != nil {
		return err
	}
	return s.Add(p)
}

// FromFile builds an ImagePayload from an image file on disk.
func FromFile(path string) (feedback.ImagePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return feedback.ImagePayload{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return feedback.ImagePayload{}, fmt.Errorf("image file is empty: %s", path)
	}
	return FromBytes(data, path), nil
}

// FromBytes builds an ImagePayload from raw image bytes. The originating
// path, if known, improves mime detection; pass "" otherwise.
func FromBytes(data []byte, path string) feedback.ImagePayload {
	return feedback.ImagePayload{
		BytesBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    sniffMimeType(data, path),
	}
}

// DetectMimeType maps a file extension to its image mime type,
// defaulting to image/png when the extension is unknown.
func DetectMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".png":
		return "image/png"
	default:
		return "image/png"
	}
}

// sniffMimeType prefers content sniffing and falls back to the extension.
func sniffMimeType(data []byte, path string) string {
	switch detected := http.DetectContentType(data); detected {
	case "image/png", "image/jpeg", "image/gif", "image/bmp":
		return detected
	}
	return DetectMimeType(path)
}
