package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
)

var (
	ErrRootRequired = errors.New("store: root directory required")
	ErrNilDocument  = errors.New("store: nil document")
)

// Store performs durable document IO rooted at one runtime directory.
// Separate processes sharing the same root coordinate exclusively through
// WithLock; the store itself holds no in-memory state.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// Path joins parts under the runtime root.
func (s *Store) Path(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

// ReadJSON loads the document at path into out. A missing or corrupt
// document reports ok=false with no error: callers proceed from their
// default state instead of failing the operation.
func (s *Store) ReadJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, nil
	}
	return true, nil
}

// WriteJSON atomically replaces the document at path. A concurrent reader
// observes either the old or the new document, never a partial write.
func (s *Store) WriteJSON(path string, doc any) error {
	if doc == nil {
		return ErrNilDocument
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: mkdir for %s: %w", path, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", path, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

// WithLock runs fn while holding an exclusive OS-level lock on lockPath.
// The lock is released on every exit path, including fn failure. Acquisition
// blocks with no timeout; a crashed holder releases the lock when its
// process exits.
func (s *Store) WithLock(lockPath string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("store: mkdir for %s: %w", lockPath, err)
	}
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("store: lock %s: %w", lockPath, err)
	}
	defer fl.Unlock()
	return fn()
}

// AppendLine appends one record line to an append-only log and syncs it to
// disk before returning.
func (s *Store) AppendLine(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: mkdir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("store: append %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("store: sync %s: %w", path, err)
	}
	return nil
}

// ReadLines returns the raw lines of an append-only log. A missing log is
// empty, not an error. Blank lines are dropped.
func (s *Store) ReadLines(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// MergeJSON deep-merges overlay into the object document at path. Unlike
// ReadJSON, a corrupt document is not silently discarded: it is renamed to
// <path>.bak and the merge restarts from an empty document. Nested objects
// merge key-by-key; any other value is replaced by the overlay.
func (s *Store) MergeJSON(path string, overlay map[string]any) error {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
			backup := path + ".bak"
			if err := os.Rename(path, backup); err != nil {
				return fmt.Errorf("store: backup corrupt %s: %w", path, err)
			}
			doc = map[string]any{}
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("store: read %s: %w", path, err)
	}

	mergeInto(doc, overlay)
	return s.WriteJSON(path, doc)
}

func mergeInto(dst, src map[string]any) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeInto(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
}
