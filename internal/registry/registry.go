package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/hivectl/internal/store"
)

var ErrInvalidSessionID = errors.New("registry: invalid session id")

// Entry records one child session's lineage.
type Entry struct {
	Father  string `json:"father"`
	Workdir string `json:"workdir"`
}

// Child is one registry row with its session id attached.
type Child struct {
	SessionID string `json:"session_id"`
	Father    string `json:"father"`
	Workdir   string `json:"workdir"`
}

type document struct {
	Children map[string]Entry `json:"children"`
}

// Registry is the single shared parent/child document. All mutations
// serialize on one global lock; at most one entry exists per child and the
// last writer wins.
type Registry struct {
	store *store.Store
}

func New(st *store.Store) *Registry {
	return &Registry{store: st}
}

// SetChild upserts child under parent with its working directory.
func (r *Registry) SetChild(parent, child, workdir string) error {
	if err := validateSessionID(parent); err != nil {
		return fmt.Errorf("%w: parent %q", ErrInvalidSessionID, parent)
	}
	if err := validateSessionID(child); err != nil {
		return fmt.Errorf("%w: child %q", ErrInvalidSessionID, child)
	}
	return r.store.WithLock(r.lockPath(), func() error {
		doc, err := r.load()
		if err != nil {
			return err
		}
		doc.Children[child] = Entry{Father: parent, Workdir: workdir}
		return r.store.WriteJSON(r.docPath(), doc)
	})
}

// Father returns the parent session id registered for child.
func (r *Registry) Father(child string) (string, bool, error) {
	entry, ok, err := r.lookup(child)
	if err != nil || !ok {
		return "", false, err
	}
	return entry.Father, true, nil
}

// Workdir returns the working directory registered for child.
func (r *Registry) Workdir(child string) (string, bool, error) {
	entry, ok, err := r.lookup(child)
	if err != nil || !ok {
		return "", false, err
	}
	return entry.Workdir, true, nil
}

// Children lists every registered child ordered by session id.
func (r *Registry) Children() ([]Child, error) {
	var out []Child
	err := r.store.WithLock(r.lockPath(), func() error {
		doc, err := r.load()
		if err != nil {
			return err
		}
		for id, entry := range doc.Children {
			out = append(out, Child{SessionID: id, Father: entry.Father, Workdir: entry.Workdir})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, nil
}

// lookup reads one entry under the lock. The atomic document replace makes
// torn reads impossible on its own; the lock keeps lookups consistent with
// in-flight read-modify-write sequences.
func (r *Registry) lookup(child string) (Entry, bool, error) {
	if err := validateSessionID(child); err != nil {
		return Entry{}, false, fmt.Errorf("%w: child %q", ErrInvalidSessionID, child)
	}
	var entry Entry
	var ok bool
	err := r.store.WithLock(r.lockPath(), func() error {
		doc, err := r.load()
		if err != nil {
			return err
		}
		entry, ok = doc.Children[child]
		return nil
	})
	if err != nil {
		return Entry{}, false, err
	}
	return entry, ok, nil
}

// load reads the shared document under the caller's lock. Absence and
// corruption start from the empty document; a real read failure propagates.
func (r *Registry) load() (document, error) {
	doc := document{}
	if _, err := r.store.ReadJSON(r.docPath(), &doc); err != nil {
		return document{}, err
	}
	if doc.Children == nil {
		doc.Children = map[string]Entry{}
	}
	return doc, nil
}

func (r *Registry) docPath() string {
	return r.store.Path("registry.json")
}

func (r *Registry) lockPath() string {
	return r.store.Path(".registry.lock")
}

func validateSessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("empty id")
	}
	return nil
}
