// Package hooks registers hub callbacks in an external JSON settings
// document. Registration is a stateless, single-shot merge; the document is
// owned by another program and unrelated keys must survive untouched.
package hooks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danmuck/hivectl/internal/store"
)

var (
	ErrEventRequired   = errors.New("hooks: event name required")
	ErrCommandRequired = errors.New("hooks: command required")
)

// Hook is one registered callback entry as persisted in the settings
// document. Marker identifies the installation so a later pass can tell
// its own entry from a user-authored one.
type Hook struct {
	Command string `json:"command"`
	Marker  string `json:"marker"`
}

// Install upserts the callback for event into the settings document at
// path. A corrupt settings document is moved aside to <path>.bak and
// rebuilt rather than discarded silently.
func Install(st *store.Store, path, event, command string) (Hook, error) {
	if strings.TrimSpace(event) == "" {
		return Hook{}, ErrEventRequired
	}
	if strings.TrimSpace(command) == "" {
		return Hook{}, ErrCommandRequired
	}

	hook := Hook{Command: command, Marker: uuid.NewString()}
	overlay := map[string]any{
		"hooks": map[string]any{
			event: map[string]any{
				"command": hook.Command,
				"marker":  hook.Marker,
			},
		},
	}
	if err := st.MergeJSON(path, overlay); err != nil {
		return Hook{}, fmt.Errorf("hooks: install %s: %w", event, err)
	}
	return hook, nil
}
