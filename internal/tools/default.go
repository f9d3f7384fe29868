package tools

import (
	"errors"

	"github.com/danmuck/hivectl/internal/mailbox"
	"github.com/danmuck/hivectl/internal/registry"
	"github.com/danmuck/hivectl/internal/store"
	"github.com/danmuck/hivectl/internal/tmux"
)

var ErrDepsIncomplete = errors.New("tools: incomplete dependencies")

// Deps carries the shared collaborators every tool draws from. The mailbox,
// registry and settings document are the only mutable state; tools
// themselves stay stateless. SettingsPath may be empty when no settings
// document is configured.
type Deps struct {
	SessionID    string
	Store        *store.Store
	Mailbox      *mailbox.Mailbox
	Registry     *registry.Registry
	Tmux         *tmux.Driver
	SettingsPath string
}

// DefaultRegistry builds the full hub method surface.
func DefaultRegistry(deps Deps) (*Registry, error) {
	if deps.SessionID == "" || deps.Store == nil || deps.Mailbox == nil || deps.Registry == nil || deps.Tmux == nil {
		return nil, ErrDepsIncomplete
	}

	reg := NewRegistry()
	all := []Tool{
		&sendMessageTool{sessionID: deps.SessionID, mailbox: deps.Mailbox},
		&checkMessageBoxTool{sessionID: deps.SessionID, mailbox: deps.Mailbox},
		&whoamiTool{sessionID: deps.SessionID, registry: deps.Registry},
		&listAgentsTool{registry: deps.Registry, tmux: deps.Tmux},
		&spawnAgentTool{sessionID: deps.SessionID, registry: deps.Registry, tmux: deps.Tmux},
		&killAgentTool{tmux: deps.Tmux},
		&getScreenshotTool{tmux: deps.Tmux},
		&injectInputTool{sessionID: deps.SessionID, tmux: deps.Tmux},
		&installHookTool{store: deps.Store, settingsPath: deps.SettingsPath},
	}
	for _, tool := range all {
		if err := reg.Register(tool); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
