package tools

import (
	"errors"

	"github.com/danmuck/hivectl/internal/hooks"
	"github.com/danmuck/hivectl/internal/store"
)

var ErrSettingsPathRequired = errors.New("tools: settings path required")

// installHookTool registers a callback hook in an agent's settings document
// over the wire, so one agent can arrange to be notified when another one
// finishes.
type installHookTool struct {
	store        *store.Store
	settingsPath string
}

func (t *installHookTool) Metadata() Metadata {
	return Metadata{
		Name:        "install_hook",
		Description: "Register a callback hook in an agent settings document",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"event":         map[string]any{"type": "string", "description": "event name that fires the hook"},
				"command":       map[string]any{"type": "string", "description": "command executed when the event fires"},
				"settings_path": map[string]any{"type": "string", "description": "settings document to modify (defaults to the configured path)"},
			},
			"required": []string{"event", "command"},
		},
	}
}

func (t *installHookTool) Execute(args map[string]any) (any, error) {
	event, err := stringArg(args, "event")
	if err != nil {
		return nil, err
	}
	command, err := stringArg(args, "command")
	if err != nil {
		return nil, err
	}
	path := t.settingsPath
	if raw, ok := args["settings_path"].(string); ok && raw != "" {
		path = raw
	}
	if path == "" {
		return nil, ErrSettingsPathRequired
	}
	hook, err := hooks.Install(t.store, path, event, command)
	if err != nil {
		return nil, err
	}
	return map[string]any{"ok": true, "marker": hook.Marker}, nil
}
