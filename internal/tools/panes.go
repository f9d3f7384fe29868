package tools

import (
	"fmt"
	"time"

	"github.com/danmuck/hivectl/internal/tmux"
)

// getScreenshotTool captures what an agent's terminal currently shows.
type getScreenshotTool struct {
	tmux *tmux.Driver
}

func (t *getScreenshotTool) Metadata() Metadata {
	return Metadata{
		Name:        "get_screenshot",
		Description: "Capture the terminal contents of an agent pane",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target_id": map[string]any{"type": "string", "description": "pane to capture"},
				"lines":     map[string]any{"type": "number", "description": "scrollback lines to include"},
			},
			"required": []string{"target_id"},
		},
	}
}

func (t *getScreenshotTool) Execute(args map[string]any) (any, error) {
	target, err := stringArg(args, "target_id")
	if err != nil {
		return nil, err
	}
	lines, err := uintArg(args, "lines")
	if err != nil {
		return nil, err
	}
	text, err := t.tmux.CapturePane(target, int(lines))
	if err != nil {
		return nil, err
	}
	return map[string]any{"text": text}, nil
}

// injectInputTool pastes text into a pane as if the agent typed it. The
// paste travels through a named buffer so the exact bytes arrive; Enter is
// pressed afterwards unless the caller opts out.
type injectInputTool struct {
	sessionID string
	tmux      *tmux.Driver
}

func (t *injectInputTool) Metadata() Metadata {
	return Metadata{
		Name:        "inject_input",
		Description: "Paste input into an agent pane, optionally pressing Enter",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target_id": map[string]any{"type": "string", "description": "pane to receive the input"},
				"text":      map[string]any{"type": "string", "description": "input to paste"},
				"mode":      map[string]any{"type": "string", "description": "append to or replace the current input line", "enum": []string{"append", "replace"}},
				"submit":    map[string]any{"type": "boolean", "description": "press Enter after pasting (default true)"},
				"with_from": map[string]any{"type": "boolean", "description": "prefix the text with the sender's session id"},
			},
			"required": []string{"target_id", "text"},
		},
	}
}

func (t *injectInputTool) Execute(args map[string]any) (any, error) {
	target, err := stringArg(args, "target_id")
	if err != nil {
		return nil, err
	}
	text, err := stringArg(args, "text")
	if err != nil {
		return nil, err
	}
	mode := "append"
	if raw, ok := args["mode"].(string); ok && raw != "" {
		mode = raw
	}
	if mode != "append" && mode != "replace" {
		return nil, fmt.Errorf("tools: mode must be append or replace, got %q", mode)
	}
	if boolArg(args, "with_from", false) {
		text = fmt.Sprintf("From %s: %s", t.sessionID, text)
	}

	if mode == "replace" {
		if err := t.tmux.ClearLine(target); err != nil {
			return nil, err
		}
	}
	if err := t.tmux.PasteText(target, text); err != nil {
		return nil, err
	}
	if boolArg(args, "submit", true) {
		// The pane must consume the paste before Enter lands.
		time.Sleep(100 * time.Millisecond)
		if err := t.tmux.SendEnter(target); err != nil {
			return nil, err
		}
	}
	return map[string]any{"ok": true}, nil
}
