package tools

import (
	"github.com/danmuck/hivectl/internal/mailbox"
)

// sendMessageTool enqueues one message for a target session. The sender is
// always the hub's own session id; callers cannot spoof another identity.
type sendMessageTool struct {
	sessionID string
	mailbox   *mailbox.Mailbox
}

func (t *sendMessageTool) Metadata() Metadata {
	return Metadata{
		Name:        "send_message",
		Description: "Durably enqueue a message for another agent session",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target_id": map[string]any{"type": "string", "description": "recipient session id"},
				"text":      map[string]any{"type": "string", "description": "message body"},
			},
			"required": []string{"target_id", "text"},
		},
	}
}

func (t *sendMessageTool) Execute(args map[string]any) (any, error) {
	target, err := stringArg(args, "target_id")
	if err != nil {
		return nil, err
	}
	text, err := stringArg(args, "text")
	if err != nil {
		return nil, err
	}
	if _, err := t.mailbox.Append(target, t.sessionID, text); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

// checkMessageBoxTool drains the hub's own mailbox past a caller-held
// cursor. The returned since_id is the next cursor whether or not new
// messages existed.
type checkMessageBoxTool struct {
	sessionID string
	mailbox   *mailbox.Mailbox
}

func (t *checkMessageBoxTool) Metadata() Metadata {
	return Metadata{
		Name:        "check_message_box",
		Description: "Read all mailbox messages with id greater than since_id",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"since_id": map[string]any{"type": "integer", "description": "last seen message id"},
			},
		},
	}
}

func (t *checkMessageBoxTool) Execute(args map[string]any) (any, error) {
	since, err := uintArg(args, "since_id")
	if err != nil {
		return nil, err
	}
	messages, maxID, err := t.mailbox.ReadSince(t.sessionID, since)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"messages": messages,
		"since_id": maxID,
	}, nil
}
