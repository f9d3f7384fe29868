package mailbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/hivectl/internal/store"
)

var (
	ErrInvalidRecipient = errors.New("mailbox: invalid recipient id")
	ErrInvalidSender    = errors.New("mailbox: invalid sender id")
)

// Message is one durably enqueued mailbox record. Ids are unique and
// strictly increasing within a single recipient's log only.
type Message struct {
	ID        uint64  `json:"id"`
	From      string  `json:"from"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// metaDoc is the single source of truth for id allocation. NextID strictly
// exceeds every id ever appended for the recipient, across restarts.
type metaDoc struct {
	NextID uint64 `json:"next_id"`
}

// Mailbox is the per-recipient durable message log. All mutation happens
// under the recipient's own lock; different recipients never block each
// other.
type Mailbox struct {
	store *store.Store
}

func New(st *store.Store) *Mailbox {
	return &Mailbox{store: st}
}

// Append durably enqueues one message for recipient and returns the
// allocated id. The advanced counter is persisted before the log line: a
// crash between the two can only skip an id, never hand the same id out
// twice.
func (m *Mailbox) Append(recipient, sender, text string) (uint64, error) {
	if err := validateID(recipient); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRecipient, recipient)
	}
	if err := validateID(sender); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSender, sender)
	}

	var id uint64
	err := m.store.WithLock(m.lockPath(recipient), func() error {
		var meta metaDoc
		if _, err := m.store.ReadJSON(m.metaPath(recipient), &meta); err != nil {
			return err
		}
		if meta.NextID == 0 {
			meta.NextID = 1
		}
		id = meta.NextID
		if err := m.store.WriteJSON(m.metaPath(recipient), metaDoc{NextID: id + 1}); err != nil {
			return err
		}

		record := Message{
			ID:        id,
			From:      sender,
			Text:      text,
			Timestamp: float64(time.Now().UnixNano()) / 1e9,
		}
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("mailbox: marshal record: %w", err)
		}
		return m.store.AppendLine(m.logPath(recipient), line)
	})
	if err != nil {
		return 0, err
	}
	log.Debug().Str("recipient", recipient).Uint64("id", id).Msg("mailbox append")
	return id, nil
}

// ReadSince returns the messages with id > since in ascending id order,
// together with the maximum id observed across the entire log. Callers use
// that maximum as their next cursor whether or not new messages existed.
// Malformed log lines are skipped.
func (m *Mailbox) ReadSince(recipient string, since uint64) ([]Message, uint64, error) {
	if err := validateID(recipient); err != nil {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidRecipient, recipient)
	}

	messages := []Message{}
	var maxID uint64
	err := m.store.WithLock(m.lockPath(recipient), func() error {
		lines, err := m.store.ReadLines(m.logPath(recipient))
		if err != nil {
			return err
		}
		for _, line := range lines {
			var msg Message
			if err := json.Unmarshal(line, &msg); err != nil {
				log.Warn().Str("recipient", recipient).Msg("mailbox: skipping malformed log line")
				continue
			}
			if msg.ID > maxID {
				maxID = msg.ID
			}
			if msg.ID > since {
				messages = append(messages, msg)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages, maxID, nil
}

func (m *Mailbox) logPath(recipient string) string {
	return m.store.Path("inbox", recipient+".jsonl")
}

func (m *Mailbox) metaPath(recipient string) string {
	return m.store.Path("inbox", recipient+".meta.json")
}

func (m *Mailbox) lockPath(recipient string) string {
	return m.store.Path("inbox", "."+recipient+".lock")
}

// validateID accepts any opaque non-empty token that cannot escape the
// inbox directory when used as a file name.
func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("empty id")
	}
	if strings.ContainsAny(id, "/\\\x00") || id == "." || id == ".." {
		return errors.New("id not filesystem safe")
	}
	return nil
}
