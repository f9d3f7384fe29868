package tools

import (
	"sort"

	"github.com/danmuck/hivectl/internal/registry"
	"github.com/danmuck/hivectl/internal/tmux"
)

// whoamiTool answers the "who am I / who is my parent" query from the
// relationship registry.
type whoamiTool struct {
	sessionID string
	registry  *registry.Registry
}

func (t *whoamiTool) Metadata() Metadata {
	return Metadata{
		Name:        "whoami",
		Description: "Report the hub session id and its registered lineage",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	}
}

func (t *whoamiTool) Execute(args map[string]any) (any, error) {
	out := map[string]any{"session_id": t.sessionID}
	if father, ok, err := t.registry.Father(t.sessionID); err != nil {
		return nil, err
	} else if ok {
		out["father"] = father
	}
	if workdir, ok, err := t.registry.Workdir(t.sessionID); err != nil {
		return nil, err
	} else if ok {
		out["workdir"] = workdir
	}
	return out, nil
}

// Agent is one row of the list_agents result.
type Agent struct {
	SessionID string `json:"session_id"`
	Father    string `json:"father,omitempty"`
	Workdir   string `json:"workdir,omitempty"`
	Alive     bool   `json:"alive"`
}

// listAgentsTool joins registry children with live multiplexer panes so
// callers see every known endpoint and whether it is still running.
type listAgentsTool struct {
	registry *registry.Registry
	tmux     *tmux.Driver
}

func (t *listAgentsTool) Metadata() Metadata {
	return Metadata{
		Name:        "list_agents",
		Description: "List every known agent session with lineage and liveness",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	}
}

func (t *listAgentsTool) Execute(args map[string]any) (any, error) {
	children, err := t.registry.Children()
	if err != nil {
		return nil, err
	}
	panes, err := t.tmux.ListPanes()
	if err != nil {
		return nil, err
	}

	alive := map[string]tmux.Pane{}
	for _, pane := range panes {
		alive[pane.ID] = pane
	}

	byID := map[string]Agent{}
	for _, child := range children {
		byID[child.SessionID] = Agent{
			SessionID: child.SessionID,
			Father:    child.Father,
			Workdir:   child.Workdir,
			Alive:     false,
		}
	}
	for id, pane := range alive {
		entry, ok := byID[id]
		if !ok {
			entry = Agent{SessionID: id, Workdir: pane.Workdir}
		}
		entry.Alive = true
		byID[id] = entry
	}

	agents := make([]Agent, 0, len(byID))
	for _, entry := range byID {
		agents = append(agents, entry)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].SessionID < agents[j].SessionID })
	return map[string]any{"agents": agents}, nil
}

// spawnAgentTool opens a child pane, records its lineage under the caller,
// and optionally injects an initial prompt.
type spawnAgentTool struct {
	sessionID string
	registry  *registry.Registry
	tmux      *tmux.Driver
}

func (t *spawnAgentTool) Metadata() Metadata {
	return Metadata{
		Name:        "spawn_agent",
		Description: "Split a new agent pane and register it as a child of this session",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"workdir": map[string]any{"type": "string", "description": "working directory for the new pane"},
				"prompt":  map[string]any{"type": "string", "description": "optional first input sent to the pane"},
			},
			"required": []string{"workdir"},
		},
	}
}

func (t *spawnAgentTool) Execute(args map[string]any) (any, error) {
	workdir, err := stringArg(args, "workdir")
	if err != nil {
		return nil, err
	}
	pane, err := t.tmux.SplitWindow(workdir)
	if err != nil {
		return nil, err
	}
	if err := t.registry.SetChild(t.sessionID, pane, workdir); err != nil {
		return nil, err
	}
	if prompt, ok := args["prompt"].(string); ok && prompt != "" {
		if err := t.tmux.SendKeys(pane, prompt); err != nil {
			return nil, err
		}
	}
	return map[string]any{"session_id": pane}, nil
}

// killAgentTool terminates a pane. Registry entries are left in place; the
// log and lineage of a dead session stay readable.
type killAgentTool struct {
	tmux *tmux.Driver
}

func (t *killAgentTool) Metadata() Metadata {
	return Metadata{
		Name:        "kill_agent",
		Description: "Kill the pane backing an agent session",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target_id": map[string]any{"type": "string", "description": "session id to terminate"},
			},
			"required": []string{"target_id"},
		},
	}
}

func (t *killAgentTool) Execute(args map[string]any) (any, error) {
	target, err := stringArg(args, "target_id")
	if err != nil {
		return nil, err
	}
	if err := t.tmux.KillPane(target); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}
