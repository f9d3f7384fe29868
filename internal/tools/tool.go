package tools

// Metadata is the contract for tool identity and display data.
type Metadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Tool is one directly routable method. Execute receives the request's
// params object (empty when the request carried none) and reports failure
// through the error return only; the engine owns the wire error envelope.
type Tool interface {
	Metadata() Metadata
	Execute(args map[string]any) (any, error)
}
