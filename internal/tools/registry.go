package tools

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrToolExists      = errors.New("tool already exists")
	ErrToolNil         = errors.New("tool is nil")
	ErrInvalidMetadata = errors.New("invalid tool metadata")
)

// Registry stores tools by stable method name.
type Registry struct {
	items map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Tool)}
}

// ValidateMetadata checks required metadata fields and name format.
func ValidateMetadata(meta Metadata) error {
	name := strings.TrimSpace(meta.Name)
	desc := strings.TrimSpace(meta.Description)
	if name == "" || desc == "" {
		return fmt.Errorf("%w: name and description are required", ErrInvalidMetadata)
	}
	if !isValidName(name) {
		return fmt.Errorf("%w: invalid name format %q", ErrInvalidMetadata, name)
	}
	return nil
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return ErrToolNil
	}

	meta := tool.Metadata()
	if err := ValidateMetadata(meta); err != nil {
		return err
	}

	if _, ok := r.items[meta.Name]; ok {
		return ErrToolExists
	}
	r.items[meta.Name] = tool
	return nil
}

// Resolve returns a tool by method name.
func (r *Registry) Resolve(name string) (Tool, bool) {
	tool, ok := r.items[name]
	return tool, ok
}

// ListMetadata returns deterministic metadata ordering by name.
func (r *Registry) ListMetadata() []Metadata {
	list := make([]Metadata, 0, len(r.items))
	for _, tool := range r.items {
		list = append(list, tool.Metadata())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

func isValidName(name string) bool {
	if name == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if i == 0 || i == len(name)-1 {
			if isSep {
				return false
			}
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
