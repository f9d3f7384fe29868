package tools

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMissingArgument = errors.New("tools: missing argument")

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, key)
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("tools: argument %s must be a non-empty string", key)
	}
	return s, nil
}

// boolArg reads an optional boolean argument, falling back to def when the
// key is absent or not a boolean.
func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// uintArg reads an unsigned integer argument. JSON numbers arrive as
// float64; numeric strings are accepted for CLI callers. Absent defaults
// to zero.
func uintArg(args map[string]any, key string) (uint64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, nil
	}
	switch v := raw.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("tools: argument %s must be non-negative", key)
		}
		return uint64(v), nil
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("tools: argument %s is not an unsigned integer: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("tools: argument %s has unsupported type %T", key, raw)
	}
}
