// Package client is the calling side of the line-delimited protocol. The
// request id counter lives here and only here: the serving side never
// allocates ids.
package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/danmuck/hivectl/internal/rpc"
)

var (
	ErrStreamClosed = errors.New("client: response stream closed")
	ErrIDMismatch   = errors.New("client: response id mismatch")
)

// response mirrors rpc.Response with the result kept raw for the caller to
// decode into its own shape.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpc.Error      `json:"error,omitempty"`
}

// Client drives one engine over a duplex byte stream. Calls are strictly
// sequential, matching the engine's one-request-at-a-time contract.
type Client struct {
	w   *bufio.Writer
	sc  *bufio.Scanner
	seq atomic.Uint64
}

func New(w io.Writer, r io.Reader) *Client {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Client{w: bufio.NewWriter(w), sc: sc}
}

// Call sends one request and blocks for its response. The returned raw
// result is nil when the server answered with an error envelope.
func (c *Client) Call(method string, params any) (json.RawMessage, error) {
	id := c.seq.Add(1)
	if err := c.send(&id, method, params); err != nil {
		return nil, err
	}

	for {
		if !c.sc.Scan() {
			if err := c.sc.Err(); err != nil {
				return nil, fmt.Errorf("client: read response: %w", err)
			}
			return nil, ErrStreamClosed
		}
		line := bytes.TrimSpace(c.sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			return nil, fmt.Errorf("client: decode response: %w", err)
		}
		var respID uint64
		if err := json.Unmarshal(resp.ID, &respID); err != nil || respID != id {
			return nil, fmt.Errorf("%w: sent %d got %s", ErrIDMismatch, id, resp.ID)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("client: %s (code %d): %v", resp.Error.Message, resp.Error.Code, resp.Error.Data)
		}
		return resp.Result, nil
	}
}

// Notify sends a request without an id. No response will ever arrive for
// it, so none is awaited.
func (c *Client) Notify(method string, params any) error {
	return c.send(nil, method, params)
}

// CallTool drives the generic invoke-by-name convention and unwraps the
// single text content item.
func (c *Client) CallTool(name string, arguments map[string]any) (string, error) {
	result, err := c.Call("tools/call", map[string]any{
		"name":      name,
		"arguments": arguments,
	})
	if err != nil {
		return "", err
	}
	var wrapped struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(result, &wrapped); err != nil {
		return "", fmt.Errorf("client: decode tool result: %w", err)
	}
	if len(wrapped.Content) == 0 {
		return "", fmt.Errorf("client: tool %q returned no content", name)
	}
	return wrapped.Content[0].Text, nil
}

func (c *Client) send(id *uint64, method string, params any) error {
	req := map[string]any{
		"jsonrpc": rpc.Version,
		"method":  method,
	}
	if id != nil {
		req["id"] = *id
	}
	if params != nil {
		req["params"] = params
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("client: encode request: %w", err)
	}
	if _, err := c.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("client: write request: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("client: flush request: %w", err)
	}
	return nil
}
