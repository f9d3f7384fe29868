package engine

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/hivectl/internal/rpc"
	"github.com/danmuck/hivectl/internal/tools"
)

const protocolVersion = "2024-11-05"

// Handler is one protocol-level method implementation. Failure travels
// through the error return; handlers never write their own wire envelopes.
type Handler func(params map[string]any) (any, error)

// ServerInfo names the hub on the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Engine routes decoded requests across two namespaces: the fixed
// protocol-handshake methods, which win on a name collision, and the direct
// tool namespace.
type Engine struct {
	tools    *tools.Registry
	protocol map[string]Handler
	info     ServerInfo
	logger   zerolog.Logger
}

func New(reg *tools.Registry, info ServerInfo) *Engine {
	e := &Engine{
		tools:  reg,
		info:   info,
		logger: log.Logger,
	}
	e.protocol = map[string]Handler{
		"initialize": e.handleInitialize,
		"tools/list": e.handleToolsList,
		"tools/call": e.handleToolsCall,
	}
	return e
}

// Serve processes the input stream to completion, strictly sequentially.
// No request failure is ever fatal to the loop; only stream errors end it.
func (e *Engine) Serve(in io.Reader, out io.Writer) error {
	reader := rpc.NewLineReader(in)
	writer := rpc.NewResponseWriter(out)
	for {
		line, ok := reader.Next()
		if !ok {
			break
		}
		e.dispatchLine(line, writer)
	}
	if err := reader.Err(); err != nil {
		return fmt.Errorf("engine: read request stream: %w", err)
	}
	return nil
}

func (e *Engine) dispatchLine(line []byte, writer *rpc.ResponseWriter) {
	req, err := rpc.DecodeRequest(line)
	if err != nil {
		// The only response whose id does not echo the request: no id
		// could be recovered from the line.
		e.write(writer, rpc.NewError(nil, rpc.CodeParseError, "parse error", err.Error()))
		return
	}
	resp, respond := e.Dispatch(req)
	if respond {
		e.write(writer, resp)
	}
}

// Dispatch routes one decoded request. respond=false means the request was
// a notification and must produce no output line, regardless of outcome.
func (e *Engine) Dispatch(req *rpc.Request) (rpc.Response, bool) {
	notification := req.IsNotification()

	handler, ok := e.resolve(req.Method)
	if !ok {
		if notification {
			e.logger.Debug().Str("method", req.Method).Msg("dropping unknown-method notification")
			return rpc.Response{}, false
		}
		return rpc.NewError(req.ID, rpc.CodeMethodNotFound, "method not found", req.Method), true
	}

	params := map[string]any{}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			if notification {
				e.logger.Debug().Str("method", req.Method).Msg("dropping notification with non-object params")
				return rpc.Response{}, false
			}
			return rpc.NewError(req.ID, rpc.CodeInternalError, "internal error", "params must be an object"), true
		}
	}

	result, err := handler(params)
	if err != nil {
		if notification {
			e.logger.Warn().Str("method", req.Method).Err(err).Msg("notification handler failed")
			return rpc.Response{}, false
		}
		return rpc.NewError(req.ID, rpc.CodeInternalError, "internal error", err.Error()), true
	}
	if notification {
		return rpc.Response{}, false
	}
	if result == nil {
		result = map[string]any{}
	}
	return rpc.NewResult(req.ID, result), true
}

// resolve picks the handler for a method name. Protocol-handshake methods
// take priority over a same-named direct tool.
func (e *Engine) resolve(method string) (Handler, bool) {
	if h, ok := e.protocol[method]; ok {
		return h, true
	}
	if tool, ok := e.tools.Resolve(method); ok {
		return tool.Execute, true
	}
	return nil, false
}

func (e *Engine) write(writer *rpc.ResponseWriter, resp rpc.Response) {
	if err := writer.WriteResponse(resp); err != nil {
		e.logger.Error().Err(err).Msg("response write failed")
	}
}

func (e *Engine) handleInitialize(params map[string]any) (any, error) {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo":      e.info,
		"capabilities":    map[string]any{"tools": map[string]any{}},
	}, nil
}

func (e *Engine) handleToolsList(params map[string]any) (any, error) {
	return map[string]any{"tools": e.tools.ListMetadata()}, nil
}

// handleToolsCall is the compatibility shim for callers that only know the
// generic invoke-by-name convention: the inner {name, arguments} payload is
// mapped onto the direct tool namespace and the result comes back as a
// single text content item.
func (e *Engine) handleToolsCall(params map[string]any) (any, error) {
	name, _ := params["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("engine: tools/call requires a tool name")
	}
	tool, ok := e.tools.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("engine: unknown tool %q", name)
	}
	arguments, _ := params["arguments"].(map[string]any)
	if arguments == nil {
		arguments = map[string]any{}
	}
	result, err := tool.Execute(arguments)
	if err != nil {
		return nil, err
	}
	text, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("engine: encode tool result: %w", err)
	}
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
	}, nil
}
