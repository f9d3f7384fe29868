package rpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// LineReader yields one raw protocol line at a time, skipping blanks. Lines
// carry no length bound; a message with a large text body is still one line.
type LineReader struct {
	r   *bufio.Reader
	err error
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next non-blank line. ok=false means the stream ended;
// Err reports whether it ended cleanly.
func (r *LineReader) Next() ([]byte, bool) {
	for {
		line, err := r.r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			r.err = err
			return nil, false
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			return trimmed, true
		}
		if err == io.EOF {
			return nil, false
		}
	}
}

func (r *LineReader) Err() error {
	return r.err
}

// DecodeRequest parses one line into a request envelope.
func DecodeRequest(line []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, fmt.Errorf("rpc: decode request: %w", err)
	}
	return &req, nil
}

// ResponseWriter emits one complete JSON document per line and flushes
// after every line so an incremental consumer never stalls on buffering.
type ResponseWriter struct {
	w *bufio.Writer
}

func NewResponseWriter(w io.Writer) *ResponseWriter {
	return &ResponseWriter{w: bufio.NewWriter(w)}
}

func (w *ResponseWriter) WriteResponse(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("rpc: encode response: %w", err)
	}
	if _, err := w.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("rpc: write response: %w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("rpc: flush response: %w", err)
	}
	return nil
}
