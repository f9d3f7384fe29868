package client

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Subprocess owns a hub daemon child process with its stdio wired to a
// Client. The daemon's stderr passes through so its logs stay visible.
type Subprocess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	Client *Client
}

// StartSubprocess launches bin and attaches a protocol client to it.
func StartSubprocess(bin string, args ...string) (*Subprocess, error) {
	cmd := exec.Command(bin, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("client: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("client: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("client: start %s: %w", bin, err)
	}

	return &Subprocess{
		cmd:    cmd,
		stdin:  stdin,
		Client: New(stdin, stdout),
	}, nil
}

// Close ends the daemon's input stream and waits for it to exit.
func (p *Subprocess) Close() error {
	_ = p.stdin.Close()
	return p.cmd.Wait()
}
