package tmux

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

var ErrPaneRequired = errors.New("tmux: pane id required")

// CommandRunner abstracts process execution for the multiplexer driver.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = 127
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

// Pane is one live multiplexer pane.
type Pane struct {
	ID      string `json:"id"`
	Workdir string `json:"workdir"`
}

// Driver issues single-shot multiplexer commands. It holds no state beyond
// the binary name; every call is an independent process invocation.
type Driver struct {
	bin    string
	runner CommandRunner
}

func NewDriver(bin string, runner CommandRunner) *Driver {
	if strings.TrimSpace(bin) == "" {
		bin = "tmux"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Driver{bin: bin, runner: runner}
}

// CurrentPane returns the pane id the calling process runs inside.
func (d *Driver) CurrentPane() (string, error) {
	out, err := d.run("display-message", "-p", "#{pane_id}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListPanes returns every pane across all sessions with its current path.
func (d *Driver) ListPanes() ([]Pane, error) {
	out, err := d.run("list-panes", "-a", "-F", "#{pane_id}\t#{pane_current_path}")
	if err != nil {
		return nil, err
	}
	var panes []Pane
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, workdir, _ := strings.Cut(line, "\t")
		panes = append(panes, Pane{ID: id, Workdir: workdir})
	}
	return panes, nil
}

// SplitWindow opens a new pane rooted at workdir and returns its pane id.
func (d *Driver) SplitWindow(workdir string) (string, error) {
	args := []string{"split-window", "-d", "-P", "-F", "#{pane_id}"}
	if strings.TrimSpace(workdir) != "" {
		args = append(args, "-c", workdir)
	}
	out, err := d.run(args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// defaultCaptureLines bounds a capture when the caller gives no limit.
const defaultCaptureLines = 2000

// CapturePane returns the text of a pane, including up to lines of
// scrollback. Escapes are kept and wrapped lines are joined.
func (d *Driver) CapturePane(pane string, lines int) (string, error) {
	if strings.TrimSpace(pane) == "" {
		return "", ErrPaneRequired
	}
	if lines <= 0 {
		lines = defaultCaptureLines
	}
	out, err := d.run("capture-pane", "-p", "-e", "-J", "-S", fmt.Sprintf("-%d", lines), "-t", pane)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// PasteText delivers text into a pane through a temporary named buffer so
// the exact bytes arrive instead of being interpreted as key names.
func (d *Driver) PasteText(pane, text string) error {
	if strings.TrimSpace(pane) == "" {
		return ErrPaneRequired
	}
	buf := fmt.Sprintf("hive_%d_%d", os.Getpid(), time.Now().UnixNano())
	if _, err := d.run("set-buffer", "-b", buf, "--", text); err != nil {
		return err
	}
	_, err := d.run("paste-buffer", "-b", buf, "-t", pane, "-d")
	return err
}

// SendEnter presses Enter in a pane.
func (d *Driver) SendEnter(pane string) error {
	if strings.TrimSpace(pane) == "" {
		return ErrPaneRequired
	}
	_, err := d.run("send-keys", "-t", pane, "Enter")
	return err
}

// ClearLine discards any partially typed input in a pane.
func (d *Driver) ClearLine(pane string) error {
	if strings.TrimSpace(pane) == "" {
		return ErrPaneRequired
	}
	_, err := d.run("send-keys", "-t", pane, "C-u")
	return err
}

// SendKeys injects text into a pane followed by Enter.
func (d *Driver) SendKeys(pane, text string) error {
	if strings.TrimSpace(pane) == "" {
		return ErrPaneRequired
	}
	_, err := d.run("send-keys", "-t", pane, text, "Enter")
	return err
}

// KillPane terminates a pane.
func (d *Driver) KillPane(pane string) error {
	if strings.TrimSpace(pane) == "" {
		return ErrPaneRequired
	}
	_, err := d.run("kill-pane", "-t", pane)
	return err
}

func (d *Driver) run(args ...string) ([]byte, error) {
	stdout, stderr, code, err := d.runner.Run(d.bin, args...)
	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("tmux: %s failed (exit %d): %s", args[0], code, detail)
	}
	return stdout, nil
}
