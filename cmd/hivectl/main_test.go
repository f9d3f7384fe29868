package main

import (
	"strings"
	"testing"

	"github.com/danmuck/hivectl/internal/config"
	"github.com/danmuck/hivectl/internal/logging"
	"github.com/danmuck/hivectl/internal/mailbox"
	"github.com/danmuck/hivectl/internal/registry"
	"github.com/danmuck/hivectl/internal/store"
)

func testRoot(t *testing.T) string {
	t.Helper()
	logging.ConfigureTests()
	root := t.TempDir()
	t.Setenv(config.EnvRoot, root)
	t.Setenv(config.EnvSessionID, "")
	return root
}

func TestRunRequiresCommand(t *testing.T) {
	testRoot(t)
	if err := run("", "", 0, nil); err == nil {
		t.Fatalf("expected usage error")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	testRoot(t)
	err := run("", "", 0, []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestSendRequiresSender(t *testing.T) {
	testRoot(t)
	err := run("", "", 0, []string{"send", "%1", "hello"})
	if err == nil || !strings.Contains(err.Error(), "-from") {
		t.Fatalf("expected sender requirement, got %v", err)
	}
}

func TestSendWritesThroughTheStore(t *testing.T) {
	root := testRoot(t)
	if err := run("", "%0", 0, []string{"send", "%1", "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	mb := mailbox.New(store.New(root))
	messages, maxID, err := mb.ReadSince("%1", 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(messages) != 1 || maxID != 1 {
		t.Fatalf("expected one enqueued message, got %d max %d", len(messages), maxID)
	}
	if messages[0].From != "%0" || messages[0].Text != "hello" {
		t.Fatalf("unexpected message: %+v", messages[0])
	}
}

func TestRegisterAndFather(t *testing.T) {
	root := testRoot(t)
	if err := run("", "", 0, []string{"register", "%1", "%2", "/work"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	reg := registry.New(store.New(root))
	father, ok, err := reg.Father("%2")
	if err != nil || !ok || father != "%1" {
		t.Fatalf("lookup after register: ok=%v father=%q err=%v", ok, father, err)
	}

	if err := run("", "", 0, []string{"father", "%2"}); err != nil {
		t.Fatalf("father command: %v", err)
	}
	if err := run("", "", 0, []string{"father", "%404"}); err == nil {
		t.Fatalf("expected error for unregistered child")
	}
}

func TestHookRequiresSettingsPath(t *testing.T) {
	testRoot(t)
	err := run("", "", 0, []string{"hook", "stop", "hivectl notify"})
	if err == nil || !strings.Contains(err.Error(), "settings_path") {
		t.Fatalf("expected settings_path requirement, got %v", err)
	}
}
