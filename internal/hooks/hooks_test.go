package hooks

import (
	"errors"
	"os"
	"testing"

	"github.com/danmuck/hivectl/internal/store"
	"github.com/danmuck/hivectl/internal/testutil/testlog"
)

func TestInstallIntoMissingSettings(t *testing.T) {
	testlog.Start(t)

	st := store.New(t.TempDir())
	path := st.Path("settings.json")

	hook, err := Install(st, path, "stop", "hivectl notify")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if hook.Marker == "" {
		t.Fatalf("expected generated marker")
	}

	var doc map[string]any
	if ok, _ := st.ReadJSON(path, &doc); !ok {
		t.Fatalf("settings document missing")
	}
	hooks, _ := doc["hooks"].(map[string]any)
	entry, _ := hooks["stop"].(map[string]any)
	if entry["command"] != "hivectl notify" || entry["marker"] != hook.Marker {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestInstallPreservesForeignSettings(t *testing.T) {
	testlog.Start(t)

	st := store.New(t.TempDir())
	path := st.Path("settings.json")
	seed := map[string]any{
		"theme": "dark",
		"hooks": map[string]any{"start": map[string]any{"command": "user-cmd"}},
	}
	if err := st.WriteJSON(path, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := Install(st, path, "stop", "hivectl notify"); err != nil {
		t.Fatalf("install: %v", err)
	}

	var doc map[string]any
	if ok, _ := st.ReadJSON(path, &doc); !ok {
		t.Fatalf("settings document missing")
	}
	if doc["theme"] != "dark" {
		t.Fatalf("foreign key lost: %+v", doc)
	}
	hooks, _ := doc["hooks"].(map[string]any)
	if _, ok := hooks["start"]; !ok {
		t.Fatalf("user hook lost: %+v", hooks)
	}
	if _, ok := hooks["stop"]; !ok {
		t.Fatalf("installed hook missing: %+v", hooks)
	}
}

func TestInstallOverCorruptSettingsBacksUp(t *testing.T) {
	testlog.Start(t)

	st := store.New(t.TempDir())
	path := st.Path("settings.json")
	if err := os.WriteFile(path, []byte("{oops"), 0o644); err != nil {
		t.Fatalf("seed corrupt: %v", err)
	}

	if _, err := Install(st, path, "stop", "hivectl notify"); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected corrupt settings backup: %v", err)
	}

	var doc map[string]any
	if ok, _ := st.ReadJSON(path, &doc); !ok {
		t.Fatalf("settings document not rebuilt")
	}
}

func TestInstallValidation(t *testing.T) {
	testlog.Start(t)

	st := store.New(t.TempDir())
	if _, err := Install(st, st.Path("s.json"), "", "cmd"); !errors.Is(err, ErrEventRequired) {
		t.Fatalf("expected ErrEventRequired, got %v", err)
	}
	if _, err := Install(st, st.Path("s.json"), "stop", " "); !errors.Is(err, ErrCommandRequired) {
		t.Fatalf("expected ErrCommandRequired, got %v", err)
	}
}
