package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/hivectl/internal/testutil/testlog"
)

type sampleDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteReadRoundTrip(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	path := st.Path("nested", "doc.json")

	if err := st.WriteJSON(path, sampleDoc{Name: "alpha", Count: 3}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out sampleDoc
	ok, err := st.ReadJSON(path, &out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !ok {
		t.Fatalf("expected document present")
	}
	if out.Name != "alpha" || out.Count != 3 {
		t.Fatalf("unexpected document: %+v", out)
	}
}

func TestReadMissingReportsDefault(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	var out sampleDoc
	ok, err := st.ReadJSON(st.Path("absent.json"), &out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok {
		t.Fatalf("expected missing document")
	}
}

func TestReadCorruptReportsDefault(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	path := st.Path("corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	var out sampleDoc
	ok, err := st.ReadJSON(path, &out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok {
		t.Fatalf("corrupt document must degrade to default")
	}
}

func TestWriteNilDocument(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	if err := st.WriteJSON(st.Path("doc.json"), nil); err != ErrNilDocument {
		t.Fatalf("expected ErrNilDocument, got %v", err)
	}
}

func TestAppendAndReadLines(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	path := st.Path("log.jsonl")

	if err := st.AppendLine(path, []byte(`{"id":1}`)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := st.AppendLine(path, []byte(`{"id":2}`)); err != nil {
		t.Fatalf("append: %v", err)
	}

	lines, err := st.ReadLines(path)
	if err != nil {
		t.Fatalf("read lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if string(lines[0]) != `{"id":1}` || string(lines[1]) != `{"id":2}` {
		t.Fatalf("unexpected lines: %q %q", lines[0], lines[1])
	}
}

func TestReadLinesMissingLog(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	lines, err := st.ReadLines(st.Path("absent.jsonl"))
	if err != nil {
		t.Fatalf("read lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty log, got %d lines", len(lines))
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	lockPath := st.Path(".test.lock")

	failure := os.ErrInvalid
	if err := st.WithLock(lockPath, func() error { return failure }); err != failure {
		t.Fatalf("expected fn error passthrough, got %v", err)
	}

	// A failed body must not leave the lock held.
	done := make(chan struct{})
	go func() {
		_ = st.WithLock(lockPath, func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("lock was not released after fn error")
	}
}

func TestWithLockExcludesConcurrentBodies(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	lockPath := st.Path(".counter.lock")
	docPath := st.Path("counter.json")

	const workers = 8
	const iterations = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				err := st.WithLock(lockPath, func() error {
					var doc sampleDoc
					if _, err := st.ReadJSON(docPath, &doc); err != nil {
						return err
					}
					doc.Count++
					return st.WriteJSON(docPath, doc)
				})
				if err != nil {
					t.Errorf("locked increment: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	var doc sampleDoc
	if _, err := st.ReadJSON(docPath, &doc); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if doc.Count != workers*iterations {
		t.Fatalf("lost increments: got %d, want %d", doc.Count, workers*iterations)
	}
}

func TestMergeIntoMissingDocument(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	path := st.Path("settings.json")

	err := st.MergeJSON(path, map[string]any{"hooks": map[string]any{"stop": "notify"}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	var out map[string]any
	if ok, _ := st.ReadJSON(path, &out); !ok {
		t.Fatalf("merged document missing")
	}
	hooks, _ := out["hooks"].(map[string]any)
	if hooks["stop"] != "notify" {
		t.Fatalf("unexpected merged document: %+v", out)
	}
}

func TestMergePreservesUnrelatedKeys(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	path := st.Path("settings.json")
	seed := map[string]any{
		"theme": "dark",
		"hooks": map[string]any{"start": "hello"},
	}
	if err := st.WriteJSON(path, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := st.MergeJSON(path, map[string]any{"hooks": map[string]any{"stop": "bye"}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	var out map[string]any
	if ok, _ := st.ReadJSON(path, &out); !ok {
		t.Fatalf("merged document missing")
	}
	if out["theme"] != "dark" {
		t.Fatalf("unrelated key lost: %+v", out)
	}
	hooks, _ := out["hooks"].(map[string]any)
	if hooks["start"] != "hello" || hooks["stop"] != "bye" {
		t.Fatalf("hook entries lost: %+v", hooks)
	}
}

func TestMergeCorruptBackupAndReset(t *testing.T) {
	testlog.Start(t)

	st := New(t.TempDir())
	path := st.Path("settings.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	err := st.MergeJSON(path, map[string]any{"hooks": map[string]any{"stop": "bye"}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("expected backup of corrupt document: %v", err)
	}
	if string(backup) != "{broken" {
		t.Fatalf("backup content mismatch: %q", backup)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read merged document: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("merged document not valid JSON: %v", err)
	}
	if _, ok := out["hooks"]; !ok {
		t.Fatalf("merged document missing overlay: %+v", out)
	}
}

func TestPathJoinsUnderRoot(t *testing.T) {
	testlog.Start(t)

	root := t.TempDir()
	st := New(root)
	got := st.Path("inbox", "a.jsonl")
	want := filepath.Join(root, "inbox", "a.jsonl")
	if got != want {
		t.Fatalf("path mismatch: got %q want %q", got, want)
	}
}
