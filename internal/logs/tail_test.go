package logs_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"hopper/internal/logs"
)

func writeTaskLog(t *testing.T, root string, id int, content string) string {
	t.Helper()
	path := logs.Path(root, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailReadsAppendedBytes(t *testing.T) {
	root := t.TempDir()
	path := writeTaskLog(t, root, 3, "a\nb\nc\n")

	tail, err := logs.OpenTail(root, 3)
	if err != nil {
		t.Fatalf("OpenTail: %v", err)
	}
	defer tail.Close()

	lines := 2
	complete, err := tail.Window(&lines)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if complete {
		t.Fatal("expected truncated window")
	}

	var buf bytes.Buffer
	if _, err := tail.ReadNew(&buf); err != nil {
		t.Fatalf("ReadNew: %v", err)
	}
	if buf.String() != "b\nc\n" {
		t.Fatalf("unexpected initial read: %q", buf.String())
	}

	buf.Reset()
	n, err := tail.ReadNew(&buf)
	if err != nil || n != 0 {
		t.Fatalf("expected quiet read, got n=%d err=%v", n, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later"); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = f.Close()

	if _, err := tail.ReadNew(&buf); err != nil {
		t.Fatalf("ReadNew: %v", err)
	}
	if buf.String() != "later" {
		t.Fatalf("unexpected appended read: %q", buf.String())
	}

	if !tail.Exists() {
		t.Fatal("expected log to exist")
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove log: %v", err)
	}
	if tail.Exists() {
		t.Fatal("expected removed log to be reported missing")
	}
}

func TestOpenTailMissing(t *testing.T) {
	if _, err := logs.OpenTail(t.TempDir(), 9); err == nil {
		t.Fatal("expected error for missing log")
	}
}

func TestReadWindowUnboundedMatchesFile(t *testing.T) {
	root := t.TempDir()
	content := "line1\nline2\nline3\n"
	writeTaskLog(t, root, 0, content)

	got, complete, err := logs.ReadWindow(root, 0, nil)
	if err != nil {
		t.Fatalf("ReadWindow: %v", err)
	}
	if !complete || got != content {
		t.Fatalf("unexpected full read: complete=%v %q", complete, got)
	}
}
