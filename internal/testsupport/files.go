package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"hopper/internal/config"
	"hopper/internal/logs"
)

// WriteLog replaces the log file of a task and returns its path.
func WriteLog(t testing.TB, cfg *config.Config, id int, content string) string {
	t.Helper()

	path := logs.Path(cfg.Paths.DataDir, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// AppendLog appends content to an existing task log.
func AppendLog(t testing.TB, path, content string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append %s: %v", path, err)
	}
}
