package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hopper/internal/config"
	"hopper/internal/daemon"
	"hopper/internal/ipc"
	"hopper/internal/logging"
	"hopper/internal/taskstore"
	"hopper/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *taskstore.Store
	daemon     *daemon.Daemon
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	// Keep the socket path short enough for sun_path.
	socketDir, err := os.MkdirTemp("", "hopper-cli")
	if err != nil {
		t.Fatalf("mkdir socket dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(socketDir) })
	cfg.Paths.SocketPath = filepath.Join(socketDir, "h.sock")

	configPath := filepath.Join(testsupport.BaseDir(cfg), "hopper.toml")
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		cancel()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		socketPath: cfg.Paths.SocketPath,
		configPath: configPath,
	}
}

// runCLI executes the hopper command line and returns stdout, stderr and
// the process exit code.
func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	code := run(append(flags, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
socket_path = %q

[client]
read_local_logs = %t
default_log_lines = %d

[follow]
poll_interval_ms = %d
status_check_ticks = %d
start_wait_ms = %d
`,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.SocketPath,
		cfg.Client.ReadLocalLogs,
		cfg.Client.DefaultLogLines,
		cfg.Follow.PollIntervalMS,
		cfg.Follow.StatusCheckTicks,
		cfg.Follow.StartWaitMS,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireCode(t *testing.T, got, want int, stderr string) {
	t.Helper()
	if got != want {
		t.Fatalf("expected exit code %d, got %d (stderr: %q)", want, got, stderr)
	}
}
