package daemonrun_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hopper/internal/daemonrun"
	"hopper/internal/ipc"
	"hopper/internal/logging"
	"hopper/internal/testsupport"
)

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- daemonrun.Run(ctx, cfg)
	}()

	var client *ipc.Client
	deadline := time.Now().Add(5 * time.Second)
	for client == nil {
		select {
		case err := <-errCh:
			if err != nil && strings.Contains(err.Error(), "operation not permitted") {
				t.Skipf("skipping daemon run test: %v", err)
			}
			t.Fatalf("Run exited early: %v", err)
		default:
		}
		dialCtx, dialCancel := context.WithTimeout(ctx, 200*time.Millisecond)
		c, err := ipc.Dial(dialCtx, cfg.Paths.SocketPath)
		dialCancel()
		if err == nil {
			client = c
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	tasks, err := client.Tasks(ctx)
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty task directory, got %d tasks", len(tasks))
	}
	_ = client.Close()

	if _, err := os.Stat(filepath.Join(cfg.Paths.DataDir, daemonrun.PIDFileName)); err != nil {
		t.Fatalf("expected pid file: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(cfg.Paths.LogDir, logging.DaemonLogName)); err != nil {
		t.Fatalf("expected log pointer: %v", err)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, err := os.Stat(cfg.Paths.SocketPath); !os.IsNotExist(err) {
		t.Fatalf("expected socket to be removed, stat err=%v", err)
	}
}
