package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"hopper/internal/config"
	"hopper/internal/daemonrun"
	"hopper/internal/ipc"
)

// DaemonBinary is the executable launched by Launch.
const DaemonBinary = "hopperd"

// ErrDaemonNotRunning indicates daemon IPC is unavailable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Connect dials the daemon. An absent or refusing socket maps to ErrDaemonNotRunning.
func Connect(ctx context.Context, socketPath string) (*ipc.Client, error) {
	client, err := ipc.Dial(ctx, socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return nil, fmt.Errorf("%w: socket %s", ErrDaemonNotRunning, socketPath)
		}
		return nil, err
	}
	return client, nil
}

// ResolveDaemonBinary looks for hopperd next to the running executable and
// then on PATH.
func ResolveDaemonBinary() (string, error) {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), DaemonBinary)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(DaemonBinary)
	if err != nil {
		return "", fmt.Errorf("locate %s: %w", DaemonBinary, err)
	}
	return path, nil
}

// Launch starts a detached daemon process.
func Launch(executablePath, configPath string) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	var args []string
	if cfg := strings.TrimSpace(configPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for IPC socket availability and returns a connected client.
func WaitForClient(ctx context.Context, socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(ctx, socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for daemon")
	}
	return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// EnsureStarted launches the daemon unless it already answers on the
// socket. It reports whether a new process was launched.
func EnsureStarted(ctx context.Context, cfg *config.Config, executablePath, configPath string, waitTimeout time.Duration) (bool, error) {
	if client, err := ipc.Dial(ctx, cfg.Paths.SocketPath); err == nil {
		_ = client.Close()
		return false, nil
	}
	if err := Launch(executablePath, configPath); err != nil {
		return false, err
	}
	client, err := WaitForClient(ctx, cfg.Paths.SocketPath, waitTimeout)
	if err != nil {
		return true, err
	}
	_ = client.Close()
	return true, nil
}

// ReadPID returns the pid recorded by the running daemon.
func ReadPID(cfg *config.Config) (int, error) {
	pidPath := filepath.Join(cfg.Paths.DataDir, daemonrun.PIDFileName)
	data, err := os.ReadFile(pidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrDaemonNotRunning
		}
		return 0, fmt.Errorf("read daemon pid file %q: %w", pidPath, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("unable to determine daemon pid (pid file: %s)", pidPath)
	}
	return pid, nil
}

// Stop asks the daemon to shut down with SIGTERM and waits for its socket
// to disappear.
func Stop(ctx context.Context, cfg *config.Config, gracePeriod time.Duration) (int, error) {
	pid, err := ReadPID(cfg)
	if err != nil {
		return 0, err
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return pid, ErrDaemonNotRunning
		}
		return 0, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}
	return pid, WaitForShutdown(ctx, cfg.Paths.SocketPath, gracePeriod)
}

// WaitForShutdown waits for the daemon socket to stop answering.
func WaitForShutdown(ctx context.Context, socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(ctx, socketPath)
		if err != nil {
			return nil
		}
		_ = client.Close()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return fmt.Errorf("daemon did not stop within %s", timeout)
}

func isDaemonUnavailable(err error) bool {
	return os.IsNotExist(err) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
