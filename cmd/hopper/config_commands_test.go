package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, errOut, code := runCLI(t, []string{"config", "validate"}, env.socketPath, env.configPath)
	requireCode(t, code, 0, errOut)
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.DataDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, errOut, code = runCLI(t, []string{"config", "init", "--path", target}, env.socketPath, env.configPath)
	requireCode(t, code, 0, errOut)
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, errOut, code = runCLI(t, []string{"config", "init", "--path", target}, env.socketPath, env.configPath)
	requireCode(t, code, 1, errOut)
	requireContains(t, errOut, "already exists")
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, errOut, code := runCLI(t, []string{"config", "show"}, env.socketPath, env.configPath)
	requireCode(t, code, 0, errOut)
	requireContains(t, out, "[paths]")
	requireContains(t, out, env.cfg.Paths.DataDir)
	requireContains(t, out, "default_log_lines")
}
