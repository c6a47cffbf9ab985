package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		want   int
		stderr string
	}{
		{name: "success", err: nil, want: 0},
		{name: "exit code error", err: exitCodeError{code: 1}, want: 1},
		{name: "wrapped exit code", err: fmt.Errorf("follow: %w", exitCodeError{code: 3}), want: 3},
		{name: "cancelled", err: context.Canceled, want: 130},
		{name: "plain error", err: errors.New("boom"), want: 1, stderr: "boom\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := exitCode(tc.err, &stderr); got != tc.want {
				t.Fatalf("exitCode = %d, want %d", got, tc.want)
			}
			if stderr.String() != tc.stderr {
				t.Fatalf("unexpected stderr %q", stderr.String())
			}
		})
	}
}

func TestUnknownCommandFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"nope"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	requireContains(t, stderr.String(), "unknown command")
}
