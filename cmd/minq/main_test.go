package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func noEnv(string) string { return "" }

type result struct {
	status int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := run(context.Background(), args, strings.NewReader(""), stdout, stderr, noEnv)
	status := exitStatus(err, stderr)
	return result{status: status, stdout: stdout.String(), stderr: stderr.String()}
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunVersion(t *testing.T) {
	res := runCLI(t, "--version")
	if res.status != 0 {
		t.Errorf("status = %d", res.status)
	}
	if !strings.Contains(res.stdout, "minq version") {
		t.Errorf("expected version output, got %q", res.stdout)
	}
}

func TestRunHelp(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		t.Run(flag, func(t *testing.T) {
			res := runCLI(t, flag)
			if res.status != 0 {
				t.Errorf("status = %d", res.status)
			}
			for _, want := range []string{"minq [options] [file] [args...]", "--watch", "--eval"} {
				if !strings.Contains(res.stdout, want) {
					t.Errorf("help output missing %q", want)
				}
			}
		})
	}
}

func TestRunUsageErrors(t *testing.T) {
	script := writeScript(t, "a.mq", "1")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--invalid-flag"}, "flag provided but not defined"},
		{"watch without file", []string{"--watch", "-e", "1"}, "--watch requires a script file"},
		{"eval with file", []string{"-e", "1", "-f", script}, "cannot use --eval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			if res.status != 2 {
				t.Errorf("status = %d, want 2", res.status)
			}
			if !strings.Contains(res.stderr, tt.want) {
				t.Errorf("stderr = %q, want %q", res.stderr, tt.want)
			}
		})
	}
}

func TestRunEval(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		status int
		stdout string
		stderr string
	}{
		{"log result", []string{"-l", "-e", "1 + 2"}, 0, "3\n", ""},
		{"long flags", []string{"--log", "--eval", `String("a", "b")`}, 0, "\"ab\"\n", ""},
		{"no log", []string{"-e", "1 + 2"}, 0, "", ""},
		{"args", []string{"-l", "-e", "args(1)", "one", "two"}, 0, "\"two\"\n", ""},
		{"exit code", []string{"-e", "exit(3)"}, 3, "", ""},
		{"runtime error", []string{"-e", "1 / 0"}, 1, "", "Runtime error"},
		{"syntax error", []string{"-e", "var = 1"}, 1, "", "Syntax error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			if res.status != tt.status {
				t.Errorf("status = %d, want %d (stderr %q)", res.status, tt.status, res.stderr)
			}
			if res.stdout != tt.stdout {
				t.Errorf("stdout = %q, want %q", res.stdout, tt.stdout)
			}
			if !strings.Contains(res.stderr, tt.stderr) {
				t.Errorf("stderr = %q, want %q", res.stderr, tt.stderr)
			}
		})
	}
}

func TestRunFile(t *testing.T) {
	script := writeScript(t, "hello.mq", "import console\nconsole.write(args(0))\n")

	res := runCLI(t, script, "hi")
	if res.status != 0 || res.stdout != "hi" {
		t.Errorf("positional file: %+v", res)
	}

	res = runCLI(t, "-f", script, "there")
	if res.status != 0 || res.stdout != "there" {
		t.Errorf("--file: %+v", res)
	}
}

func TestRunFileErrors(t *testing.T) {
	broken := writeScript(t, "broken.mq", "var = 1")
	res := runCLI(t, broken)
	if res.status != 1 || !strings.Contains(res.stderr, "Syntax error") || !strings.Contains(res.stderr, broken) {
		t.Errorf("syntax error: %+v", res)
	}

	failing := writeScript(t, "failing.mq", "var x = 1\nx / 0")
	res = runCLI(t, failing)
	if res.status != 1 || !strings.Contains(res.stderr, "line 2") {
		t.Errorf("runtime error: %+v", res)
	}

	res = runCLI(t, filepath.Join(t.TempDir(), "missing.mq"))
	if res.status != 1 || !strings.Contains(res.stderr, "failed to read") {
		t.Errorf("missing file: %+v", res)
	}
}

func TestRunConfig(t *testing.T) {
	cfg := writeScript(t, "minq.yaml", "log: true\n")
	res := runCLI(t, "--config", cfg, "-e", "40 + 2")
	if res.status != 0 || res.stdout != "42\n" {
		t.Errorf("log from config: %+v", res)
	}

	bad := writeScript(t, "bad.yaml", "web:\n  logging:\n    format: xml\n")
	res = runCLI(t, "--config", bad, "-e", "1")
	if res.status != 1 || !strings.Contains(res.stderr, "loading config") {
		t.Errorf("invalid config: %+v", res)
	}
}

// syncBuffer is written by the watcher and by script runs concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcherRerunsOnChange(t *testing.T) {
	script := writeScript(t, "watched.mq", "1")
	stdout := &syncBuffer{}
	stderr := &syncBuffer{}

	w, err := newWatcher(script, 10*time.Millisecond, stdout, stderr)
	if err != nil {
		t.Fatalf("newWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 10)
	finished := make(chan error, 1)
	go func() {
		finished <- w.Run(ctx, func(context.Context) error {
			runs <- struct{}{}
			return nil
		})
	}()

	waitForRun := func() {
		t.Helper()
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a run")
		}
	}
	waitForRun()

	// unrelated files in the same directory are ignored
	os.WriteFile(filepath.Join(filepath.Dir(script), "other.mq"), []byte("2"), 0o644)
	if err := os.WriteFile(script, []byte("2"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForRun()

	cancel()
	select {
	case err := <-finished:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	if !strings.Contains(stdout.String(), "[minq] watched.mq changed, re-running") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestWatcherCancelsRunningScript(t *testing.T) {
	script := writeScript(t, "server.mq", "1")
	w, err := newWatcher(script, 10*time.Millisecond, &syncBuffer{}, &syncBuffer{})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{}, 10)
	stopped := make(chan struct{}, 10)
	go w.Run(ctx, func(ctx context.Context) error {
		started <- struct{}{}
		<-ctx.Done()
		stopped <- struct{}{}
		return nil
	})

	<-started
	os.WriteFile(script, []byte("2"), 0o644)

	for _, ch := range []chan struct{}{stopped, started} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatal("blocking run was not restarted")
		}
	}
}
