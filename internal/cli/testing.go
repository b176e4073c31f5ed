package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Result is the outcome of one in-process vault invocation.
type Result struct {
	Stdout string
	Stderr string
	Code   int
}

// TestVault runs vault commands in-process against a temporary directory
// that serves as both working directory and vault root.
type TestVault struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewTestVault returns a harness over an empty temporary vault.
func NewTestVault(t *testing.T) *TestVault {
	t.Helper()

	return &TestVault{t: t, Dir: t.TempDir(), Env: map[string]string{}}
}

// Run invokes vault with args and no stdin. "vault --cwd <Dir>" is
// prepended.
func (v *TestVault) Run(args ...string) Result {
	return v.invoke(nil, args)
}

// Pipe invokes vault with stdin as its input.
func (v *TestVault) Pipe(stdin string, args ...string) Result {
	return v.invoke(strings.NewReader(stdin), args)
}

func (v *TestVault) invoke(stdin io.Reader, args []string) Result {
	var stdout, stderr bytes.Buffer

	argv := append([]string{"vault", "--cwd", v.Dir}, args...)
	code := Run(stdin, &stdout, &stderr, argv, v.Env, nil)

	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Code: code}
}

// MustRun runs args, fails the test on a non-zero exit and returns the
// trimmed stdout.
func (v *TestVault) MustRun(args ...string) string {
	v.t.Helper()

	res := v.Run(args...)
	if res.Code != 0 {
		v.t.Fatalf("vault %s: exit %d\nstderr: %s", strings.Join(args, " "), res.Code, res.Stderr)
	}

	return strings.TrimSpace(res.Stdout)
}

// MustFail runs args, fails the test on a zero exit and returns the
// trimmed stderr.
func (v *TestVault) MustFail(args ...string) string {
	v.t.Helper()

	res := v.Run(args...)
	if res.Code == 0 {
		v.t.Fatalf("vault %s: expected failure\nstdout: %s", strings.Join(args, " "), res.Stdout)
	}

	return strings.TrimSpace(res.Stderr)
}

// Seed writes every rel path to content.
func (v *TestVault) Seed(files map[string]string) {
	v.t.Helper()

	for rel, content := range files {
		v.WriteFile(rel, content)
	}
}

// WriteFile writes content to a slash-separated path below Dir, creating
// parent directories.
func (v *TestVault) WriteFile(rel, content string) {
	v.t.Helper()

	path := filepath.Join(v.Dir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		v.t.Fatalf("mkdir for %s: %v", rel, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		v.t.Fatalf("write %s: %v", rel, err)
	}
}

// ReadFile returns the content of a slash-separated path below Dir.
func (v *TestVault) ReadFile(rel string) string {
	v.t.Helper()

	data, err := os.ReadFile(filepath.Join(v.Dir, filepath.FromSlash(rel)))
	if err != nil {
		v.t.Fatalf("read %s: %v", rel, err)
	}

	return string(data)
}

// AssertContains reports an error when output lacks want.
func AssertContains(t *testing.T, output, want string) {
	t.Helper()

	if !strings.Contains(output, want) {
		t.Errorf("missing %q in output:\n%s", want, output)
	}
}

// AssertNotContains reports an error when output has unwanted.
func AssertNotContains(t *testing.T, output, unwanted string) {
	t.Helper()

	if strings.Contains(output, unwanted) {
		t.Errorf("unexpected %q in output:\n%s", unwanted, output)
	}
}
