package capture

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/assignpack/pkg/errors"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell utilities")
	}
}

func requireCompiler(t *testing.T) {
	t.Helper()
	for _, cc := range DefaultCompilers {
		if _, err := exec.LookPath(cc); err == nil {
			return
		}
	}
	t.Skip("no C compiler available")
}

func testRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := NewRunner(log.New(&buf))
	r.TempDir = t.TempDir()
	return r, &buf
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil)
	if r.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", r.Timeout)
	}
	if r.PollInterval != 50*time.Millisecond {
		t.Errorf("PollInterval = %v, want 50ms", r.PollInterval)
	}
	if len(r.Compilers) != 2 || r.Compilers[0] != "gcc" || r.Compilers[1] != "clang" {
		t.Errorf("Compilers = %v, want [gcc clang]", r.Compilers)
	}
	if r.Logger == nil {
		t.Error("Logger should default to log.Default()")
	}
}

func TestShell(t *testing.T) {
	skipOnWindows(t)
	r, _ := testRunner(t)

	res, err := r.Shell("echo out; echo err 1>&2; exit 3")
	if err != nil {
		t.Fatalf("Shell: %v", err)
	}
	if got := string(res.Stdout); got != "out\n" {
		t.Errorf("Stdout = %q", got)
	}
	if got := string(res.Stderr); got != "err\n" {
		t.Errorf("Stderr = %q", got)
	}
	if res.ExitCode != 3 || res.Killed {
		t.Errorf("ExitCode = %d, Killed = %v", res.ExitCode, res.Killed)
	}
}

func TestShellKilledBySignal(t *testing.T) {
	skipOnWindows(t)
	r, _ := testRunner(t)

	res, err := r.Shell("kill -9 $$")
	if err != nil {
		t.Fatalf("Shell: %v", err)
	}
	if !res.Killed {
		t.Errorf("Killed = false, want true (exit %d)", res.ExitCode)
	}
	if got := FormatOutput(res); !strings.HasSuffix(got, "Exit code: killed") {
		t.Errorf("FormatOutput = %q", got)
	}
}

func TestCaptureShellMode(t *testing.T) {
	skipOnWindows(t)
	r, _ := testRunner(t)
	// A tiny timeout proves shell mode is not bounded by it.
	r.Timeout = time.Millisecond

	rc, err := r.Capture("ignored.c", "sleep 0.2; echo done", "./prog")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	want := "$ ./prog\n\nSTDOUT\ndone\n\nExit code: 0"
	if rc.ScreenshotText != want {
		t.Errorf("ScreenshotText = %q, want %q", rc.ScreenshotText, want)
	}
}

func TestRunWithTimeoutKillsChild(t *testing.T) {
	skipOnWindows(t)
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	r, _ := testRunner(t)
	r.Timeout = 200 * time.Millisecond
	r.PollInterval = 10 * time.Millisecond

	cmd := exec.Command("sleep", "10")
	start := time.Now()
	_, err := r.runWithTimeout(cmd)
	elapsed := time.Since(start)

	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Fatalf("err = %v, want TIMEOUT", err)
	}
	if elapsed > 5*time.Second {
		t.Errorf("timeout took %v, child was not killed promptly", elapsed)
	}
	if cmd.ProcessState == nil {
		t.Fatal("child was not reaped")
	}
	if cmd.ProcessState.Exited() {
		t.Errorf("child exited normally, want killed: %v", cmd.ProcessState)
	}
}

func TestRunWithTimeoutCompletes(t *testing.T) {
	skipOnWindows(t)
	r, _ := testRunner(t)
	r.PollInterval = 5 * time.Millisecond

	res, err := r.runWithTimeout(exec.Command("sh", "-c", "printf hi; exit 4"))
	if err != nil {
		t.Fatalf("runWithTimeout: %v", err)
	}
	if string(res.Stdout) != "hi" || res.ExitCode != 4 {
		t.Errorf("got stdout %q exit %d", res.Stdout, res.ExitCode)
	}
}

func TestRunWithTimeoutSpawnFailure(t *testing.T) {
	r, _ := testRunner(t)
	_, err := r.runWithTimeout(exec.Command(filepath.Join(t.TempDir(), "missing-binary")))
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("err = %v, want IO_ERROR", err)
	}
}

func TestDetectCompilerNoneFound(t *testing.T) {
	r, _ := testRunner(t)
	r.Compilers = []string{"assignpack-no-such-cc-1", "assignpack-no-such-cc-2"}

	_, err := r.DetectCompiler()
	if !errors.Is(err, errors.ErrCodeNoCompiler) {
		t.Fatalf("err = %v, want NO_COMPILER", err)
	}
	if errors.KindOf(err) != errors.KindValidation {
		t.Errorf("kind = %v, want validation", errors.KindOf(err))
	}

	if _, err := r.Capture("main.c", "", "./main"); !errors.Is(err, errors.ErrCodeNoCompiler) {
		t.Errorf("Capture err = %v, want NO_COMPILER", err)
	}
}

func TestTempBinaryName(t *testing.T) {
	r, _ := testRunner(t)
	bin := r.tempBinary()

	if filepath.Dir(bin) != r.TempDir {
		t.Errorf("temp binary %q not in %q", bin, r.TempDir)
	}
	base := filepath.Base(bin)
	if !strings.HasPrefix(base, "ap_run_") {
		t.Errorf("base = %q, want ap_run_ prefix", base)
	}
	if !strings.Contains(base, "_"+strconv.Itoa(os.Getpid())) {
		t.Errorf("base = %q should contain the pid", base)
	}
}

func TestCompileAndRun(t *testing.T) {
	requireCompiler(t)
	r, _ := testRunner(t)

	src := filepath.Join(t.TempDir(), "main.c")
	code := "#include <stdio.h>\nint main(void) { printf(\"Hello, evidence\\n\"); fprintf(stderr, \"warn\\n\"); return 7; }\n"
	if err := os.WriteFile(src, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}

	rc, err := r.Capture(src, "", "./main")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	want := "STDOUT\nHello, evidence\n\nSTDERR\nwarn\n\nExit code: 7"
	if rc.FormattedOutput != want {
		t.Errorf("FormattedOutput = %q, want %q", rc.FormattedOutput, want)
	}

	entries, err := os.ReadDir(r.TempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp binary left behind: %v", entries)
	}
}

func TestCompileFailed(t *testing.T) {
	requireCompiler(t)
	r, _ := testRunner(t)

	src := filepath.Join(t.TempDir(), "broken.c")
	if err := os.WriteFile(src, []byte("int main(void) { return }\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := r.CompileAndRun(src)
	if !errors.Is(err, errors.ErrCodeCompileFailed) {
		t.Fatalf("err = %v, want COMPILE_FAILED", err)
	}
	msg := errors.UserMessage(err)
	if !strings.Contains(msg, "STDERR") || !strings.Contains(msg, "Exit code:") {
		t.Errorf("compile failure should carry formatted compiler output, got %q", msg)
	}
}

func TestCompiledProgramTimeout(t *testing.T) {
	skipOnWindows(t)
	requireCompiler(t)
	r, _ := testRunner(t)
	r.Timeout = 300 * time.Millisecond

	src := filepath.Join(t.TempDir(), "loop.c")
	if err := os.WriteFile(src, []byte("int main(void) { for (;;) {} }\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := r.CompileAndRun(src)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Fatalf("err = %v, want TIMEOUT", err)
	}
	entries, _ := os.ReadDir(r.TempDir)
	if len(entries) != 0 {
		t.Errorf("temp binary left behind after timeout: %v", entries)
	}
}
