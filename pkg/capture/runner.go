package capture

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/assignpack/pkg/errors"
)

const (
	// DefaultTimeout is the wall-clock limit for a compiled program.
	DefaultTimeout = 30 * time.Second

	// DefaultPollInterval is how often the runner checks whether the child exited.
	DefaultPollInterval = 50 * time.Millisecond

	// waitDelay bounds how long Wait keeps copying output after the child is gone.
	waitDelay = time.Second
)

// DefaultCompilers is the ordered list of C compilers probed in compile mode.
var DefaultCompilers = []string{"gcc", "clang"}

// Result is a completed process: its raw output and how it ended.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int  // meaningful only when Killed is false
	Killed   bool // terminated by a signal, no exit code
}

// Runner executes programs and captures their output.
// The zero value is not usable; create one with NewRunner.
type Runner struct {
	// Compilers are probed in order; the first to answer --version is used.
	Compilers []string

	// Timeout bounds compiled programs. Shell mode is never timed out.
	Timeout time.Duration

	// PollInterval is the sleep between exit checks while waiting.
	PollInterval time.Duration

	// TempDir holds the temporary binaries. Empty means os.TempDir().
	TempDir string

	Logger *log.Logger
}

// NewRunner returns a Runner with the default compilers, timeout and poll interval.
// If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Compilers:    DefaultCompilers,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		Logger:       logger,
	}
}

// Capture runs the program and formats its output for display. display is
// the command line shown in the evidence, which need not match what was
// executed.
func (r *Runner) Capture(source, runCommand, display string) (*RunCapture, error) {
	res, err := r.Run(source, runCommand)
	if err != nil {
		return nil, err
	}
	return NewRunCapture(display, res), nil
}

// Run executes runCommand through the shell if it is non-empty; otherwise
// the C file at source is compiled and run.
func (r *Runner) Run(source, runCommand string) (*Result, error) {
	if runCommand != "" {
		return r.Shell(runCommand)
	}
	return r.CompileAndRun(source)
}

// Shell runs command through the platform's command interpreter and waits
// for it without a timeout.
func (r *Runner) Shell(command string) (*Result, error) {
	cmd := shellCommand(command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger().Debug("running shell command", "command", command)
	err := cmd.Run()
	return collect(cmd, &stdout, &stderr, err, fmt.Sprintf("running '%s'", command))
}

// CompileAndRun compiles source into a temporary binary and runs it under
// the runner's timeout. The binary is removed afterwards; failing to remove
// it is logged and otherwise ignored.
func (r *Runner) CompileAndRun(source string) (*Result, error) {
	cc, err := r.DetectCompiler()
	if err != nil {
		return nil, err
	}

	bin := r.tempBinary()
	defer r.removeBinary(bin)

	r.logger().Debug("compiling", "compiler", cc, "source", source, "output", bin)
	compile := exec.Command(cc, source, "-o", bin)
	var cout, cerr bytes.Buffer
	compile.Stdout = &cout
	compile.Stderr = &cerr
	runErr := compile.Run()
	compiled, err := collect(compile, &cout, &cerr, runErr, fmt.Sprintf("running %s", cc))
	if err != nil {
		return nil, err
	}
	if compiled.Killed || compiled.ExitCode != 0 {
		return nil, apperrors.New(apperrors.ErrCodeCompileFailed, "%s", FormatOutput(compiled))
	}

	return r.runWithTimeout(exec.Command(bin))
}

// DetectCompiler returns the first configured compiler whose --version
// invocation succeeds.
func (r *Runner) DetectCompiler() (string, error) {
	for _, cc := range r.Compilers {
		if err := exec.Command(cc, "--version").Run(); err == nil {
			return cc, nil
		}
		r.logger().Debug("compiler not usable", "compiler", cc)
	}
	return "", apperrors.New(apperrors.ErrCodeNoCompiler,
		"no C compiler found (%v), use --run-command", r.Compilers)
}

// runWithTimeout starts cmd with captured output and waits for it, killing it
// once the runner's timeout has elapsed.
func (r *Runner) runWithTimeout(cmd *exec.Cmd) (*Result, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return nil, apperrors.IO(err, "spawning '%s'", cmd.Path)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	if err := r.waitWithTimeout(cmd, exited); err != nil {
		return nil, err
	}
	return collect(cmd, &stdout, &stderr, <-exited, "waiting for process")
}

// waitWithTimeout blocks the caller, checking every PollInterval whether the
// process has exited. When the timeout passes first the child is killed and
// reaped before TIMEOUT is returned. On a normal exit the Wait result is put
// back on exited for the caller.
func (r *Runner) waitWithTimeout(cmd *exec.Cmd, exited chan error) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := r.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	start := time.Now()
	for {
		select {
		case err := <-exited:
			exited <- err
			return nil
		default:
		}

		if time.Since(start) >= timeout {
			if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				r.logger().Warn("killing timed out program", "err", err)
			}
			<-exited
			return apperrors.New(apperrors.ErrCodeTimeout, "program timed out after %s", timeout)
		}
		time.Sleep(interval)
	}
}

// collect turns a finished command into a Result. An error other than a
// non-zero exit means the process never ran and is reported as IO_ERROR.
func collect(cmd *exec.Cmd, stdout, stderr *bytes.Buffer, err error, context string) (*Result, error) {
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, apperrors.IO(err, "%s", context)
		}
	}

	res := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if cmd.ProcessState == nil {
		return nil, apperrors.IO(err, "%s: process did not finish", context)
	}
	res.ExitCode = cmd.ProcessState.ExitCode()
	if res.ExitCode < 0 {
		res.Killed = true
		res.ExitCode = 0
	}
	return res, nil
}

// tempBinary returns a per-invocation binary path. The timestamp and pid keep
// concurrent invocations on one host from colliding.
func (r *Runner) tempBinary() string {
	dir := r.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("ap_run_%d_%d", time.Now().UnixMilli(), os.Getpid())
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name)
}

func (r *Runner) removeBinary(bin string) {
	if err := os.Remove(bin); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger().Warn("couldn't clean up temp binary", "path", bin, "err", err)
	}
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func shellCommand(command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("powershell", "-NoProfile", "-Command", command)
	}
	return exec.Command("sh", "-c", command)
}
