// Package capture runs a student's program and turns what it printed into
// display text.
//
// Two execution modes are supported:
//
//   - Shell mode: an explicit command string is run through the platform's
//     command interpreter (sh -c, or powershell on Windows). No timeout is
//     applied; the caller chose the command and owns its duration.
//   - Compile mode: a C source file is compiled with the first compiler that
//     answers --version (gcc, then clang) into a uniquely named temporary
//     binary, which is then run under a 30 second wall-clock limit.
//
// The compile-mode wait is a deliberate blocking poll: the calling goroutine
// checks for process exit every 50ms and kills the child once the limit has
// passed. There is no other cancellation signal.
//
// # Usage
//
//	r := capture.NewRunner(logger)
//	rc, err := r.Capture("main.c", "", "./main")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(rc.ScreenshotText)
package capture
