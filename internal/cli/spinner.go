package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/matzehuels/assignpack/pkg/pipeline"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows progress while a document is generated. The message can be
// changed while it runs. Off a terminal each message is printed once on its
// own line instead of being redrawn.
type Spinner struct {
	ctx     context.Context
	cancel  context.CancelFunc
	out     io.Writer
	animate bool

	mu      sync.Mutex
	message string
	width   int // widest line drawn so far, for clearing

	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext returns a spinner that stops drawing once ctx ends.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		ctx:     ctx,
		cancel:  cancel,
		out:     os.Stderr,
		animate: isTerminal(os.Stderr),
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start draws the spinner until Stop is called or the context ends.
func (s *Spinner) Start() {
	if !s.animate {
		s.mu.Lock()
		fmt.Fprintln(s.out, StyleDim.Render(s.message))
		s.mu.Unlock()
		close(s.stopped)
		return
	}
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(s.message)+2)
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// SetMessage replaces the text next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message == s.message {
		return
	}
	s.message = message
	if !s.animate {
		fmt.Fprintln(s.out, StyleDim.Render(message))
		return
	}
	// Erase the old, possibly longer message before the next frame.
	fmt.Fprintf(s.out, "\r%s", strings.Repeat(" ", s.width))
}

// Stage follows pipeline progress, naming the program while it runs.
func (s *Spinner) Stage(display string) func(pipeline.Stage) {
	return func(stage pipeline.Stage) {
		s.SetMessage(stageMessage(stage, display))
	}
}

func stageMessage(stage pipeline.Stage, display string) string {
	switch stage {
	case pipeline.StageCapture:
		return "Running " + display + "..."
	case pipeline.StageRender:
		return "Rendering screenshot..."
	case pipeline.StageAssemble:
		return "Assembling document..."
	}
	return string(stage) + "..."
}

// Stop stops the spinner and clears its line. Extra calls do nothing.
func (s *Spinner) Stop() {
	s.cancel()
	s.once.Do(func() { close(s.done) })
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	if !s.animate {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
}

func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context has ended.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
