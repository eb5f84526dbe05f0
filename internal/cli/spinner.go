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
)

const spinnerTick = 100 * time.Millisecond

var spinnerGlyphs = []rune("◐◓◑◒")

// spinner animates a one-line status on stderr while a long step runs.
// On a non-terminal it stays silent but still follows its context.
type spinner struct {
	label string
	out   io.Writer
	tty   bool

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	once    sync.Once
	running bool
	done    chan struct{}
	halted  bool
	mu      sync.Mutex
}

func newSpinner(ctx context.Context, label string) *spinner {
	fd := os.Stderr.Fd()
	inner, cancel := context.WithCancel(ctx)
	return &spinner{
		label:  label,
		parent: ctx,
		out:    os.Stderr,
		tty:    isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		ctx:    inner,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// start launches the animation. Later calls do nothing.
func (s *spinner) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.halted {
		return
	}
	s.running = true
	go s.loop()
}

func (s *spinner) loop() {
	defer close(s.done)
	if !s.tty {
		<-s.ctx.Done()
		return
	}
	tick := time.NewTicker(spinnerTick)
	defer tick.Stop()
	for n := 0; ; n++ {
		select {
		case <-s.ctx.Done():
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.label)+2))
			return
		case <-tick.C:
			glyph := string(spinnerGlyphs[n%len(spinnerGlyphs)])
			fmt.Fprintf(s.out, "\r%s %s", styleSpinner.Render(glyph), StyleDim.Render(s.label))
		}
	}
}

// stop ends the animation, wipes the line, and waits for the goroutine.
// It may be called any number of times, started or not.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.halted = true
		running := s.running
		s.mu.Unlock()

		s.cancel()
		if running {
			<-s.done
		}
	})
}

// fail stops the spinner and reports msg as an error line.
func (s *spinner) fail(msg string) {
	s.stop()
	printError("%s", msg)
}

// interrupted reports whether the parent context ended before stop.
func (s *spinner) interrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.halted && s.parent.Err() != nil
}
