package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat keeps log lines short enough to sit beside the spinner.
const logTimeFormat = "15:04:05.00"

// newLogger returns the logger every command and the server share.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// stopwatch times one step of a command, such as a re-render.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// lap logs msg with keyvals and a "took" field holding the time since
// the stopwatch started.
func (s stopwatch) lap(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}
