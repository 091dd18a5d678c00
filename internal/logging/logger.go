// Package logging provides the leveled console logger used across texmtlx.
//
// Output goes through zerolog: a human-readable console writer on stdout
// (errors on stderr) and, when --log is set, newline-delimited JSON appended
// to the log file. Levels mirror what the batch needs to say: INFO, SUCCESS,
// WARN, ERROR and DEBUG (verbose only).
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/texmtlx/internal/config"
	"github.com/backmassage/texmtlx/internal/term"
)

// TimeFormat is the console timestamp layout.
const TimeFormat = "2006-01-02 15:04:05"

// levelSuccess is written as the level field of SUCCESS lines. zerolog has
// no such level, so those events are logged level-less with this value.
const levelSuccess = "success"

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger initializes colors from cfg and optionally opens cfg.LogFile.
// Call Close when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	var file *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		file = f
	}

	var sink io.Writer
	if file != nil {
		sink = file
	}
	l := newLogger(consoleWriter(os.Stdout, os.Stderr), sink, cfg.Verbose)
	l.file = file
	return l, nil
}

// New builds a console-only logger writing to out, with ERROR lines routed to
// errOut. Colors follow the current [term] state.
func New(out, errOut io.Writer, verbose bool) *Logger {
	return newLogger(consoleWriter(out, errOut), nil, verbose)
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// newLogger stacks the JSON sink (when non-nil) next to the console writer.
func newLogger(console zerolog.LevelWriter, sink io.Writer, verbose bool) *Logger {
	var w io.Writer = console
	if sink != nil {
		w = zerolog.MultiLevelWriter(console, sink)
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.SyncWriter(w)).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

func consoleWriter(out, errOut io.Writer) zerolog.LevelWriter {
	return levelSplitWriter{out: newConsole(out), err: newConsole(errOut)}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...any) {
	l.zl.Log().Str(zerolog.LevelFieldName, levelSuccess).Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan). Dropped unless the logger is verbose.
func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// Verbose reports whether DEBUG lines are emitted.
func (l *Logger) Verbose() bool {
	return l.zl.GetLevel() <= zerolog.DebugLevel
}

// levelSplitWriter sends ERROR and above to err, everything else to out.
type levelSplitWriter struct {
	out io.Writer
	err io.Writer
}

func (w levelSplitWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

func (w levelSplitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

func newConsole(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         out,
		NoColor:     true,
		TimeFormat:  TimeFormat,
		FormatLevel: formatLevel,
	}
}

// formatLevel renders "[LEVEL]" with the term color for that level.
func formatLevel(i any) string {
	s, _ := i.(string)
	color := ""
	switch s {
	case zerolog.LevelInfoValue:
		color = term.Blue
	case levelSuccess:
		color = term.Green
	case zerolog.LevelWarnValue:
		color = term.Yellow
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		color = term.Red
	case zerolog.LevelDebugValue:
		color = term.Cyan
	}
	return color + "[" + strings.ToUpper(s) + "]" + term.NC
}
