// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/storyreel/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// ConsoleLogger writes translated messages to the console. Info and debug
// go to stdout, warnings and errors to stderr.
//
// Components nest: a "server" logger asked for "jobs" prints
// "[server/jobs]".
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool

	mu  *sync.Mutex
	out io.Writer
	err io.Writer
}

// NewConsole creates a console logger on stdout and stderr.
// Color output is enabled when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	l := NewConsoleWriter(level, os.Stdout, os.Stderr)
	l.color = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return l
}

// NewConsoleWriter creates an uncolored console logger on the given writers.
func NewConsoleWriter(level ports.LogLevel, out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{
		level: level,
		mu:    &sync.Mutex{},
		out:   out,
		err:   errOut,
	}
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.log(ports.LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.log(ports.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.log(ports.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a logger whose lines carry component below the
// current one. The returned logger shares the writers.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	child := *l
	switch {
	case component == "":
	case l.component == "":
		child.component = component
	default:
		child.component = l.component + "/" + component
	}
	return &child
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}

	line := l.format(level, l10n.F(msg, args...))

	w := l.out
	if level >= ports.LevelWarn {
		w = l.err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(w, line)
}

func (l *ConsoleLogger) format(level ports.LogLevel, text string) string {
	var b strings.Builder

	if !l.color {
		switch level {
		case ports.LevelWarn:
			b.WriteString("WARN ")
		case ports.LevelError:
			b.WriteString("ERROR ")
		}
	}

	if l.component != "" {
		if l.color {
			fmt.Fprintf(&b, "%s[%s]%s ", colorCyan, l.component, colorReset)
		} else {
			fmt.Fprintf(&b, "[%s] ", l.component)
		}
	}
	b.WriteString(text)

	if !l.color {
		return b.String()
	}
	switch level {
	case ports.LevelDebug:
		return colorGray + b.String() + colorReset
	case ports.LevelWarn:
		return colorYellow + b.String() + colorReset
	case ports.LevelError:
		return colorRed + b.String() + colorReset
	}
	return b.String()
}
