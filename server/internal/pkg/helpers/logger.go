package helpers

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Logger provides simplified logging with prefixes
type Logger struct {
	prefix string
	out    *log.Logger
}

// NewLogger creates a new logger with a prefix
func NewLogger(prefix string) *Logger {
	return &Logger{prefix: "[" + prefix + "]", out: log.Default()}
}

// WithOutput returns a copy of the logger writing to w
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return &Logger{prefix: l.prefix, out: log.New(w, "", log.LstdFlags)}
}

// Info logs an info message; args are alternating keys and values
func (l *Logger) Info(msg string, args ...interface{}) {
	l.out.Printf("%s INFO: %s%s", l.prefix, msg, fields(args))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.out.Printf("%s WARN: %s%s", l.prefix, msg, fields(args))
}

// Error logs an error message
func (l *Logger) Error(msg string, err error, args ...interface{}) {
	l.out.Printf("%s ERROR: %s - %v%s", l.prefix, msg, err, fields(args))
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.out.Printf("%s DEBUG: %s%s", l.prefix, msg, fields(args))
}

func fields(args []interface{}) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	return b.String()
}
