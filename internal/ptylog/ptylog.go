// Package ptylog provides the five-level logger (TRACE..ERROR) selected by
// --log, with an optional mirror to the system log when --syslog is given.
// Built on the standard library's log package the way the teacher codebase
// does its own logging, rather than pulling in a structured-logging
// dependency nothing else in the bridge needs.
package ptylog

import (
	"fmt"
	"io"
	"log"
	"log/syslog"
	"os"
)

// Level is one of the five minimum-verbosity thresholds accepted by --log.
type Level int

// Level values, matching the spec's "0..4, TRACE..ERROR" ordering.
const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < Trace || l > Error {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts the --log integer argument to a Level.
func ParseLevel(n int) (Level, error) {
	if n < int(Trace) || n > int(Error) {
		return 0, fmt.Errorf("ptylog: log level %d out of range [0,4]", n)
	}
	return Level(n), nil
}

// Logger filters by minimum level and fans out to a stdlib *log.Logger and,
// optionally, a syslog writer.
type Logger struct {
	min Level
	std *log.Logger
	sys *syslog.Writer
}

// New builds a Logger writing to w at or above min. When mirrorSyslog is
// true it also opens a connection to the local syslog daemon and mirrors
// WARN and ERROR lines there.
func New(w io.Writer, min Level, mirrorSyslog bool) (*Logger, error) {
	l := &Logger{min: min, std: log.New(w, "", log.LstdFlags)}
	if mirrorSyslog {
		sw, err := syslog.New(syslog.LOG_DEBUG|syslog.LOG_USER, "ptybridge")
		if err != nil {
			return nil, fmt.Errorf("ptylog: connecting to syslog: %w", err)
		}
		l.sys = sw
	}
	return l, nil
}

// Default builds a Logger writing to stderr with no syslog mirror, used
// before CLI flags have been parsed.
func Default() *Logger {
	l, _ := New(os.Stderr, Info, false)
	return l
}

func (l *Logger) emit(level Level, format string, args ...any) {
	if level < l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.std.Printf("[%s] %s", level, msg)
	if l.sys != nil && level >= Warn {
		l.mirror(level, msg)
	}
}

// mirror dispatches to syslog. Only called for Warn and above — emit's
// gate keeps --syslog from flooding the system log with TRACE/DEBUG/INFO
// chatter that --log already sends to stderr.
func (l *Logger) mirror(level Level, msg string) {
	switch level {
	case Warn:
		_ = l.sys.Warning(msg)
	case Error:
		_ = l.sys.Err(msg)
	}
}

func (l *Logger) Tracef(format string, args ...any) { l.emit(Trace, format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.emit(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.emit(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.emit(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.emit(Error, format, args...) }

// Std returns a plain *log.Logger view for components (supervisor,
// inputrecord) that only need an always-on sink for a single kind of
// message (e.g. the heartbeat notice), without per-call level selection.
func (l *Logger) Std() *log.Logger {
	return l.std
}

// Close releases the syslog connection, if any.
func (l *Logger) Close() error {
	if l.sys == nil {
		return nil
	}
	return l.sys.Close()
}
