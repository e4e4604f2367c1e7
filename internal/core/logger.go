package core

import (
	"fmt"
	"log"
	"os"
)

// Logger is the leveled logging contract a Context carries (Context.Logger
// and SetLogger), mirrored on the teacher's internal/core.Logger
// (used throughout leaves/*.go as `l core.Logger`). The teacher pulls in no
// external logging library for this — see DESIGN.md — so NewLogger wraps
// the standard library's log.Logger rather than reaching for zap/logrus.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Criticalf(format string, args ...interface{})
}

type stdLogger struct {
	l *log.Logger
}

// NewLogger builds the default Logger, writing to stderr with a
// microsecond timestamp, one line per call.
func NewLogger() Logger {
	return &stdLogger{l: log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)}
}

func (s *stdLogger) print(level, format string, args ...interface{}) {
	s.l.Output(3, level+" "+fmt.Sprintf(format, args...))
}

func (s *stdLogger) Debugf(format string, args ...interface{})    { s.print("DEBUG", format, args...) }
func (s *stdLogger) Infof(format string, args ...interface{})     { s.print("INFO", format, args...) }
func (s *stdLogger) Warnf(format string, args ...interface{})     { s.print("WARN", format, args...) }
func (s *stdLogger) Errorf(format string, args ...interface{})    { s.print("ERROR", format, args...) }
func (s *stdLogger) Criticalf(format string, args ...interface{}) { s.print("CRITICAL", format, args...) }

// ConfigLogger mirrors the teacher's core.ConfigLogger facts key. Nothing
// in this module reads it; loggers are passed through Context.
const ConfigLogger = "Context.Logger"
