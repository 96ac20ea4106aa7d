// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package logging hands out named logrus loggers sharing one line format.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var mu sync.Mutex
var loggers = make(map[string]*Logger)
var level = logrus.InfoLevel
var output io.Writer = os.Stderr

// Logger is a logrus logger that formats its own entries.
type Logger struct {
	logrus.Logger

	name   string
	colors bool
}

var levelColors = map[logrus.Level]func(string, ...any) string{
	logrus.TraceLevel: color.WhiteString,
	logrus.DebugLevel: color.CyanString,
	logrus.InfoLevel:  color.GreenString,
	logrus.WarnLevel:  color.YellowString,
	logrus.ErrorLevel: color.RedString,
	logrus.FatalLevel: color.MagentaString,
	logrus.PanicLevel: color.MagentaString,
}

const timeFormat = "2006/01/02 15:04:05.000000"

func (l *Logger) Format(e *logrus.Entry) ([]byte, error) {
	lvl := "<" + strings.ToUpper(e.Level.String()) + ">"
	if l.colors {
		if paint, ok := levelColors[e.Level]; ok {
			lvl = paint("%s", lvl)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s[%d] %s: %s",
		e.Time.Format(timeFormat), l.name, os.Getpid(), lvl, e.Message)
	if len(e.Data) != 0 {
		fmt.Fprintf(&b, " %v", e.Data)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newLogger(name string) *Logger {
	l := &Logger{name: name}
	l.Out = output
	l.Formatter = l
	l.Level = level
	l.Hooks = make(logrus.LevelHooks)
	l.colors = isTerminal(l.Out)
	return l
}

// GetLogger returns the logger registered under name, creating it on first use.
func GetLogger(name string) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if logger, ok := loggers[name]; ok {
		return logger
	}
	logger := newLogger(name)
	loggers[name] = logger
	return logger
}

// SetLogLevel sets lvl on every logger, including ones created later.
func SetLogLevel(lvl logrus.Level) {
	mu.Lock()
	defer mu.Unlock()

	level = lvl
	for _, logger := range loggers {
		logger.SetLevel(lvl)
	}
}

// SetOutput redirects every logger to w, including ones created later.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	for _, logger := range loggers {
		logger.SetOutput(w)
		logger.colors = isTerminal(w)
	}
}

// SetOutFile appends all log output to the named file, including the
// output of loggers created later.
func SetOutFile(name string) error {
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	SetOutput(file)
	return nil
}
