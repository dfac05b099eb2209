/**
 * Copyright 2026 The SqueefDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger contains the severity tagged log sinks used by the server.
package logger

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Severity is the severity of a single log line.
type Severity int

const (
	// Info is used for lifecycle and progress messages.
	Info Severity = iota

	// Warning is used for recoverable problems such as a misbehaving client.
	Warning

	// Error is used for failures that end an operation.
	Error
)

// String returns the tag printed between the brackets of a log line.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARN"
	case Error:
		return "ERR"
	}

	panic("programming error: unexpected severity in String() of Severity")
}

func (s Severity) level() log.Level {
	switch s {
	case Warning:
		return log.WarnLevel
	case Error:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Sink receives severity tagged messages.
type Sink interface {
	Log(sev Severity, msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

var _ Sink = (*Logger)(nil)
var _ Sink = (Loggers)(nil)

// Logger is a named sink writing one formatted line per message to a single output.
// Failed writes are not reported back to the caller.
type Logger struct {
	name string
	out  *log.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithColor forces the severity tags to be colorized (or not) regardless of the output.
func WithColor(enabled bool) Option {
	return func(l *Logger) {
		l.out.SetFormatter(&LineFormatter{DisableColors: !enabled})
	}
}

// WithLevel drops messages below the given level.
func WithLevel(level log.Level) Option {
	return func(l *Logger) {
		l.out.SetLevel(level)
	}
}

// New creates a logger writing to w. Colors are enabled when w is a terminal.
func New(name string, w io.Writer, opts ...Option) *Logger {
	out := log.New()
	out.SetOutput(w)
	out.SetLevel(log.InfoLevel)
	out.SetFormatter(&LineFormatter{DisableColors: !isTerminal(w)})

	l := &Logger{
		name: name,
		out:  out,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the name the logger was created with.
func (l *Logger) Name() string {
	return l.name
}

// Log writes msg with the given severity.
func (l *Logger) Log(sev Severity, msg string) {
	l.out.Log(sev.level(), msg)
}

// Info writes an info line.
func (l *Logger) Info(msg string) {
	l.Log(Info, msg)
}

// Warning writes a warning line.
func (l *Logger) Warning(msg string) {
	l.Log(Warning, msg)
}

// Error writes an error line.
func (l *Logger) Error(msg string) {
	l.Log(Error, msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Loggers broadcasts every message to all of its sinks, in order.
type Loggers []Sink

// Log forwards msg to every sink.
func (ls Loggers) Log(sev Severity, msg string) {
	for _, s := range ls {
		s.Log(sev, msg)
	}
}

// Info broadcasts an info line.
func (ls Loggers) Info(msg string) {
	ls.Log(Info, msg)
}

// Warning broadcasts a warning line.
func (ls Loggers) Warning(msg string) {
	ls.Log(Warning, msg)
}

// Error broadcasts an error line.
func (ls Loggers) Error(msg string) {
	ls.Log(Error, msg)
}

// Discard is a sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Log(Severity, string) {}
func (discard) Info(string)          {}
func (discard) Warning(string)       {}
func (discard) Error(string)         {}
