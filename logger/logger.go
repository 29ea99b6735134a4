// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package logger provides structured logging for l23net.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Logger is the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger // Create child logger with preset fields
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Backend is the interface for log output backends
type Backend interface {
	Write(entry *Entry) error
	Close() error
}

// Config holds logger configuration
type Config struct {
	Level     string   // debug, info, warn, error
	Format    string   // text, json
	Outputs   []string // console, file, journald
	FilePath  string   // Path to log file
	Component string   // Default component name
	Stderr    io.Writer
}

// standardLogger is the default implementation of Logger
type standardLogger struct {
	level     LogLevel
	backends  []Backend
	component string
	fields    map[string]interface{}
	mu        sync.RWMutex
}

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a string to a LogLevel
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// String returns the string representation of a LogLevel
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// New creates a new logger with the given configuration and backends
func New(config Config, backends []Backend) Logger {
	return &standardLogger{
		level:     ParseLevel(config.Level),
		backends:  backends,
		component: config.Component,
		fields:    make(map[string]interface{}),
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return New(Config{Level: "error"}, nil)
}

// Setup builds the backends named in config.Outputs and returns the logger
// together with a function that closes them. Unknown outputs are an error;
// an unavailable journald falls back to the console.
func Setup(config Config) (Logger, func(), error) {
	stderr := config.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	outputs := config.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	var backends []Backend
	closeAll := func() {
		for _, b := range backends {
			_ = b.Close()
		}
	}

	for _, output := range outputs {
		switch output {
		case "console":
			backends = append(backends, NewConsoleBackend(stderr, config.Format, config.Level))
		case "file":
			fb, err := NewFileBackend(config.FilePath, config.Format)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			backends = append(backends, fb)
		case "journald":
			jb, err := NewJournaldBackend(config.Format)
			if err != nil {
				backends = append(backends, NewConsoleBackend(stderr, config.Format, config.Level))
				continue
			}
			backends = append(backends, jb)
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown log output %q", output)
		}
	}

	return New(config, backends), closeAll, nil
}

// Debug logs a debug message
func (l *standardLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message
func (l *standardLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message
func (l *standardLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message
func (l *standardLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// With creates a child logger with preset fields. A "component" field
// replaces the component instead of being stored as a field.
func (l *standardLogger) With(fields ...Field) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := &standardLogger{
		level:     l.level,
		backends:  l.backends,
		component: l.component,
		fields:    make(map[string]interface{}, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for _, f := range fields {
		if s, ok := f.Value.(string); ok && f.Key == "component" {
			child.component = s
			continue
		}
		child.fields[f.Key] = f.Value
	}
	return child
}

func (l *standardLogger) log(level LogLevel, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			merged[f.Key] = err.Error()
			continue
		}
		merged[f.Key] = f.Value
	}

	entry := NewEntry(level.String(), l.component, msg, merged)

	for _, backend := range l.backends {
		if err := backend.Write(entry); err != nil {
			// Log backend errors to stderr (fallback)
			fmt.Fprintf(os.Stderr, "Logger backend error: %v\n", err)
		}
	}
}

// Global logger instance
var (
	std   Logger = Nop()
	stdMu sync.RWMutex
)

// Init installs the global logger
func Init(l Logger) {
	stdMu.Lock()
	defer stdMu.Unlock()
	std = l
}

// Default returns the global logger
func Default() Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	Default().Debug(msg, fields...)
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	Default().Info(msg, fields...)
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	Default().Warn(msg, fields...)
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	Default().Error(msg, fields...)
}
