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

package logger

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// ConsoleBackend writes log entries to a terminal stream through hclog.
type ConsoleBackend struct {
	log hclog.Logger
}

// NewConsoleBackend creates a console backend writing to w.
func NewConsoleBackend(w io.Writer, format, level string) *ConsoleBackend {
	return &ConsoleBackend{
		log: hclog.New(&hclog.LoggerOptions{
			Name:       "l23net",
			Output:     w,
			Level:      hclog.LevelFromString(ParseLevel(level).String()),
			JSONFormat: format == "json",
		}),
	}
}

// Write writes a log entry through hclog at the matching level
func (b *ConsoleBackend) Write(entry *Entry) error {
	kv := entry.KeyValues()
	switch entry.Level {
	case "debug":
		b.log.Debug(entry.Message, kv...)
	case "warn":
		b.log.Warn(entry.Message, kv...)
	case "error":
		b.log.Error(entry.Message, kv...)
	default:
		b.log.Info(entry.Message, kv...)
	}
	return nil
}

// Close is a no-op for the console backend
func (b *ConsoleBackend) Close() error {
	return nil
}
