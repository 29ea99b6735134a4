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
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// journalPriorities maps log levels to syslog priorities.
var journalPriorities = map[string]string{
	"debug": "7",
	"info":  "6",
	"warn":  "4",
	"error": "3",
}

// JournaldBackend writes log entries to the systemd journal through systemd-cat
type JournaldBackend struct {
	format string // "json" or "text"
	mu     sync.Mutex
}

// NewJournaldBackend creates a new journald backend.
// Returns an error if systemd-cat is not available.
func NewJournaldBackend(format string) (*JournaldBackend, error) {
	if _, err := exec.LookPath("systemd-cat"); err != nil {
		return nil, fmt.Errorf("systemd-cat not found: %w", err)
	}
	return &JournaldBackend{format: format}, nil
}

// Write writes a log entry to systemd journal
func (b *JournaldBackend) Write(entry *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	line, err := render(entry, b.format)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	priority, ok := journalPriorities[entry.Level]
	if !ok {
		priority = "6"
	}

	cmd := exec.Command("systemd-cat", "-t", "l23net", "-p", priority)
	cmd.Stdin = strings.NewReader(line)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}
	return nil
}

// Close is a no-op for journald
func (b *JournaldBackend) Close() error {
	return nil
}
