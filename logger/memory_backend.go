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
	"io"
	"sync"
)

// MemoryBackend keeps every entry it receives and, when w is set, also
// writes the rendered line to w. Tests use it to assert on log output.
type MemoryBackend struct {
	mu      sync.Mutex
	w       io.Writer
	format  string
	entries []*Entry
}

// NewMemoryBackend creates a MemoryBackend. w may be nil.
func NewMemoryBackend(w io.Writer, format string) *MemoryBackend {
	return &MemoryBackend{w: w, format: format}
}

func (b *MemoryBackend) Write(entry *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, entry)
	if b.w == nil {
		return nil
	}
	line, err := render(entry, b.format)
	if err != nil {
		return fmt.Errorf("failed to render log entry: %w", err)
	}
	_, err = io.WriteString(b.w, line+"\n")
	return err
}

// Entries returns a copy of the recorded entries.
func (b *MemoryBackend) Entries() []*Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Entry(nil), b.entries...)
}

// Messages returns the messages recorded at level, in order.
func (b *MemoryBackend) Messages(level string) []string {
	var msgs []string
	for _, e := range b.Entries() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func (b *MemoryBackend) Close() error {
	return nil
}
