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
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Entry represents a single log entry with structured fields
type Entry struct {
	Timestamp string                 `json:"timestamp"` // RFC3339 format
	Level     string                 `json:"level"`     // debug, info, warn, error
	Component string                 `json:"component"` // sysfs, ovs, topology, server, etc.
	Message   string                 `json:"message"`   // Log message
	Fields    map[string]interface{} `json:"fields"`    // Additional structured fields
}

// NewEntry creates a new log entry with the current timestamp
func NewEntry(level, component, message string, fields map[string]interface{}) *Entry {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: component,
		Message:   message,
		Fields:    fields,
	}
}

// ToJSON returns the JSON representation of the log entry
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ToText returns a human-readable text representation of the log entry.
// Fields are printed as key=value pairs in key order.
func (e *Entry) ToText() string {
	var sb strings.Builder
	sb.WriteString(e.Timestamp)
	sb.WriteString(" [" + e.Level + "]")
	if e.Component != "" {
		sb.WriteString(" [" + e.Component + "]")
	}
	sb.WriteString(" " + e.Message)

	for _, k := range e.sortedKeys() {
		sb.WriteString(" " + k + "=" + jsonString(e.Fields[k]))
	}
	return sb.String()
}

// KeyValues flattens the component and fields into alternating keys and
// values, in key order.
func (e *Entry) KeyValues() []interface{} {
	kv := make([]interface{}, 0, 2*len(e.Fields)+2)
	if e.Component != "" {
		kv = append(kv, "component", e.Component)
	}
	for _, k := range e.sortedKeys() {
		kv = append(kv, k, e.Fields[k])
	}
	return kv
}

func (e *Entry) sortedKeys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// render renders an entry as a single line in the given format.
func render(entry *Entry, format string) (string, error) {
	if format == "json" {
		jsonBytes, err := entry.ToJSON()
		if err != nil {
			return "", err
		}
		return string(jsonBytes), nil
	}
	return entry.ToText(), nil
}

// jsonString converts a value to a JSON string representation
func jsonString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
