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

package ovs

import (
	"regexp"
	"strings"

	"github.com/we-are-mono/l23net/types"
)

// Record is one block of a `list <Table>` listing, keyed by column.
type Record map[string]string

var (
	blockField = regexp.MustCompile(`^\s*(\w+)\s*:\s*(.*?)\s*$`)
	blankLine  = regexp.MustCompile(`^\s*$`)
	flatName   = regexp.MustCompile(`^\s*([\w\-.]+)`)
	quotes     = strings.NewReplacer(`"`, "", `'`, "")
)

// blockParser accumulates key/value lines into a buffer and flushes the
// buffer into a named record at each blank line and at end of input.
type blockParser struct {
	component string
	buf       Record
	records   map[string]Record
	diags     []types.Diagnostic
}

func newBlockParser(component string) *blockParser {
	return &blockParser{
		component: component,
		buf:       Record{},
		records:   make(map[string]Record),
	}
}

func (p *blockParser) accumulate(key, value string) {
	key = quotes.Replace(key)
	value = quotes.Replace(value)
	if value == "[]" {
		value = ""
	}
	p.buf[key] = value
}

// flush emits the buffer. An empty buffer is not a record, so runs of
// blank lines and a trailing blank line are harmless.
func (p *blockParser) flush() {
	if len(p.buf) == 0 {
		return
	}
	name := p.buf["name"]
	if name == "" {
		p.diag("record without name dropped", "")
	} else {
		p.records[name] = p.buf
	}
	p.buf = Record{}
}

func (p *blockParser) diag(msg, line string) {
	p.diags = append(p.diags, types.Diagnostic{Component: p.component, Message: msg, Line: line})
}

func (p *blockParser) line(line string) {
	switch {
	case blankLine.MatchString(line):
		p.flush()
	default:
		m := blockField.FindStringSubmatch(line)
		if m == nil {
			p.diag("misformatted line skipped", line)
			return
		}
		p.accumulate(m[1], m[2])
	}
}

// ParseBlocks parses a `list <Table>` listing into records keyed by name.
func ParseBlocks(lines []string) (map[string]Record, []types.Diagnostic) {
	return parseBlocks(lines, Component)
}

func parseBlocks(lines []string, component string) (map[string]Record, []types.Diagnostic) {
	p := newBlockParser(component)
	for _, line := range lines {
		p.line(line)
	}
	p.flush()
	return p.records, p.diags
}

// ParseFlat parses a listing with one identifier per line, such as
// `list-br` or `list-ports`.
func ParseFlat(lines []string) []string {
	var names []string
	for _, line := range lines {
		if m := flatName.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}

// ParseOptHash parses an OVS map value like `{k1=v1, k2="v2"}`. Pairs
// are split on the first '='; quotes are stripped. Input that is not
// brace-delimited yields an empty map.
func ParseOptHash(s string) map[string]string {
	rv := make(map[string]string)
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return rv
	}

	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return rv
	}
	for _, pair := range strings.Split(body, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		rv[quotes.Replace(strings.TrimSpace(k))] = quotes.Replace(strings.TrimSpace(v))
	}
	return rv
}

// splitLines splits command output into lines without trailing CR.
func splitLines(out []byte) []string {
	text := strings.TrimRight(string(out), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
