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

// TreePort is a port found in `ovs-vsctl show`.
type TreePort struct {
	Name       string
	Bridge     string
	Interfaces []string
}

// TreeInterface is an interface found in `ovs-vsctl show`.
type TreeInterface struct {
	Name    string
	Port    string
	Type    string
	Options map[string]string
}

// Tree is the bridge/port/interface layout from `ovs-vsctl show`.
type Tree struct {
	Bridges    []string
	Ports      map[string]*TreePort
	Interfaces map[string]*TreeInterface

	// Ignored holds lines that matched no known shape.
	Ignored []string
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		Ports:      make(map[string]*TreePort),
		Interfaces: make(map[string]*TreeInterface),
	}
}

// PortInterfaces returns the interfaces of a port in listing order.
func (t *Tree) PortInterfaces(port string) []*TreeInterface {
	p, ok := t.Ports[port]
	if !ok {
		return nil
	}
	ifaces := make([]*TreeInterface, 0, len(p.Interfaces))
	for _, name := range p.Interfaces {
		if iface, ok := t.Interfaces[name]; ok {
			ifaces = append(ifaces, iface)
		}
	}
	return ifaces
}

// treeState is the innermost context the tree parser is in.
type treeState int

const (
	stateTop treeState = iota
	stateBridge
	statePort
	stateInterface
)

var (
	treeBridge    = regexp.MustCompile(`^\s+Bridge\s+"?([\w\-.]+)"?$`)
	treePort      = regexp.MustCompile(`^\s+Port\s+"?([\w\-.]+)"?$`)
	treeInterface = regexp.MustCompile(`^\s+Interface\s+"?([\w\-.]+)"?$`)
	treeType      = regexp.MustCompile(`^\s+type:\s+"?([\w\-.]+)"?$`)
	treeOptions   = regexp.MustCompile(`^\s+options:\s+(\{.+\})\s*$`)
)

// treeParser walks `show` output keeping the current bridge, port and
// interface.
type treeParser struct {
	state treeState
	br    string
	po    string
	iface string
	tree  *Tree
	diags []types.Diagnostic
}

func (p *treeParser) diag(msg, line string) {
	p.diags = append(p.diags, types.Diagnostic{Component: Component, Message: msg, Line: line})
}

func (p *treeParser) line(line string) {
	if m := treeBridge.FindStringSubmatch(line); m != nil {
		p.enterBridge(m[1])
		return
	}
	if m := treePort.FindStringSubmatch(line); m != nil {
		if p.state < stateBridge {
			p.diag("port outside of a bridge skipped", line)
			return
		}
		p.enterPort(m[1])
		return
	}
	if m := treeInterface.FindStringSubmatch(line); m != nil {
		if p.state < statePort {
			p.diag("interface outside of a port skipped", line)
			return
		}
		p.enterInterface(m[1])
		return
	}
	if m := treeType.FindStringSubmatch(line); m != nil {
		if p.state != stateInterface {
			p.diag("type outside of an interface skipped", line)
			return
		}
		p.tree.Interfaces[p.iface].Type = m[1]
		return
	}
	if m := treeOptions.FindStringSubmatch(line); m != nil {
		if p.state != stateInterface {
			p.diag("options outside of an interface skipped", line)
			return
		}
		p.tree.Interfaces[p.iface].Options = ParseOptHash(m[1])
		return
	}
	if !blankLine.MatchString(line) {
		p.tree.Ignored = append(p.tree.Ignored, line)
	}
}

func (p *treeParser) enterBridge(name string) {
	p.state = stateBridge
	p.br, p.po, p.iface = name, "", ""
	p.tree.Bridges = append(p.tree.Bridges, name)
}

func (p *treeParser) enterPort(name string) {
	p.state = statePort
	p.po, p.iface = name, ""
	p.tree.Ports[name] = &TreePort{Name: name, Bridge: p.br}
}

func (p *treeParser) enterInterface(name string) {
	p.state = stateInterface
	p.iface = name
	p.tree.Interfaces[name] = &TreeInterface{Name: name, Port: p.po}
	port := p.tree.Ports[p.po]
	port.Interfaces = append(port.Interfaces, name)
}

// ParseTree parses `ovs-vsctl show` output. Lines in an impossible
// context are skipped with a diagnostic; unknown lines are kept in
// Tree.Ignored.
func ParseTree(lines []string) (*Tree, []types.Diagnostic) {
	p := &treeParser{tree: NewTree()}
	for _, line := range lines {
		p.line(strings.TrimRight(line, " \t\r"))
	}
	return p.tree, p.diags
}
