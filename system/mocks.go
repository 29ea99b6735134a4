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

package system

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/vishvananda/netlink"
)

// MockFilesystemClient is an in-memory FilesystemClient for testing.
// Directories are implied by the paths of files and links.
type MockFilesystemClient struct {
	mu sync.Mutex

	// State
	Files map[string][]byte
	Dirs  map[string]bool
	Links map[string]string

	// Call counters
	ReadFileCalls int
	ReadDirCalls  int

	// Error injection
	ReadFileError error
	ReadDirError  error
}

// NewMockFilesystemClient creates a new MockFilesystemClient.
func NewMockFilesystemClient() *MockFilesystemClient {
	return &MockFilesystemClient{
		Files: make(map[string][]byte),
		Dirs:  make(map[string]bool),
		Links: make(map[string]string),
	}
}

// AddFile stores a file with the given content.
func (m *MockFilesystemClient) AddFile(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[name] = []byte(content)
}

// AddDir records an empty directory.
func (m *MockFilesystemClient) AddDir(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dirs[name] = true
}

// AddLink records a symbolic link pointing at target.
func (m *MockFilesystemClient) AddLink(name, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Links[name] = target
}

func (m *MockFilesystemClient) ReadFile(filename string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadFileCalls++

	if m.ReadFileError != nil {
		return nil, m.ReadFileError
	}

	data, ok := m.Files[filename]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", filename)
	}
	return data, nil
}

func (m *MockFilesystemClient) ReadDir(dirname string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadDirCalls++

	if m.ReadDirError != nil {
		return nil, m.ReadDirError
	}
	if !m.isDirLocked(dirname) {
		return nil, fmt.Errorf("directory not found: %s", dirname)
	}

	prefix := strings.TrimSuffix(dirname, "/") + "/"
	seen := make(map[string]bool)
	collect := func(p string) {
		if !strings.HasPrefix(p, prefix) {
			return
		}
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" {
			return
		}
		seen[strings.SplitN(rest, "/", 2)[0]] = true
	}
	for p := range m.Files {
		collect(p)
	}
	for p := range m.Dirs {
		collect(p)
	}
	for p := range m.Links {
		collect(p)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockFilesystemClient) Readlink(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.Links[name]
	if !ok {
		return "", fmt.Errorf("not a link: %s", name)
	}
	return target, nil
}

func (m *MockFilesystemClient) IsSymlink(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Links[name]
	return ok
}

func (m *MockFilesystemClient) IsDir(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirLocked(name)
}

func (m *MockFilesystemClient) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Files[name]; ok {
		return true
	}
	if _, ok := m.Links[name]; ok {
		return true
	}
	return m.isDirLocked(name)
}

func (m *MockFilesystemClient) isDirLocked(name string) bool {
	name = path.Clean(name)
	if m.Dirs[name] {
		return true
	}
	prefix := name + "/"
	for p := range m.Files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	for p := range m.Dirs {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	for p := range m.Links {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// MockCommandRunner is a mock implementation of CommandRunner for testing.
type MockCommandRunner struct {
	mu sync.Mutex

	// State
	CommandOutputs map[string][]byte
	CommandErrors  map[string]error

	// Call tracking
	Commands [][]string
	RunCalls int

	// Error injection
	RunError error
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		CommandOutputs: make(map[string][]byte),
		CommandErrors:  make(map[string]error),
		Commands:       make([][]string, 0),
	}
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunCalls++

	// Track the command that was run
	cmd := append([]string{name}, args...)
	m.Commands = append(m.Commands, cmd)

	if m.RunError != nil {
		return nil, m.RunError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmdStr := commandKey(name, args)
	if err, ok := m.CommandErrors[cmdStr]; ok {
		return nil, err
	}

	output, ok := m.CommandOutputs[cmdStr]
	if !ok {
		return []byte{}, nil
	}
	return output, nil
}

// SetOutput sets the output for a specific command.
func (m *MockCommandRunner) SetOutput(name string, args []string, output []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandOutputs[commandKey(name, args)] = output
}

// SetError makes a specific command fail.
func (m *MockCommandRunner) SetError(name string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandErrors[commandKey(name, args)] = err
}

func commandKey(name string, args []string) string {
	cmdStr := name
	for _, arg := range args {
		cmdStr += " " + arg
	}
	return cmdStr
}

// MockNetlinkClient is a mock implementation of NetlinkClient for testing.
type MockNetlinkClient struct {
	mu sync.Mutex

	// State
	Links       map[string]netlink.Link
	PeerIndexes map[string]int

	// Call counters
	LinkByNameCalls int

	// Error injection
	LinkByNameError error
	LinkListError   error
}

// NewMockNetlinkClient creates a new MockNetlinkClient.
func NewMockNetlinkClient() *MockNetlinkClient {
	return &MockNetlinkClient{
		Links:       make(map[string]netlink.Link),
		PeerIndexes: make(map[string]int),
	}
}

func (m *MockNetlinkClient) LinkByName(name string) (netlink.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LinkByNameCalls++

	if m.LinkByNameError != nil {
		return nil, m.LinkByNameError
	}

	link, ok := m.Links[name]
	if !ok {
		return nil, netlink.LinkNotFoundError{}
	}
	return link, nil
}

func (m *MockNetlinkClient) LinkList() ([]netlink.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LinkListError != nil {
		return nil, m.LinkListError
	}

	links := make([]netlink.Link, 0, len(m.Links))
	for _, link := range m.Links {
		links = append(links, link)
	}
	return links, nil
}

func (m *MockNetlinkClient) VethPeerIndex(link *netlink.Veth) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.PeerIndexes[link.Attrs().Name]
	if !ok {
		return 0, fmt.Errorf("no peer for %s", link.Attrs().Name)
	}
	return idx, nil
}

// MockPeerResolver is a mock implementation of PeerResolver for testing.
type MockPeerResolver struct {
	Peers map[string]int
	Err   error
}

// NewMockPeerResolver creates a new MockPeerResolver.
func NewMockPeerResolver() *MockPeerResolver {
	return &MockPeerResolver{Peers: make(map[string]int)}
}

func (m *MockPeerResolver) PeerIndex(name string) (int, bool, error) {
	if m.Err != nil {
		return 0, false, m.Err
	}
	idx, ok := m.Peers[name]
	return idx, ok, nil
}

// MockFeatureReader is a mock implementation of FeatureReader for testing.
type MockFeatureReader struct {
	ByName map[string]map[string]bool
	Err    error
	Calls  int
}

// NewMockFeatureReader creates a new MockFeatureReader.
func NewMockFeatureReader() *MockFeatureReader {
	return &MockFeatureReader{ByName: make(map[string]map[string]bool)}
}

func (m *MockFeatureReader) Features(name string) (map[string]bool, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ByName[name], nil
}

// MockNamespaceChecker is a mock implementation of NamespaceChecker for testing.
type MockNamespaceChecker struct {
	InDefault bool
	Err       error
}

func (m *MockNamespaceChecker) InDefaultNamespace() (bool, error) {
	return m.InDefault, m.Err
}
