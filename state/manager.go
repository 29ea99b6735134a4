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

// Package state loads and persists the l23net configuration.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const defaultConfigBasePath = "/etc/l23net"

// ConfigDirEnv overrides the configuration directory.
const ConfigDirEnv = "L23NET_CONFIG_DIR"

const backupTimeFormat = "20060102-150405"

// GetConfigDir returns $L23NET_CONFIG_DIR, or /etc/l23net when unset.
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return defaultConfigBasePath
}

// ConfigPath returns the file holding namespace.
func ConfigPath(namespace string) string {
	return filepath.Join(GetConfigDir(), namespace+".json")
}

// LoadConfig decodes <dir>/<namespace>.json into config. Decoding errors
// carry the line and column of the offending byte.
func LoadConfig(namespace string, config interface{}) error {
	path := ConfigPath(namespace)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s config: %w", namespace, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			line, col := getLineCol(data, syntaxErr.Offset)
			return fmt.Errorf("failed to parse %s config at %s line %d, column %d: %w", namespace, path, line, col, err)
		case errors.As(err, &typeErr):
			line, col := getLineCol(data, typeErr.Offset)
			return fmt.Errorf("failed to parse %s config at %s line %d, column %d: %w", namespace, path, line, col, err)
		}
		return fmt.Errorf("failed to parse %s config: %w", namespace, err)
	}
	return nil
}

// getLineCol converts a byte offset into a 1-based line and column.
func getLineCol(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// SaveConfig writes config as indented JSON. An existing file is copied to
// a timestamped backup first, and the new content replaces it through a
// rename so readers never see a partial file.
func SaveConfig(namespace string, config interface{}) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s config: %w", namespace, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path := ConfigPath(namespace)

	if _, err := os.Stat(path); err == nil {
		backup := path + ".backup." + time.Now().Format(backupTimeFormat)
		if err := copyFile(path, backup); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}
