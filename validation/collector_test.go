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

package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCollector_NoErrors(t *testing.T) {
	v := NewCollector()

	v.Check(nil)
	v.Check(nil)
	v.CheckMsg(nil, "some message")

	assert.NoError(t, v.Error())
}

func TestErrorCollector_MultipleErrors(t *testing.T) {
	v := NewCollector()

	v.Check(fmt.Errorf("first error"))
	v.Check(fmt.Errorf("second error"))
	v.Check(fmt.Errorf("third error"))

	err := v.Error()
	require.Error(t, err)

	assert.Contains(t, err.Error(), "first error")
	assert.Contains(t, err.Error(), "second error")
	assert.Contains(t, err.Error(), "third error")
}

func TestErrorCollector_WithContext(t *testing.T) {
	v := NewCollector().WithContext("ovs")

	v.Check(ValidateOneOf("source", "snmp", []string{"vsctl", "ovsdb"}))
	v.Check(ValidateNonNegative("timeout_ms", -5))

	err := v.Error()
	require.Error(t, err)

	assert.Contains(t, err.Error(), "ovs: invalid source snmp")
	assert.Contains(t, err.Error(), "ovs: timeout_ms -5 cannot be negative")
}

func TestErrorCollector_CheckMsg(t *testing.T) {
	v := NewCollector()

	v.CheckMsg(ValidateMTU(20), "invalid mtu")

	err := v.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mtu: MTU 20 out of valid range")
}

func TestErrorCollector_CheckMsg_WithContext(t *testing.T) {
	v := NewCollector().WithContext("server")

	v.CheckMsg(ValidateEndpoint("127.0.0.1:99999"), "invalid bind address")
	v.Check(nil)

	err := v.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server: invalid bind address: invalid endpoint port in 127.0.0.1:99999")
}

func TestErrorCollector_NestedValidation(t *testing.T) {
	validateOVS := func() error {
		v := NewCollector().WithContext("ovs")
		v.Check(ValidateOVSDBEndpoint("udp:127.0.0.1:6640"))
		return v.Error()
	}

	validateBond := func() error {
		v := NewCollector().WithContext("bond bond0")
		v.Check(ValidateInterfaceName("eth/0"))
		v.Check(ValidateMTU(1))
		return v.Error()
	}

	parent := func() error {
		v := NewCollector()
		v.Check(validateOVS())
		v.Check(validateBond())
		return v.Error()
	}

	err := parent()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ovs: invalid OVSDB endpoint udp:127.0.0.1:6640")
	assert.Contains(t, errStr, "bond bond0: interface name eth/0 contains invalid characters")
	assert.Contains(t, errStr, "bond bond0: MTU 1 out of valid range")
}

func TestErrorCollector_ErrorFormat(t *testing.T) {
	v := NewCollector()

	v.Check(fmt.Errorf("error 1"))
	v.Check(fmt.Errorf("error 2"))
	v.Check(fmt.Errorf("error 3"))

	err := v.Error()
	require.Error(t, err)

	// errors.Join separates errors with newlines
	lines := strings.Split(err.Error(), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "error 1")
	assert.Contains(t, lines[1], "error 2")
	assert.Contains(t, lines[2], "error 3")
}

func TestErrorCollector_ErrorUnwrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	v := NewCollector().WithContext("logging")
	v.Check(originalErr)

	err := v.Error()
	require.Error(t, err)
	assert.True(t, errors.Is(err, originalErr))
}

func TestErrorCollector_Len(t *testing.T) {
	v := NewCollector().WithContext("watch")
	assert.Equal(t, 0, v.Len())

	v.Check(nil)
	v.Check(ValidateNonNegative("debounce_ms", -1))
	v.CheckMsg(ValidateOneOf("output", "syslog", []string{"console"}), "logging")

	assert.Equal(t, 2, v.Len())
	assert.Contains(t, v.Error().Error(), "watch: logging: invalid output syslog")
}
