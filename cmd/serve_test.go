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

package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/types"
)

func TestExecuteServeInvalidBind(t *testing.T) {
	config := &types.ServerConfig{Bind: "127.0.0.1:9475"}

	err := executeServe(context.Background(), &mockQuerier{}, config, "nohost", logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bind address")
}

func TestExecuteServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := &types.ServerConfig{Bind: "127.0.0.1:0", Metrics: true}
	assert.NoError(t, executeServe(ctx, &mockQuerier{}, config, "", logger.Nop()))
}
