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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/server"
	"github.com/we-are-mono/l23net/types"
	"github.com/we-are-mono/l23net/validation"
)

var serveBind string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve discovery over HTTP",
	Long: `Starts the HTTP API. Every request runs a fresh discovery.

Routes: /healthz, /topology, /bridges, /ports, /bonds, /vlans,
/port-bridges, /patch-order?a=&b= and /metrics.`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "Listen address (overrides server.bind)")
}

func runServe(cmd *cobra.Command, args []string) {
	a, err := newApp(cmd.ErrOrStderr())
	if err == nil {
		defer a.close()
		err = executeServe(cmd.Context(), a.engine, a.config.Server, serveBind, a.log)
	}
	if err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

// executeServe runs the HTTP API until ctx is cancelled.
func executeServe(ctx context.Context, q querier, config *types.ServerConfig, bind string, log logger.Logger) error {
	if bind == "" {
		bind = config.Bind
	}
	if err := validation.ValidateEndpoint(bind); err != nil {
		return fmt.Errorf("invalid bind address: %w", err)
	}

	var metrics *server.Metrics
	if config.Metrics {
		metrics = server.NewMetrics()
	}
	return server.NewServer(q, metrics, log).Run(ctx, bind)
}
