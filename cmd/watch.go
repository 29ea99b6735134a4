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
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/observer"
)

var watchEntity string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run discovery whenever links change",
	Long: `Prints the topology, then prints it again every time the kernel link
table settles after a change. Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchEntity, "entity", entityTopology,
		"Entities to print: topology, bridges, ports, bonds, vlans or port-bridges")
}

func runWatch(cmd *cobra.Command, args []string) {
	a, err := newApp(cmd.ErrOrStderr())
	if err == nil {
		defer a.close()
		debounce := time.Duration(a.config.Watch.DebounceMS) * time.Millisecond
		err = executeWatch(cmd.Context(), cmd.OutOrStdout(), a.engine, nil, debounce, watchEntity, opts.output, a.log)
	}
	if err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

// executeWatch prints once, then after every settled burst of link
// changes. A failed rediscovery is logged and the watch continues.
func executeWatch(ctx context.Context, w io.Writer, q querier, sub observer.LinkSubscriber,
	debounce time.Duration, entity, format string, log logger.Logger) error {

	if err := executeQuery(ctx, w, q, entity, format); err != nil {
		return err
	}

	watcher := observer.NewLinkWatcher(sub, debounce, func(ctx context.Context, links []string) {
		log.Info("Links changed, rediscovering", logger.F("links", links))
		if err := executeQuery(ctx, w, q, entity, format); err != nil {
			log.Error("Rediscovery failed", logger.F("error", err))
		}
	}, log)
	return watcher.Run(ctx)
}
