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

// Package observer watches the kernel for link changes so that topology
// consumers can re-run discovery.
package observer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/we-are-mono/l23net/logger"
)

// Component is the log component name used by this package.
const Component = "observer"

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// ErrSubscriptionClosed is returned when the update channel closes while
// the watcher is still running.
var ErrSubscriptionClosed = errors.New("link subscription closed")

// LinkSubscriber delivers link updates to ch until done is closed.
type LinkSubscriber interface {
	Subscribe(ch chan<- netlink.LinkUpdate, done <-chan struct{}) error
}

// NetlinkSubscriber subscribes to RTNLGRP_LINK through netlink.
type NetlinkSubscriber struct{}

// Subscribe implements LinkSubscriber.
func (NetlinkSubscriber) Subscribe(ch chan<- netlink.LinkUpdate, done <-chan struct{}) error {
	return netlink.LinkSubscribe(ch, done)
}

// ChangeFunc receives the sorted names of the links that changed during
// one burst.
type ChangeFunc func(ctx context.Context, links []string)

// LinkWatcher coalesces bursts of link updates and reports each burst once
// the link table has been quiet for the debounce period.
type LinkWatcher struct {
	subscriber LinkSubscriber
	debounce   time.Duration
	onChange   ChangeFunc
	log        logger.Logger
}

// NewLinkWatcher creates a watcher. A nil subscriber means netlink.
func NewLinkWatcher(subscriber LinkSubscriber, debounce time.Duration, onChange ChangeFunc, log logger.Logger) *LinkWatcher {
	if subscriber == nil {
		subscriber = NetlinkSubscriber{}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LinkWatcher{
		subscriber: subscriber,
		debounce:   debounce,
		onChange:   onChange,
		log:        log.With(logger.F("component", Component)),
	}
}

// Run blocks until ctx is cancelled or the subscription fails.
func (w *LinkWatcher) Run(ctx context.Context) error {
	updates := make(chan netlink.LinkUpdate)
	done := make(chan struct{})
	defer close(done)

	if err := w.subscriber.Subscribe(updates, done); err != nil {
		w.log.Error("Failed to subscribe to link events", logger.F("error", err))
		return fmt.Errorf("failed to subscribe to link events: %w", err)
	}
	w.log.Info("Watching link changes", logger.F("debounce", w.debounce.String()))

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrSubscriptionClosed
			}
			name := w.record(update)
			if name == "" {
				continue
			}
			pending[name] = struct{}{}
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			links := lo.Keys(pending)
			sort.Strings(links)
			pending = make(map[string]struct{})
			w.log.Debug("Link burst settled", logger.F("links", links))
			if w.onChange != nil {
				w.onChange(ctx, links)
			}

		case <-ctx.Done():
			w.log.Info("Link watcher stopped")
			return nil
		}
	}
}

func (w *LinkWatcher) record(update netlink.LinkUpdate) string {
	if update.Link == nil {
		return ""
	}
	attrs := update.Link.Attrs()
	if attrs == nil || attrs.Name == "" {
		return ""
	}

	action := "changed"
	if update.Header.Type == unix.RTM_DELLINK {
		action = "removed"
	}
	w.log.Debug("Link event",
		logger.F("interface", attrs.Name),
		logger.F("action", action),
		logger.F("up", update.IfInfomsg.Flags&unix.IFF_UP != 0),
		logger.F("type", update.Link.Type()))
	return attrs.Name
}
