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
)

// ErrorCollector gathers validation failures so that a whole configuration
// is reported at once instead of stopping at the first problem.
type ErrorCollector struct {
	prefix string
	errs   []error
}

// NewCollector returns an empty collector.
func NewCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// WithContext prefixes every error collected afterwards, e.g. "ovs" or
// "bond bond0".
func (c *ErrorCollector) WithContext(prefix string) *ErrorCollector {
	c.prefix = prefix
	return c
}

// Check records err unless it is nil.
func (c *ErrorCollector) Check(err error) {
	c.add(err, "")
}

// CheckMsg records err, unless nil, behind msg.
func (c *ErrorCollector) CheckMsg(err error, msg string) {
	c.add(err, msg)
}

func (c *ErrorCollector) add(err error, msg string) {
	if err == nil {
		return
	}
	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	if c.prefix != "" {
		err = fmt.Errorf("%s: %w", c.prefix, err)
	}
	c.errs = append(c.errs, err)
}

// Len returns the number of collected errors.
func (c *ErrorCollector) Len() int {
	return len(c.errs)
}

// Error joins the collected errors with errors.Join; nil when none.
func (c *ErrorCollector) Error() error {
	return errors.Join(c.errs...)
}
