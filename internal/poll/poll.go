// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/clarifyctl/clarifyctl/internal/log"
)

// Func checks a condition once. done ends the wait; status is a short
// human-readable state shown while waiting.
type Func func(ctx context.Context) (done bool, status string, err error)

// Wait polls fn at a fixed interval until it reports done, returns an error,
// the budget is exhausted, or ctx is canceled. A budget of zero waits
// indefinitely. When stdout is a terminal a spinner is shown; otherwise each
// status change is logged.
func Wait(ctx context.Context, label string, interval, budget time.Duration, fn Func) error {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return waitTUI(ctx, label, interval, budget, fn)
	}
	return waitPlain(ctx, label, interval, budget, fn)
}

// waitPlain is the non-interactive wait loop: check, sleep, repeat.
func waitPlain(ctx context.Context, label string, interval, budget time.Duration, fn Func) error {
	var deadline time.Time
	if budget > 0 {
		deadline = time.Now().Add(budget)
	}

	last := ""
	for {
		done, status, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			log.Debugf("wait done: label=%s status=%s", label, status)
			return nil
		}

		if status != last {
			log.Infof("%s: %s", label, status)
			last = status
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for %s (last status: %s)", label, status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
