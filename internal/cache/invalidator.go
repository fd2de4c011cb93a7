// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"folio/internal/logger"
)

// DefaultInvalidateTimeout bounds one background invalidation run.
const DefaultInvalidateTimeout = 10 * time.Second

// Purger drops cached output for a path.
type Purger interface {
	InvalidatePage(ctx context.Context, path string) error
}

// Recorder keeps an audit trail of invalidations.
type Recorder interface {
	Log(ctx context.Context, path, reason string)
}

// Invalidator marks cached pages stale after content changes. Calls return
// immediately; the work runs in the background with its own timeout so a
// finished or cancelled request does not abort it. Failures are logged and
// never reach the caller.
type Invalidator struct {
	purger   Purger
	recorder Recorder
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewInvalidator creates an Invalidator. recorder may be nil.
func NewInvalidator(purger Purger, recorder Recorder) *Invalidator {
	return &Invalidator{purger: purger, recorder: recorder, timeout: DefaultInvalidateTimeout}
}

// Invalidate schedules removal of every distinct path. reason is stored in
// the audit log ("create", "update", "delete", ...).
func (inv *Invalidator) Invalidate(ctx context.Context, reason string, paths ...string) {
	paths = dedupe(paths)
	if len(paths) == 0 {
		return
	}

	bg := context.WithoutCancel(ctx)
	inv.wg.Add(1)
	go func() {
		defer inv.wg.Done()
		runCtx, cancel := context.WithTimeout(bg, inv.timeout)
		defer cancel()
		inv.run(runCtx, reason, paths)
	}()
}

func (inv *Invalidator) run(ctx context.Context, reason string, paths []string) {
	log := logger.WithCtx(ctx)
	for _, path := range paths {
		if err := inv.purger.InvalidatePage(ctx, path); err != nil {
			log.Warn("page cache invalidate failed",
				zap.String("path", path),
				zap.String("reason", reason),
				zap.Error(err),
			)
			continue
		}
		if inv.recorder != nil {
			inv.recorder.Log(ctx, path, reason)
		}
	}
	log.Debug("pages invalidated", zap.Strings("paths", paths), zap.String("reason", reason))
}

// Wait blocks until every scheduled invalidation has finished. Used on
// shutdown and in tests.
func (inv *Invalidator) Wait() {
	inv.wg.Wait()
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0:0]
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
