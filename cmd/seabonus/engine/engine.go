// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/lifecycle"
	"github.com/vechain/sea-bonus/log"
	"github.com/vechain/sea-bonus/metrics"
	"github.com/vechain/sea-bonus/scheduler"
)

var (
	logger = log.WithContext("pkg", "engine")

	metricStepErrors = metrics.LazyLoadCounterVec("engine_step_errors_count", []string{"stage"})
	metricIdle       = metrics.LazyLoadGauge("engine_idle")
)

const maxBackoffFactor = 8

// Options tunes the engine loop.
type Options struct {
	StartMode     scheduler.StartMode
	PollInterval  time.Duration
	NTPServer     string // empty disables the clock check
	ClockInterval time.Duration
	MaxClockDrift time.Duration
}

// Engine alternates bonus ticks with lifecycle passes.
type Engine struct {
	sched *scheduler.Scheduler
	proc  *lifecycle.Processor
	opts  Options
	now   func() time.Time
}

// New creates an engine.
func New(sched *scheduler.Scheduler, proc *lifecycle.Processor, opts Options) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.ClockInterval <= 0 {
		opts.ClockInterval = 10 * time.Minute
	}
	if opts.MaxClockDrift <= 0 {
		opts.MaxClockDrift = 30 * time.Second
	}
	return &Engine{
		sched: sched,
		proc:  proc,
		opts:  opts,
		now:   time.Now,
	}
}

// Run prepares the database then loops until ctx is cancelled. Only a
// configuration error or a failed preparation ends the loop early; other
// failures are logged and retried after a back-off.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.sched.Prepare(ctx, e.opts.StartMode, e.now()); err != nil {
		return errors.WithMessage(err, "prepare")
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	if e.opts.NTPServer != "" {
		wg.Go(func() { e.checkClock(ctx) })
	}

	failures := 0
	for {
		worked, err := e.Step(ctx)
		if ctx.Err() != nil {
			return nil
		}
		wait := e.opts.PollInterval
		switch {
		case err != nil:
			if bonus.IsConfigError(err) {
				return err
			}
			failures++
			wait = e.backoff(failures)
			logger.Warn("engine step failed", "err", err, "retry", common.PrettyDuration(wait))
		case worked:
			// timepoint may still be behind, catch up without waiting
			failures = 0
			continue
		default:
			failures = 0
		}

		if !metrics.NoOp() {
			metricIdle().Set(1)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
		if !metrics.NoOp() {
			metricIdle().Set(0)
		}
	}
}

// Step runs one bonus tick when due, then one lifecycle pass. worked reports
// whether a tick was run.
func (e *Engine) Step(ctx context.Context) (worked bool, err error) {
	worked, err = e.sched.Tick(ctx, e.now())
	if err != nil {
		if !metrics.NoOp() {
			metricStepErrors().AddWithLabel(1, map[string]string{"stage": "tick"})
		}
		return worked, errors.WithMessage(err, "bonus tick")
	}
	if err := e.proc.Run(ctx, e.now()); err != nil {
		if !metrics.NoOp() {
			metricStepErrors().AddWithLabel(1, map[string]string{"stage": "lifecycle"})
		}
		return worked, errors.WithMessage(err, "lifecycle")
	}
	return worked, nil
}

func (e *Engine) backoff(failures int) time.Duration {
	factor := 1 << min(failures-1, 3)
	return e.opts.PollInterval * time.Duration(min(factor, maxBackoffFactor))
}

func (e *Engine) checkClock(ctx context.Context) {
	logger.Debug("enter clock check")
	ticker := time.NewTicker(e.opts.ClockInterval)
	defer func() {
		logger.Debug("leave clock check")
		ticker.Stop()
	}()

	e.checkClockOffset()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.checkClockOffset()
		}
	}
}

func (e *Engine) checkClockOffset() {
	resp, err := ntp.Query(e.opts.NTPServer)
	if err != nil {
		logger.Debug("failed to access NTP", "server", e.opts.NTPServer, "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > e.opts.MaxClockDrift {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
