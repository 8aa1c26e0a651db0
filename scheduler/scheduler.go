// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package scheduler runs the bonus tick: a bottom-up pass over the referral
// forest, one layer at a time, resumable after a crash at any point.
package scheduler

import (
	"context"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/health"
	"github.com/vechain/sea-bonus/log"
	"github.com/vechain/sea-bonus/metrics"
	"github.com/vechain/sea-bonus/node"
	"github.com/vechain/sea-bonus/nodedb"
)

var logger = log.WithContext("pkg", "scheduler")

// ErrNotPrepared is returned when the status counters were never seeded.
var ErrNotPrepared = errors.New("bonus status not prepared")

// StartMode decides the first bonus timepoint of a fresh database.
type StartMode int

const (
	StartImmediate StartMode = iota
	StartMidnight
)

// ParseStartMode parses "immediate" or "midnight".
func ParseStartMode(s string) (StartMode, error) {
	switch s {
	case "immediate":
		return StartImmediate, nil
	case "midnight":
		return StartMidnight, nil
	default:
		return 0, errors.Errorf("unknown start mode %q", s)
	}
}

func (m StartMode) String() string {
	if m == StartMidnight {
		return "midnight"
	}
	return "immediate"
}

// Scheduler drives bonus ticks over a node db.
type Scheduler struct {
	db          *nodedb.NodeDB
	cfg         *bonus.Config
	interval    int64
	concurrency int
	health      *health.Health
}

// New creates a scheduler. interval is in seconds; a concurrency below one
// uses every cpu.
func New(db *nodedb.NodeDB, cfg *bonus.Config, interval int64, concurrency int) *Scheduler {
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}
	return &Scheduler{
		db:          db,
		cfg:         cfg,
		interval:    interval,
		concurrency: concurrency,
	}
}

// WithHealth reports layer progress to h.
func (s *Scheduler) WithHealth(h *health.Health) *Scheduler {
	s.health = h
	return s
}

// Interval returns the tick interval in seconds.
func (s *Scheduler) Interval() int64 { return s.interval }

// Prepare seeds the status counters of a fresh database. Existing values are
// kept so a restart resumes where it stopped.
func (s *Scheduler) Prepare(ctx context.Context, mode StartMode, now time.Time) error {
	return s.db.Update(ctx, func(w *nodedb.Writer) error {
		layer, err := w.GetStatus(nodedb.StatusNodeBonus)
		if err != nil {
			return err
		}
		if layer == nodedb.Absent {
			if err := w.SetStatus(nodedb.StatusNodeBonus, 0); err != nil {
				return err
			}
		}
		timepoint, err := w.GetStatus(nodedb.StatusNodeBonusTimepoint)
		if err != nil {
			return err
		}
		if timepoint == nodedb.Absent {
			first := now.Unix()
			if mode == StartMidnight {
				first = nextMidnight(now).Unix()
			}
			logger.Info("seeded bonus timepoint", "mode", mode, "timepoint", time.Unix(first, 0))
			return w.SetStatus(nodedb.StatusNodeBonusTimepoint, first)
		}
		return nil
	})
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// Tick runs a whole bonus pass when the timepoint has been reached. It reports
// false without doing anything when the timepoint is still ahead.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (worked bool, err error) {
	timepoint, err := s.db.GetStatus(ctx, nodedb.StatusNodeBonusTimepoint)
	if err != nil {
		return false, err
	}
	if timepoint == nodedb.Absent {
		return false, ErrNotPrepared
	}
	if now.Unix() < timepoint {
		return false, nil
	}

	var (
		start = time.Now()
		run   = uuid.New()
		lc    *LayerContext
		done  bool
	)
	logger.Info("bonus tick started", "run", run, "bonusTime", timepoint)
	for !done {
		if lc, done, err = s.Step(ctx, lc); err != nil {
			logger.Warn("bonus tick interrupted", "run", run, "err", err)
			return true, err
		}
	}
	elapsed := time.Since(start)
	logger.Info("bonus tick finished", "run", run, "bonusTime", timepoint, "elapsed", common.PrettyDuration(elapsed))
	if !metrics.NoOp() {
		metricTickDuration().Observe(elapsed.Milliseconds())
	}
	if s.health != nil {
		s.health.TickFinished(timepoint)
	}
	return true, nil
}

// Step processes the layer the progress marker points at and returns the
// context for the next one. done is true once layer 1 has been finalised.
//
// Passing nil, or a context that is not the layer right below, rebuilds the
// children from storage; this is how a restarted process resumes.
func (s *Scheduler) Step(ctx context.Context, lc *LayerContext) (next *LayerContext, done bool, err error) {
	bonusTime, err := s.db.GetStatus(ctx, nodedb.StatusNodeBonusTimepoint)
	if err != nil {
		return nil, false, err
	}
	layer, err := s.db.GetStatus(ctx, nodedb.StatusNodeBonus)
	if err != nil {
		return nil, false, err
	}
	if bonusTime == nodedb.Absent || layer == nodedb.Absent {
		return nil, false, ErrNotPrepared
	}

	isMax := false
	if layer == 0 {
		maxLayer, err := s.db.MaxLayer(ctx)
		if err != nil {
			return nil, false, err
		}
		if maxLayer == 0 {
			return nil, true, s.finish(ctx, bonusTime)
		}
		layer, isMax = int64(maxLayer), true
	}

	if !isMax && (lc == nil || lc.Layer != int(layer)+1) {
		if lc, err = s.recover(ctx, int(layer)+1); err != nil {
			return nil, false, err
		}
	}
	if isMax {
		lc = nil
	}

	nodes, err := s.processLayer(ctx, int(layer), bonusTime, lc)
	if err != nil {
		return nil, false, err
	}

	if layer == 1 {
		return nil, true, s.finish(ctx, bonusTime)
	}
	if err := s.db.SetStatus(ctx, nodedb.StatusNodeBonus, layer-1); err != nil {
		return nil, false, err
	}
	return newLayerContext(int(layer), nodes), false, nil
}

// recover reloads a finished layer. Its stored aggregates are what the layer
// produced, so it is regrouped as is.
func (s *Scheduler) recover(ctx context.Context, layer int) (*LayerContext, error) {
	nodes, err := s.db.NodesAtLayer(ctx, layer)
	if err != nil {
		return nil, errors.WithMessagef(err, "recover layer %d", layer)
	}
	logger.Info("recovered layer", "layer", layer, "nodes", len(nodes))
	if !metrics.NoOp() {
		metricRecovers().Add(1)
	}
	return newLayerContext(layer, nodes), nil
}

func (s *Scheduler) processLayer(ctx context.Context, layer int, bonusTime int64, lc *LayerContext) ([]*node.Node, error) {
	start := time.Now()
	if s.health != nil {
		s.health.LayerStarted(layer)
	}
	if !metrics.NoOp() {
		metricStatus().SetWithLabel(int64(layer), map[string]string{"name": nodedb.StatusNodeBonus})
	}

	nodes, err := s.db.NodesAtLayer(ctx, layer)
	if err != nil {
		return nil, err
	}
	if orphans := lc.attach(nodes); len(orphans) > 0 {
		logger.Warn("children without parent", "layer", layer, "referrers", orphans)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	results := make([]string, len(nodes))
	for i, n := range nodes {
		g.Go(func() error {
			res, err := s.processNode(gctx, n, bonusTime)
			if err != nil {
				return errors.WithMessagef(err, "node %s", n.Address)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !metrics.NoOp() {
		metricLayerDuration().Observe(time.Since(start).Milliseconds())
		counts := make(map[string]int64)
		for _, r := range results {
			counts[r]++
		}
		for r, c := range counts {
			metricNodes().AddWithLabel(c, map[string]string{"result": r})
		}
	}
	logger.Debug("layer processed", "layer", layer, "nodes", len(nodes), "children", lc.Len(), "elapsed", common.PrettyDuration(time.Since(start)))
	return nodes, nil
}

// processNode evaluates one node and writes its record and fields in one
// transaction.
func (s *Scheduler) processNode(ctx context.Context, n *node.Node, bonusTime int64) (string, error) {
	replay, err := s.replayParts(ctx, n, bonusTime)
	if err != nil {
		return "", err
	}
	accrue, err := n.Evaluate(s.cfg, bonusTime, replay)
	if err != nil {
		return "", err
	}
	persist, advance := n.NeedUpdate(bonusTime)
	if !accrue && !persist {
		return "skipped", nil
	}

	err = s.db.Update(ctx, func(w *nodedb.Writer) error {
		if accrue {
			prev, err := w.LatestBonusRecord(n.Address)
			if err != nil {
				return err
			}
			rec, continued := bonus.Accumulate(prev, n.Address, n.Parts(), bonusTime, s.interval)
			if prev != nil && !continued {
				logger.Warn("bonus series restarted", "address", n.Address, "previous", prev.BonusTime, "bonusTime", bonusTime)
			}
			if err := w.AppendBonusRecord(&rec); err != nil {
				return err
			}
		}
		if advance {
			n.Advance(s.interval)
		}
		if persist {
			return w.UpdateNode(n)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	switch {
	case accrue:
		return "accrued", nil
	case replay != nil:
		return "replayed", nil
	default:
		return "updated", nil
	}
}

// replayParts returns the stored bonuses of a node that already accrued at
// bonusTime before an interruption, nil otherwise.
func (s *Scheduler) replayParts(ctx context.Context, n *node.Node, bonusTime int64) (*bonus.Parts, error) {
	if n.NextBonusTime != bonusTime+s.interval {
		return nil, nil
	}
	rec, err := s.db.BonusRecordAt(ctx, n.Address, bonusTime)
	if err != nil || rec == nil {
		return nil, err
	}
	return &bonus.Parts{
		Locked:    rec.LockedBonus,
		Referrals: rec.ReferralsBonus,
		Signin:    rec.SigninBonus,
		Team:      rec.TeamBonus,
	}, nil
}

// finish closes the tick: expired nodes exit, the marker is reset and the
// timepoint moves one interval on, all in one transaction.
func (s *Scheduler) finish(ctx context.Context, bonusTime int64) error {
	var expired int64
	err := s.db.Update(ctx, func(w *nodedb.Writer) (err error) {
		if expired, err = w.MarkExpired(); err != nil {
			return err
		}
		if err := w.SetStatus(nodedb.StatusNodeBonus, 0); err != nil {
			return err
		}
		return w.SetStatus(nodedb.StatusNodeBonusTimepoint, bonusTime+s.interval)
	})
	if err != nil {
		return err
	}
	if !metrics.NoOp() {
		metricStatus().SetWithLabel(0, map[string]string{"name": nodedb.StatusNodeBonus})
		metricStatus().SetWithLabel(bonusTime+s.interval, map[string]string{"name": nodedb.StatusNodeBonusTimepoint})
	}
	if s.health != nil {
		s.health.LayerStarted(0)
	}
	logger.Debug("bonus tick finalised", "expired", expired, "next", bonusTime+s.interval)
	return nil
}
