// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lifecycle consumes the pending update queue and confirms new
// deposits against the transfer index. It runs between bonus ticks, never
// during one.
package lifecycle

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vechain/sea-bonus/address"
	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/cache"
	"github.com/vechain/sea-bonus/health"
	"github.com/vechain/sea-bonus/log"
	"github.com/vechain/sea-bonus/metrics"
	"github.com/vechain/sea-bonus/node"
	"github.com/vechain/sea-bonus/nodedb"
	"github.com/vechain/sea-bonus/transferdb"
)

var logger = log.WithContext("pkg", "lifecycle")

var errReferrerMissing = errors.New("referrer missing")

// Options configures a Processor.
type Options struct {
	// ReceiveAddress is where deposits have to arrive.
	ReceiveAddress string
	// Asset is the id of the deposited asset.
	Asset string
	// BatchSize bounds the updates read per query.
	BatchSize int
	// LayerCacheSize bounds the cached address to layer entries.
	LayerCacheSize int
}

// Processor applies node mutations.
type Processor struct {
	db        *nodedb.NodeDB
	transfers *transferdb.TransferDB
	cfg       *bonus.Config
	interval  int64
	opts      Options
	layers    *cache.LRU[string, int]
	health    *health.Health
}

// New creates a processor. interval is the bonus tick interval in seconds.
func New(db *nodedb.NodeDB, transfers *transferdb.TransferDB, cfg *bonus.Config, interval int64, opts Options) (*Processor, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.LayerCacheSize <= 0 {
		opts.LayerCacheSize = 4096
	}
	layers, err := cache.NewLRU[string, int](opts.LayerCacheSize)
	if err != nil {
		return nil, err
	}
	return &Processor{
		db:        db,
		transfers: transfers,
		cfg:       cfg,
		interval:  interval,
		opts:      opts,
		layers:    layers,
	}, nil
}

// WithHealth reports finished passes to h.
func (p *Processor) WithHealth(h *health.Health) *Processor {
	p.health = h
	return p
}

// Run confirms pending deposits then drains the update queue.
func (p *Processor) Run(ctx context.Context, now time.Time) error {
	start := time.Now()
	if err := p.Reconcile(ctx, now); err != nil {
		return errors.WithMessage(err, "reconcile")
	}

	applied := 0
	for {
		updates, err := p.db.PendingUpdates(ctx, p.opts.BatchSize)
		if err != nil {
			return err
		}
		for _, u := range updates {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := p.Apply(ctx, u, now); err != nil {
				return errors.WithMessagef(err, "apply update %d", u.ID)
			}
			applied++
		}
		if len(updates) < p.opts.BatchSize {
			break
		}
	}

	if applied > 0 {
		logger.Debug("update queue drained", "applied", applied, "elapsed", common.PrettyDuration(time.Since(start)))
	}
	if changed, hit, miss := p.layers.Stats().Stats(); changed {
		logger.Debug("layer cache stats", "hit", hit, "miss", miss, "rate", cache.HitRate(hit, miss))
	}
	if !metrics.NoOp() {
		metricPassDuration().Observe(time.Since(start).Milliseconds())
	}
	if p.health != nil {
		p.health.LifecycleFinished()
	}
	return nil
}

// Apply processes one pending update. Whether it succeeds or is rejected, the
// update leaves the queue and enters the history in the same transaction. A
// returned error means nothing was written and the update stays queued.
func (p *Processor) Apply(ctx context.Context, u *nodedb.Update, now time.Time) (result string, err error) {
	var inserted *node.Node
	err = p.db.Update(ctx, func(w *nodedb.Writer) error {
		inserted = nil
		n, err := p.apply(w, u, now)
		result = ResultOK
		var r *Rejection
		switch {
		case errors.As(err, &r):
			result = r.Reason
		case err != nil:
			return err
		default:
			inserted = n
		}
		if err := w.DeletePendingUpdate(u.ID); err != nil {
			return err
		}
		return w.AppendUpdateHistory(u, result, now.Unix())
	})
	if err != nil {
		if errors.Is(err, nodedb.ErrBadLayer) {
			// cached referrer layers can no longer be trusted
			p.layers.Purge()
		}
		return "", err
	}
	if inserted != nil {
		p.layers.Add(inserted.Address, inserted.Layer)
	}

	if result == ResultOK {
		logger.Debug("update applied", "id", u.ID, "op", u.Op, "address", u.Address)
	} else {
		logger.Info("update rejected", "id", u.ID, "op", u.Op, "address", u.Address, "reason", result)
	}
	if !metrics.NoOp() {
		metricUpdates().AddWithLabel(1, map[string]string{"op": u.Op.String(), "result": result})
	}
	return result, nil
}

// apply dispatches an update. It returns the node it created, if any.
func (p *Processor) apply(w *nodedb.Writer, u *nodedb.Update, now time.Time) (*node.Node, error) {
	switch u.Op {
	case nodedb.OpNew:
		return p.create(w, u, now)
	case nodedb.OpUnlock:
		return nil, p.unlock(w, u)
	case nodedb.OpWithdraw:
		return nil, p.withdraw(w, u, now)
	case nodedb.OpSignin:
		return nil, p.signin(w, u)
	case nodedb.OpReactivate:
		n, err := w.NodeByAddress(u.Address)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, reject(ReasonNotFound)
		}
		return nil, p.reactivate(w, n, u, now)
	default:
		return nil, reject(ReasonUnknownOp)
	}
}

func (p *Processor) create(w *nodedb.Writer, u *nodedb.Update, now time.Time) (*node.Node, error) {
	if address.Validate(u.Address) != nil || address.Validate(u.Referrer) != nil {
		return nil, reject(ReasonInvalidAddress)
	}
	existing, err := w.NodeByAddress(u.Address)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if u.Address == u.Referrer && canReactivate(existing.Status) {
			u.Op = nodedb.OpReactivate
			return nil, p.reactivate(w, existing, u, now)
		}
		return nil, reject(ReasonAlreadyExists)
	}

	penalty, err := p.checkDeposit(w, u)
	if err != nil {
		return nil, err
	}

	layer := 1
	if u.Referrer != u.Address {
		parent, err := p.layers.GetOrLoad(u.Referrer, func(addr string) (int, error) {
			ref, err := w.NodeByAddress(addr)
			if err != nil {
				return 0, err
			}
			if ref == nil {
				return 0, errReferrerMissing
			}
			return ref.Layer, nil
		})
		if errors.Is(err, errReferrerMissing) {
			return nil, reject(ReasonReferrerNotFound)
		}
		if err != nil {
			return nil, err
		}
		layer = parent + 1
	}

	timepoint, err := timepoint(w)
	if err != nil {
		return nil, err
	}
	n := &node.Node{
		Address:       u.Address,
		Referrer:      u.Referrer,
		Layer:         layer,
		LockedAmount:  u.Amount,
		Days:          u.Days,
		StartTime:     now.Unix(),
		TxID:          u.TxID,
		Penalty:       penalty,
		Status:        node.StatusCreating,
		NextBonusTime: timepoint + 2*p.interval,
	}
	if err := w.InsertNode(n); err != nil {
		return nil, err
	}
	return n, nil
}

// checkDeposit validates the term and txid of a deposit and returns its
// early-unlock penalty.
func (p *Processor) checkDeposit(w *nodedb.Writer, u *nodedb.Update) (penalty decimal.Decimal, err error) {
	if !(bonus.Term{Amount: u.Amount, Days: u.Days}).Valid() {
		return penalty, reject(ReasonInvalidTerm)
	}
	if u.TxID == "" {
		return penalty, reject(ReasonMissingTxID)
	}
	used, err := w.IsTxIDUsed(u.TxID)
	if err != nil {
		return penalty, err
	}
	if used {
		return penalty, reject(ReasonTxIDUsed)
	}
	return p.cfg.Penalty(u.Amount, u.Days)
}

func canReactivate(status int) bool {
	return node.IsTerminal(status) || status == node.StatusRejected
}

func (p *Processor) reactivate(w *nodedb.Writer, n *node.Node, u *nodedb.Update, now time.Time) error {
	if !canReactivate(n.Status) {
		return reject(ReasonCannotReactivate)
	}
	penalty, err := p.checkDeposit(w, u)
	if err != nil {
		return err
	}
	timepoint, err := timepoint(w)
	if err != nil {
		return err
	}
	n.LockedAmount = u.Amount
	n.Days = u.Days
	n.TxID = u.TxID
	n.Penalty = penalty
	n.StartTime = now.Unix()
	n.Status = node.StatusCreating
	n.NextBonusTime = timepoint + 2*p.interval
	n.Signin = false
	n.ConfirmFailure = ""
	return w.UpdateNodeByAddress(n)
}

func (p *Processor) unlock(w *nodedb.Writer, u *nodedb.Update) error {
	n, err := w.NodeByAddress(u.Address)
	if err != nil {
		return err
	}
	if n == nil {
		return reject(ReasonNotFound)
	}
	if !n.CanUnlock() {
		return reject(ReasonCannotUnlock)
	}
	n.Status = node.StatusUnlocking
	return w.UpdateNodeByAddress(n)
}

func (p *Processor) signin(w *nodedb.Writer, u *nodedb.Update) error {
	n, err := w.NodeByAddress(u.Address)
	if err != nil {
		return err
	}
	if n == nil {
		return reject(ReasonNotFound)
	}
	if !n.CanSignin() {
		return reject(ReasonCannotSignin)
	}
	n.Signin = true
	return w.UpdateNodeByAddress(n)
}

// withdraw takes the requested value from the latest record, never more than
// what remains.
func (p *Processor) withdraw(w *nodedb.Writer, u *nodedb.Update, now time.Time) error {
	if !u.Value.IsPositive() {
		return reject(ReasonInvalidAmount)
	}
	rec, err := w.LatestBonusRecord(u.Address)
	if err != nil {
		return err
	}
	if rec == nil {
		return reject(ReasonNoBonus)
	}
	remain := bonus.Withdraw(rec.Remain, u.Value)
	if err := w.UpdateBonusRemain(rec.ID, remain); err != nil {
		return err
	}
	return w.InsertWithdrawal(&nodedb.Withdrawal{
		Address:    u.Address,
		Amount:     rec.Remain.Sub(remain),
		Remain:     remain,
		BonusID:    rec.ID,
		CreateTime: now.Unix(),
	})
}

func timepoint(w *nodedb.Writer) (int64, error) {
	tp, err := w.GetStatus(nodedb.StatusNodeBonusTimepoint)
	if err != nil {
		return 0, err
	}
	if tp == nodedb.Absent {
		return 0, ErrNotPrepared
	}
	return tp, nil
}
