// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vechain/sea-bonus/metrics"
	"github.com/vechain/sea-bonus/node"
	"github.com/vechain/sea-bonus/nodedb"
	"github.com/vechain/sea-bonus/transferdb"
)

// checkLegs classifies the legs of a deposit. An empty kind means both the
// incoming and the outgoing leg match the locked amount.
func (p *Processor) checkLegs(n *node.Node, legs []*transferdb.Leg) string {
	var in, out *transferdb.Leg
	for _, leg := range legs {
		if leg.Asset != p.opts.Asset {
			continue
		}
		switch {
		case leg.Direction == transferdb.In && leg.Address == p.opts.ReceiveAddress:
			in = leg
		case leg.Direction == transferdb.Out && leg.Address == n.Address:
			out = leg
		}
	}
	if in == nil || out == nil {
		return ReasonLegMissing
	}
	amount := decimal.NewFromInt(n.LockedAmount)
	if !in.Value.Equal(amount) || !out.Value.Equal(amount) {
		return ReasonAmountMismatch
	}
	return ""
}

// Reconcile looks up the deposit of every node awaiting confirmation. A node
// is confirmed once its legs match; the same failure seen twice in a row
// rejects it, a deposit not indexed yet leaves it waiting.
func (p *Processor) Reconcile(ctx context.Context, now time.Time) error {
	pending, err := p.db.NodesByStatus(ctx, node.StatusCreating)
	if err != nil {
		return err
	}
	for _, n := range pending {
		legs, err := p.transfers.LegsByTxID(ctx, n.TxID)
		if err != nil {
			return err
		}
		if len(legs) == 0 {
			continue
		}
		result, err := p.confirm(ctx, n.Address, legs, now)
		if err != nil {
			return err
		}
		if !metrics.NoOp() {
			metricConfirmations().AddWithLabel(1, map[string]string{"result": result})
		}
	}
	return nil
}

func (p *Processor) confirm(ctx context.Context, addr string, legs []*transferdb.Leg, now time.Time) (result string, err error) {
	err = p.db.Update(ctx, func(w *nodedb.Writer) error {
		n, err := w.NodeByAddress(addr)
		if err != nil {
			return err
		}
		if n == nil || n.Status != node.StatusCreating {
			result = "skipped"
			return nil
		}

		kind := p.checkLegs(n, legs)
		if kind == "" {
			used, err := w.IsTxIDUsed(n.TxID)
			if err != nil {
				return err
			}
			if used {
				kind = ReasonTxIDUsed
			}
		}

		switch {
		case kind == "":
			tp, err := timepoint(w)
			if err != nil {
				return err
			}
			if n.NextBonusTime <= tp {
				n.NextBonusTime = tp + p.interval
			}
			n.Status = node.StatusActive
			n.ConfirmFailure = ""
			if err := w.RecordTxIDUsed(n.TxID, n.Address, now.Unix()); err != nil {
				return err
			}
			result = "confirmed"
		case n.ConfirmFailure == kind:
			n.Status = node.StatusRejected
			result = "rejected"
		default:
			n.ConfirmFailure = kind
			result = "failed"
		}
		return w.UpdateNodeByAddress(n)
	})
	if err != nil {
		return "", err
	}
	if result != "skipped" {
		logger.Info("deposit checked", "address", addr, "result", result)
	}
	return result, nil
}
