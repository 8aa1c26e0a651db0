// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/health"
	"github.com/vechain/sea-bonus/node"
	"github.com/vechain/sea-bonus/nodedb"
	"github.com/vechain/sea-bonus/scheduler"
	"github.com/vechain/sea-bonus/test/datagen"
	"github.com/vechain/sea-bonus/transferdb"
)

const (
	interval = int64(86400)
	asset    = "sea"
)

var (
	now     = time.Unix(1_700_000_000, 0)
	receive = datagen.RandAddress()
)

type fixture struct {
	db        *nodedb.NodeDB
	transfers *transferdb.TransferDB
	proc      *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := nodedb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	transfers, err := transferdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { transfers.Close() })

	require.NoError(t, db.SetStatus(context.Background(), nodedb.StatusNodeBonusTimepoint, now.Unix()))
	proc, err := New(db, transfers, bonus.DefaultConfig(), interval, Options{ReceiveAddress: receive, Asset: asset})
	require.NoError(t, err)
	return &fixture{db, transfers, proc}
}

func (f *fixture) apply(t *testing.T, u *nodedb.Update) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.db.Enqueue(ctx, u))
	result, err := f.proc.Apply(ctx, u, now)
	require.NoError(t, err)
	return result
}

func (f *fixture) node(t *testing.T, addr string) *node.Node {
	t.Helper()
	n, err := f.db.NodeByAddress(context.Background(), addr)
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func newUpdate(addr, referrer string, amount int64, days int) *nodedb.Update {
	return &nodedb.Update{Op: nodedb.OpNew, Address: addr, Referrer: referrer, Amount: amount, Days: days, TxID: datagen.RandTxID(), Value: decimal.Zero, CreateTime: now.Unix()}
}

// insertActive adds a confirmed node directly.
func (f *fixture) insertActive(t *testing.T, referrer string, layer int, status int) string {
	t.Helper()
	addr := datagen.RandAddress()
	if referrer == "" {
		referrer = addr
	}
	require.NoError(t, f.db.Update(context.Background(), func(w *nodedb.Writer) error {
		return w.InsertNode(&node.Node{
			Address: addr, Referrer: referrer, Layer: layer, LockedAmount: 1000, Days: 30,
			Status: status, NextBonusTime: now.Unix(), TxID: datagen.RandTxID(),
		})
	}))
	return addr
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	root := datagen.RandAddress()
	assert.Equal(t, ResultOK, f.apply(t, newUpdate(root, root, 10000, 90)))
	n := f.node(t, root)
	assert.Equal(t, 1, n.Layer)
	assert.Equal(t, node.StatusCreating, n.Status)
	assert.Equal(t, now.Unix()+2*interval, n.NextBonusTime)
	assert.Equal(t, "1100", n.Penalty.String())

	child := datagen.RandAddress()
	assert.Equal(t, ResultOK, f.apply(t, newUpdate(child, root, 1000, 30)))
	assert.Equal(t, 2, f.node(t, child).Layer)

	grandchild := datagen.RandAddress()
	assert.Equal(t, ResultOK, f.apply(t, newUpdate(grandchild, child, 1000, 30)))
	assert.Equal(t, 3, f.node(t, grandchild).Layer)

	pending, err := f.db.PendingUpdates(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	history, err := f.db.History(ctx, child)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ResultOK, history[0].Result)
	assert.Equal(t, now.Unix(), history[0].ProcessTime)
}

func TestRejections(t *testing.T) {
	f := newFixture(t)
	root := f.insertActive(t, "", 1, 0)
	creating := f.insertActive(t, root, 2, node.StatusCreating)

	missingTx := newUpdate(datagen.RandAddress(), root, 1000, 30)
	missingTx.TxID = ""

	tests := []struct {
		name   string
		update *nodedb.Update
		reason string
	}{
		{"invalid address", newUpdate("not-an-address", root, 1000, 30), ReasonInvalidAddress},
		{"invalid referrer", newUpdate(datagen.RandAddress(), "x", 1000, 30), ReasonInvalidAddress},
		{"invalid term", newUpdate(datagen.RandAddress(), root, 2000, 30), ReasonInvalidTerm},
		{"already exists", newUpdate(root, root, 1000, 30), ReasonAlreadyExists},
		{"referrer not found", newUpdate(datagen.RandAddress(), datagen.RandAddress(), 1000, 30), ReasonReferrerNotFound},
		{"missing txid", missingTx, ReasonMissingTxID},
		{"unknown op", &nodedb.Update{Op: 9, Address: root, CreateTime: 1}, ReasonUnknownOp},
		{"unlock unknown", &nodedb.Update{Op: nodedb.OpUnlock, Address: datagen.RandAddress()}, ReasonNotFound},
		{"unlock creating", &nodedb.Update{Op: nodedb.OpUnlock, Address: creating}, ReasonCannotUnlock},
		{"signin creating", &nodedb.Update{Op: nodedb.OpSignin, Address: creating}, ReasonCannotSignin},
		{"withdraw nothing", &nodedb.Update{Op: nodedb.OpWithdraw, Address: root, Value: decimal.NewFromInt(1)}, ReasonNoBonus},
		{"withdraw zero", &nodedb.Update{Op: nodedb.OpWithdraw, Address: root, Value: decimal.Zero}, ReasonInvalidAmount},
		{"reactivate unknown", &nodedb.Update{Op: nodedb.OpReactivate, Address: datagen.RandAddress()}, ReasonNotFound},
		{"reactivate active", &nodedb.Update{Op: nodedb.OpReactivate, Address: root, Amount: 1000, Days: 30, TxID: datagen.RandTxID()}, ReasonCannotReactivate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reason, f.apply(t, tt.update))
		})
	}

	pending, err := f.db.PendingUpdates(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUsedTxIDRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.insertActive(t, "", 1, 0)
	u := newUpdate(datagen.RandAddress(), root, 1000, 30)
	require.NoError(t, f.db.Update(ctx, func(w *nodedb.Writer) error {
		return w.RecordTxIDUsed(u.TxID, root, 1)
	}))
	assert.Equal(t, ReasonTxIDUsed, f.apply(t, u))
}

func TestStaleLayerCachePurged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.insertActive(t, "", 1, 0)
	f.proc.layers.Add(root, 4)

	u := newUpdate(datagen.RandAddress(), root, 1000, 30)
	require.NoError(t, f.db.Enqueue(ctx, u))
	_, err := f.proc.Apply(ctx, u, now)
	assert.ErrorIs(t, err, nodedb.ErrBadLayer)
	assert.Zero(t, f.proc.layers.Len())

	pending, err := f.db.PendingUpdates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	result, err := f.proc.Apply(ctx, pending[0], now)
	require.NoError(t, err)
	assert.Equal(t, ResultOK, result)
	assert.Equal(t, 2, f.node(t, u.Address).Layer)
}

func TestUnlockAndSignin(t *testing.T) {
	f := newFixture(t)
	addr := f.insertActive(t, "", 1, 3)

	assert.Equal(t, ResultOK, f.apply(t, &nodedb.Update{Op: nodedb.OpSignin, Address: addr}))
	assert.True(t, f.node(t, addr).Signin)
	assert.Equal(t, ReasonCannotSignin, f.apply(t, &nodedb.Update{Op: nodedb.OpSignin, Address: addr}))

	assert.Equal(t, ResultOK, f.apply(t, &nodedb.Update{Op: nodedb.OpUnlock, Address: addr}))
	assert.Equal(t, node.StatusUnlocking, f.node(t, addr).Status)
	assert.Equal(t, ReasonCannotUnlock, f.apply(t, &nodedb.Update{Op: nodedb.OpUnlock, Address: addr}))
}

func TestReactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addr := f.insertActive(t, "", 1, node.StatusUnlockConfirmed)

	u := newUpdate(addr, addr, 5000, 180)
	assert.Equal(t, ResultOK, f.apply(t, u))
	n := f.node(t, addr)
	assert.Equal(t, node.StatusCreating, n.Status)
	assert.Equal(t, int64(5000), n.LockedAmount)
	assert.Equal(t, 180, n.Days)
	assert.Equal(t, u.TxID, n.TxID)
	assert.Equal(t, "750", n.Penalty.String())
	assert.Equal(t, now.Unix()+2*interval, n.NextBonusTime)

	history, err := f.db.History(ctx, addr)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, nodedb.OpReactivate, history[0].Op)

	exited := f.insertActive(t, "", 1, node.StatusExitConfirmed)
	assert.Equal(t, ResultOK, f.apply(t, &nodedb.Update{Op: nodedb.OpReactivate, Address: exited, Amount: 1000, Days: 90, TxID: datagen.RandTxID()}))
	assert.Equal(t, node.StatusCreating, f.node(t, exited).Status)
}

func legs(txid, from string, in, out int64) []*transferdb.Leg {
	return []*transferdb.Leg{
		{TxID: txid, Index: 0, Address: from, Asset: asset, Value: decimal.NewFromInt(out), Direction: transferdb.Out},
		{TxID: txid, Index: 0, Address: receive, Asset: asset, Value: decimal.NewFromInt(in), Direction: transferdb.In},
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := datagen.RandAddress()
	u := newUpdate(root, root, 1000, 30)
	require.Equal(t, ResultOK, f.apply(t, u))

	// not indexed yet
	require.NoError(t, f.proc.Reconcile(ctx, now))
	assert.Equal(t, node.StatusCreating, f.node(t, root).Status)
	assert.Empty(t, f.node(t, root).ConfirmFailure)

	require.NoError(t, f.transfers.Insert(ctx, legs(u.TxID, root, 1000, 1000)...))
	require.NoError(t, f.proc.Reconcile(ctx, now))
	n := f.node(t, root)
	assert.Equal(t, node.StatusActive, n.Status)
	assert.Equal(t, now.Unix()+2*interval, n.NextBonusTime)
	used, err := f.db.IsTxIDUsed(ctx, u.TxID)
	require.NoError(t, err)
	assert.True(t, used)
}

func TestReconcileDebounce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	mismatch := func(txid, addr string) []*transferdb.Leg { return legs(txid, addr, 3000, 2999) }
	outOnly := func(txid, addr string) []*transferdb.Leg { return legs(txid, addr, 3000, 3000)[:1] }
	tests := []struct {
		name          string
		first, second func(txid, addr string) []*transferdb.Leg
		status        int
	}{
		{"same failure twice", mismatch, mismatch, node.StatusRejected},
		{"different failures", outOnly, mismatch, node.StatusCreating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := datagen.RandAddress()
			u := newUpdate(addr, addr, 3000, 90)
			require.Equal(t, ResultOK, f.apply(t, u))

			require.NoError(t, f.transfers.Insert(ctx, tt.first(u.TxID, addr)...))
			require.NoError(t, f.proc.Reconcile(ctx, now))
			n := f.node(t, addr)
			assert.Equal(t, node.StatusCreating, n.Status)
			assert.NotEmpty(t, n.ConfirmFailure)

			require.NoError(t, f.transfers.Insert(ctx, tt.second(u.TxID, addr)...))
			require.NoError(t, f.proc.Reconcile(ctx, now))
			assert.Equal(t, tt.status, f.node(t, addr).Status)
		})
	}
}

func TestReconcileReusedTxID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addr := datagen.RandAddress()
	u := newUpdate(addr, addr, 1000, 30)
	require.Equal(t, ResultOK, f.apply(t, u))
	require.NoError(t, f.transfers.Insert(ctx, legs(u.TxID, addr, 1000, 1000)...))
	require.NoError(t, f.db.Update(ctx, func(w *nodedb.Writer) error {
		return w.RecordTxIDUsed(u.TxID, datagen.RandAddress(), 1)
	}))

	require.NoError(t, f.proc.Reconcile(ctx, now))
	assert.Equal(t, ReasonTxIDUsed, f.node(t, addr).ConfirmFailure)
	require.NoError(t, f.proc.Reconcile(ctx, now))
	assert.Equal(t, node.StatusRejected, f.node(t, addr).Status)
}

func TestWithdrawal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addr := f.insertActive(t, "", 1, 0)

	s := scheduler.New(f.db, bonus.DefaultConfig(), interval, 1)
	require.NoError(t, s.Prepare(ctx, scheduler.StartImmediate, now))
	for i := int64(0); i < 2; i++ {
		worked, err := s.Tick(ctx, now.Add(time.Duration(i*interval)*time.Second))
		require.NoError(t, err)
		require.True(t, worked)
	}
	before, err := f.db.LatestBonusRecord(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, before)
	total := before.Total
	assert.Equal(t, "3.28", total.String())

	assert.Equal(t, ResultOK, f.apply(t, &nodedb.Update{Op: nodedb.OpWithdraw, Address: addr, Value: decimal.NewFromInt(1)}))
	after, err := f.db.LatestBonusRecord(ctx, addr)
	require.NoError(t, err)
	assert.True(t, after.Remain.Equal(total.Sub(decimal.NewFromInt(1))))
	assert.True(t, after.Total.Equal(total))

	// more than what remains
	assert.Equal(t, ResultOK, f.apply(t, &nodedb.Update{Op: nodedb.OpWithdraw, Address: addr, Value: decimal.NewFromInt(100)}))
	after, err = f.db.LatestBonusRecord(ctx, addr)
	require.NoError(t, err)
	assert.True(t, after.Remain.IsZero())

	ws, err := f.db.Withdrawals(ctx, addr)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "1", ws[0].Amount.String())
	assert.Equal(t, "2.28", ws[1].Amount.String())
	assert.True(t, ws[1].Remain.IsZero())
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.proc.opts.BatchSize = 1
	h := health.New(time.Minute)
	f.proc.WithHealth(h)

	root := datagen.RandAddress()
	first := newUpdate(root, root, 1000, 30)
	require.NoError(t, f.db.Enqueue(ctx, first))
	for i := 0; i < 3; i++ {
		require.NoError(t, f.db.Enqueue(ctx, newUpdate(datagen.RandAddress(), root, 1000, 30)))
	}
	require.NoError(t, f.transfers.Insert(ctx, legs(first.TxID, root, 1000, 1000)...))

	require.NoError(t, f.proc.Run(ctx, now))
	pending, err := f.db.PendingUpdates(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	creating, err := f.db.NodesByStatus(ctx, node.StatusCreating)
	require.NoError(t, err)
	assert.Len(t, creating, 4)

	// the deposit is confirmed on the next pass
	require.NoError(t, f.proc.Run(ctx, now))
	assert.Equal(t, node.StatusActive, f.node(t, root).Status)

	status, err := h.Status()
	require.NoError(t, err)
	assert.NotNil(t, status.LastLifecyclePass)
	assert.True(t, IsRejection(reject(ReasonNotFound)))
}
