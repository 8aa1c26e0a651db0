// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/node"
	"github.com/vechain/sea-bonus/nodedb"
	"github.com/vechain/sea-bonus/scheduler"
	"github.com/vechain/sea-bonus/test/datagen"
)

const interval = int64(86400)

func record(bonusTime int64, amount, total, remain string) *bonus.Record {
	return &bonus.Record{
		Address:        "A",
		LockedBonus:    decimal.RequireFromString(amount),
		ReferralsBonus: decimal.Zero,
		SigninBonus:    decimal.Zero,
		TeamBonus:      decimal.Zero,
		Amount:         decimal.RequireFromString(amount),
		Total:          decimal.RequireFromString(total),
		Remain:         decimal.RequireFromString(remain),
		BonusTime:      bonusTime,
	}
}

func TestVerifyRecord(t *testing.T) {
	tests := []struct {
		name    string
		prev    *bonus.Record
		r       *bonus.Record
		wantErr bool
	}{
		{"first", nil, record(100, "1.5", "1.5", "1.5"), false},
		{"continued", record(100, "1.5", "1.5", "1.5"), record(100+interval, "2", "3.5", "3.5"), false},
		{"after withdrawal", record(100, "1.5", "1.5", "0.5"), record(100+interval, "2", "3.5", "2.5"), false},
		{"new series", record(100, "1.5", "1.5", "1.5"), record(100+2*interval, "2", "2", "2"), false},
		{"broken total", record(100, "1.5", "1.5", "1.5"), record(100+interval, "2", "3", "3"), true},
		{"remain above cap", record(100, "1.5", "1.5", "0.5"), record(100+interval, "2", "3.5", "3.5"), true},
		{"negative remain", nil, record(100, "1", "1", "-1"), true},
		{"duplicated", record(100, "1", "1", "1"), record(100, "1", "1", "1"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyRecord(tt.prev, tt.r, interval)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyLedger(t *testing.T) {
	ctx := context.Background()
	db, err := nodedb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	start := time.Unix(1_700_000_000, 0)
	s := scheduler.New(db, bonus.DefaultConfig(), interval, 2)
	require.NoError(t, s.Prepare(ctx, scheduler.StartImmediate, start))

	root := datagen.RandAddress()
	require.NoError(t, db.Update(ctx, func(w *nodedb.Writer) error {
		for _, addr := range []string{root, datagen.RandAddress()} {
			if err := w.InsertNode(&node.Node{
				Address: addr, Referrer: addr, Layer: 1, LockedAmount: 1000, Days: 30,
				StartTime: start.Unix(), Status: node.StatusActive, NextBonusTime: start.Unix(),
			}); err != nil {
				return err
			}
		}
		return nil
	}))
	for i := range 3 {
		worked, err := s.Tick(ctx, start.Add(time.Duration(int64(i)*interval)*time.Second))
		require.NoError(t, err)
		require.True(t, worked)
	}
	assert.NoError(t, verifyLedger(ctx, db, interval))

	latest, err := db.LatestBonusRecord(ctx, root)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.NoError(t, db.Update(ctx, func(w *nodedb.Writer) error {
		return w.UpdateBonusRemain(latest.ID, latest.Total.Add(decimal.NewFromInt(1)))
	}))
	assert.Error(t, verifyLedger(ctx, db, interval))
}
