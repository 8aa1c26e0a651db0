// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/shopspring/decimal"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/nodedb"
)

// verifyLedger walks every bonus record in (address, bonus time) order.
func verifyLedger(ctx context.Context, db *nodedb.NodeDB, interval int64) error {
	fmt.Println(">> Verifying bonus ledger <<")
	count, err := db.CountRecords(ctx)
	if err != nil {
		return err
	}
	pb := pb.New64(count).
		Set64(0).
		SetMaxWidth(90).
		Start()
	defer func() { pb.NotPrint = true }()

	var prev *bonus.Record
	err = db.ForEachRecord(ctx, func(r *bonus.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if prev != nil && prev.Address != r.Address {
			prev = nil
		}
		if err := verifyRecord(prev, r, interval); err != nil {
			return err
		}
		prev = r
		pb.Increment()
		return nil
	})
	if err != nil {
		return err
	}
	pb.Finish()
	return nil
}

// verifyRecord checks r against the previous record of the same address.
func verifyRecord(prev, r *bonus.Record, interval int64) error {
	if prev != nil && prev.BonusTime == r.BonusTime {
		return errors.Errorf("duplicated record: address %v, bonus time %v", r.Address, r.BonusTime)
	}

	expected := *r
	expected.Amount = bonus.Sum(r.LockedBonus, r.ReferralsBonus, r.SigninBonus, r.TeamBonus)
	expected.Total = r.Amount
	remainCap := r.Amount
	if prev != nil && prev.BonusTime+interval == r.BonusTime {
		expected.Total = prev.Total.Add(r.Amount)
		// withdrawals only ever lower remain
		remainCap = prev.Remain.Add(r.Amount)
	}
	remainCap = decimal.Min(remainCap, r.Total)
	if r.Remain.GreaterThan(remainCap) {
		expected.Remain = remainCap
	}
	if r.Remain.IsNegative() {
		expected.Remain = decimal.Zero
	}

	if !equalRecords(&expected, r) {
		fmt.Println("\nDiff bonus record")
		fmt.Println(jsonDiff(&expected, r))
		return errors.Errorf("incorrect record: address %v, bonus time %v", r.Address, r.BonusTime)
	}
	return nil
}

func equalRecords(a, b *bonus.Record) bool {
	return a.Amount.Equal(b.Amount) &&
		a.Total.Equal(b.Total) &&
		a.Remain.Equal(b.Remain)
}

func jsonDiff(expected, actual any) string {
	e, _ := json.MarshalIndent(expected, "", "  ")
	a, _ := json.MarshalIndent(actual, "", "  ")
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(e)),
		B:        difflib.SplitLines(string(a)),
		FromFile: "Expected",
		FromDate: "",
		ToFile:   "Actual",
		ToDate:   "",
		Context:  1,
	})
	return diff
}
