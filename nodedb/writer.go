// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodedb

import (
	"context"
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/node"
)

// ErrDuplicatedRecord is returned when a node already has a record for a tick.
var ErrDuplicatedRecord = errors.New("bonus record already exists")

// ErrBadLayer is returned when a node is inserted off its referrer's layer.
var ErrBadLayer = errors.New("layer does not follow referrer")

// Writer performs reads and writes inside one transaction.
type Writer struct {
	ctx context.Context
	tx  *sql.Tx
}

func (w *Writer) exec(query string, args ...any) (int64, error) {
	res, err := w.tx.ExecContext(w.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (w *Writer) execAffected(query string, args ...any) (int64, error) {
	res, err := w.tx.ExecContext(w.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetStatus reads a global counter, or Absent when unset.
func (w *Writer) GetStatus(name string) (int64, error) {
	var v int64
	err := w.tx.QueryRowContext(w.ctx, "SELECT value FROM status WHERE name = ?", name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return Absent, nil
	}
	return v, err
}

// SetStatus writes a global counter.
func (w *Writer) SetStatus(name string, value int64) error {
	_, err := w.exec("INSERT INTO status(name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value", name, value)
	return err
}

// NodeByAddress returns nil when the address is unknown.
func (w *Writer) NodeByAddress(address string) (*node.Node, error) {
	n, err := scanNode(w.tx.QueryRowContext(w.ctx, "SELECT "+nodeColumns+" FROM node WHERE address = ?", address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return n, err
}

// InsertNode adds a node and sets its ID.
// A self-referred node must be a root, any other node sits one layer below its
// referrer.
func (w *Writer) InsertNode(n *node.Node) error {
	if err := w.checkLayer(n); err != nil {
		return err
	}
	teamLevel, err := n.TeamLevel.Encode()
	if err != nil {
		return err
	}
	id, err := w.exec(`INSERT INTO node(address, referrer, layer, amount, days, starttime, txid, penalty,
		status, nextbonustime, signin, confirmfailure, performance, referrals, nodelevel,
		teamlevelinfo, burned, smallareaburned, bonusadvancetable, areaadvancetable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Address, n.Referrer, n.Layer, n.LockedAmount, n.Days, n.StartTime, n.TxID, n.Penalty,
		n.Status, n.NextBonusTime, n.Signin, n.ConfirmFailure, n.Performance, n.Referrals, n.Level,
		teamLevel, n.Burned, n.SmallAreaBurned, n.BonusTable.Encode(), n.AreaTable.Encode(),
	)
	if err != nil {
		return errors.Wrapf(err, "insert node %s", n.Address)
	}
	n.ID = id
	return nil
}

func (w *Writer) checkLayer(n *node.Node) error {
	if n.Referrer == n.Address {
		if !n.IsRoot() {
			return errors.Wrapf(ErrBadLayer, "self-referred node %s at layer %d", n.Address, n.Layer)
		}
		return nil
	}
	ref, err := w.NodeByAddress(n.Referrer)
	if err != nil {
		return err
	}
	if ref == nil {
		return errors.Wrapf(ErrBadLayer, "node %s: referrer %s not found", n.Address, n.Referrer)
	}
	if n.Layer != ref.Layer+1 {
		return errors.Wrapf(ErrBadLayer, "node %s at layer %d, referrer at %d", n.Address, n.Layer, ref.Layer)
	}
	return nil
}

// UpdateNode writes the tick results and lifecycle fields of a node by id.
func (w *Writer) UpdateNode(n *node.Node) error {
	teamLevel, err := n.TeamLevel.Encode()
	if err != nil {
		return err
	}
	affected, err := w.execAffected(`UPDATE node SET status = ?, nextbonustime = ?, signin = ?,
		performance = ?, referrals = ?, nodelevel = ?, teamlevelinfo = ?, burned = ?, smallareaburned = ?,
		bonusadvancetable = ?, areaadvancetable = ? WHERE id = ?`,
		n.Status, n.NextBonusTime, n.Signin,
		n.Performance, n.Referrals, n.Level, teamLevel, n.Burned, n.SmallAreaBurned,
		n.BonusTable.Encode(), n.AreaTable.Encode(), n.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "update node %d", n.ID)
	}
	if affected == 0 {
		return errors.Errorf("update node %d: not found", n.ID)
	}
	return nil
}

// UpdateNodeByAddress rewrites the deposit and lifecycle fields of a node.
func (w *Writer) UpdateNodeByAddress(n *node.Node) error {
	affected, err := w.execAffected(`UPDATE node SET amount = ?, days = ?, starttime = ?, txid = ?, penalty = ?,
		status = ?, nextbonustime = ?, signin = ?, confirmfailure = ? WHERE address = ?`,
		n.LockedAmount, n.Days, n.StartTime, n.TxID, n.Penalty,
		n.Status, n.NextBonusTime, n.Signin, n.ConfirmFailure, n.Address,
	)
	if err != nil {
		return errors.Wrapf(err, "update node %s", n.Address)
	}
	if affected == 0 {
		return errors.Errorf("update node %s: not found", n.Address)
	}
	return nil
}

// MarkExpired moves every node that served its full term to exited.
func (w *Writer) MarkExpired() (int64, error) {
	return w.execAffected("UPDATE node SET status = ? WHERE status >= 0 AND status = days", node.StatusExited)
}

// LatestBonusRecord returns the newest record of an address, or nil.
func (w *Writer) LatestBonusRecord(address string) (*bonus.Record, error) {
	return optionalRecord(scanRecord(w.tx.QueryRowContext(w.ctx,
		"SELECT "+recordColumns+" FROM node_bonus WHERE address = ? ORDER BY bonustime DESC LIMIT 1", address)))
}

// AppendBonusRecord inserts a record and sets its ID.
func (w *Writer) AppendBonusRecord(r *bonus.Record) error {
	id, err := w.exec(`INSERT INTO node_bonus(address, lockedbonus, referralsbonus, signinbonus, teambonus, amount, total, remain, bonustime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Address, r.LockedBonus, r.ReferralsBonus, r.SigninBonus, r.TeamBonus, r.Amount, r.Total, r.Remain, r.BonusTime)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return errors.Wrapf(ErrDuplicatedRecord, "%s at %d", r.Address, r.BonusTime)
		}
		return err
	}
	r.ID = id
	return nil
}

// UpdateBonusRemain sets the remain of a record.
func (w *Writer) UpdateBonusRemain(id int64, remain decimal.Decimal) error {
	_, err := w.execAffected("UPDATE node_bonus SET remain = ? WHERE id = ?", remain, id)
	return err
}

// InsertWithdrawal appends a payout.
func (w *Writer) InsertWithdrawal(wd *Withdrawal) error {
	id, err := w.exec("INSERT INTO node_withdraw(address, amount, remain, bonusid, createtime) VALUES (?, ?, ?, ?, ?)",
		wd.Address, wd.Amount, wd.Remain, wd.BonusID, wd.CreateTime)
	wd.ID = id
	return err
}

// DeletePendingUpdate removes an update from the queue.
func (w *Writer) DeletePendingUpdate(id int64) error {
	_, err := w.execAffected("DELETE FROM node_update WHERE id = ?", id)
	return err
}

// AppendUpdateHistory records the outcome of a processed update.
func (w *Writer) AppendUpdateHistory(u *Update, result string, processTime int64) error {
	_, err := w.exec(`INSERT INTO node_update_history(updateid, operation, address, referrer, amount, days, txid, value, createtime, result, processtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Op, u.Address, u.Referrer, u.Amount, u.Days, u.TxID, u.Value, u.CreateTime, result, processTime)
	return err
}

// IsTxIDUsed tells whether a deposit txid has already confirmed a node.
func (w *Writer) IsTxIDUsed(txid string) (bool, error) {
	var one int
	err := w.tx.QueryRowContext(w.ctx, "SELECT 1 FROM used_txid WHERE txid = ?", txid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// RecordTxIDUsed marks a deposit txid as consumed.
func (w *Writer) RecordTxIDUsed(txid, address string, now int64) error {
	_, err := w.exec("INSERT INTO used_txid(txid, address, createtime) VALUES (?, ?, ?)", txid, address, now)
	return err
}
