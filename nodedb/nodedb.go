// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nodedb stores the referral forest, the bonus ledger and the update
// queue in sqlite.
package nodedb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/node"
)

type NodeDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New creates or opens the node db at the given path.
func New(path string) (nodeDB *NodeDB, err error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nodeDB == nil {
			db.Close()
		}
	}()
	// one connection serializes writers and keeps an in-memory db alive
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	schema := strings.Join([]string{
		statusTableSchema,
		nodeTableSchema,
		bonusTableSchema,
		updateTableSchema,
		ledgerTableSchema,
	}, "\n")
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &NodeDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem creates a node db in ram.
func NewMem() (*NodeDB, error) {
	return New(":memory:")
}

// Close closes the node db.
func (db *NodeDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *NodeDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *NodeDB) DriverVersion() string {
	return db.driverVersion
}

// Update runs fn in one transaction. Nothing fn writes is visible unless it
// returns nil.
func (db *NodeDB) Update(ctx context.Context, fn func(w *Writer) error) (err error) {
	start := time.Now()
	defer func() { observeTx(start, err) }()

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Writer{ctx: ctx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (db *NodeDB) queryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	stmt, err := db.stmtCache.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryRowContext(ctx, args...), nil
}

func (db *NodeDB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	stmt, err := db.stmtCache.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

// GetStatus returns a global counter, or Absent when unset.
func (db *NodeDB) GetStatus(ctx context.Context, name string) (int64, error) {
	row, err := db.queryRow(ctx, "SELECT value FROM status WHERE name = ?", name)
	if err != nil {
		return 0, err
	}
	return scanStatus(row)
}

func scanStatus(row *sql.Row) (int64, error) {
	var v int64
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Absent, nil
		}
		return 0, err
	}
	return v, nil
}

// SetStatus writes a global counter outside any other transaction.
func (db *NodeDB) SetStatus(ctx context.Context, name string, value int64) error {
	return db.Update(ctx, func(w *Writer) error {
		return w.SetStatus(name, value)
	})
}

// MaxLayer returns the deepest layer, 0 for an empty forest.
func (db *NodeDB) MaxLayer(ctx context.Context) (int, error) {
	row, err := db.queryRow(ctx, "SELECT COALESCE(MAX(layer), 0) FROM node")
	if err != nil {
		return 0, err
	}
	var layer int
	if err := row.Scan(&layer); err != nil {
		return 0, err
	}
	return layer, nil
}

const nodeColumns = `id, address, referrer, layer, amount, days, starttime, txid, penalty,
	status, nextbonustime, signin, confirmfailure, performance, referrals, nodelevel,
	teamlevelinfo, burned, smallareaburned, bonusadvancetable, areaadvancetable`

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(s scanner) (*node.Node, error) {
	var (
		n                            node.Node
		teamLevel, bonusTab, areaTab string
	)
	if err := s.Scan(
		&n.ID,
		&n.Address,
		&n.Referrer,
		&n.Layer,
		&n.LockedAmount,
		&n.Days,
		&n.StartTime,
		&n.TxID,
		&n.Penalty,
		&n.Status,
		&n.NextBonusTime,
		&n.Signin,
		&n.ConfirmFailure,
		&n.Performance,
		&n.Referrals,
		&n.Level,
		&teamLevel,
		&n.Burned,
		&n.SmallAreaBurned,
		&bonusTab,
		&areaTab,
	); err != nil {
		return nil, err
	}
	var err error
	if n.TeamLevel, err = node.DecodeTeamLevel(teamLevel); err != nil {
		return nil, errors.WithMessagef(err, "node %s", n.Address)
	}
	if n.BonusTable, err = node.DecodeBonusTable(bonusTab); err != nil {
		return nil, errors.WithMessagef(err, "node %s", n.Address)
	}
	if n.AreaTable, err = node.DecodeAreaTable(areaTab); err != nil {
		return nil, errors.WithMessagef(err, "node %s", n.Address)
	}
	return &n, nil
}

func (db *NodeDB) queryNodes(ctx context.Context, query string, args ...any) ([]*node.Node, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*node.Node
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// NodesAtLayer loads all nodes of a layer.
func (db *NodeDB) NodesAtLayer(ctx context.Context, layer int) ([]*node.Node, error) {
	return db.queryNodes(ctx, "SELECT "+nodeColumns+" FROM node WHERE layer = ? ORDER BY id", layer)
}

// NodesByStatus loads all nodes holding status.
func (db *NodeDB) NodesByStatus(ctx context.Context, status int) ([]*node.Node, error) {
	return db.queryNodes(ctx, "SELECT "+nodeColumns+" FROM node WHERE status = ? ORDER BY id", status)
}

// NodeByAddress returns nil when the address is unknown.
func (db *NodeDB) NodeByAddress(ctx context.Context, address string) (*node.Node, error) {
	row, err := db.queryRow(ctx, "SELECT "+nodeColumns+" FROM node WHERE address = ?", address)
	if err != nil {
		return nil, err
	}
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return n, err
}

const recordColumns = `id, address, lockedbonus, referralsbonus, signinbonus, teambonus, amount, total, remain, bonustime`

func scanRecord(s scanner) (*bonus.Record, error) {
	var r bonus.Record
	if err := s.Scan(
		&r.ID,
		&r.Address,
		&r.LockedBonus,
		&r.ReferralsBonus,
		&r.SigninBonus,
		&r.TeamBonus,
		&r.Amount,
		&r.Total,
		&r.Remain,
		&r.BonusTime,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func optionalRecord(r *bonus.Record, err error) (*bonus.Record, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// LatestBonusRecord returns the newest record of an address, or nil.
func (db *NodeDB) LatestBonusRecord(ctx context.Context, address string) (*bonus.Record, error) {
	row, err := db.queryRow(ctx, "SELECT "+recordColumns+" FROM node_bonus WHERE address = ? ORDER BY bonustime DESC LIMIT 1", address)
	if err != nil {
		return nil, err
	}
	return optionalRecord(scanRecord(row))
}

// BonusRecordAt returns the record of an address for one tick, or nil.
func (db *NodeDB) BonusRecordAt(ctx context.Context, address string, bonusTime int64) (*bonus.Record, error) {
	row, err := db.queryRow(ctx, "SELECT "+recordColumns+" FROM node_bonus WHERE address = ? AND bonustime = ?", address, bonusTime)
	if err != nil {
		return nil, err
	}
	return optionalRecord(scanRecord(row))
}

// ForEachRecord walks the ledger ordered by address then bonus time. fn must
// not use db, the only connection is held until the walk ends.
func (db *NodeDB) ForEachRecord(ctx context.Context, fn func(*bonus.Record) error) error {
	rows, err := db.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM node_bonus ORDER BY address, bonustime")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountRecords returns the number of ledger entries.
func (db *NodeDB) CountRecords(ctx context.Context) (int64, error) {
	row, err := db.queryRow(ctx, "SELECT COUNT(*) FROM node_bonus")
	if err != nil {
		return 0, err
	}
	var n int64
	return n, row.Scan(&n)
}

const updateColumns = `id, operation, address, referrer, amount, days, txid, value, createtime`

func scanUpdate(s scanner) (*Update, error) {
	var u Update
	if err := s.Scan(&u.ID, &u.Op, &u.Address, &u.Referrer, &u.Amount, &u.Days, &u.TxID, &u.Value, &u.CreateTime); err != nil {
		return nil, err
	}
	return &u, nil
}

// PendingUpdates returns up to limit queued updates, oldest first.
func (db *NodeDB) PendingUpdates(ctx context.Context, limit int) ([]*Update, error) {
	rows, err := db.query(ctx, "SELECT "+updateColumns+" FROM node_update ORDER BY id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var updates []*Update
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// Enqueue appends an update to the pending queue.
func (db *NodeDB) Enqueue(ctx context.Context, u *Update) error {
	return db.Update(ctx, func(w *Writer) error {
		id, err := w.exec("INSERT INTO node_update(operation, address, referrer, amount, days, txid, value, createtime) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			u.Op, u.Address, u.Referrer, u.Amount, u.Days, u.TxID, u.Value, u.CreateTime)
		u.ID = id
		return err
	})
}

// History returns the processed updates of an address, oldest first.
func (db *NodeDB) History(ctx context.Context, address string) ([]*HistoryEntry, error) {
	rows, err := db.query(ctx, `SELECT updateid, operation, address, referrer, amount, days, txid, value, createtime, result, processtime
		FROM node_update_history WHERE address = ? ORDER BY id`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.Op, &h.Address, &h.Referrer, &h.Amount, &h.Days, &h.TxID, &h.Value, &h.CreateTime, &h.Result, &h.ProcessTime); err != nil {
			return nil, err
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}

// IsTxIDUsed tells whether a deposit txid has already confirmed a node.
func (db *NodeDB) IsTxIDUsed(ctx context.Context, txid string) (bool, error) {
	row, err := db.queryRow(ctx, "SELECT 1 FROM used_txid WHERE txid = ?", txid)
	if err != nil {
		return false, err
	}
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Withdrawals returns the payouts of an address, oldest first.
func (db *NodeDB) Withdrawals(ctx context.Context, address string) ([]*Withdrawal, error) {
	rows, err := db.query(ctx, "SELECT id, address, amount, remain, bonusid, createtime FROM node_withdraw WHERE address = ? ORDER BY id", address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Withdrawal
	for rows.Next() {
		var w Withdrawal
		if err := rows.Scan(&w.ID, &w.Address, &w.Amount, &w.Remain, &w.BonusID, &w.CreateTime); err != nil {
			return nil, err
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}
