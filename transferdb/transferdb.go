// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package transferdb indexes the transfer legs written by the chain crawler so
// deposits can be confirmed by txid.
package transferdb

import (
	"context"
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const legTableSchema = `CREATE TABLE IF NOT EXISTS transfer_leg (
	txid TEXT NOT NULL,
	legindex INTEGER NOT NULL,
	address TEXT NOT NULL,
	asset TEXT NOT NULL,
	value TEXT NOT NULL,
	direction INTEGER NOT NULL,
	blocktime INTEGER NOT NULL,
	PRIMARY KEY (txid, legindex, direction)
);
CREATE INDEX IF NOT EXISTS legAddressIndex ON transfer_leg(address);`

// TransferDB manages transfer legs.
type TransferDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens a transfer db.
func New(path string) (*TransferDB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(legTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	s, _, _ := sqlite3.Version()
	return &TransferDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory sqlite db.
func NewMem() (*TransferDB, error) {
	return New(":memory:")
}

// Insert stores legs, replacing any leg with the same key.
func (db *TransferDB) Insert(ctx context.Context, legs ...*Leg) error {
	if len(legs) == 0 {
		return nil
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, leg := range legs {
		if _, err = tx.ExecContext(ctx, "INSERT OR REPLACE INTO transfer_leg(txid, legindex, address, asset, value, direction, blocktime) VALUES (?, ?, ?, ?, ?, ?, ?)",
			leg.TxID,
			leg.Index,
			leg.Address,
			leg.Asset,
			leg.Value,
			leg.Direction,
			leg.BlockTime); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LegsByTxID returns the legs of a transaction ordered by index, empty when
// the crawler has not seen it yet.
func (db *TransferDB) LegsByTxID(ctx context.Context, txid string) ([]*Leg, error) {
	return db.query(ctx, "SELECT txid, legindex, address, asset, value, direction, blocktime FROM transfer_leg WHERE txid = ? ORDER BY legindex, direction", txid)
}

func (db *TransferDB) query(ctx context.Context, stmt string, args ...any) ([]*Leg, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var legs []*Leg
	for rows.Next() {
		var leg Leg
		if err := rows.Scan(
			&leg.TxID,
			&leg.Index,
			&leg.Address,
			&leg.Asset,
			&leg.Value,
			&leg.Direction,
			&leg.BlockTime,
		); err != nil {
			return nil, err
		}
		legs = append(legs, &leg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return legs, nil
}

// Path returns the db file path.
func (db *TransferDB) Path() string {
	return db.path
}

// Close closes sqlite.
func (db *TransferDB) Close() error {
	return db.db.Close()
}
