// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodedb

const statusTableSchema = `CREATE TABLE IF NOT EXISTS status (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`

// money columns hold decimal strings
const nodeTableSchema = `CREATE TABLE IF NOT EXISTS node (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address TEXT NOT NULL UNIQUE,
	referrer TEXT NOT NULL,
	layer INTEGER NOT NULL,
	amount INTEGER NOT NULL,
	days INTEGER NOT NULL,
	starttime INTEGER NOT NULL,
	txid TEXT NOT NULL DEFAULT '',
	penalty TEXT NOT NULL DEFAULT '0',
	status INTEGER NOT NULL,
	nextbonustime INTEGER NOT NULL,
	signin INTEGER NOT NULL DEFAULT 0,
	confirmfailure TEXT NOT NULL DEFAULT '',
	performance INTEGER NOT NULL DEFAULT 0,
	referrals INTEGER NOT NULL DEFAULT 0,
	nodelevel INTEGER NOT NULL DEFAULT 0,
	teamlevelinfo TEXT NOT NULL DEFAULT '',
	burned INTEGER NOT NULL DEFAULT 0,
	smallareaburned INTEGER NOT NULL DEFAULT 0,
	bonusadvancetable TEXT NOT NULL DEFAULT '',
	areaadvancetable TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS nodeLayerIndex ON node(layer);
CREATE INDEX IF NOT EXISTS nodeStatusIndex ON node(status);`

const bonusTableSchema = `CREATE TABLE IF NOT EXISTS node_bonus (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address TEXT NOT NULL,
	lockedbonus TEXT NOT NULL,
	referralsbonus TEXT NOT NULL,
	signinbonus TEXT NOT NULL,
	teambonus TEXT NOT NULL,
	amount TEXT NOT NULL,
	total TEXT NOT NULL,
	remain TEXT NOT NULL,
	bonustime INTEGER NOT NULL,
	UNIQUE(address, bonustime)
);`

const updateTableSchema = `CREATE TABLE IF NOT EXISTS node_update (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	operation INTEGER NOT NULL,
	address TEXT NOT NULL,
	referrer TEXT NOT NULL DEFAULT '',
	amount INTEGER NOT NULL DEFAULT 0,
	days INTEGER NOT NULL DEFAULT 0,
	txid TEXT NOT NULL DEFAULT '',
	value TEXT NOT NULL DEFAULT '0',
	createtime INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS node_update_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	updateid INTEGER NOT NULL,
	operation INTEGER NOT NULL,
	address TEXT NOT NULL,
	referrer TEXT NOT NULL,
	amount INTEGER NOT NULL,
	days INTEGER NOT NULL,
	txid TEXT NOT NULL,
	value TEXT NOT NULL,
	createtime INTEGER NOT NULL,
	result TEXT NOT NULL,
	processtime INTEGER NOT NULL
);`

const ledgerTableSchema = `CREATE TABLE IF NOT EXISTS used_txid (
	txid TEXT PRIMARY KEY,
	address TEXT NOT NULL,
	createtime INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS node_withdraw (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address TEXT NOT NULL,
	amount TEXT NOT NULL,
	remain TEXT NOT NULL,
	bonusid INTEGER NOT NULL,
	createtime INTEGER NOT NULL
);`
