// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/vechain/sea-bonus/address"
)

// RandAddress returns a random valid account address.
func RandAddress() string {
	var hash [address.HashLength]byte
	rand.Read(hash[:])
	return address.FromScriptHash(hash)
}

// RandTxID returns a random 32 byte transaction id in hex.
func RandTxID() string {
	var b [32]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
