// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package address validates the base58check account addresses nodes are keyed by.
package address

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"
)

// Version is the leading byte of a standard account address.
const Version byte = 0x17

// HashLength is the length of the script hash an address carries.
const HashLength = 20

var (
	ErrChecksum = errors.New("address: bad checksum")
	ErrFormat   = errors.New("address: bad format")
	ErrVersion  = errors.New("address: unexpected version")
)

// FromScriptHash encodes a script hash as an address.
func FromScriptHash(hash [HashLength]byte) string {
	return base58.CheckEncode(hash[:], Version)
}

// Validate checks the encoding, checksum and version of s.
func Validate(s string) error {
	payload, version, err := base58.CheckDecode(s)
	switch {
	case errors.Is(err, base58.ErrChecksum):
		return ErrChecksum
	case err != nil:
		return errors.Wrap(ErrFormat, err.Error())
	case version != Version:
		return errors.Wrapf(ErrVersion, "0x%02x", version)
	case len(payload) != HashLength:
		return errors.Wrapf(ErrFormat, "payload length %d", len(payload))
	}
	return nil
}
