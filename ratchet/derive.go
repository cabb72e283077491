// Package ratchet implements the PSK ratchet: counter-indexed pre-shared
// key derivation plus the send/receive counter state machine that backs
// the PSK encryptor/decryptor (spec.md §4.E). Grounded on the teacher's
// session/nonce.go replay-window idiom (TTL-pruned seen-set) generalized
// from time-based expiry to the spec's counter-window pruning, and
// crypto/rotation/rotator.go's in-flight-guard pattern, which informs the
// keyed-mutex discipline pskmanager layers on top of this package.
package ratchet

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/chainnote/e2e/errs"
)

// pskInfo is the fixed HKDF info string for every counter-indexed PSK
// derivation (spec.md §4.E).
var pskInfo = []byte("PSK ratchet v1")

// DerivePSK computes PSK_c = KDF(initialPSK, salt=counter_bytes_be(c),
// info="PSK ratchet v1"). Pure function of (initialPSK, c): identical
// inputs always yield identical output on either side of the ratchet.
func DerivePSK(initialPSK [32]byte, counter uint32) ([32]byte, error) {
	var salt [4]byte
	binary.BigEndian.PutUint32(salt[:], counter)

	var out [32]byte
	r := hkdf.New(sha256.New, initialPSK[:], salt[:], pskInfo)
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return out, errs.Wrap(errs.ErrKeyDerivationFailed, err.Error())
	}
	return out, nil
}
