// Package envelope implements the two wire formats that carry an
// encrypted message inside a blockchain transaction note: the standard
// ephemeral-ECDH envelope (protocol 0x01, version 0x04) and the PSK
// ratchet envelope (protocol 0x02, version 0x01). Byte layouts are
// normative (spec.md §3); this package only emits/parses them and
// enforces the length invariants described in spec.md §4.B. The fixed
// offset slicing follows the same from-scratch binary-struct idiom the
// teacher uses throughout core/ (no third-party binary-struct library
// fits a wire format this specific).
package envelope

import (
	"encoding/binary"

	"github.com/chainnote/e2e/errs"
)

const (
	// MaxNoteSize is the maximum size of a transaction note.
	MaxNoteSize = 1024

	pubKeySize = 32
	nonceSize  = 12
	sealedKeySize = 48

	// StandardVersion and StandardProtocol identify the standard envelope.
	StandardVersion  byte = 0x04
	StandardProtocol byte = 0x01

	// PSKVersion and PSKProtocol identify the PSK ratchet envelope.
	PSKVersion  byte = 0x01
	PSKProtocol byte = 0x02

	// StandardHeaderSize is the fixed header length of a standard envelope.
	StandardHeaderSize = 2 + pubKeySize + pubKeySize + nonceSize + sealedKeySize // 126

	// PSKHeaderSize is the fixed header length of a PSK envelope.
	PSKHeaderSize = 2 + 4 + pubKeySize + pubKeySize + nonceSize + sealedKeySize // 130
)

// StandardPayloadBound is the maximum plaintext length whose sealed
// payload (plaintext plus the 16-byte tag) keeps a standard envelope
// within MaxNoteSize.
const StandardPayloadBound = MaxNoteSize - StandardHeaderSize - aeadTagSize

// PSKPayloadBound is the maximum plaintext length whose sealed payload
// (plaintext plus the 16-byte tag) keeps a PSK envelope within
// MaxNoteSize.
const PSKPayloadBound = MaxNoteSize - PSKHeaderSize - aeadTagSize

const aeadTagSize = 16

// StandardEnvelope is the standard ephemeral-ECDH envelope (spec.md §3).
type StandardEnvelope struct {
	SenderStaticPub [32]byte
	EphemeralPub    [32]byte
	Nonce           [12]byte
	SealedSenderKey [48]byte // AEAD ciphertext+tag of the 32-byte recipient message key
	Payload         []byte   // AEAD ciphertext+tag of the plaintext
}

// Emit serializes the envelope to wire bytes in the exact field order and
// widths of spec.md §3.
func (e *StandardEnvelope) Emit() []byte {
	out := make([]byte, StandardHeaderSize+len(e.Payload))
	out[0] = StandardVersion
	out[1] = StandardProtocol
	copy(out[2:34], e.SenderStaticPub[:])
	copy(out[34:66], e.EphemeralPub[:])
	copy(out[66:78], e.Nonce[:])
	copy(out[78:126], e.SealedSenderKey[:])
	copy(out[126:], e.Payload)
	return out
}

// ParseStandard parses wire bytes produced by Emit.
func ParseStandard(b []byte) (*StandardEnvelope, error) {
	if len(b) < 2 {
		return nil, errs.ErrInvalidEnvelope
	}
	if b[1] != StandardProtocol {
		return nil, errs.Wrap(errs.ErrUnsupportedProtocol, protoByteString(b[1]))
	}
	if b[0] != StandardVersion {
		return nil, errs.Wrap(errs.ErrUnsupportedVersion, protoByteString(b[0]))
	}
	if len(b) < StandardHeaderSize+aeadTagSize {
		return nil, errs.ErrInvalidEnvelope
	}

	e := &StandardEnvelope{}
	copy(e.SenderStaticPub[:], b[2:34])
	copy(e.EphemeralPub[:], b[34:66])
	copy(e.Nonce[:], b[66:78])
	copy(e.SealedSenderKey[:], b[78:126])
	e.Payload = append([]byte(nil), b[126:]...)
	return e, nil
}

// PskEnvelope is the PSK ratchet envelope (spec.md §3).
type PskEnvelope struct {
	Counter         uint32
	SenderStaticPub [32]byte
	EphemeralPub    [32]byte
	Nonce           [12]byte
	SealedSenderKey [48]byte
	Payload         []byte
}

// Emit serializes the envelope to wire bytes; the counter is written in
// network (big-endian) byte order.
func (e *PskEnvelope) Emit() []byte {
	out := make([]byte, PSKHeaderSize+len(e.Payload))
	out[0] = PSKVersion
	out[1] = PSKProtocol
	binary.BigEndian.PutUint32(out[2:6], e.Counter)
	copy(out[6:38], e.SenderStaticPub[:])
	copy(out[38:70], e.EphemeralPub[:])
	copy(out[70:82], e.Nonce[:])
	copy(out[82:130], e.SealedSenderKey[:])
	copy(out[130:], e.Payload)
	return out
}

// ParsePSK parses wire bytes produced by Emit.
func ParsePSK(b []byte) (*PskEnvelope, error) {
	if len(b) < 2 {
		return nil, errs.ErrInvalidEnvelope
	}
	if b[1] != PSKProtocol {
		return nil, errs.Wrap(errs.ErrUnsupportedProtocol, protoByteString(b[1]))
	}
	if b[0] != PSKVersion {
		return nil, errs.Wrap(errs.ErrUnsupportedVersion, protoByteString(b[0]))
	}
	if len(b) < PSKHeaderSize+aeadTagSize {
		return nil, errs.ErrInvalidEnvelope
	}

	e := &PskEnvelope{}
	e.Counter = binary.BigEndian.Uint32(b[2:6])
	copy(e.SenderStaticPub[:], b[6:38])
	copy(e.EphemeralPub[:], b[38:70])
	copy(e.Nonce[:], b[70:82])
	copy(e.SealedSenderKey[:], b[82:130])
	e.Payload = append([]byte(nil), b[130:]...)
	return e, nil
}

func protoByteString(b byte) string {
	const hex = "0123456789abcdef"
	return "0x" + string([]byte{hex[b>>4], hex[b&0xF]})
}
