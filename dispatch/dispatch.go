// Package dispatch implements the entry point for incoming note bytes
// (spec.md §4.I): identify which registered envelope format the leading
// version/protocol bytes name, route to the matching codec and
// decrypter, and filter key-publish payloads out of the user-visible
// stream. Grounded on the teacher's crypto/chain/registry.go
// RegisterProvider/lookup pattern, narrowed to this module's fixed pair
// of envelope kinds.
package dispatch

import (
	"errors"

	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/errs"
	"github.com/chainnote/e2e/identity"
	"github.com/chainnote/e2e/message"
	"github.com/chainnote/e2e/pskmessage"
	"github.com/chainnote/e2e/ratchet"
)

// ErrNotOurs reports that note bytes are not a registered envelope: the
// chain carries unrelated traffic and this is not a failure (spec.md
// §4.I). Callers scanning a multi-envelope stream should skip and
// continue rather than surface this to the user.
var ErrNotOurs = errors.New("dispatch: bytes are not a registered envelope")

// PSKResolver looks up the PSK ratchet material for a contact identified
// by the key-agreement public key carried (in cleartext) in a PSK
// envelope's header. ok is false if no contact is known for that key.
type PSKResolver interface {
	ResolvePSK(senderStaticPub [32]byte) (initialPSK [32]byte, receiveState *ratchet.ReceiveState, ok bool)
}

// Dispatched is the user-visible result of successfully routing and
// decrypting one envelope. Filtered is true for a key-publish payload,
// which callers must drop from any rendered conversation.
type Dispatched struct {
	Filtered       bool
	Text           string
	ReplyToID      string
	ReplyToPreview string
}

// Dispatcher routes incoming note bytes for one local identity.
type Dispatcher struct {
	self *identity.AgreementKeyPair
	psk  PSKResolver
}

// NewDispatcher builds a Dispatcher. psk may be nil if the caller never
// expects PSK envelopes; any PSK envelope then fails with ErrPskNotFound.
func NewDispatcher(self *identity.AgreementKeyPair, psk PSKResolver) *Dispatcher {
	return &Dispatcher{self: self, psk: psk}
}

// Dispatch parses and decrypts note according to its registered
// (version, protocol) pair. It returns ErrNotOurs, unwrapped, for bytes
// that don't match a registered pair; callers scanning chain history
// should treat that as "skip," not as an error to report.
func (d *Dispatcher) Dispatch(note []byte) (*Dispatched, error) {
	kind, ok := lookup(note)
	if !ok {
		return nil, ErrNotOurs
	}

	switch kind {
	case routeStandard:
		return d.dispatchStandard(note)
	case routePSK:
		return d.dispatchPSK(note)
	default:
		return nil, ErrNotOurs
	}
}

func (d *Dispatcher) dispatchStandard(note []byte) (*Dispatched, error) {
	env, err := envelope.ParseStandard(note)
	if err != nil {
		return nil, err
	}
	dec, err := message.Decrypt(d.self, env)
	if err != nil {
		return nil, err
	}
	return fromStandard(dec), nil
}

func (d *Dispatcher) dispatchPSK(note []byte) (*Dispatched, error) {
	env, err := envelope.ParsePSK(note)
	if err != nil {
		return nil, err
	}
	if d.psk == nil {
		return nil, errs.ErrPskNotFound
	}
	initialPSK, receiveState, ok := d.psk.ResolvePSK(env.SenderStaticPub)
	if !ok {
		return nil, errs.ErrPskNotFound
	}
	dec, err := pskmessage.Decrypt(d.self, env, initialPSK, receiveState)
	if err != nil {
		return nil, err
	}
	return fromDecoded(dec), nil
}

func fromStandard(dec *message.Decrypted) *Dispatched {
	return &Dispatched{
		Filtered:       dec.Filtered,
		Text:           dec.Text,
		ReplyToID:      dec.ReplyToID,
		ReplyToPreview: dec.ReplyToPreview,
	}
}

func fromDecoded(dec *message.Decoded) *Dispatched {
	return &Dispatched{
		Filtered:       dec.Filtered,
		Text:           dec.Text,
		ReplyToID:      dec.ReplyToID,
		ReplyToPreview: dec.ReplyToPreview,
	}
}
