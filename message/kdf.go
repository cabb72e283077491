package message

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/chainnote/e2e/aeadcore"
	"github.com/chainnote/e2e/errs"
)

// Fixed salt and info labels for the standard envelope's two HKDF
// derivations (spec.md §4.D steps 2-3). Grounded on the teacher's
// crypto/keys/x25519.go deriveHKDFKey, generalized from a single
// transcript-as-salt call into the spec's two distinct salt/info
// bindings — hkdf is kept as a teacher dependency rather than switching
// to cloudflare/circl/hpke, since HPKE's RFC 9180 fixed labels cannot
// carry these exact custom strings (DESIGN.md).
var (
	rcvSalt      = []byte("chainnote/standard/v1/rcv-salt")
	sndInfoLabel = []byte("chainnote/standard/v1/snd")
	rcvInfoLabel = []byte("chainnote/standard/v1/rcv")
)

// deriveRcvKey derives K_rcv, the key under which the message payload is
// sealed. ikm is the ECDH output between the ephemeral key and the
// recipient's static key. Binding both static public keys into info means
// swapping sender/recipient identity yields a different key.
func deriveRcvKey(ikm []byte, senderStaticPub, recipientStaticPub [32]byte) ([aeadcore.KeySize]byte, error) {
	info := append(append([]byte{}, rcvInfoLabel...), senderStaticPub[:]...)
	info = append(info, recipientStaticPub[:]...)
	return hkdfExpand(ikm, rcvSalt, info)
}

// deriveSndKey derives K_snd, the key under which K_rcv is re-sealed so
// the sender can also read their own sent message. ikm is the ECDH
// output between the ephemeral key and the sender's own static key; salt
// is the ephemeral public key, so K_snd is bound to this specific
// envelope even when sender and recipient are the same identity.
func deriveSndKey(ikm []byte, ephemeralPub [32]byte, senderStaticPub [32]byte) ([aeadcore.KeySize]byte, error) {
	info := append(append([]byte{}, sndInfoLabel...), senderStaticPub[:]...)
	return hkdfExpand(ikm, ephemeralPub[:], info)
}

func hkdfExpand(ikm, salt, info []byte) ([aeadcore.KeySize]byte, error) {
	var key [aeadcore.KeySize]byte
	r := hkdf.New(sha256.New, ikm, salt, info)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, errs.Wrap(errs.ErrKeyDerivationFailed, err.Error())
	}
	return key, nil
}
