package pskmessage

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/chainnote/e2e/aeadcore"
	"github.com/chainnote/e2e/errs"
)

// Fixed salt/info labels for the PSK envelope's two HKDF derivations,
// distinct from message/kdf.go's labels so a key derived for one
// protocol can never be replayed against the other even if the
// underlying ECDH output collided.
var (
	msgSalt      = []byte("chainnote/psk/v1/msg-salt")
	msgInfoLabel = []byte("chainnote/psk/v1/msg")
	sndInfoLabel = []byte("chainnote/psk/v1/snd")
)

// deriveMessageKey derives the payload-sealing key from the concatenation
// of the ephemeral ECDH output and the counter-indexed PSK (spec.md
// §4.F): the channel stays secure if either secret alone remains secret,
// since an attacker needs both to reconstruct ikm.
func deriveMessageKey(ecdhOutput []byte, pskC [32]byte, senderStaticPub, recipientStaticPub [32]byte) ([aeadcore.KeySize]byte, error) {
	ikm := append(append([]byte{}, ecdhOutput...), pskC[:]...)
	info := append(append([]byte{}, msgInfoLabel...), senderStaticPub[:]...)
	info = append(info, recipientStaticPub[:]...)
	return hkdfExpand(ikm, msgSalt, info)
}

// deriveSndKey derives the key under which the sender's copy of the
// message key is re-sealed, mirroring message/kdf.go's deriveSndKey:
// salt is the ephemeral public key, binding this derivation to one
// specific envelope.
func deriveSndKey(ecdhOutput []byte, ephemeralPub [32]byte, senderStaticPub [32]byte) ([aeadcore.KeySize]byte, error) {
	info := append(append([]byte{}, sndInfoLabel...), senderStaticPub[:]...)
	return hkdfExpand(ecdhOutput, ephemeralPub[:], info)
}

func hkdfExpand(ikm, salt, info []byte) ([aeadcore.KeySize]byte, error) {
	var key [aeadcore.KeySize]byte
	r := hkdf.New(sha256.New, ikm, salt, info)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, errs.Wrap(errs.ErrKeyDerivationFailed, err.Error())
	}
	return key, nil
}
