package chainclient

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/chainnote/e2e/errs"
)

// ChainFamily identifies the address encoding a peer's chain uses.
// Grounded on the teacher's crypto/chain/types.go ChainType enum,
// narrowed to the address-validation concern this module needs (no
// transaction signing — that stays behind ChainClient).
type ChainFamily string

const (
	FamilyEthereum  ChainFamily = "ethereum"
	FamilySolana    ChainFamily = "solana"
	FamilySecp256k1 ChainFamily = "secp256k1" // generic secp256k1-pubkey-derived address (Bitcoin/Cosmos-family)
)

// ValidateAddress checks that address is well-formed for family, per the
// conventions of the teacher's per-chain providers
// (crypto/chain/ethereum/provider.go, did/solana's base58 handling).
func ValidateAddress(family ChainFamily, address string) error {
	switch family {
	case FamilyEthereum:
		if !ethcommon.IsHexAddress(address) {
			return errs.Wrap(errs.ErrInvalidPublicKey, "not a valid ethereum hex address")
		}
		return nil
	case FamilySolana:
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return errs.Wrap(errs.ErrInvalidPublicKey, "not a valid solana base58 address")
		}
		return nil
	case FamilySecp256k1:
		raw, err := base58.Decode(address)
		if err != nil {
			return errs.Wrap(errs.ErrInvalidPublicKey, "not valid base58")
		}
		if len(raw) != 33 && len(raw) != 65 {
			return errs.Wrap(errs.ErrInvalidPublicKey, "unexpected secp256k1 public key length")
		}
		if _, err := secp256k1.ParsePubKey(raw); err != nil {
			return errs.Wrap(errs.ErrInvalidPublicKey, "not a valid secp256k1 public key")
		}
		return nil
	default:
		return errs.Wrap(errs.ErrInvalidPublicKey, "unknown chain family")
	}
}

// DeriveSecp256k1Address returns a deterministic base58 address for a
// secp256k1 public key: base58(sha256(serialized-compressed-pubkey)).
// This is a generic identifier, not a specific chain's checksum address
// format (e.g. Bitcoin's base58check with version byte and RIPEMD-160 is
// out of scope here). ValidateAddress(FamilySecp256k1, ...) does not
// accept this hashed form: it checks for the base58 encoding of the
// serialized public key itself.
func DeriveSecp256k1Address(pub *secp256k1.PublicKey) string {
	hash := sha256.Sum256(pub.SerializeCompressed())
	return base58.Encode(hash[:])
}

// EthereumAddressHex normalizes an Ethereum address to its canonical
// (EIP-55 checksummed) hex form.
func EthereumAddressHex(address string) (string, error) {
	if !ethcommon.IsHexAddress(address) {
		return "", errs.Wrap(errs.ErrInvalidPublicKey, "not a valid ethereum hex address")
	}
	return ethcommon.HexToAddress(address).Hex(), nil
}

// SolanaAddressBytes decodes a base58 Solana address into its raw
// 32-byte public key.
func SolanaAddressBytes(address string) ([32]byte, error) {
	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return [32]byte{}, errs.Wrap(errs.ErrInvalidPublicKey, "not a valid solana base58 address")
	}
	var out [32]byte
	copy(out[:], pub[:])
	return out, nil
}
