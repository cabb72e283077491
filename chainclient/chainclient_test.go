package chainclient

import (
	"context"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress_Ethereum(t *testing.T) {
	require.NoError(t, ValidateAddress(FamilyEthereum, "0x0000000000000000000000000000000000000001"))
	assert.Error(t, ValidateAddress(FamilyEthereum, "not-an-address"))
}

func TestValidateAddress_Secp256k1(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey()
	addr := DeriveSecp256k1Address(pub)

	encoded := base58.Encode(pub.SerializeCompressed())
	require.NoError(t, ValidateAddress(FamilySecp256k1, encoded))
	assert.NotEmpty(t, addr)
}

func TestMockClient_SubmitAndFetch(t *testing.T) {
	mc := NewMockClient(nil)
	ctx := context.Background()

	mc.SetFrom("alice")
	id, err := mc.SubmitPayment(ctx, "bob", 1000, []byte{0x04, 0x01, 0xAA}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	found, err := mc.WaitForConfirmation(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)

	txs, err := mc.PaymentsInvolving(ctx, "bob", 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, []byte{0x04, 0x01, 0xAA}, txs[0].Note)
}
