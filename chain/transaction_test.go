package chain

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/pilacorp/go-ssi-sdk/crypto/schnorr"
	"github.com/pilacorp/go-ssi-sdk/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

const testPrivateKey = "0xe19d05c5452598e24caad4a0d85a49146f7be089515c905ae6a19e8a578a6930"

// decodeFields splits a message into its top-level fields.
func decodeFields(t *testing.T, b []byte) map[protowire.Number][]byte {
	t.Helper()
	out := map[protowire.Number][]byte{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		require.GreaterOrEqual(t, n, 0)
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			require.GreaterOrEqual(t, m, 0)
			out[num] = protowire.AppendVarint(nil, v)
			b = b[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			require.GreaterOrEqual(t, m, 0)
			out[num] = v
			b = b[m:]
		default:
			t.Fatalf("unexpected wire type %d", typ)
		}
	}
	return out
}

func varint(t *testing.T, b []byte) uint64 {
	v, n := protowire.ConsumeVarint(b)
	require.GreaterOrEqual(t, n, 0)
	return v
}

func TestVersion(t *testing.T) {
	assert.Equal(t, uint32(21823489), Version(333))
	assert.Equal(t, uint32(65537), Version(1))
}

func TestTransactionBytes(t *testing.T) {
	tx := &Transaction{
		Version:      Version(333),
		Nonce:        7,
		ToAddr:       testChecksum,
		SenderPubKey: "0x0246e7178dc8253201101e18fd6f6eb9972451d121fc57aa2a06dd5c111e58dc6a",
		Amount:       big.NewInt(1_000_000_000_000),
		GasPrice:     big.NewInt(2_000_000_000),
		GasLimit:     30000,
		Data:         `{"_tag":"DidUpdate"}`,
	}

	b, err := tx.Bytes()
	require.NoError(t, err)
	fields := decodeFields(t, b)

	assert.Equal(t, uint64(Version(333)), varint(t, fields[fieldVersion]))
	assert.Equal(t, uint64(7), varint(t, fields[fieldNonce]))
	assert.Equal(t, testLower[2:], hex.EncodeToString(fields[fieldToAddr]))
	assert.Equal(t, uint64(30000), varint(t, fields[fieldGasLimit]))
	assert.Equal(t, `{"_tag":"DidUpdate"}`, string(fields[fieldData]))
	assert.NotContains(t, fields, fieldCode)

	amount := decodeFields(t, fields[fieldAmount])[fieldByteArrayData]
	require.Len(t, amount, uint128Size)
	assert.Equal(t, 0, new(big.Int).SetBytes(amount).Cmp(tx.Amount))

	gasPrice := decodeFields(t, fields[fieldGasPrice])[fieldByteArrayData]
	require.Len(t, gasPrice, uint128Size)
	assert.Equal(t, 0, new(big.Int).SetBytes(gasPrice).Cmp(tx.GasPrice))

	pub := decodeFields(t, fields[fieldSenderPubKey])[fieldByteArrayData]
	assert.Equal(t, tx.SenderPubKey[2:], hex.EncodeToString(pub))
}

func TestTransactionBytesInvalid(t *testing.T) {
	base := func() *Transaction {
		return &Transaction{ToAddr: testLower, SenderPubKey: "0x02"}
	}

	tx := base()
	tx.ToAddr = "nowhere"
	_, err := tx.Bytes()
	assert.Error(t, err)

	tx = base()
	tx.Amount = new(big.Int).Lsh(big.NewInt(1), 128)
	_, err = tx.Bytes()
	assert.Error(t, err)

	tx = base()
	tx.GasPrice = big.NewInt(-1)
	_, err = tx.Bytes()
	assert.Error(t, err)
}

func TestSignTransactionAndPayload(t *testing.T) {
	s, err := signer.NewDefaultProvider(testPrivateKey)
	require.NoError(t, err)

	tx := &Transaction{
		Version:      Version(222),
		Nonce:        1,
		ToAddr:       testLower,
		SenderPubKey: s.PublicKey(),
		GasPrice:     big.NewInt(2_000_000_000),
		GasLimit:     50,
	}
	_, err = tx.Payload()
	assert.Error(t, err, "unsigned transaction")

	require.NoError(t, SignTransaction(tx, s))
	require.Len(t, tx.Signature, schnorr.SignatureSize)

	msg, err := tx.Bytes()
	require.NoError(t, err)
	pub, err := schnorr.ParsePublicKeyHex(s.PublicKey())
	require.NoError(t, err)
	assert.True(t, schnorr.Verify(pub, msg, tx.Signature))

	p, err := tx.Payload()
	require.NoError(t, err)
	assert.Equal(t, testChecksum[2:], p.ToAddr)
	assert.Equal(t, "0", p.Amount)
	assert.Equal(t, "2000000000", p.GasPrice)
	assert.Equal(t, "50", p.GasLimit)
	assert.Equal(t, hex.EncodeToString(tx.Signature), p.Signature)
	assert.Equal(t, s.PublicKey()[2:], p.PubKey)
}
