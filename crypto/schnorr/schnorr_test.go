package schnorr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivHex = "0xe19d05c5452598e24caad4a0d85a49146f7be089515c905ae6a19e8a578a6930"

func TestSignVerify(t *testing.T) {
	priv, err := ParsePrivateKeyHex(testPrivHex)
	require.NoError(t, err)
	pub := priv.PubKey()

	tests := []struct {
		name string
		msg  []byte
	}{
		{name: "document hash", msg: []byte("0000000000000000000000000000000000000000")},
		{name: "empty", msg: []byte{}},
		{name: "binary", msg: []byte{0x00, 0xff, 0x10, 0x20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Sign(priv, tt.msg)
			require.NoError(t, err)
			require.Len(t, sig, SignatureSize)
			assert.True(t, Verify(pub, tt.msg, sig))

			tampered := append([]byte{}, tt.msg...)
			tampered = append(tampered, 0x01)
			assert.False(t, Verify(pub, tampered, sig))

			bad := append([]byte{}, sig...)
			bad[40] ^= 0x01
			assert.False(t, Verify(pub, tt.msg, bad))
		})
	}
}

func TestVerifyWrongKey(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)

	msg := []byte("did:tyron:zil:test:0x0000000000000000000000000000000000000001")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)
	assert.False(t, Verify(other.PubKey(), msg, sig))
	assert.False(t, Verify(priv.PubKey(), msg, sig[:63]))
	assert.False(t, Verify(priv.PubKey(), msg, make([]byte, SignatureSize)))
}

func TestSignaturesAreRandomized(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)

	a, err := Sign(priv, []byte("msg"))
	require.NoError(t, err)
	b, err := Sign(priv, []byte("msg"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestKeyEncoding(t *testing.T) {
	priv, err := ParsePrivateKeyHex(testPrivHex)
	require.NoError(t, err)
	assert.Equal(t, testPrivHex, PrivateKeyHex(priv))

	pubHex := PublicKeyHex(priv.PubKey())
	require.Len(t, pubHex, 68)
	assert.True(t, strings.HasPrefix(pubHex, "0x02") || strings.HasPrefix(pubHex, "0x03"))

	pub, err := ParsePublicKeyHex(pubHex)
	require.NoError(t, err)
	assert.True(t, pub.IsEqual(priv.PubKey()))

	addr := Address(pub)
	assert.Len(t, addr, 42)
	assert.Equal(t, strings.ToLower(addr), addr)
}

func TestParseErrors(t *testing.T) {
	_, err := ParsePrivateKeyHex("0xzz")
	assert.Error(t, err)
	_, err = ParsePrivateKeyHex("0x0102")
	assert.Error(t, err)
	_, err = ParsePrivateKeyHex("0x" + strings.Repeat("00", 32))
	assert.Error(t, err)
	_, err = ParsePublicKeyHex("0x05" + strings.Repeat("11", 32))
	assert.Error(t, err)
}
