package did

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/pilacorp/go-ssi-sdk/crypto/schnorr"
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair(PurposeUpdate)
	require.NoError(t, err)

	assert.Equal(t, PurposeUpdate, kp.Purpose)
	assert.True(t, strings.HasPrefix(kp.PublicKey, "0x"))
	assert.Len(t, kp.PublicKey, 2+66)
	assert.Len(t, kp.PrivateKey, 2+64)

	priv, err := schnorr.ParsePrivateKeyHex(kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, schnorr.PublicKeyHex(priv.PubKey()))

	other, err := GenerateKeyPair(PurposeUpdate)
	require.NoError(t, err)
	assert.NotEqual(t, kp.PrivateKey, other.PrivateKey)
}

func TestGenerateKeyPairInvalidPurpose(t *testing.T) {
	_, err := GenerateKeyPair("signing")
	assert.True(t, errcode.Is(err, errcode.InvalidPurpose))
}

func TestParsePurpose(t *testing.T) {
	for _, p := range Purposes {
		got, err := ParsePurpose(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePurpose("Update")
	assert.True(t, errcode.Is(err, errcode.InvalidPurpose))
}

func TestProcessPrivateKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    []PrivateKeyModel
		want    map[Purpose]string
		errCode errcode.Code
	}{
		{
			name: "valid",
			keys: []PrivateKeyModel{{ID: "update", Key: "0x01"}, {ID: "recovery", Key: "0x02"}},
			want: map[Purpose]string{PurposeUpdate: "0x01", PurposeRecovery: "0x02"},
		},
		{
			name: "empty",
			keys: nil,
			want: map[Purpose]string{},
		},
		{
			name:    "duplicate id",
			keys:    []PrivateKeyModel{{ID: "update", Key: "0x01"}, {ID: "update", Key: "0x02"}},
			errCode: errcode.KeyDuplicated,
		},
		{
			name:    "unknown id fails before a repeat is seen",
			keys:    []PrivateKeyModel{{ID: "foo", Key: "0x01"}, {ID: "foo", Key: "0x02"}},
			errCode: errcode.InvalidID,
		},
		{
			name:    "unknown id",
			keys:    []PrivateKeyModel{{ID: "signing", Key: "0x01"}},
			errCode: errcode.InvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProcessPrivateKeys(tt.keys)
			if tt.errCode != "" {
				require.Error(t, err)
				assert.True(t, errcode.Is(err, tt.errCode), "got %v", err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessKeys(t *testing.T) {
	purposes := []Purpose{PurposeGeneral, PurposeUpdate, PurposeRecovery}
	batch, err := ProcessKeys(testContract, purposes, nil)
	require.NoError(t, err)

	require.Len(t, batch.Elements, 3)
	require.Len(t, batch.Values, 3)
	require.Len(t, batch.Keys, 3)

	for i, p := range purposes {
		e := batch.Elements[i]
		assert.Equal(t, ActionAdd, e.Action)
		assert.Equal(t, string(p), e.ID())
		assert.Equal(t, NoneMarker, e.Key.Encrypted)
		assert.Equal(t, batch.Keys[i].PublicKey, e.Key.Key)

		v := batch.Values[i]
		assert.Equal(t, testContractLower+".VerificationMethod", v.Constructor)
		action, ok := v.Arg(0)
		require.True(t, ok)
		assert.Equal(t, testContractLower+".Add", action.Constructor)
		assert.Equal(t, []any{action, string(p), e.Key.Key, NoneMarker}, v.Arguments)
	}

	keys := batch.PrivateKeys()
	assert.Len(t, keys, 3)
	assert.Equal(t, batch.Keys[1].PrivateKey, keys[PurposeUpdate])
}

func TestProcessKeysDuplicate(t *testing.T) {
	_, err := ProcessKeys(testContract, []Purpose{PurposeUpdate, PurposeGeneral, PurposeUpdate}, nil)
	assert.True(t, errcode.Is(err, errcode.KeyDuplicated))
}

func TestProcessKeysEncrypted(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&rsaKey.PublicKey)
	require.NoError(t, err)
	enc, err := NewRSAEncrypterFromPEM(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	require.NoError(t, err)

	batch, err := ProcessKeys(testContract, []Purpose{PurposeAgreement}, enc)
	require.NoError(t, err)

	encrypted := batch.Elements[0].Key.Encrypted
	assert.NotEqual(t, NoneMarker, encrypted)
	encArg, ok := batch.Values[0].StringArg(3)
	require.True(t, ok)
	assert.Equal(t, encrypted, encArg)

	plain, err := DecryptKey(rsaKey, encrypted)
	require.NoError(t, err)
	assert.Equal(t, batch.Keys[0].PrivateKey, plain)
}

func TestNewRSAEncrypterFromPEMInvalid(t *testing.T) {
	_, err := NewRSAEncrypterFromPEM([]byte("not pem"))
	assert.Error(t, err)
}
