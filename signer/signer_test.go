package signer

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pilacorp/go-ssi-sdk/crypto/schnorr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivateKey = "0xe19d05c5452598e24caad4a0d85a49146f7be089515c905ae6a19e8a578a6930"

func TestDefaultProvider(t *testing.T) {
	p, err := NewDefaultProvider(testPrivateKey)
	require.NoError(t, err)

	priv, err := schnorr.ParsePrivateKeyHex(testPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, schnorr.PublicKeyHex(priv.PubKey()), p.PublicKey())
	assert.Equal(t, schnorr.Address(priv.PubKey()), p.GetAddress())

	msg := []byte("did:tyron:zil:test:0x0000000000000000000000000000000000000001")
	sig, err := p.Sign(msg)
	require.NoError(t, err)
	assert.Len(t, sig, schnorr.SignatureSize)
	assert.True(t, schnorr.Verify(priv.PubKey(), msg, sig))
}

func TestNewDefaultProviderInvalid(t *testing.T) {
	tests := []string{"", "0x", "zz", "0x0000000000000000000000000000000000000000000000000000000000000000"}
	for _, key := range tests {
		_, err := NewDefaultProvider(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestAddressOf(t *testing.T) {
	p, err := NewDefaultProvider(testPrivateKey)
	require.NoError(t, err)

	addr, err := AddressOf(p.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, p.GetAddress(), addr)

	_, err = AddressOf("0x1234")
	assert.Error(t, err)
}

func TestRemoteSigner(t *testing.T) {
	local, err := NewDefaultProvider(testPrivateKey)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req remoteSignRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		payload, err := hex.DecodeString(req.PayloadHex)
		if !assert.NoError(t, err) {
			return
		}

		sig, err := local.Sign(payload)
		if !assert.NoError(t, err) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(remoteSignResponse{SignatureHex: "0x" + hex.EncodeToString(sig)})
	}))
	defer server.Close()

	remote, err := NewRemoteSigner(server.URL, "secret", local.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, local.GetAddress(), remote.GetAddress())
	assert.Equal(t, local.PublicKey(), remote.PublicKey())

	msg := []byte("payload")
	sig, err := remote.Sign(msg)
	require.NoError(t, err)

	pub, err := schnorr.ParsePublicKeyHex(remote.PublicKey())
	require.NoError(t, err)
	assert.True(t, schnorr.Verify(pub, msg, sig))
}

func TestRemoteSignerErrors(t *testing.T) {
	local, err := NewDefaultProvider(testPrivateKey)
	require.NoError(t, err)

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "short signature",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"signature_hex":"0xabcd"}`))
			},
		},
		{
			name: "bad hex",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"signature_hex":"xyz"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			remote, err := NewRemoteSigner(server.URL, "", local.PublicKey())
			require.NoError(t, err)
			_, err = remote.Sign([]byte("payload"))
			assert.Error(t, err)
		})
	}
}

func TestNewRemoteSignerInvalid(t *testing.T) {
	_, err := NewRemoteSigner(" ", "", "")
	assert.Error(t, err)

	_, err = NewRemoteSigner("http://localhost", "", "0x00")
	assert.Error(t, err)
}
