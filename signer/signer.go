// Package signer abstracts who holds the key behind a transaction or a DID
// operation signature.
package signer

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pilacorp/go-ssi-sdk/crypto/schnorr"
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pkg/errors"
)

// SignerProvider is the interface for the signer provider.
type SignerProvider interface {
	// Sign returns the 64-byte Schnorr signature r||s of payload.
	Sign(payload []byte) ([]byte, error)
	// PublicKey returns the 0x-prefixed compressed public key.
	PublicKey() string
	// GetAddress returns the lowercase 0x-prefixed account address.
	GetAddress() string
}

// DefaultProvider is the default signer provider.
type DefaultProvider struct {
	priv *secp256k1.PrivateKey
}

// NewDefaultProvider creates a new default signer provider.
//
// privHex is the private key in hex format, with or without 0x.
// Returns the signer provider or an error if the private key is invalid.
func NewDefaultProvider(privHex string) (SignerProvider, error) {
	priv, err := schnorr.ParsePrivateKeyHex(privHex)
	if err != nil {
		return nil, err
	}
	return &DefaultProvider{priv: priv}, nil
}

// Sign signs the payload.
//
// Unlike ECDSA signers the payload is not hashed by the caller; the Schnorr
// challenge hashes it together with the nonce point and the public key.
func (s *DefaultProvider) Sign(payload []byte) ([]byte, error) {
	sig, err := schnorr.Sign(s.priv, payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign payload")
	}
	if len(sig) != schnorr.SignatureSize {
		return nil, errors.Errorf("invalid signature length: expected %d bytes, got %d", schnorr.SignatureSize, len(sig))
	}
	return sig, nil
}

func (s *DefaultProvider) PublicKey() string {
	return schnorr.PublicKeyHex(s.priv.PubKey())
}

// GetAddress returns the address of the signer.
func (s *DefaultProvider) GetAddress() string {
	return schnorr.Address(s.priv.PubKey())
}

// AddressOf derives the account address of a hex public key.
func AddressOf(pubHex string) (string, error) {
	pub, err := schnorr.ParsePublicKeyHex(pubHex)
	if err != nil {
		return "", errcode.Newf(errcode.InvalidKey, "invalid public key: %v", err)
	}
	return schnorr.Address(pub), nil
}
