// Package schnorr implements the Schnorr signature scheme used by the chain's
// accounts and by DID operation signatures.
//
// Signatures are 64 bytes, r || s, where
//
//	Q = kG
//	r = SHA256(compress(Q) || compress(P) || msg) mod n
//	s = k - r*x mod n
//
// and verification recomputes r from Q' = sG + rP.
package schnorr

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// SignatureSize is the length of a serialized signature.
const SignatureSize = 64

// GenerateKey returns a new private key read from crypto/rand.
func GenerateKey() (*secp256k1.PrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate private key")
	}
	return priv, nil
}

// ParsePrivateKeyHex parses a 32-byte hex private key, with or without 0x.
func ParsePrivateKeyHex(privHex string) (*secp256k1.PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(privHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode private key hex")
	}
	if len(b) != 32 {
		return nil, errors.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	if priv.Key.IsZero() {
		return nil, errors.New("private key is zero")
	}
	return priv, nil
}

// ParsePublicKeyHex parses a compressed or uncompressed hex public key,
// with or without 0x.
func ParsePublicKeyHex(pubHex string) (*secp256k1.PublicKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(pubHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode public key hex")
	}
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse public key")
	}
	return pub, nil
}

// PublicKeyHex returns the 0x-prefixed compressed public key.
func PublicKeyHex(pub *secp256k1.PublicKey) string {
	return "0x" + hex.EncodeToString(pub.SerializeCompressed())
}

// PrivateKeyHex returns the 0x-prefixed 32-byte private key.
func PrivateKeyHex(priv *secp256k1.PrivateKey) string {
	return "0x" + hex.EncodeToString(priv.Serialize())
}

// Address returns the account address of a public key: the last 20 bytes
// of SHA-256 over the compressed key, 0x-prefixed lowercase hex.
func Address(pub *secp256k1.PublicKey) string {
	h := sha256.Sum256(pub.SerializeCompressed())
	return "0x" + hex.EncodeToString(h[12:])
}

// Sign signs msg with priv. A fresh nonce is drawn until both r and s are
// non-zero.
func Sign(priv *secp256k1.PrivateKey, msg []byte) ([]byte, error) {
	pub := priv.PubKey().SerializeCompressed()
	for {
		k, err := randomScalar()
		if err != nil {
			return nil, err
		}

		var q secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(k, &q)
		q.ToAffine()

		r := challenge(&q, pub, msg)
		if r.IsZero() {
			continue
		}

		// s = k - r*x
		var s secp256k1.ModNScalar
		s.Mul2(r, &priv.Key).Negate().Add(k)
		k.Zero()
		if s.IsZero() {
			continue
		}

		sig := make([]byte, SignatureSize)
		rb, sb := r.Bytes(), s.Bytes()
		copy(sig[:32], rb[:])
		copy(sig[32:], sb[:])
		return sig, nil
	}
}

// Verify reports whether sig is a valid signature of msg by pub.
func Verify(pub *secp256k1.PublicKey, msg, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return false
	}

	// Q = sG + rP
	var sG, rP, p, q secp256k1.JacobianPoint
	pub.AsJacobian(&p)
	secp256k1.ScalarBaseMultNonConst(&s, &sG)
	secp256k1.ScalarMultNonConst(&r, &p, &rP)
	secp256k1.AddNonConst(&sG, &rP, &q)
	if (q.X.IsZero() && q.Y.IsZero()) || q.Z.IsZero() {
		return false
	}
	q.ToAffine()

	return challenge(&q, pub.SerializeCompressed(), msg).Equals(&r)
}

func challenge(q *secp256k1.JacobianPoint, pub, msg []byte) *secp256k1.ModNScalar {
	qPub := secp256k1.NewPublicKey(&q.X, &q.Y)

	h := sha256.New()
	h.Write(qPub.SerializeCompressed())
	h.Write(pub)
	h.Write(msg)

	var r secp256k1.ModNScalar
	r.SetByteSlice(h.Sum(nil))
	return &r
}

func randomScalar() (*secp256k1.ModNScalar, error) {
	var b [32]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return nil, errors.Wrap(err, "failed to read random nonce")
		}
		var k secp256k1.ModNScalar
		overflow := k.SetBytes(&b)
		if overflow == 0 && !k.IsZero() {
			return &k, nil
		}
	}
}
