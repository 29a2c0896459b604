// Package did provides the DID document model of the SSI protocol: key
// generation per purpose, document elements and their contract encoding,
// patch processing and the document hash signed by update and recovery
// operations.
package did

import (
	"github.com/pilacorp/go-ssi-sdk/crypto/schnorr"
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pkg/errors"
)

// Purpose is the id of a verification method: what the key is used for.
type Purpose string

const (
	PurposeGeneral        Purpose = "general"
	PurposeAuth           Purpose = "authentication"
	PurposeAssertion      Purpose = "assertion"
	PurposeAgreement      Purpose = "agreement"
	PurposeInvocation     Purpose = "invocation"
	PurposeDelegation     Purpose = "delegation"
	PurposeUpdate         Purpose = "update"
	PurposeRecovery       Purpose = "recovery"
	PurposeSocialRecovery Purpose = "socialrecovery"
)

// Purposes lists every supported purpose in document order.
var Purposes = []Purpose{
	PurposeGeneral,
	PurposeAuth,
	PurposeAssertion,
	PurposeAgreement,
	PurposeInvocation,
	PurposeDelegation,
	PurposeUpdate,
	PurposeRecovery,
	PurposeSocialRecovery,
}

// Valid reports whether p is a supported purpose.
func (p Purpose) Valid() bool {
	for _, v := range Purposes {
		if v == p {
			return true
		}
	}
	return false
}

func (p Purpose) String() string {
	return string(p)
}

// ParsePurpose returns s as a Purpose if it is supported.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.Valid() {
		return "", errcode.Newf(errcode.InvalidPurpose, "unsupported key purpose %q", s)
	}
	return p, nil
}

// KeyPair is a freshly generated key for one purpose. Both keys are
// 0x-prefixed hex; the public key is compressed.
type KeyPair struct {
	Purpose    Purpose
	PublicKey  string
	PrivateKey string
}

// GenerateKeyPair creates a Schnorr secp256k1 key pair for purpose.
// A failing random source is returned as an error and never retried.
func GenerateKeyPair(purpose Purpose) (*KeyPair, error) {
	if !purpose.Valid() {
		return nil, errcode.Newf(errcode.InvalidPurpose, "unsupported key purpose %q", purpose)
	}
	priv, err := schnorr.GenerateKey()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate %s key", purpose)
	}
	return &KeyPair{
		Purpose:    purpose,
		PublicKey:  schnorr.PublicKeyHex(priv.PubKey()),
		PrivateKey: schnorr.PrivateKeyHex(priv),
	}, nil
}

// PrivateKeyModel is a private key tagged with its purpose id.
type PrivateKeyModel struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// ProcessPrivateKeys indexes a key list by purpose. Ids must be unique and
// must name a supported purpose.
func ProcessPrivateKeys(keys []PrivateKeyModel) (map[Purpose]string, error) {
	seen := make(map[string]struct{}, len(keys))
	out := make(map[Purpose]string, len(keys))
	for _, k := range keys {
		if _, dup := seen[k.ID]; dup {
			return nil, errcode.Newf(errcode.KeyDuplicated, "the key ID %q must be unique", k.ID)
		}
		seen[k.ID] = struct{}{}

		p := Purpose(k.ID)
		if !p.Valid() {
			return nil, errcode.Newf(errcode.InvalidID, "invalid key ID %q", k.ID)
		}
		out[p] = k.Key
	}
	return out, nil
}
