package did

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"

	"github.com/pkg/errors"
)

// KeyEncrypter encrypts a private key before it is stored in the DKMS
// section of the document.
type KeyEncrypter interface {
	Encrypt(privateKeyHex string) (string, error)
}

// RSAEncrypter encrypts with RSA-OAEP (SHA-256) and encodes the ciphertext
// as unpadded base64url.
type RSAEncrypter struct {
	pub *rsa.PublicKey
}

func NewRSAEncrypter(pub *rsa.PublicKey) *RSAEncrypter {
	return &RSAEncrypter{pub: pub}
}

// NewRSAEncrypterFromPEM parses a PKIX "PUBLIC KEY" PEM block.
func NewRSAEncrypterFromPEM(pemBytes []byte) (*RSAEncrypter, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse public key")
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.Errorf("expected an RSA public key, got %T", key)
	}
	return NewRSAEncrypter(pub), nil
}

func (e *RSAEncrypter) Encrypt(privateKeyHex string) (string, error) {
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, e.pub, []byte(privateKeyHex), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to encrypt key")
	}
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// DecryptKey reverses RSAEncrypter.Encrypt.
func DecryptKey(priv *rsa.PrivateKey, encrypted string) (string, error) {
	ct, err := base64.RawURLEncoding.DecodeString(encrypted)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode encrypted key")
	}
	pt, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ct, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to decrypt key")
	}
	return string(pt), nil
}
