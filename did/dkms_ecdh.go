package did

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pilacorp/go-ssi-sdk/crypto/schnorr"
	"github.com/pkg/errors"
)

// jweHeader is the protected header of an ECDH-ES key envelope.
type jweHeader struct {
	Alg string `json:"alg"`
	Enc string `json:"enc"`
	Crv string `json:"crv"`
	// Epk is the sender's ephemeral public key, compressed hex.
	Epk string `json:"epk"`
}

// JWE is the JSON serialization of an encrypted key.
type JWE struct {
	Protected  string `json:"protected"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

// ECDHEncrypter encrypts to a secp256k1 public key: ECDH-ES with a fresh
// ephemeral key per call, A256GCM content encryption.
type ECDHEncrypter struct {
	recipient *secp256k1.PublicKey
}

func NewECDHEncrypter(recipient *secp256k1.PublicKey) *ECDHEncrypter {
	return &ECDHEncrypter{recipient: recipient}
}

// NewECDHEncrypterFromHex parses a hex public key, with or without 0x.
func NewECDHEncrypterFromHex(pubHex string) (*ECDHEncrypter, error) {
	pub, err := schnorr.ParsePublicKeyHex(pubHex)
	if err != nil {
		return nil, err
	}
	return NewECDHEncrypter(pub), nil
}

// contentKey derives the AES-256 key from the ECDH shared secret.
func contentKey(priv *secp256k1.PrivateKey, pub *secp256k1.PublicKey) []byte {
	shared := secp256k1.GenerateSharedSecret(priv, pub)
	key := sha256.Sum256(shared)
	return key[:]
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (e *ECDHEncrypter) Encrypt(privateKeyHex string) (string, error) {
	ephemeral, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate ephemeral key")
	}
	header, err := json.Marshal(jweHeader{
		Alg: "ECDH-ES",
		Enc: "A256GCM",
		Crv: "secp256k1",
		Epk: hex.EncodeToString(ephemeral.PubKey().SerializeCompressed()),
	})
	if err != nil {
		return "", err
	}
	protected := base64.RawURLEncoding.EncodeToString(header)

	gcm, err := newGCM(contentKey(ephemeral, e.recipient))
	if err != nil {
		return "", errors.Wrap(err, "failed to init cipher")
	}
	iv := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", errors.Wrap(err, "failed to read nonce")
	}
	sealed := gcm.Seal(nil, iv, []byte(privateKeyHex), []byte(protected))
	split := len(sealed) - gcm.Overhead()

	out, err := json.Marshal(JWE{
		Protected:  protected,
		IV:         base64.RawURLEncoding.EncodeToString(iv),
		Ciphertext: base64.RawURLEncoding.EncodeToString(sealed[:split]),
		Tag:        base64.RawURLEncoding.EncodeToString(sealed[split:]),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecryptECDH reverses ECDHEncrypter.Encrypt.
func DecryptECDH(priv *secp256k1.PrivateKey, encrypted string) (string, error) {
	var jwe JWE
	if err := json.Unmarshal([]byte(encrypted), &jwe); err != nil {
		return "", errors.Wrap(err, "failed to decode JWE")
	}
	var parts [4][]byte
	for i, s := range []string{jwe.Protected, jwe.IV, jwe.Ciphertext, jwe.Tag} {
		b, err := base64.RawURLEncoding.DecodeString(s)
		if err != nil {
			return "", errors.Wrap(err, "failed to decode JWE")
		}
		parts[i] = b
	}

	var header jweHeader
	if err := json.Unmarshal(parts[0], &header); err != nil {
		return "", errors.Wrap(err, "failed to decode JWE header")
	}
	if header.Alg != "ECDH-ES" || header.Enc != "A256GCM" {
		return "", errors.Errorf("unsupported JWE algorithm %s/%s", header.Alg, header.Enc)
	}
	epk, err := schnorr.ParsePublicKeyHex(header.Epk)
	if err != nil {
		return "", errors.Wrap(err, "invalid ephemeral key")
	}

	gcm, err := newGCM(contentKey(priv, epk))
	if err != nil {
		return "", errors.Wrap(err, "failed to init cipher")
	}
	if len(parts[1]) != gcm.NonceSize() {
		return "", errors.New("invalid JWE nonce")
	}
	pt, err := gcm.Open(nil, parts[1], append(parts[2], parts[3]...), []byte(jwe.Protected))
	if err != nil {
		return "", errors.Wrap(err, "failed to decrypt key")
	}
	return string(pt), nil
}
