package did

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// HashSeed starts every document and guardian hash.
const HashSeed = "0000000000000000000000000000000000000000"

func sha256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// HashDocument folds elements, in order, into the hex string signed by
// update and recovery operations. Each element appends
//
//	sha256(action) || sha256(id)                                   removals
//	sha256(action) || sha256(id) || sha256(pubkey) || sha256(enc)  key additions
//	sha256(action) || sha256(id) || sha256(endpoint value)         service additions
//
// as hex text to HashSeed. The result is a concatenation, not a digest,
// and the contract recomputes it the same way.
func HashDocument(elements []DocumentElement) (string, error) {
	var b strings.Builder
	b.WriteString(HashSeed)

	for i, e := range elements {
		if err := e.Validate(); err != nil {
			return "", errors.Wrapf(err, "element %d", i)
		}
		b.WriteString(sha256Hex([]byte(e.Action)))
		b.WriteString(sha256Hex([]byte(e.ID())))
		if e.Action != ActionAdd {
			continue
		}

		switch e.Constructor {
		case ConstructorVerificationMethod:
			key, err := hex.DecodeString(strings.TrimPrefix(e.Key.Key, "0x"))
			if err != nil {
				return "", errors.Wrapf(err, "element %d: invalid public key", i)
			}
			b.WriteString(sha256Hex(key))
			b.WriteString(sha256Hex([]byte(encryptedOrNone(e.Key))))
		case ConstructorService:
			b.WriteString(sha256Hex([]byte(e.Service.Value)))
		}
	}
	return b.String(), nil
}

// GuardianHash is the ByStr32 identifier of a social-recovery guardian.
func GuardianHash(guardian string) string {
	return "0x" + sha256Hex([]byte(guardian))
}

// UsernameHash is the key of username in the init contract's dns map.
func UsernameHash(username string) string {
	return "0x" + sha256Hex([]byte(username))
}

// HashGuardians is the signing target of a guardian configuration:
// HashSeed followed by the SHA-256 of every guardian, in order.
func HashGuardians(guardians []string) string {
	var b strings.Builder
	b.WriteString(HashSeed)
	for _, g := range guardians {
		b.WriteString(sha256Hex([]byte(g)))
	}
	return b.String()
}
