package did

import (
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/transition"
	"github.com/pkg/errors"
)

const (
	// RemovedKey is the public key sent in place of a removed verification
	// method. The contract never receives a real key on removal.
	RemovedKey = "0x024caf04aa4f660db04adf65daf5b993b3383fcdb2ef0479ca8866b1336334b5b4"
	// NoneMarker stands in for absent encrypted key material.
	NoneMarker = "none"
	// removedEndpoint fills every field of the endpoint sent on service removal.
	removedEndpoint = "remove"
)

// BuildElement encodes a document element as the contract's Document value
// for the contract at addr:
//
//	<addr>.VerificationMethod(<addr>.Add|Remove, id, key, encrypted)
//	<addr>.Service(<addr>.Add|Remove, id, endpoint)
func BuildElement(addr string, e DocumentElement) (transition.Value, error) {
	if err := e.Validate(); err != nil {
		return transition.Value{}, err
	}
	name, _ := e.Action.constructorName()
	action := transition.NewValue(transition.ScopedName(addr, name))

	switch e.Constructor {
	case ConstructorVerificationMethod:
		key, encrypted := RemovedKey, NoneMarker
		if e.Action == ActionAdd {
			key, encrypted = e.Key.Key, encryptedOrNone(e.Key)
		}
		return transition.NewValue(
			transition.ScopedName(addr, string(ConstructorVerificationMethod)),
			action, e.Key.ID, key, encrypted,
		), nil

	case ConstructorService:
		endpoint := transition.NewValue(
			transition.ScopedName(addr, string(EndpointURI)),
			removedEndpoint,
			transition.NewValue(transition.ScopedName(addr, string(ProtocolHTTPS))),
			removedEndpoint,
		)
		if e.Action == ActionAdd {
			endpoint = serviceEndpoint(addr, e.Service)
		}
		return transition.NewValue(
			transition.ScopedName(addr, string(ConstructorService)),
			action, e.Service.ID, endpoint,
		), nil
	}

	// unreachable after Validate
	return transition.Value{}, errcode.Newf(errcode.UnsupportedElement, "unsupported document element %q", e.Constructor)
}

func serviceEndpoint(addr string, s *ServiceModel) transition.Value {
	if s.Endpoint == EndpointAddress {
		return transition.NewValue(
			transition.ScopedName(addr, string(EndpointAddress)),
			transition.NewValue(transition.ScopedName(addr, s.ChainType)),
			s.Value,
		)
	}
	return transition.NewValue(
		transition.ScopedName(addr, string(EndpointURI)),
		s.Type,
		transition.NewValue(transition.ScopedName(addr, string(s.TransferProtocol))),
		s.Value,
	)
}

func encryptedOrNone(k *PublicKeyModel) string {
	if k.Encrypted == "" {
		return NoneMarker
	}
	return k.Encrypted
}

// NewKeyElement generates a key for purpose and returns its addition
// element, the element's contract value and the key pair. A nil encrypter
// leaves the DKMS material as NoneMarker.
func NewKeyElement(addr string, purpose Purpose, enc KeyEncrypter) (DocumentElement, transition.Value, *KeyPair, error) {
	kp, err := GenerateKeyPair(purpose)
	if err != nil {
		return DocumentElement{}, transition.Value{}, nil, err
	}

	encrypted := NoneMarker
	if enc != nil {
		if encrypted, err = enc.Encrypt(kp.PrivateKey); err != nil {
			return DocumentElement{}, transition.Value{}, nil, errors.Wrapf(err, "failed to encrypt %s key", purpose)
		}
	}

	element := DocumentElement{
		Constructor: ConstructorVerificationMethod,
		Action:      ActionAdd,
		Key: &PublicKeyModel{
			ID:        string(purpose),
			Key:       kp.PublicKey,
			Encrypted: encrypted,
		},
	}
	value, err := BuildElement(addr, element)
	if err != nil {
		return DocumentElement{}, transition.Value{}, nil, err
	}
	return element, value, kp, nil
}

// KeyBatch is the output of ProcessKeys. Elements, Values and Keys are
// index-aligned.
type KeyBatch struct {
	Elements []DocumentElement
	Values   []transition.Value
	Keys     []KeyPair
}

// PrivateKeys returns the generated private keys by purpose.
func (b *KeyBatch) PrivateKeys() map[Purpose]string {
	out := make(map[Purpose]string, len(b.Keys))
	for _, k := range b.Keys {
		out[k.Purpose] = k.PrivateKey
	}
	return out
}

// ProcessKeys generates one key addition per purpose, in order. Each
// purpose may appear once.
func ProcessKeys(addr string, purposes []Purpose, enc KeyEncrypter) (*KeyBatch, error) {
	seen := make(map[Purpose]struct{}, len(purposes))
	batch := &KeyBatch{}
	for _, p := range purposes {
		if _, dup := seen[p]; dup {
			return nil, errcode.Newf(errcode.KeyDuplicated, "the key ID %q must be unique", p)
		}
		seen[p] = struct{}{}

		element, value, kp, err := NewKeyElement(addr, p, enc)
		if err != nil {
			return nil, err
		}
		batch.Elements = append(batch.Elements, element)
		batch.Values = append(batch.Values, value)
		batch.Keys = append(batch.Keys, *kp)
	}
	return batch, nil
}
