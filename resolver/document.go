package resolver

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pilacorp/go-ssi-sdk/did"
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/state"
)

// ContextDIDv1 is the JSON-LD context of every DID document.
const ContextDIDv1 = "https://www.w3.org/ns/did/v1"

// VerificationKeyType is the type of every verification method.
const VerificationKeyType = "SchnorrSecp256k1VerificationKey2019"

// Document properties of each key purpose.
var purposeProperties = map[did.Purpose]string{
	did.PurposeGeneral:        "publicKey",
	did.PurposeAuth:           "authentication",
	did.PurposeAssertion:      "assertionMethod",
	did.PurposeAgreement:      "keyAgreement",
	did.PurposeInvocation:     "capabilityInvocation",
	did.PurposeDelegation:     "capabilityDelegation",
	did.PurposeUpdate:         "didUpdate",
	did.PurposeRecovery:       "didRecovery",
	did.PurposeSocialRecovery: "socialRecovery",
}

// PropertyOf returns the document property holding keys of purpose p.
func PropertyOf(p did.Purpose) (string, bool) {
	prop, ok := purposeProperties[p]
	return prop, ok
}

// VerificationMethod is a public key of the DID.
type VerificationMethod struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	PublicKeyBase58 string `json:"publicKeyBase58"`
}

// Service is a service endpoint of the DID. Either URI (with Type) or
// Address is set.
type Service struct {
	ID      string `json:"id"`
	Type    string `json:"type,omitempty"`
	URI     string `json:"uri,omitempty"`
	Address string `json:"address,omitempty"`
}

// DidDocument is the resolved form of a DID state.
type DidDocument struct {
	Context    []string `json:"@context"`
	ID         string   `json:"id"`
	Controller string   `json:"controller,omitempty"`
	// VerificationMethods is keyed by document property, see PropertyOf.
	VerificationMethods map[string]VerificationMethod `json:"verificationMethods"`
	// DKMS is keyed like VerificationMethods.
	DKMS     map[string]string `json:"dkms,omitempty"`
	Services []Service         `json:"services,omitempty"`
}

// Read builds the DID document of a decoded state. Every verification
// method id must be a known purpose.
func Read(s *state.DidState, id string) (*DidDocument, error) {
	doc := &DidDocument{
		Context:             []string{ContextDIDv1},
		ID:                  id,
		Controller:          s.Controller,
		VerificationMethods: map[string]VerificationMethod{},
	}

	for purpose, key := range s.VerificationMethods {
		prop, ok := PropertyOf(did.Purpose(purpose))
		if !ok {
			return nil, errcode.Newf(errcode.InvalidPurpose, "the resolver detected an invalid key purpose %q", purpose)
		}
		raw, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
		if err != nil {
			return nil, errcode.Newf(errcode.InvalidKey, "invalid %s key: %v", purpose, err)
		}
		doc.VerificationMethods[prop] = VerificationMethod{
			ID:              id + "#" + purpose,
			Type:            VerificationKeyType,
			PublicKeyBase58: base58.Encode(raw),
		}
		if enc, ok := s.DKMS[purpose]; ok {
			if doc.DKMS == nil {
				doc.DKMS = map[string]string{}
			}
			doc.DKMS[prop] = enc
		}
	}

	for _, svc := range s.Services {
		doc.Services = append(doc.Services, Service{
			ID:      id + "#" + svc.ID,
			Type:    svc.Type,
			URI:     svc.URI,
			Address: svc.Address,
		})
	}
	return doc, nil
}

// PublicKey returns the 0x compressed public key of purpose p.
func (d *DidDocument) PublicKey(p did.Purpose) (string, bool) {
	prop, ok := PropertyOf(p)
	if !ok {
		return "", false
	}
	vm, ok := d.VerificationMethods[prop]
	if !ok {
		return "", false
	}
	return "0x" + hex.EncodeToString(base58.Decode(vm.PublicKeyBase58)), true
}
