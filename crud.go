package ssi

import (
	"context"
	"strings"

	"github.com/pilacorp/go-ssi-sdk/chain"
	"github.com/pilacorp/go-ssi-sdk/did"
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/log"
	"github.com/pilacorp/go-ssi-sdk/signer"
	"github.com/pilacorp/go-ssi-sdk/state"
	"github.com/pilacorp/go-ssi-sdk/transition"
	"github.com/pkg/errors"
)

// DocumentResult is the outcome of an operation that writes a DID
// document.
type DocumentResult struct {
	DID string
	// Keys are the key pairs generated by the operation.
	Keys []did.KeyPair
	Tx   *chain.TxResult
}

// PrivateKeys returns the generated private keys by purpose.
func (r *DocumentResult) PrivateKeys() map[did.Purpose]string {
	out := make(map[did.Purpose]string, len(r.Keys))
	for _, k := range r.Keys {
		out[k.Purpose] = k.PrivateKey
	}
	return out
}

// withOperationKeys appends the update and recovery purposes when they are
// not requested, since every document needs both.
func withOperationKeys(purposes []did.Purpose) []did.Purpose {
	out := append([]did.Purpose(nil), purposes...)
	for _, p := range []did.Purpose{did.PurposeUpdate, did.PurposeRecovery} {
		found := false
		for _, q := range out {
			if q == p {
				found = true
				break
			}
		}
		if !found {
			out = append(out, p)
		}
	}
	return out
}

// serviceElements builds the additions of services.
func serviceElements(addr string, services []did.ServiceModel) ([]did.DocumentElement, []transition.Value, error) {
	elements := make([]did.DocumentElement, 0, len(services))
	values := make([]transition.Value, 0, len(services))
	for _, s := range services {
		e := did.NewServiceAddition(s)
		v, err := did.BuildElement(addr, e)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "service %q", s.ID)
		}
		elements = append(elements, e)
		values = append(values, v)
	}
	return elements, values, nil
}

// newDocument generates keys for purposes and appends services, returning
// the elements, their values and the key pairs.
func (o *Operator) newDocument(addr string, purposes []did.Purpose, services []did.ServiceModel) ([]did.DocumentElement, []transition.Value, []did.KeyPair, error) {
	batch, err := did.ProcessKeys(addr, withOperationKeys(purposes), o.cfg.Encrypter)
	if err != nil {
		return nil, nil, nil, err
	}
	svcElements, svcValues, err := serviceElements(addr, services)
	if err != nil {
		return nil, nil, nil, err
	}
	return append(batch.Elements, svcElements...), append(batch.Values, svcValues...), batch.Keys, nil
}

// fetch reads the DID state at addr and checks its status against the
// allowed ones.
func (o *Operator) fetch(ctx context.Context, addr string, allowed ...state.Status) (*state.DidState, error) {
	s, err := state.Fetch(ctx, o.client, addr)
	if err != nil {
		return nil, err
	}
	if s.Status == state.StatusLocked {
		return nil, errcode.New(errcode.DidLocked, "The requested DID is locked")
	}
	for _, st := range allowed {
		if s.Status == st {
			return s, nil
		}
	}
	return nil, errcode.Newf(errcode.WrongStatus, "operation not allowed with DID status %q", s.Status)
}

// checkKey verifies that privHex belongs to the public key on record.
func checkKey(privHex, onRecord string, purpose did.Purpose) error {
	if onRecord == "" {
		return nil
	}
	p, err := signer.NewDefaultProvider(privHex)
	if err != nil {
		return err
	}
	if !strings.EqualFold(p.PublicKey(), onRecord) {
		return errcode.Newf(errcode.InvalidKey, "the %s key does not match the DID", purpose)
	}
	return nil
}

// key returns privHex, or the stored key of purpose when privHex is empty.
func (o *Operator) key(addr, privHex string, purpose did.Purpose) (string, error) {
	if privHex != "" {
		return privHex, nil
	}
	return o.keys.Get(addr, purpose)
}

func (o *Operator) documentID(s *state.DidState) string {
	if s.DID != "" {
		return s.DID
	}
	return did.New(o.chainCfg.Network, s.Address).String()
}

// Create writes the first document of the DID contract at addr: one new key
// per purpose, the update and recovery keys included, and the given
// services. The contract must be freshly deployed.
func (o *Operator) Create(ctx context.Context, addr string, purposes []did.Purpose, services []did.ServiceModel) (*DocumentResult, error) {
	s, err := o.fetch(ctx, addr, "", state.StatusDeployed)
	if err != nil {
		return nil, err
	}

	_, values, keys, err := o.newDocument(s.Address, purposes, services)
	if err != nil {
		return nil, err
	}
	donation, amount, err := o.donation()
	if err != nil {
		return nil, err
	}

	params := transition.Crud(s.Address, values, transition.Signature(""), donation)
	tx, err := o.call(ctx, s.Address, transition.TagDidCreate, amount, params)
	if err != nil {
		return nil, err
	}

	res := &DocumentResult{DID: o.documentID(s), Keys: keys, Tx: tx}
	o.keys.Put(s.Address, res.PrivateKeys())
	log.L(ctx).Infof("Created %s", res.DID)
	return res, nil
}

// Update applies patches to the document at addr. The update key is always
// rotated: a new update key is added ahead of the patch elements, and the
// document hash is signed with the current update key. An empty updateKey
// uses the one in the KeyStore.
func (o *Operator) Update(ctx context.Context, addr, updateKey string, patches []did.PatchModel) (*DocumentResult, error) {
	s, err := o.fetch(ctx, addr, state.StatusCreated, state.StatusUpdated, state.StatusRecovered)
	if err != nil {
		return nil, err
	}
	if updateKey, err = o.key(s.Address, updateKey, did.PurposeUpdate); err != nil {
		return nil, err
	}
	onRecord := s.UpdateKey
	if onRecord == "" {
		onRecord = s.VerificationMethods[string(did.PurposeUpdate)]
	}
	if err := checkKey(updateKey, onRecord, did.PurposeUpdate); err != nil {
		return nil, err
	}

	patched, err := did.ProcessPatches(s.Address, patches)
	if err != nil {
		return nil, err
	}
	rotation, rotationValue, kp, err := did.NewKeyElement(s.Address, did.PurposeUpdate, o.cfg.Encrypter)
	if err != nil {
		return nil, err
	}
	elements := append([]did.DocumentElement{rotation}, patched.Elements...)
	values := append([]transition.Value{rotationValue}, patched.UpdateDocument...)

	hash, err := did.HashDocument(elements)
	if err != nil {
		return nil, err
	}
	sig, err := signHex(updateKey, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign DID update")
	}
	donation, amount, err := o.donation()
	if err != nil {
		return nil, err
	}

	params := transition.Crud(s.Address, values, transition.Signature(sig), donation)
	tx, err := o.call(ctx, s.Address, transition.TagDidUpdate, amount, params)
	if err != nil {
		return nil, err
	}

	res := &DocumentResult{DID: o.documentID(s), Keys: []did.KeyPair{*kp}, Tx: tx}
	o.keys.Put(s.Address, res.PrivateKeys())
	log.L(ctx).Infof("Updated %s", res.DID)
	return res, nil
}

// Recover replaces the document at addr with new keys for purposes, the
// update and recovery keys included, and the given services. The document
// hash is signed with the recovery key. An empty recoveryKey uses the one
// in the KeyStore.
func (o *Operator) Recover(ctx context.Context, addr, recoveryKey string, purposes []did.Purpose, services []did.ServiceModel) (*DocumentResult, error) {
	s, err := o.fetch(ctx, addr, state.StatusCreated, state.StatusUpdated, state.StatusRecovered)
	if err != nil {
		return nil, err
	}
	if recoveryKey, err = o.key(s.Address, recoveryKey, did.PurposeRecovery); err != nil {
		return nil, err
	}
	onRecord := s.RecoveryKey
	if onRecord == "" {
		onRecord = s.VerificationMethods[string(did.PurposeRecovery)]
	}
	if err := checkKey(recoveryKey, onRecord, did.PurposeRecovery); err != nil {
		return nil, err
	}

	elements, values, keys, err := o.newDocument(s.Address, purposes, services)
	if err != nil {
		return nil, err
	}
	hash, err := did.HashDocument(elements)
	if err != nil {
		return nil, err
	}
	sig, err := signHex(recoveryKey, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign DID recovery")
	}
	donation, amount, err := o.donation()
	if err != nil {
		return nil, err
	}

	params := transition.Crud(s.Address, values, transition.Signature(sig), donation)
	tx, err := o.call(ctx, s.Address, transition.TagDidRecover, amount, params)
	if err != nil {
		return nil, err
	}

	res := &DocumentResult{DID: o.documentID(s), Keys: keys, Tx: tx}
	o.keys.Delete(s.Address)
	o.keys.Put(s.Address, res.PrivateKeys())
	log.L(ctx).Infof("Recovered %s", res.DID)
	return res, nil
}

// Deactivate permanently retires the DID at addr. The recovery key signs
// the DID string.
func (o *Operator) Deactivate(ctx context.Context, addr, recoveryKey string) (*chain.TxResult, error) {
	s, err := o.fetch(ctx, addr, state.StatusCreated, state.StatusUpdated, state.StatusRecovered)
	if err != nil {
		return nil, err
	}
	if recoveryKey, err = o.key(s.Address, recoveryKey, did.PurposeRecovery); err != nil {
		return nil, err
	}
	onRecord := s.RecoveryKey
	if onRecord == "" {
		onRecord = s.VerificationMethods[string(did.PurposeRecovery)]
	}
	if err := checkKey(recoveryKey, onRecord, did.PurposeRecovery); err != nil {
		return nil, err
	}

	id := o.documentID(s)
	sig, err := signBytes(recoveryKey, []byte(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign DID deactivation")
	}
	donation, amount, err := o.donation()
	if err != nil {
		return nil, err
	}

	tx, err := o.call(ctx, s.Address, transition.TagDidDeactivate, amount, transition.Deactivate(transition.Signature(sig), donation))
	if err != nil {
		return nil, err
	}
	o.keys.Delete(s.Address)
	log.L(ctx).Infof("Deactivated %s", id)
	return tx, nil
}
