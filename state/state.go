// Package state reads DID contracts and decodes their mutable fields into
// a DidState.
package state

import (
	"context"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pilacorp/go-ssi-sdk/chain"
	"github.com/pilacorp/go-ssi-sdk/did"
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/log"
	"github.com/pkg/errors"
)

// Status is the lifecycle status of a DID contract.
type Status string

const (
	StatusCreated     Status = "Created"
	StatusRecovered   Status = "Recovered"
	StatusUpdated     Status = "Updated"
	StatusDeactivated Status = "Deactivated"
	StatusLocked      Status = "Locked"
	StatusDeployed    Status = "Deployed"
)

// ParseStatus returns s as a Status if it is known.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusCreated, StatusRecovered, StatusUpdated, StatusDeactivated, StatusLocked, StatusDeployed:
		return st, nil
	}
	return "", errcode.Newf(errcode.WrongStatus, "unknown DID status %q", s)
}

// ServiceRecord is a decoded service. Either URI (with Type) or Address is
// set.
type ServiceRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type,omitempty"`
	URI     string `json:"uri,omitempty"`
	Address string `json:"address,omitempty"`
}

// DidState is a snapshot of a DID contract. Absent fields stay at their
// zero value.
type DidState struct {
	// Address of the DID contract, lowercase 0x hex.
	Address    string
	DID        string
	Controller string
	Status     Status
	Version    string
	// VerificationMethods maps purpose to the 0x compressed public key.
	VerificationMethods map[string]string
	// DKMS maps purpose to the encrypted private key.
	DKMS map[string]string
	// Services is sorted by id.
	Services []ServiceRecord
	// Guardians holds the social-recovery guardian hashes, sorted.
	Guardians   []string
	DidHash     string
	UpdateKey   string
	RecoveryKey string
}

// adt is a contract ADT value in its JSON form.
type adt struct {
	Constructor string   `json:"constructor"`
	ArgTypes    []string `json:"argtypes"`
	Arguments   []any    `json:"arguments"`
}

// option returns the first argument of a Some value.
func (a *adt) option() string {
	if a == nil || a.Constructor != "Some" || len(a.Arguments) == 0 {
		return ""
	}
	s, _ := a.Arguments[0].(string)
	return s
}

// rawState is the contract state as returned by the node.
type rawState struct {
	DID                 string            `json:"did"`
	Controller          string            `json:"controller"`
	Version             string            `json:"version"`
	Status              *adt              `json:"did_status"`
	VerificationMethods map[string]string `json:"verification_methods"`
	DKMS                map[string]string `json:"dkms"`
	Services            map[string]any    `json:"services"`
	URIServices         map[string]any    `json:"services_"`
	Guardians           map[string]any    `json:"social_guardians"`
	DidHash             string            `json:"did_hash"`
	UpdateKey           *adt              `json:"did_update_key"`
	RecoveryKey         *adt              `json:"did_recovery_key"`
}

func decodeMap(in any, out any) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: out})
	if err != nil {
		return err
	}
	return d.Decode(in)
}

// Decode maps a contract state into a DidState.
//
// A Deactivated status is returned as a DidDeactivated error with no state;
// callers must not read the document of a deactivated DID.
func Decode(raw map[string]any) (*DidState, error) {
	var r rawState
	if err := decodeMap(raw, &r); err != nil {
		return nil, errors.Wrap(err, "failed to decode DID state")
	}

	s := &DidState{
		DID:                 r.DID,
		Controller:          strings.ToLower(r.Controller),
		Version:             r.Version,
		VerificationMethods: r.VerificationMethods,
		DKMS:                r.DKMS,
		DidHash:             r.DidHash,
		UpdateKey:           r.UpdateKey.option(),
		RecoveryKey:         r.RecoveryKey.option(),
	}
	if s.VerificationMethods == nil {
		s.VerificationMethods = map[string]string{}
	}

	if r.Status != nil {
		status, err := ParseStatus(r.Status.Constructor)
		if err != nil {
			return nil, err
		}
		if status == StatusDeactivated {
			return nil, errcode.New(errcode.DidDeactivated, "The requested DID is deactivated")
		}
		s.Status = status
	}

	services, err := decodeServices(r.Services, r.URIServices)
	if err != nil {
		return nil, err
	}
	s.Services = services
	s.Guardians = sortedKeys(r.Guardians)
	return s, nil
}

// decodeServices merges the address services map and the URI services map.
// A value is either a plain address string, or an ADT whose arguments are
// [type, uri] or [address].
func decodeServices(maps ...map[string]any) ([]ServiceRecord, error) {
	var out []ServiceRecord
	for _, m := range maps {
		for id, v := range m {
			rec, err := decodeService(id, v)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func decodeService(id string, v any) (ServiceRecord, error) {
	rec := ServiceRecord{ID: id}
	if s, ok := v.(string); ok {
		rec.Address = strings.ToLower(s)
		return rec, nil
	}

	var a adt
	if err := decodeMap(v, &a); err != nil {
		return rec, errors.Wrapf(err, "failed to decode service %q", id)
	}
	args := make([]string, 0, len(a.Arguments))
	for _, arg := range a.Arguments {
		if s, ok := arg.(string); ok {
			args = append(args, s)
		}
	}
	switch len(args) {
	case 1:
		rec.Address = strings.ToLower(args[0])
	case 2:
		rec.Type, rec.URI = args[0], args[1]
	default:
		return rec, errcode.Newf(errcode.UnsupportedElement, "unsupported encoding of service %q", id)
	}
	return rec, nil
}

func sortedKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fetch reads and decodes the state of the DID contract at addr.
func Fetch(ctx context.Context, c *chain.Client, addr string) (*DidState, error) {
	norm, err := chain.NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}
	raw, err := c.GetSmartContractState(ctx, norm)
	if err != nil {
		return nil, err
	}
	s, err := Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "DID contract %s", norm)
	}
	s.Address = norm
	if s.DID == "" {
		log.L(ctx).Debugf("DID contract %s has no DID yet", norm)
	} else if _, err := did.Parse(s.DID); err != nil {
		return nil, err
	}
	return s, nil
}

// subStateField reads one field, optionally narrowed by indices, and walks
// the result down to the indexed value. A missing field or entry is
// NotFound.
func subStateField(ctx context.Context, c *chain.Client, addr, field string, indices ...string) (any, error) {
	res, err := c.GetSmartContractSubState(ctx, addr, field, indices...)
	if err != nil {
		return nil, err
	}
	v, ok := res[field]
	for _, idx := range indices {
		if !ok {
			break
		}
		m, isMap := v.(map[string]any)
		if !isMap {
			ok = false
			break
		}
		v, ok = m[idx]
	}
	if !ok || v == nil {
		path := append([]string{field}, indices...)
		return nil, errcode.Newf(errcode.NotFound, "%s not found in %s", strings.Join(path, "."), addr)
	}
	return v, nil
}

// FetchVersion returns the contract version string of addr.
func FetchVersion(ctx context.Context, c *chain.Client, addr string) (string, error) {
	v, err := subStateField(ctx, c, addr, "version")
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("unexpected version value %T", v)
	}
	return s, nil
}

// FetchGuardians returns the sorted social-recovery guardian hashes of addr.
func FetchGuardians(ctx context.Context, c *chain.Client, addr string) ([]string, error) {
	v, err := subStateField(ctx, c, addr, "social_guardians")
	if errcode.Is(err, errcode.NotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Errorf("unexpected guardians value %T", v)
	}
	out := sortedKeys(m)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// Domains that resolve to the DID contract itself.
const (
	DomainDID = "did"
	DomainSSI = "ssi"
)

// ResolveDomain returns the address that username.domain points to. The
// init contract's dns map, keyed by did.UsernameHash, gives the DID
// contract of username; any other
// domain than did or ssi is then looked up in that contract's
// did_domain_dns map.
func ResolveDomain(ctx context.Context, c *chain.Client, initAddr, username, domain string) (string, error) {
	v, err := subStateField(ctx, c, initAddr, "dns", did.UsernameHash(username))
	if err != nil {
		return "", err
	}
	addr, err := addressValue(v)
	if err != nil {
		return "", err
	}

	switch domain {
	case "", DomainDID, DomainSSI:
		return addr, nil
	}

	v, err = subStateField(ctx, c, addr, "did_domain_dns", domain)
	if err != nil {
		return "", err
	}
	return addressValue(v)
}

func addressValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errcode.Newf(errcode.InvalidAddress, "unexpected address value %T", v)
	}
	return chain.NormalizeAddress(s)
}
