package did

import (
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/transition"
	"github.com/pkg/errors"
)

// PatchAction is the closed set of patch kinds.
type PatchAction string

const (
	PatchRemoveKeys     PatchAction = "RemoveKeys"
	PatchAddServices    PatchAction = "AddServices"
	PatchRemoveServices PatchAction = "RemoveServices"
)

// PatchModel is a declarative change to a DID document. A nil IDs or
// Services slice means the field was not given; an empty one is valid and
// produces no elements.
type PatchModel struct {
	Action   PatchAction    `json:"action"`
	IDs      []string       `json:"ids,omitempty"`
	Services []ServiceModel `json:"services,omitempty"`
}

// PatchResult holds the expanded patches. Elements and UpdateDocument are
// index-aligned and follow patch order.
type PatchResult struct {
	Elements       []DocumentElement
	UpdateDocument []transition.Value
}

func (r *PatchResult) add(addr string, e DocumentElement) error {
	v, err := BuildElement(addr, e)
	if err != nil {
		return err
	}
	r.Elements = append(r.Elements, e)
	r.UpdateDocument = append(r.UpdateDocument, v)
	return nil
}

// ProcessPatches expands patches, in order, into document elements and
// their contract values for the contract at addr. The first failing patch
// fails the whole call and no partial result is returned.
func ProcessPatches(addr string, patches []PatchModel) (*PatchResult, error) {
	res := &PatchResult{
		Elements:       []DocumentElement{},
		UpdateDocument: []transition.Value{},
	}
	for i, patch := range patches {
		if err := res.apply(addr, patch); err != nil {
			return nil, errors.Wrapf(err, "patch %d", i)
		}
	}
	return res, nil
}

func (r *PatchResult) apply(addr string, patch PatchModel) error {
	switch patch.Action {
	case PatchRemoveKeys:
		if patch.IDs == nil {
			return errcode.New(errcode.Missing, "No key ID given to remove")
		}
		for _, id := range patch.IDs {
			if err := r.add(addr, NewKeyRemoval(id)); err != nil {
				return err
			}
		}
	case PatchAddServices:
		if patch.Services == nil {
			return errcode.New(errcode.Missing, "No services given to add")
		}
		for _, s := range patch.Services {
			if err := r.add(addr, NewServiceAddition(s)); err != nil {
				return err
			}
		}
	case PatchRemoveServices:
		if patch.IDs == nil {
			return errcode.New(errcode.Missing, "No service ID given to remove")
		}
		for _, id := range patch.IDs {
			if err := r.add(addr, NewServiceRemoval(id)); err != nil {
				return err
			}
		}
	default:
		return errcode.Newf(errcode.CodeIncorrectPatchAction, "the chosen action %q is not valid", patch.Action)
	}
	return nil
}
