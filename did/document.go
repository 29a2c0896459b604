package did

import (
	"github.com/pilacorp/go-ssi-sdk/errcode"
)

// Action is what a document element does to the document. The values are
// the labels folded into the document hash.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// constructorName is the contract constructor of the action.
func (a Action) constructorName() (string, bool) {
	switch a {
	case ActionAdd:
		return "Add", true
	case ActionRemove:
		return "Remove", true
	}
	return "", false
}

// Constructor names the kind of document element.
type Constructor string

const (
	ConstructorVerificationMethod Constructor = "VerificationMethod"
	ConstructorService            Constructor = "Service"
)

// EndpointKind selects how a service endpoint is expressed.
type EndpointKind string

const (
	EndpointURI     EndpointKind = "Uri"
	EndpointAddress EndpointKind = "Address"
)

// TransferProtocol of a URI endpoint.
type TransferProtocol string

const (
	ProtocolHTTPS TransferProtocol = "Https"
	ProtocolGit   TransferProtocol = "Git"
	ProtocolSSH   TransferProtocol = "Ssh"
)

func (p TransferProtocol) valid() bool {
	switch p {
	case ProtocolHTTPS, ProtocolGit, ProtocolSSH:
		return true
	}
	return false
}

// PublicKeyModel is the key payload of a verification-method element.
// Key and Encrypted are empty on removals.
type PublicKeyModel struct {
	ID        string `json:"id"`
	Key       string `json:"key,omitempty"`
	Encrypted string `json:"encrypted,omitempty"`
}

// ServiceModel is the payload of a service element. Only ID is set on
// removals.
type ServiceModel struct {
	ID               string           `json:"id"`
	Endpoint         EndpointKind     `json:"endpoint,omitempty"`
	Type             string           `json:"type,omitempty"`
	TransferProtocol TransferProtocol `json:"transferProtocol,omitempty"`
	Value            string           `json:"value,omitempty"`
	// ChainType tags the blockchain of an Address endpoint.
	ChainType string `json:"chainType,omitempty"`
}

// DocumentElement is one addition or removal in a DID document. Exactly one
// of Key and Service is set, matching Constructor.
type DocumentElement struct {
	Constructor Constructor     `json:"constructor"`
	Action      Action          `json:"action"`
	Key         *PublicKeyModel `json:"key,omitempty"`
	Service     *ServiceModel   `json:"service,omitempty"`
}

// NewKeyRemoval returns the element removing the key with the given id.
func NewKeyRemoval(id string) DocumentElement {
	return DocumentElement{
		Constructor: ConstructorVerificationMethod,
		Action:      ActionRemove,
		Key:         &PublicKeyModel{ID: id},
	}
}

// NewServiceAddition returns the element adding service.
func NewServiceAddition(service ServiceModel) DocumentElement {
	return DocumentElement{
		Constructor: ConstructorService,
		Action:      ActionAdd,
		Service:     &service,
	}
}

// NewServiceRemoval returns the element removing the service with the given id.
func NewServiceRemoval(id string) DocumentElement {
	return DocumentElement{
		Constructor: ConstructorService,
		Action:      ActionRemove,
		Service:     &ServiceModel{ID: id},
	}
}

// ID returns the key or service id of the element.
func (e DocumentElement) ID() string {
	switch {
	case e.Key != nil:
		return e.Key.ID
	case e.Service != nil:
		return e.Service.ID
	}
	return ""
}

// Validate checks the shape of the element.
func (e DocumentElement) Validate() error {
	if _, ok := e.Action.constructorName(); !ok {
		return errcode.Newf(errcode.UnsupportedElement, "unsupported action %q", e.Action)
	}

	switch e.Constructor {
	case ConstructorVerificationMethod:
		if e.Key == nil || e.Service != nil {
			return errcode.New(errcode.UnsupportedElement, "a verification method carries exactly one key")
		}
		if e.Key.ID == "" {
			return errcode.New(errcode.Missing, "key id is required")
		}
		if e.Action == ActionAdd && e.Key.Key == "" {
			return errcode.Newf(errcode.Missing, "public key of %q is required", e.Key.ID)
		}
	case ConstructorService:
		if e.Service == nil || e.Key != nil {
			return errcode.New(errcode.UnsupportedElement, "a service element carries exactly one service")
		}
		if e.Service.ID == "" {
			return errcode.New(errcode.Missing, "service id is required")
		}
		if e.Action == ActionAdd {
			return e.Service.validate()
		}
	default:
		return errcode.Newf(errcode.UnsupportedElement, "unsupported document element %q", e.Constructor)
	}
	return nil
}

func (s *ServiceModel) validate() error {
	switch s.Endpoint {
	case EndpointURI:
		if !s.TransferProtocol.valid() {
			return errcode.Newf(errcode.UnsupportedElement, "unsupported transfer protocol %q", s.TransferProtocol)
		}
		if s.Type == "" {
			return errcode.Newf(errcode.Missing, "type of service %q is required", s.ID)
		}
	case EndpointAddress:
		if s.ChainType == "" {
			return errcode.Newf(errcode.Missing, "chain type of service %q is required", s.ID)
		}
	default:
		return errcode.Newf(errcode.UnsupportedElement, "unsupported service endpoint %q", s.Endpoint)
	}
	if s.Value == "" {
		return errcode.Newf(errcode.Missing, "endpoint of service %q is required", s.ID)
	}
	return nil
}
