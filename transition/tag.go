package transition

import (
	"encoding/json"

	"github.com/pilacorp/go-ssi-sdk/errcode"
)

// Tag is the name of a contract transition. Values must match the
// contracts' declarations exactly, casing included.
type Tag string

const (
	TagDidCreate               Tag = "DidCreate"
	TagDidUpdate               Tag = "DidUpdate"
	TagDidRecover              Tag = "DidRecover"
	TagDidDeactivate           Tag = "DidDeactivate"
	TagSetSsiDomain            Tag = "SetSsiDomain"
	TagTransfer                Tag = "Transfer"
	TagSendFunds               Tag = "SendFunds"
	TagDonate                  Tag = "Donate"
	TagBuyNftUsername          Tag = "BuyNftUsername"
	TagTransferNftUsername     Tag = "TransferNftUsername"
	TagConfigureSocialRecovery Tag = "ConfigureSocialRecovery"
	TagSocialRecovery          Tag = "SocialRecovery"
)

var tags = map[Tag]struct{}{
	TagDidCreate:               {},
	TagDidUpdate:               {},
	TagDidRecover:              {},
	TagDidDeactivate:           {},
	TagSetSsiDomain:            {},
	TagTransfer:                {},
	TagSendFunds:               {},
	TagDonate:                  {},
	TagBuyNftUsername:          {},
	TagTransferNftUsername:     {},
	TagConfigureSocialRecovery: {},
	TagSocialRecovery:          {},
}

// ParseTag returns s as a Tag if it names a known transition.
func ParseTag(s string) (Tag, error) {
	t := Tag(s)
	if _, ok := tags[t]; !ok {
		return "", errcode.Newf(errcode.UnsupportedElement, "unknown transition %q", s)
	}
	return t, nil
}

func (t Tag) String() string {
	return string(t)
}

// Data is the JSON object carried in a transaction's data field.
type Data struct {
	Tag    Tag     `json:"_tag"`
	Amount string  `json:"_amount"`
	Sender string  `json:"_sender"`
	Params []Param `json:"params"`
}

// NewData returns the call data for tag. Amount defaults to "0".
func NewData(tag Tag, amount, sender string, params []Param) (*Data, error) {
	if _, err := ParseTag(string(tag)); err != nil {
		return nil, err
	}
	if amount == "" {
		amount = "0"
	}
	if params == nil {
		params = []Param{}
	}
	return &Data{Tag: tag, Amount: amount, Sender: sender, Params: params}, nil
}

// JSON returns the serialized call data.
func (d *Data) JSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
