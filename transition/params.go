package transition

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pilacorp/go-ssi-sdk/errcode"
)

// Contract type names used in parameter lists.
const (
	TypeString     = "String"
	TypeUint128    = "Uint128"
	TypeByStr20    = "ByStr20"
	TypeByStr32    = "ByStr32"
	TypeByStr33    = "ByStr33"
	TypeByStr64    = "ByStr64"
	TypeOptByStr20 = "Option ByStr20"
	TypeOptByStr64 = "Option ByStr64"
	TypeOptUint128 = "Option Uint128"
)

// BeneficiaryVersion is the first wallet version that addresses
// beneficiaries by NFT username instead of by address.
const BeneficiaryVersion = 6

// Signature returns Some(sig) as an Option ByStr64, or None when sig is empty.
func Signature(sig string) Value {
	if sig == "" {
		return None(TypeByStr64)
	}
	return Some(TypeByStr64, ensure0x(sig))
}

// Crud builds the parameters shared by DidCreate, DidUpdate and DidRecover:
// the ordered document elements, the optional operation signature and the
// optional donation.
func Crud(addr string, document []Value, signature, donation Value) []Param {
	doc := make([]any, len(document))
	for i, v := range document {
		doc[i] = v
	}
	return []Param{
		{VName: "document", Type: "List " + ScopedName(addr, "Document"), Value: doc},
		{VName: "signature", Type: TypeOptByStr64, Value: signature},
		{VName: "tyron", Type: TypeOptUint128, Value: donation},
	}
}

// Deactivate builds the DidDeactivate parameters.
func Deactivate(signature, donation Value) []Param {
	return []Param{
		{VName: "signature", Type: TypeOptByStr64, Value: signature},
		{VName: "tyron", Type: TypeOptUint128, Value: donation},
	}
}

// Dns builds the SetSsiDomain parameters.
func Dns(domain, avatar string) []Param {
	return []Param{
		{VName: "domain", Type: TypeString, Value: domain},
		{VName: "avatar", Type: TypeString, Value: avatar},
	}
}

// Beneficiary builds the recipient of a transfer. Wallets older than
// BeneficiaryVersion only accept an address; newer ones take an NFT
// username and domain.
func Beneficiary(addr string, version int, recipient, username, domain string) (Value, error) {
	if version < BeneficiaryVersion {
		if !common.IsHexAddress(recipient) {
			return Value{}, errcode.Newf(errcode.InvalidAddress, "invalid beneficiary address %q", recipient)
		}
		return NewValue(ScopedName(addr, "Recipient"), strings.ToLower(recipient)), nil
	}
	if username == "" {
		return Value{}, errcode.New(errcode.Missing, "beneficiary username is required")
	}
	return NewValue(ScopedName(addr, "NftUsername"), username, domain), nil
}

// Transfer builds the parameters of a fungible-token Transfer.
func Transfer(addr, token string, beneficiary Value, amount string, donation Value) []Param {
	return []Param{
		{VName: "addrName", Type: TypeString, Value: strings.ToLower(token)},
		{VName: "beneficiary", Type: ScopedName(addr, "Beneficiary"), Value: beneficiary},
		{VName: "amount", Type: TypeUint128, Value: amount},
		{VName: "tyron", Type: TypeOptUint128, Value: donation},
	}
}

// SendFunds builds the parameters of a native-coin transfer. tag names the
// transition the recipient contract accepts the funds with.
func SendFunds(addr, tag string, beneficiary Value, amount string, donation Value) []Param {
	return []Param{
		{VName: "tag", Type: TypeString, Value: tag},
		{VName: "beneficiary", Type: ScopedName(addr, "Beneficiary"), Value: beneficiary},
		{VName: "amount", Type: TypeUint128, Value: amount},
		{VName: "tyron", Type: TypeOptUint128, Value: donation},
	}
}

// Donate builds the Donate parameters.
func Donate(campaign string) []Param {
	return []Param{
		{VName: "campaign", Type: TypeString, Value: campaign},
	}
}

// BuyNftUsername builds the BuyNftUsername parameters. An empty owner
// assigns the username to the calling contract.
func BuyNftUsername(username, owner, currency string, donation Value) ([]Param, error) {
	ownerOpt := None(TypeByStr20)
	if owner != "" {
		if !common.IsHexAddress(owner) {
			return nil, errcode.Newf(errcode.InvalidAddress, "invalid owner address %q", owner)
		}
		ownerOpt = Some(TypeByStr20, strings.ToLower(owner))
	}
	return []Param{
		{VName: "username", Type: TypeString, Value: username},
		{VName: "addr", Type: TypeOptByStr20, Value: ownerOpt},
		{VName: "id", Type: TypeString, Value: strings.ToLower(currency)},
		{VName: "tyron", Type: TypeOptUint128, Value: donation},
	}, nil
}

// TransferNftUsername builds the TransferNftUsername parameters.
func TransferNftUsername(username, newOwner, newDid string, donation Value) ([]Param, error) {
	for _, a := range []string{newOwner, newDid} {
		if !common.IsHexAddress(a) {
			return nil, errcode.Newf(errcode.InvalidAddress, "invalid address %q", a)
		}
	}
	return []Param{
		{VName: "username", Type: TypeString, Value: username},
		{VName: "addr", Type: TypeByStr20, Value: strings.ToLower(newOwner)},
		{VName: "dID", Type: TypeByStr20, Value: strings.ToLower(newDid)},
		{VName: "tyron", Type: TypeOptUint128, Value: donation},
	}, nil
}

// ConfigureSocialRecovery builds the ConfigureSocialRecovery parameters
// from the guardians' ByStr32 hashes and the update-key signature over
// their concatenation.
func ConfigureSocialRecovery(guardians []string, sig string, donation Value) []Param {
	list := make([]any, len(guardians))
	for i, g := range guardians {
		list[i] = ensure0x(g)
	}
	return []Param{
		{VName: "guardians", Type: "List " + TypeByStr32, Value: list},
		{VName: "sig", Type: TypeByStr64, Value: ensure0x(sig)},
		{VName: "tyron", Type: TypeOptUint128, Value: donation},
	}
}

// GuardianSignature pairs a guardian hash with its signature.
type GuardianSignature struct {
	Guardian  string
	Signature string
}

// SocialRecovery builds the SocialRecovery parameters.
func SocialRecovery(newController string, signatures []GuardianSignature, donation Value) ([]Param, error) {
	if !common.IsHexAddress(newController) {
		return nil, errcode.Newf(errcode.InvalidAddress, "invalid controller address %q", newController)
	}
	if len(signatures) == 0 {
		return nil, errcode.New(errcode.Missing, "no guardian signatures given")
	}
	list := make([]any, len(signatures))
	for i, s := range signatures {
		list[i] = Pair(TypeByStr32, TypeByStr64, ensure0x(s.Guardian), ensure0x(s.Signature))
	}
	return []Param{
		{VName: "addr", Type: TypeByStr20, Value: strings.ToLower(newController)},
		{VName: "signatures", Type: "List (Pair ByStr32 ByStr64)", Value: list},
		{VName: "tyron", Type: TypeOptUint128, Value: donation},
	}, nil
}

func ensure0x(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}
