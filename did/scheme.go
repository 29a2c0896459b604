package did

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pilacorp/go-ssi-sdk/config"
	"github.com/pilacorp/go-ssi-sdk/errcode"
)

const (
	// Scheme, Method and Blockchain are the fixed leading segments of every
	// DID: did:tyron:zil:<network>:<address>.
	Scheme     = "did"
	Method     = "tyron"
	Blockchain = "zil"
)

// DID is a parsed decentralized identifier.
type DID struct {
	// Network is the short network segment, "main" or "test".
	Network string
	// Address is the lowercase 0x-prefixed address of the DID contract.
	Address string
}

func (d DID) String() string {
	return strings.Join([]string{Scheme, Method, Blockchain, d.Network, d.Address}, ":")
}

// New returns the DID of the contract at addr on network.
func New(network config.Network, addr string) DID {
	return DID{Network: network.Short(), Address: strings.ToLower(addr)}
}

// Parse validates s against the DID scheme. A DID URL fragment is dropped.
func Parse(s string) (DID, error) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 5 || parts[0] != Scheme || parts[1] != Method || parts[2] != Blockchain {
		return DID{}, errcode.Newf(errcode.InvalidID, "%q is not a %s:%s:%s identifier", s, Scheme, Method, Blockchain)
	}
	switch parts[3] {
	case config.Mainnet.Short(), config.Testnet.Short(), config.Isolated.Short():
	default:
		return DID{}, errcode.Newf(errcode.InvalidID, "unsupported network %q in %q", parts[3], s)
	}
	if !common.IsHexAddress(parts[4]) || !strings.HasPrefix(parts[4], "0x") {
		return DID{}, errcode.Newf(errcode.InvalidAddress, "invalid address %q in %q", parts[4], s)
	}
	return DID{Network: parts[3], Address: strings.ToLower(parts[4])}, nil
}

// IsDID reports whether s looks like a DID rather than a bare address.
func IsDID(s string) bool {
	return strings.HasPrefix(s, Scheme+":")
}
