package chain

import (
	"crypto/sha256"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pilacorp/go-ssi-sdk/errcode"
)

// Bech32HRP is the human readable part of bech32 account addresses.
const Bech32HRP = "zil"

// IsBech32 reports whether addr looks like a bech32 account address.
func IsBech32(addr string) bool {
	return strings.HasPrefix(strings.ToLower(addr), Bech32HRP+"1")
}

// NormalizeAddress accepts a hex address, with or without 0x and in any
// case, or a bech32 address, and returns it as 0x-prefixed lowercase hex.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if IsBech32(addr) {
		return FromBech32(addr)
	}
	if !common.IsHexAddress(addr) {
		return "", errcode.Newf(errcode.InvalidAddress, "invalid address %q", addr)
	}
	return "0x" + strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")), nil
}

// AddressBytes returns the 20 bytes of a normalized address.
func AddressBytes(addr string) ([]byte, error) {
	norm, err := NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}
	return hexutil.Decode(norm)
}

// ToChecksumAddress returns the mixed-case checksum form of addr: the i-th
// hex letter is upper case when bit 255-6i of SHA-256(address bytes) is
// set.
func ToChecksumAddress(addr string) (string, error) {
	b, err := AddressBytes(addr)
	if err != nil {
		return "", err
	}
	lower := strings.TrimPrefix(hexutil.Encode(b), "0x")

	h := sha256.Sum256(b)
	v := new(big.Int).SetBytes(h[:])

	var out strings.Builder
	out.WriteString("0x")
	for i, c := range lower {
		if c >= '0' && c <= '9' {
			out.WriteRune(c)
			continue
		}
		if v.Bit(255-6*i) == 1 {
			out.WriteString(strings.ToUpper(string(c)))
		} else {
			out.WriteRune(c)
		}
	}
	return out.String(), nil
}

// ToBech32 encodes addr as a bech32 "zil1..." address.
func ToBech32(addr string) (string, error) {
	b, err := AddressBytes(addr)
	if err != nil {
		return "", err
	}
	conv, err := bech32.ConvertBits(b, 8, 5, true)
	if err != nil {
		return "", errcode.Newf(errcode.InvalidAddress, "failed to convert address: %v", err)
	}
	out, err := bech32.Encode(Bech32HRP, conv)
	if err != nil {
		return "", errcode.Newf(errcode.InvalidAddress, "failed to encode address: %v", err)
	}
	return out, nil
}

// FromBech32 decodes a bech32 address to 0x-prefixed lowercase hex.
func FromBech32(addr string) (string, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return "", errcode.Newf(errcode.InvalidAddress, "invalid bech32 address %q: %v", addr, err)
	}
	if hrp != Bech32HRP {
		return "", errcode.Newf(errcode.InvalidAddress, "expected %q prefix, got %q", Bech32HRP, hrp)
	}
	b, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", errcode.Newf(errcode.InvalidAddress, "invalid bech32 address %q: %v", addr, err)
	}
	if len(b) != common.AddressLength {
		return "", errcode.Newf(errcode.InvalidAddress, "bech32 address decodes to %d bytes", len(b))
	}
	return hexutil.Encode(b), nil
}

// stripHex drops the 0x prefix the node API does not expect on addresses.
func stripHex(addr string) string {
	return strings.TrimPrefix(strings.ToLower(addr), "0x")
}
