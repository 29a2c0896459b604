package chain

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the signed transaction core info message.
const (
	fieldVersion      protowire.Number = 1
	fieldNonce        protowire.Number = 2
	fieldToAddr       protowire.Number = 3
	fieldSenderPubKey protowire.Number = 4
	fieldAmount       protowire.Number = 5
	fieldGasPrice     protowire.Number = 6
	fieldGasLimit     protowire.Number = 7
	fieldCode         protowire.Number = 8
	fieldData         protowire.Number = 9

	// fieldByteArrayData is the only field of the ByteArray wrapper.
	fieldByteArrayData protowire.Number = 1
)

// uint128Size is the big-endian width of amounts and gas prices.
const uint128Size = 16

// Version packs the chain id and the transaction message version.
func Version(chainID int) uint32 {
	return uint32(chainID)<<16 | 1
}

// Transaction is a native transaction: a value transfer, a transition call
// (Data set) or a contract deployment (Code set).
type Transaction struct {
	Version uint32
	Nonce   uint64
	// ToAddr is 0x-prefixed hex; the zero address deploys a contract.
	ToAddr string
	// SenderPubKey is the 0x-prefixed compressed public key of the signer.
	SenderPubKey string
	Amount       *big.Int
	GasPrice     *big.Int
	GasLimit     uint64
	Code         string
	Data         string
	Priority     bool
	// Signature is set by Sign, 64 bytes r||s.
	Signature []byte
}

// Bytes returns the protobuf encoding of the transaction core info, the
// message covered by the sender's signature.
func (tx *Transaction) Bytes() ([]byte, error) {
	to, err := AddressBytes(tx.ToAddr)
	if err != nil {
		return nil, err
	}
	pub, err := hex.DecodeString(strings.TrimPrefix(tx.SenderPubKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid sender public key")
	}
	amount, err := uint128Bytes(tx.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "invalid amount")
	}
	gasPrice, err := uint128Bytes(tx.GasPrice)
	if err != nil {
		return nil, errors.Wrap(err, "invalid gas price")
	}

	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(tx.Version))
	b = protowire.AppendTag(b, fieldNonce, protowire.VarintType)
	b = protowire.AppendVarint(b, tx.Nonce)
	b = protowire.AppendTag(b, fieldToAddr, protowire.BytesType)
	b = protowire.AppendBytes(b, to)
	b = appendByteArray(b, fieldSenderPubKey, pub)
	b = appendByteArray(b, fieldAmount, amount)
	b = appendByteArray(b, fieldGasPrice, gasPrice)
	b = protowire.AppendTag(b, fieldGasLimit, protowire.VarintType)
	b = protowire.AppendVarint(b, tx.GasLimit)
	if tx.Code != "" {
		b = protowire.AppendTag(b, fieldCode, protowire.BytesType)
		b = protowire.AppendBytes(b, []byte(tx.Code))
	}
	if tx.Data != "" {
		b = protowire.AppendTag(b, fieldData, protowire.BytesType)
		b = protowire.AppendBytes(b, []byte(tx.Data))
	}
	return b, nil
}

func appendByteArray(b []byte, num protowire.Number, data []byte) []byte {
	var inner []byte
	inner = protowire.AppendTag(inner, fieldByteArrayData, protowire.BytesType)
	inner = protowire.AppendBytes(inner, data)

	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

func uint128Bytes(v *big.Int) ([]byte, error) {
	out := make([]byte, uint128Size)
	if v == nil {
		return out, nil
	}
	if v.Sign() < 0 || v.BitLen() > uint128Size*8 {
		return nil, errors.Errorf("%s does not fit in 128 bits", v)
	}
	return v.FillBytes(out), nil
}

// Payload is the JSON body of CreateTransaction.
type Payload struct {
	Version   uint32 `json:"version"`
	Nonce     uint64 `json:"nonce"`
	ToAddr    string `json:"toAddr"`
	Amount    string `json:"amount"`
	PubKey    string `json:"pubKey"`
	GasPrice  string `json:"gasPrice"`
	GasLimit  string `json:"gasLimit"`
	Code      string `json:"code"`
	Data      string `json:"data"`
	Signature string `json:"signature"`
	Priority  bool   `json:"priority"`
}

// Payload returns the signed transaction in the node's JSON form.
func (tx *Transaction) Payload() (*Payload, error) {
	if len(tx.Signature) == 0 {
		return nil, errors.New("transaction is not signed")
	}
	to, err := ToChecksumAddress(tx.ToAddr)
	if err != nil {
		return nil, err
	}
	return &Payload{
		Version:   tx.Version,
		Nonce:     tx.Nonce,
		ToAddr:    strings.TrimPrefix(to, "0x"),
		Amount:    bigString(tx.Amount),
		PubKey:    strings.TrimPrefix(strings.ToLower(tx.SenderPubKey), "0x"),
		GasPrice:  bigString(tx.GasPrice),
		GasLimit:  strconv.FormatUint(tx.GasLimit, 10),
		Code:      tx.Code,
		Data:      tx.Data,
		Signature: hex.EncodeToString(tx.Signature),
		Priority:  tx.Priority,
	}, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
