package chain

import (
	"encoding/json"
)

// Balance is the native balance and the last used nonce of an account.
type Balance struct {
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// CreateTxResult is the node's answer to CreateTransaction.
type CreateTxResult struct {
	Info            string `json:"Info"`
	TranID          string `json:"TranID"`
	ContractAddress string `json:"ContractAddress,omitempty"`
}

// EventParam is one parameter of an emitted event.
type EventParam struct {
	VName string          `json:"vname"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// EventLog is an event emitted by a contract during a transition.
type EventLog struct {
	Address   string       `json:"address"`
	EventName string       `json:"_eventname"`
	Params    []EventParam `json:"params"`
}

// Exception is a contract exception raised during execution.
type Exception struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Receipt is the execution outcome of a confirmed transaction.
type Receipt struct {
	Success       bool              `json:"success"`
	CumulativeGas string            `json:"cumulative_gas"`
	EpochNum      string            `json:"epoch_num"`
	EventLogs     []EventLog        `json:"event_logs,omitempty"`
	Exceptions    []Exception       `json:"exceptions,omitempty"`
	Errors        map[string][]int  `json:"errors,omitempty"`
	Transitions   []json.RawMessage `json:"transitions,omitempty"`
}

// TxInfo is a confirmed transaction as returned by GetTransaction.
type TxInfo struct {
	ID           string  `json:"ID"`
	Version      string  `json:"version"`
	Nonce        string  `json:"nonce"`
	ToAddr       string  `json:"toAddr"`
	SenderPubKey string  `json:"senderPubKey"`
	Amount       string  `json:"amount"`
	GasPrice     string  `json:"gasPrice"`
	GasLimit     string  `json:"gasLimit"`
	Signature    string  `json:"signature"`
	Receipt      Receipt `json:"receipt"`
}
