package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/log"
	"github.com/pilacorp/go-ssi-sdk/signer"
	"github.com/pilacorp/go-ssi-sdk/transition"
	"github.com/pkg/errors"
)

// TxParams describes a transaction to submit.
type TxParams struct {
	// ToAddr is the recipient account or contract.
	ToAddr string
	// Amount of native funds sent, in the smallest unit. Nil sends nothing.
	Amount *big.Int
	// GasPrice defaults to the node's minimum gas price if nil.
	GasPrice *big.Int
	// GasLimit defaults to the client's configured gas limit if zero.
	GasLimit uint64
	// Data is the transition call, nil for a plain transfer.
	Data *transition.Data
	// Code deploys a contract when set.
	Code     string
	Priority bool
}

func (p *TxParams) tag() string {
	if p.Data != nil {
		return string(p.Data.Tag)
	}
	return "payment"
}

// TxResult is a submitted and confirmed transaction.
type TxResult struct {
	ID      string
	Info    string
	Receipt Receipt
}

// TxError reports a transaction that was rejected, could not be confirmed,
// or executed with a failed receipt. It unwraps to a TransactionFailed
// errcode.Error.
type TxError struct {
	Tag  string
	TxID string
	// Receipt is nil unless the transaction was confirmed.
	Receipt *Receipt
	Err     error
}

func (e *TxError) message() string {
	return fmt.Sprintf("The %s transaction was unsuccessful!", e.Tag)
}

func (e *TxError) Error() string {
	msg := e.message()
	if e.TxID != "" {
		msg += " (" + e.TxID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the TransactionFailed code and, when set, the cause.
func (e *TxError) Unwrap() []error {
	errs := []error{errcode.New(errcode.TransactionFailed, e.message())}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Submit signs and submits a transaction, then waits for its confirmation.
//
// This method:
//   - Reads the signer's nonce and uses the next one
//   - Reads the minimum gas price unless one is given
//   - Builds and signs the transaction core info
//   - Submits it and polls until it is confirmed
//
// A transaction that is rejected, never confirmed or whose receipt reports
// failure is returned as a *TxError.
func (c *Client) Submit(ctx context.Context, s signer.SignerProvider, p TxParams) (*TxResult, error) {
	if s == nil {
		return nil, errors.New("tx signer is required")
	}
	tag := p.tag()
	ctx = log.WithLogField(ctx, "tag", tag)

	// 1. Nonce
	balance, err := c.GetBalance(ctx, s.GetAddress())
	if err != nil {
		return nil, err
	}

	// 2. Gas price
	gasPrice := p.GasPrice
	if gasPrice == nil {
		if gasPrice, err = c.GetMinimumGasPrice(ctx); err != nil {
			return nil, err
		}
	}
	gasLimit := p.GasLimit
	if gasLimit == 0 {
		gasLimit = c.cfg.GasLimit
	}

	// 3. Build Transaction
	tx := &Transaction{
		Version:      Version(c.cfg.ChainID),
		Nonce:        balance.Nonce + 1,
		ToAddr:       p.ToAddr,
		SenderPubKey: s.PublicKey(),
		Amount:       p.Amount,
		GasPrice:     gasPrice,
		GasLimit:     gasLimit,
		Code:         p.Code,
		Priority:     p.Priority,
	}
	if p.Data != nil {
		if tx.Data, err = p.Data.JSON(); err != nil {
			return nil, err
		}
		if log.IsDebugEnabled() {
			log.L(ctx).Debugf("Call data %s", tx.Data)
		}
	}

	// 4. Sign
	if err := SignTransaction(tx, s); err != nil {
		return nil, err
	}
	payload, err := tx.Payload()
	if err != nil {
		return nil, err
	}

	// 5. Submit
	created, err := c.CreateTransaction(ctx, payload)
	if err != nil {
		return nil, &TxError{Tag: tag, Err: err}
	}
	log.L(ctx).Infof("Submitted transaction %s: %s", created.TranID, created.Info)

	// 6. Confirm
	info, err := c.Confirm(ctx, created.TranID, c.cfg.ConfirmAttempts, c.cfg.ConfirmInterval.Duration())
	if err != nil {
		return nil, &TxError{Tag: tag, TxID: created.TranID, Err: err}
	}
	if !info.Receipt.Success {
		return nil, &TxError{Tag: tag, TxID: created.TranID, Receipt: &info.Receipt}
	}
	log.L(ctx).Infof("Transaction %s confirmed in epoch %s", created.TranID, info.Receipt.EpochNum)

	return &TxResult{ID: created.TranID, Info: created.Info, Receipt: info.Receipt}, nil
}

// SignTransaction signs the core info of tx with s and sets tx.Signature.
func SignTransaction(tx *Transaction, s signer.SignerProvider) error {
	msg, err := tx.Bytes()
	if err != nil {
		return err
	}
	sig, err := s.Sign(msg)
	if err != nil {
		return errors.Wrap(err, "failed to sign transaction")
	}
	tx.Signature = sig
	return nil
}

// CallTransition submits a call of tag on the contract at addr, sending
// amount of native funds with it.
func (c *Client) CallTransition(ctx context.Context, s signer.SignerProvider, addr string, tag transition.Tag, amount *big.Int, params []transition.Param) (*TxResult, error) {
	amountStr := "0"
	if amount != nil {
		amountStr = amount.String()
	}
	data, err := transition.NewData(tag, amountStr, s.GetAddress(), params)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, s, TxParams{ToAddr: addr, Amount: amount, Data: data})
}
