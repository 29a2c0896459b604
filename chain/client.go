// Package chain is the SDK's gateway to the ledger.
//
// This package handles:
//   - JSON-RPC reads of account balances and contract state
//   - Building, signing and submitting native transactions
//   - Polling submitted transactions until they are confirmed
//   - Converting between hex, checksum and bech32 addresses
//
// Every request goes through a single go-ethereum rpc.Client whose HTTP
// transport is traced with OpenTelemetry.
package chain

import (
	"context"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pilacorp/go-ssi-sdk/config"
	"github.com/pilacorp/go-ssi-sdk/log"
	"github.com/pilacorp/go-ssi-sdk/transition"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// JSON-RPC methods of the node API.
const (
	methodGetMinimumGasPrice       = "GetMinimumGasPrice"
	methodGetBalance               = "GetBalance"
	methodGetSmartContractState    = "GetSmartContractState"
	methodGetSmartContractSubState = "GetSmartContractSubState"
	methodGetSmartContractInit     = "GetSmartContractInit"
	methodCreateTransaction        = "CreateTransaction"
	methodGetTransaction           = "GetTransaction"
)

// rpcErrAccountNotCreated is returned by GetBalance for an unfunded account.
const rpcErrAccountNotCreated = -5

// Client is a JSON-RPC client of one network.
type Client struct {
	rpc *rpc.Client
	cfg *config.Config
}

// NewClient connects to cfg.RPC.
//
// The config is validated and standardized first. Dialing an HTTP endpoint
// does not contact the node, so an unreachable node only surfaces on the
// first call.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.Standardize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	c, err := rpc.DialOptions(ctx, cfg.RPC, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", cfg.RPC)
	}
	return &Client{rpc: c, cfg: cfg}, nil
}

// Config returns the standardized configuration of the client.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	log.L(ctx).Debugf("-> %s", method)
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		log.L(ctx).Debugf("<- %s failed: %s", method, err)
		return err
	}
	return nil
}

// GetMinimumGasPrice returns the current minimum gas price in the smallest
// native unit.
func (c *Client) GetMinimumGasPrice(ctx context.Context) (*big.Int, error) {
	var s string
	if err := c.call(ctx, &s, methodGetMinimumGasPrice, ""); err != nil {
		return nil, errors.Wrap(err, "failed to get minimum gas price")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid gas price %q", s)
	}
	return v, nil
}

// GetBalance returns the balance and last nonce of addr. An account the
// chain has never seen has a zero balance and nonce.
func (c *Client) GetBalance(ctx context.Context, addr string) (*Balance, error) {
	norm, err := NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}

	var b Balance
	if err := c.call(ctx, &b, methodGetBalance, stripHex(norm)); err != nil {
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == rpcErrAccountNotCreated {
			return &Balance{Balance: "0"}, nil
		}
		return nil, errors.Wrapf(err, "failed to get balance of %s", norm)
	}
	return &b, nil
}

// GetSmartContractState returns every mutable field of the contract at addr.
func (c *Client) GetSmartContractState(ctx context.Context, addr string) (map[string]any, error) {
	norm, err := NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}

	var state map[string]any
	if err := c.call(ctx, &state, methodGetSmartContractState, stripHex(norm)); err != nil {
		return nil, errors.Wrapf(err, "failed to get state of %s", norm)
	}
	return state, nil
}

// GetSmartContractSubState returns one field of the contract at addr,
// optionally narrowed to a map entry by indices. The result is keyed by
// field name; a nil map means the field or entry does not exist.
func (c *Client) GetSmartContractSubState(ctx context.Context, addr, field string, indices ...string) (map[string]any, error) {
	norm, err := NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}
	if indices == nil {
		indices = []string{}
	}

	var state map[string]any
	if err := c.call(ctx, &state, methodGetSmartContractSubState, stripHex(norm), field, indices); err != nil {
		return nil, errors.Wrapf(err, "failed to get %s of %s", field, norm)
	}
	return state, nil
}

// GetSmartContractInit returns the immutable deployment parameters of the
// contract at addr.
func (c *Client) GetSmartContractInit(ctx context.Context, addr string) ([]transition.Param, error) {
	norm, err := NormalizeAddress(addr)
	if err != nil {
		return nil, err
	}

	var params []transition.Param
	if err := c.call(ctx, &params, methodGetSmartContractInit, stripHex(norm)); err != nil {
		return nil, errors.Wrapf(err, "failed to get init of %s", norm)
	}
	return params, nil
}

// InitParam returns the value of one deployment parameter.
func InitParam(params []transition.Param, name string) (any, bool) {
	for _, p := range params {
		if p.VName == name {
			return p.Value, true
		}
	}
	return nil, false
}

// CreateTransaction submits a signed transaction. The node only checks the
// transaction; execution happens when it is included in a block.
func (c *Client) CreateTransaction(ctx context.Context, p *Payload) (*CreateTxResult, error) {
	var res CreateTxResult
	if err := c.call(ctx, &res, methodCreateTransaction, p); err != nil {
		return nil, errors.Wrap(err, "failed to create transaction")
	}
	if res.TranID == "" {
		return nil, errors.Errorf("transaction rejected: %s", res.Info)
	}
	return &res, nil
}

// GetTransaction returns a confirmed transaction.
func (c *Client) GetTransaction(ctx context.Context, txID string) (*TxInfo, error) {
	var tx TxInfo
	if err := c.call(ctx, &tx, methodGetTransaction, strings.TrimPrefix(txID, "0x")); err != nil {
		return nil, errors.Wrapf(err, "failed to get transaction %s", txID)
	}
	return &tx, nil
}

// Confirm polls GetTransaction until the transaction is found or attempts
// run out. Not-yet-confirmed errors are not distinguished from transport
// errors while polling; the last error is reported.
func (c *Client) Confirm(ctx context.Context, txID string, attempts int, interval time.Duration) (*TxInfo, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		tx, err := c.GetTransaction(ctx, txID)
		if err == nil {
			return tx, nil
		}
		lastErr = err
		log.L(ctx).Debugf("Transaction %s not confirmed (attempt %d/%d)", txID, i+1, attempts)

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, errors.Wrapf(lastErr, "transaction %s is still not confirmed after %d attempts", txID, attempts)
}
