// Package ssi is a client for self-sovereign identities on the tyron DID
// protocol.
//
// An Operator creates, updates, recovers and deactivates DIDs held in DID
// contracts, moves funds out of those contracts and resolves DID
// documents. Each operation follows the same steps:
//   - Read the contract state and check the DID status
//   - Build the document elements and hash them
//   - Sign the hash with the key the contract expects
//   - Submit the transition and wait for its receipt
package ssi

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/pilacorp/go-ssi-sdk/chain"
	"github.com/pilacorp/go-ssi-sdk/config"
	"github.com/pilacorp/go-ssi-sdk/log"
	"github.com/pilacorp/go-ssi-sdk/resolver"
	"github.com/pilacorp/go-ssi-sdk/signer"
	"github.com/pilacorp/go-ssi-sdk/transition"
	"github.com/pkg/errors"
)

// Operator runs DID operations against one network.
type Operator struct {
	cfg      OperatorConfig
	chainCfg *config.Config
	client   *chain.Client
	resolver *resolver.Resolver
	signer   signer.SignerProvider
	keys     *KeyStore
}

// NewOperator connects to the configured network.
func NewOperator(ctx context.Context, options ...Option) (*Operator, error) {
	cfg := defaultOperatorConfig()
	for _, opt := range options {
		opt(&cfg)
	}

	chainCfg, err := cfg.chainConfig()
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	log.SetLevel(chainCfg.LogLevel)

	if _, err := transition.Donation(cfg.Donation); err != nil {
		return nil, err
	}

	s := cfg.Signer
	if s == nil && cfg.PrivateKey != "" {
		if s, err = signer.NewDefaultProvider(cfg.PrivateKey); err != nil {
			return nil, errors.Wrap(err, "failed to create tx signer")
		}
	}

	client, err := chain.NewClient(ctx, chainCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize blockchain client")
	}

	keys := cfg.KeyStore
	if keys == nil {
		keys = NewKeyStore()
	}

	return &Operator{
		cfg:      cfg,
		chainCfg: chainCfg,
		client:   client,
		resolver: resolver.New(client,
			resolver.WithCacheSize(cfg.CacheSize),
			resolver.WithNetwork(chainCfg.Network),
			resolver.WithInitAddress(chainCfg.InitAddress),
		),
		signer: s,
		keys:   keys,
	}, nil
}

// Close releases the RPC connection.
func (o *Operator) Close() {
	o.client.Close()
}

// Config returns the resolved SDK configuration.
func (o *Operator) Config() *config.Config {
	return o.chainCfg
}

// Client returns the underlying chain client.
func (o *Operator) Client() *chain.Client {
	return o.client
}

// Resolver returns the operator's resolver.
func (o *Operator) Resolver() *resolver.Resolver {
	return o.resolver
}

// KeyStore returns the store of generated keys.
func (o *Operator) KeyStore() *KeyStore {
	return o.keys
}

// Resolve reads a DID document, see resolver.Resolver.Resolve.
func (o *Operator) Resolve(ctx context.Context, didOrAddr, accept string) (any, error) {
	return o.resolver.Resolve(ctx, didOrAddr, accept)
}

// ResolveUsername reads the DID document of username.domain.
func (o *Operator) ResolveUsername(ctx context.Context, username, domain string) (*resolver.DidDocument, error) {
	return o.resolver.ResolveUsername(ctx, username, domain)
}

// donation returns the donation parameter and the native amount that must
// travel with the transaction to pay it.
func (o *Operator) donation() (transition.Value, *big.Int, error) {
	v, err := transition.Donation(o.cfg.Donation)
	if err != nil {
		return transition.Value{}, nil, err
	}
	amount, ok := v.StringArg(0)
	if !ok {
		return v, nil, nil
	}
	n, _ := new(big.Int).SetString(amount, 10)
	return v, n, nil
}

func (o *Operator) call(ctx context.Context, addr string, tag transition.Tag, amount *big.Int, params []transition.Param) (*chain.TxResult, error) {
	if o.signer == nil {
		return nil, errors.New("tx signer is required")
	}
	ctx = log.WithLogField(ctx, "contract", addr)
	return o.client.CallTransition(ctx, o.signer, addr, tag, amount, params)
}

// signHex signs the bytes of a hex message with a private key and returns
// the 0x signature.
func signHex(privHex, msgHex string) (string, error) {
	msg, err := hex.DecodeString(strings.TrimPrefix(msgHex, "0x"))
	if err != nil {
		return "", errors.Wrap(err, "invalid message")
	}
	return signBytes(privHex, msg)
}

func signBytes(privHex string, msg []byte) (string, error) {
	p, err := signer.NewDefaultProvider(privHex)
	if err != nil {
		return "", err
	}
	sig, err := p.Sign(msg)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(sig), nil
}
