package ssi

import (
	"github.com/pilacorp/go-ssi-sdk/config"
	"github.com/pilacorp/go-ssi-sdk/did"
	"github.com/pilacorp/go-ssi-sdk/signer"
)

// OperatorConfig holds the settings of an Operator.
//
// Configuration can be set via functional options when creating an
// Operator. Chain settings resolve as described in package config; the
// network, RPC, chain id, init address and gas limit options override
// whatever was loaded.
//
// Important notes:
//   - Signer is required for every operation that submits a transaction
//   - Encrypter is optional; without it DKMS entries are "none"
//   - Donation is sent with every DID operation when set
type OperatorConfig struct {
	// Chain is a complete SDK configuration. When nil, ConfigFile and the
	// environment are loaded instead.
	Chain *config.Config
	// ConfigFile is a YAML, JSON or TOML file read when Chain is nil.
	ConfigFile string

	Network     config.Network
	RPC         string
	ChainID     int
	InitAddress string
	GasLimit    uint64

	// Signer pays for and signs the transactions.
	Signer signer.SignerProvider
	// PrivateKey builds a local Signer when Signer is not set.
	PrivateKey string
	// Encrypter protects generated private keys in the DKMS.
	Encrypter did.KeyEncrypter
	// Donation is the amount of native coin attached to DID operations.
	Donation string
	// CacheSize is the capacity of the resolver's domain cache, off when zero.
	CacheSize int
	// KeyStore receives the keys generated by Create, Update and Recover.
	KeyStore *KeyStore
}

// Option is a functional option type for configuring an Operator.
type Option func(*OperatorConfig)

// WithConfig sets the complete SDK configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *OperatorConfig) { c.Chain = cfg }
}

// WithConfigFile loads the SDK configuration from a file.
func WithConfigFile(path string) Option {
	return func(c *OperatorConfig) { c.ConfigFile = path }
}

// WithNetwork selects a network preset.
func WithNetwork(n config.Network) Option {
	return func(c *OperatorConfig) { c.Network = n }
}

// WithRPC sets the RPC endpoint URL.
func WithRPC(rpc string) Option {
	return func(c *OperatorConfig) { c.RPC = rpc }
}

// WithChainID sets the chain ID.
func WithChainID(chainID int) Option {
	return func(c *OperatorConfig) { c.ChainID = chainID }
}

// WithInitAddress sets the init contract that holds the username registry.
func WithInitAddress(addr string) Option {
	return func(c *OperatorConfig) { c.InitAddress = addr }
}

// WithGasLimit sets the gas limit of every transaction.
func WithGasLimit(limit uint64) Option {
	return func(c *OperatorConfig) { c.GasLimit = limit }
}

// WithSignerProvider sets the signer of the transactions.
//
// The signer's account pays the gas and appears as _sender in every call.
func WithSignerProvider(p signer.SignerProvider) Option {
	return func(c *OperatorConfig) { c.Signer = p }
}

// WithPrivateKey signs transactions with a local key.
func WithPrivateKey(privHex string) Option {
	return func(c *OperatorConfig) { c.PrivateKey = privHex }
}

// WithEncrypter encrypts generated private keys into the DKMS.
func WithEncrypter(enc did.KeyEncrypter) Option {
	return func(c *OperatorConfig) { c.Encrypter = enc }
}

// WithDonation attaches a donation, in decimal native coin, to DID
// operations.
func WithDonation(amount string) Option {
	return func(c *OperatorConfig) { c.Donation = amount }
}

// WithCacheSize turns on the resolver's domain cache with capacity n.
func WithCacheSize(n int) Option {
	return func(c *OperatorConfig) { c.CacheSize = n }
}

// WithKeyStore shares a KeyStore between operators.
func WithKeyStore(ks *KeyStore) Option {
	return func(c *OperatorConfig) { c.KeyStore = ks }
}

func defaultOperatorConfig() OperatorConfig {
	return OperatorConfig{}
}

// chainConfig returns the SDK configuration with the overrides applied.
func (c *OperatorConfig) chainConfig() (*config.Config, error) {
	var cfg config.Config
	if c.Chain != nil {
		cfg = *c.Chain
	} else {
		loaded := &config.Config{}
		if c.ConfigFile != "" {
			var err error
			if loaded, err = config.LoadFile(c.ConfigFile); err != nil {
				return nil, err
			}
		}
		if err := loaded.ApplyEnv(); err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if c.Network != "" {
		cfg.Network = c.Network
	}
	if c.RPC != "" {
		cfg.RPC = c.RPC
	}
	if c.ChainID != 0 {
		cfg.ChainID = c.ChainID
	}
	if c.InitAddress != "" {
		cfg.InitAddress = c.InitAddress
	}
	if c.GasLimit != 0 {
		cfg.GasLimit = c.GasLimit
	}
	cfg.Standardize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
