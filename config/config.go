// Package config holds network presets and the loaders for SDK settings.
//
// Settings resolve in this order, later sources winning:
//   - network preset defaults
//   - a YAML, JSON or TOML file (LoadFile)
//   - SSI_* environment variables (ApplyEnv)
//   - explicit functional options on the operator
package config

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// Network names a chain deployment.
type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet  Network = "testnet"
	Isolated Network = "isolated"
)

// Environment variables read by ApplyEnv.
const (
	EnvNetwork     = "SSI_NETWORK"
	EnvRPC         = "SSI_RPC_URL"
	EnvChainID     = "SSI_CHAIN_ID"
	EnvInitAddress = "SSI_INIT_ADDRESS"
	EnvLogLevel    = "SSI_LOG_LEVEL"
)

// Default values
const (
	DefaultNetwork         = Testnet
	DefaultGasLimit        = uint64(30000)
	DefaultConfirmAttempts = 33
	DefaultConfirmInterval = time.Second
	DefaultLogLevel        = "info"
)

// Preset is the connection data of a known network.
type Preset struct {
	RPC         string
	ChainID     int
	InitAddress string
}

var presets = map[Network]Preset{
	Mainnet: {
		RPC:         "https://api.zilliqa.com/",
		ChainID:     1,
		InitAddress: "0x1c8272a79b5b4920bcae80f310d638c8dd4bd8aa",
	},
	Testnet: {
		RPC:         "https://dev-api.zilliqa.com/",
		ChainID:     333,
		InitAddress: "0x08392647c23115f1d027b9d2bbcc9f532b0f003a",
	},
	Isolated: {
		RPC:     "http://localhost:5555",
		ChainID: 222,
	},
}

// PresetOf returns the preset of a known network.
func PresetOf(n Network) (Preset, bool) {
	p, ok := presets[n]
	return p, ok
}

// Short returns the network segment used inside DID strings.
func (n Network) Short() string {
	switch n {
	case Mainnet:
		return "main"
	case Testnet:
		return "test"
	default:
		return string(n)
	}
}

// Duration decodes from "1s"-style strings in every supported file format.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", string(b))
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Millisecond)
		return nil
	}
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config holds the settings shared by every SDK component.
type Config struct {
	Network         Network  `json:"network" toml:"network"`
	RPC             string   `json:"rpc" toml:"rpc"`
	ChainID         int      `json:"chainId" toml:"chainId"`
	InitAddress     string   `json:"initAddress" toml:"initAddress"`
	GasLimit        uint64   `json:"gasLimit" toml:"gasLimit"`
	ConfirmAttempts int      `json:"confirmAttempts" toml:"confirmAttempts"`
	ConfirmInterval Duration `json:"confirmInterval" toml:"confirmInterval"`
	LogLevel        string   `json:"logLevel" toml:"logLevel"`
}

// Default returns the configuration of DefaultNetwork.
func Default() *Config {
	c := &Config{Network: DefaultNetwork}
	c.Standardize()
	return c
}

// Validate checks the fields needed to reach the chain and sign transactions.
func (c *Config) Validate() error {
	if _, ok := presets[c.Network]; !ok {
		return errors.Errorf("unknown network %q", c.Network)
	}
	if c.RPC == "" {
		return errors.New("RPC URL is required")
	}
	// the transaction version packs the chain id into its upper 16 bits
	if c.ChainID <= 0 || c.ChainID > math.MaxUint16 {
		return errors.Errorf("chain ID %d out of range", c.ChainID)
	}
	return nil
}

// Standardize fills empty fields from the network preset and the defaults.
func (c *Config) Standardize() {
	if c.Network == "" {
		c.Network = DefaultNetwork
	}
	c.Network = Network(strings.ToLower(string(c.Network)))
	if p, ok := presets[c.Network]; ok {
		if c.RPC == "" {
			c.RPC = p.RPC
		}
		if c.ChainID == 0 {
			c.ChainID = p.ChainID
		}
		if c.InitAddress == "" {
			c.InitAddress = p.InitAddress
		}
	}
	c.InitAddress = strings.ToLower(c.InitAddress)
	if c.GasLimit == 0 {
		c.GasLimit = DefaultGasLimit
	}
	if c.ConfirmAttempts == 0 {
		c.ConfirmAttempts = DefaultConfirmAttempts
	}
	if c.ConfirmInterval == 0 {
		c.ConfirmInterval = Duration(DefaultConfirmInterval)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// LoadFile reads a configuration file, choosing the decoder by extension.
func LoadFile(path string) (*Config, error) {
	c := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
	return c, nil
}

// ApplyEnv overrides fields with any SSI_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvNetwork); v != "" {
		c.Network = Network(v)
	}
	if v := os.Getenv(EnvRPC); v != "" {
		c.RPC = v
	}
	if v := os.Getenv(EnvChainID); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvChainID)
		}
		c.ChainID = id
	}
	if v := os.Getenv(EnvInitAddress); v != "" {
		c.InitAddress = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Load builds a configuration from an optional file and the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		var err error
		if c, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	c.Standardize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
