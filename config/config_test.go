package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, Testnet, c.Network)
	assert.Equal(t, "https://dev-api.zilliqa.com/", c.RPC)
	assert.Equal(t, 333, c.ChainID)
	assert.Equal(t, "0x08392647c23115f1d027b9d2bbcc9f532b0f003a", c.InitAddress)
	assert.Equal(t, DefaultGasLimit, c.GasLimit)
	assert.Equal(t, Duration(time.Second), c.ConfirmInterval)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name: "yaml",
			file: "ssi.yaml",
			content: `network: mainnet
gasLimit: 50000
confirmInterval: 2s
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, Mainnet, c.Network)
				assert.Equal(t, uint64(50000), c.GasLimit)
				assert.Equal(t, Duration(2*time.Second), c.ConfirmInterval)
			},
		},
		{
			name:    "json",
			file:    "ssi.json",
			content: `{"network":"isolated","rpc":"http://127.0.0.1:5555","confirmInterval":250}`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, Isolated, c.Network)
				assert.Equal(t, "http://127.0.0.1:5555", c.RPC)
				assert.Equal(t, Duration(250*time.Millisecond), c.ConfirmInterval)
			},
		},
		{
			name: "toml",
			file: "ssi.toml",
			content: `network = "testnet"
chainId = 333
confirmAttempts = 5
confirmInterval = "500ms"
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, Testnet, c.Network)
				assert.Equal(t, 333, c.ChainID)
				assert.Equal(t, 5, c.ConfirmAttempts)
				assert.Equal(t, Duration(500*time.Millisecond), c.ConfirmInterval)
			},
		},
		{
			name:    "unknown extension",
			file:    "ssi.ini",
			content: "network=mainnet",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadFile(writeFile(t, tt.file, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "ssi.yaml", "network: mainnet\nlogLevel: warn\n")
	t.Setenv(EnvRPC, "http://localhost:4201")
	t.Setenv(EnvLogLevel, "debug")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Mainnet, c.Network)
	assert.Equal(t, "http://localhost:4201", c.RPC)
	assert.Equal(t, 1, c.ChainID)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv(EnvNetwork, "moonnet")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv(EnvNetwork, "testnet")
	t.Setenv(EnvChainID, "seven")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv(EnvChainID, "70000")
	_, err = Load("")
	assert.Error(t, err)
}

func TestNetworkShort(t *testing.T) {
	assert.Equal(t, "main", Mainnet.Short())
	assert.Equal(t, "test", Testnet.Short())
	assert.Equal(t, "isolated", Isolated.Short())
}
