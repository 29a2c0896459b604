package chain

import (
	"strings"
	"testing"

	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBech32   = "zil1fwh4ltdguhde9s7nysnp33d5wye6uqpugufkz7"
	testChecksum = "0x4BAF5faDA8e5Db92C3d3242618c5B47133AE003C"
	testLower    = "0x4baf5fada8e5db92c3d3242618c5b47133ae003c"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lower hex", in: testLower, want: testLower},
		{name: "checksum hex", in: testChecksum, want: testLower},
		{name: "no prefix", in: strings.TrimPrefix(testLower, "0x"), want: testLower},
		{name: "bech32", in: testBech32, want: testLower},
		{name: "padded", in: "  " + testBech32 + " ", want: testLower},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeAddressInvalid(t *testing.T) {
	for _, in := range []string{"", "0x1234", "zil1invalid", "0xZZAF5fada8e5db92c3d3242618c5b47133ae003c"} {
		_, err := NormalizeAddress(in)
		assert.True(t, errcode.Is(err, errcode.InvalidAddress), "input %q: %v", in, err)
	}
}

func TestToChecksumAddress(t *testing.T) {
	got, err := ToChecksumAddress(testLower)
	require.NoError(t, err)
	assert.Equal(t, testChecksum, got)

	got, err = ToChecksumAddress("0x8254b2c9acdf181d5d6796d63320fbb20d4edd12")
	require.NoError(t, err)
	assert.Equal(t, "0x8254b2C9aCdf181d5d6796d63320fBb20D4Edd12", got)

	again, err := ToChecksumAddress(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestBech32(t *testing.T) {
	got, err := ToBech32(testChecksum)
	require.NoError(t, err)
	assert.Equal(t, testBech32, got)

	back, err := FromBech32(got)
	require.NoError(t, err)
	assert.Equal(t, testLower, back)

	_, err = FromBech32("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	assert.True(t, errcode.Is(err, errcode.InvalidAddress))
}
