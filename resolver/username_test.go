package resolver

import (
	"testing"

	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{username: "alice", valid: true},
		{username: "alice_01", valid: true},
		{username: "init", valid: true},
		{username: "tyron", valid: true},
		{username: "wfp", valid: true},
		{username: "北京大学生", valid: true},
		{username: "bob", valid: false},
		{username: "", valid: false},
		{username: "alice.ssi", valid: false},
		{username: "al ice", valid: false},
		{username: "alice-b", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errcode.Is(err, errcode.InvalidUsername))
			}
		})
	}
}
