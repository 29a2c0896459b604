package errcode

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorFormat(t *testing.T) {
	err := New(Missing, "No services given to add")
	assert.EqualError(t, err, "Missing: No services given to add")

	err = Newf(KeyDuplicated, "purpose %q used twice", "update")
	assert.EqualError(t, err, `KeyDuplicated: purpose "update" used twice`)
}

func TestIsThroughWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{
			name: "direct",
			err:  New(DidDeactivated, "did:tyron:zil:main:0x01"),
			code: DidDeactivated,
			want: true,
		},
		{
			name: "pkg/errors wrap",
			err:  pkgerrors.Wrap(New(Missing, "ids"), "failed to process patches"),
			code: Missing,
			want: true,
		},
		{
			name: "different code",
			err:  New(Missing, "ids"),
			code: InvalidID,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			code: Missing,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Is(tt.err, tt.code))
		})
	}
}

func TestStdErrorsIs(t *testing.T) {
	err := pkgerrors.Wrap(New(CodeIncorrectPatchAction, "AddKeys"), "patch 0")
	assert.True(t, errors.Is(err, New(CodeIncorrectPatchAction, "")))
	assert.False(t, errors.Is(err, New(Missing, "")))

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, CodeIncorrectPatchAction, code)
}
