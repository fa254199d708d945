package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSampleCount(t *testing.T) {
	tests := []struct {
		n    int
		isOK bool
	}{
		{0, false},
		{1, true},
		{10, true},
		{20, true},
		{21, false},
		{-5, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			err := CheckSampleCount(tt.n)
			if tt.isOK {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsSampleCountError(err))
			assert.False(t, IsFormatError(err))
		})
	}
}

func TestRequestError_Wrapped(t *testing.T) {
	err := fmt.Errorf("export: %w", NewFormatError("solidity", []string{"json", "anchor"}))

	assert.True(t, IsFormatError(err))
	assert.False(t, IsSampleCountError(err))
	assert.Equal(t, `export: UNSUPPORTED_FORMAT: unsupported format "solidity", must be one of [json anchor]`, err.Error())
}
