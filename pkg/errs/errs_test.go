package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	e := NewInvalidData("Invalid edge field", "edge_count sum 412 != 410", nil)
	assert.Equal(t, "Invalid edge field: edge_count sum 412 != 410", e.Error())

	bare := NewCancelled("Cancelled")
	assert.Equal(t, "Cancelled", bare.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("eof")
	e := NewIO("Cannot read snapshot", "short read", cause)
	require.ErrorIs(t, e, cause)
}

func TestIsDetectsKindThroughWrapping(t *testing.T) {
	base := NewMetaMismatch("Missing required field", "node_fields missing 'id'", nil)
	wrapped := fmt.Errorf("decode failed: %w", base)

	assert.True(t, Is(wrapped, MetaMismatch))
	assert.False(t, Is(wrapped, JSON))
	assert.False(t, Is(errors.New("plain"), InvalidData))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(NewJSON("bad", "bad", nil)))
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		IO:           "io",
		JSON:         "json",
		MetaMismatch: "meta_mismatch",
		InvalidData:  "invalid_data",
		Cancelled:    "cancelled",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}
