package ledgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesReason(t *testing.T) {
	err := New(NotFound, "movement not found")
	require.Equal(t, "not_found: movement not found", err.Error())
}

func TestIsMatchesByKindNotReason(t *testing.T) {
	err := New(NotFound, "movement not found")
	require.True(t, errors.Is(err, NotFoundErr))
	require.False(t, errors.Is(err, ConflictErr))
}

func TestWrapPreservesUnderlyingCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Fatal, "commit failed", cause)
	require.True(t, errors.Is(err, cause))
	require.Equal(t, Fatal, Of(err))
}

func TestOfReturnsZeroForPlainError(t *testing.T) {
	require.Equal(t, Kind(0), Of(fmt.Errorf("plain")))
}
