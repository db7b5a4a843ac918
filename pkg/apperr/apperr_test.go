package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfUnwrapsChains(t *testing.T) {
	base := New(KindNotFound, "claim session not found")
	wrapped := fmt.Errorf("loading session: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.True(t, IsKind(wrapped, KindNotFound))
}

func TestAtAnnotatesStep(t *testing.T) {
	err := New(KindExternal, "gateway unreachable").At("register")
	assert.Contains(t, err.Error(), "register")
	assert.Contains(t, err.Error(), "gateway unreachable")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindExternal, "submit batch transfer", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, KindExternal, KindOf(err))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(New(KindExternal, "timeout")))
	assert.False(t, Retryable(New(KindOnChainRejection, "reverted")))
	assert.False(t, Retryable(New(KindValidation, "bad input")))
}

func TestIsMatchesByKind(t *testing.T) {
	err := Newf(KindConflict, "organization %q already exists", "acme.eth")
	assert.True(t, errors.Is(err, New(KindConflict, "anything")))
	assert.False(t, errors.Is(err, New(KindNotFound, "anything")))
}
