package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("assess: %w", Wrap(CodeUpstream, "failed to fetch environmental data", cause))

	require.True(t, IsCode(err, CodeUpstream))
	require.False(t, IsCode(err, CodeInvalidInput))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "assess: failed to fetch environmental data: dial tcp: timeout", err.Error())
}

func TestCodeOfPlainError(t *testing.T) {
	require.Empty(t, CodeOf(errors.New("boom")))
	require.Equal(t, "not found", Wrap(CodeNotFound, "not found", nil).Error())
}
