package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsAndChecks(t *testing.T) {
	assert.True(t, IsUnauthorized(Unauthorized("nope")))
	assert.True(t, IsTransient(Transient("later")))
	assert.True(t, IsValidation(Validation("bad input")))
	assert.True(t, IsNotFound(NotFound("gone")))

	assert.False(t, IsUnauthorized(Transient("later")))
	assert.False(t, IsTransient(stderrors.New("plain")))
	assert.False(t, IsTransient(nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeTransient, "backend unreachable")

	require.NotNil(t, err)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "backend unreachable: connection refused", err.Error())

	assert.Nil(t, Wrap(nil, ErrCodeTransient, "ignored"))
}

func TestWrappedAppErrorKeepsOuterCode(t *testing.T) {
	inner := Unauthorized("token revoked")
	outer := Wrap(inner, ErrCodeTransient, "retry later")

	var appErr *AppError
	require.True(t, stderrors.As(outer, &appErr))
	assert.Equal(t, ErrCodeTransient, appErr.Code)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Erro ao fazer login", Message(Unauthorized("Erro ao fazer login")))
	assert.Equal(t, "outer", Message(Wrap(stderrors.New("cause"), ErrCodeInternal, "outer")))
	assert.Empty(t, Message(stderrors.New("plain")))
	assert.Empty(t, Message(nil))
}
