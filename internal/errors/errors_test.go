package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("CRACK_ITERS must be at least 1")
	err := Wrap(base, "failed to load search configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, "failed to load search configuration: CRACK_ITERS must be at least 1", err.Error())
	assert.True(t, stderrors.Is(err, base))
}

func TestWrapFindsCodeThroughForeignWrapping(t *testing.T) {
	inner := fmt.Errorf("ciphertext: %w", IOError("encrypted.m", fs.ErrNotExist))
	err := Wrap(inner, "failed to load input")

	assert.Equal(t, CodeIOError, GetCode(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWrapForeignError(t *testing.T) {
	err := Wrapf(fs.ErrNotExist, "reading %s", "encrypted.m")

	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestIOError(t *testing.T) {
	err := IOError("improved.m", fs.ErrPermission)

	assert.Equal(t, CodeIOError, err.Code)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "improved.m")
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, stderrors.New("connection refused"))
	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.Equal(t, "connection refused", err.Error())

	recoded := WithCode(CodeNotFound, NotFound("run 42"))
	assert.Equal(t, CodeNotFound, GetCode(recoded))
	assert.Equal(t, "run 42 not found", recoded.Error())

	assert.Equal(t, CodeInternalError, GetCode(stderrors.New("plain")))
}
