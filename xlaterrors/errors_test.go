package xlaterrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorName(t *testing.T) {
	assert.Equal(t, "UnallocatedEncoding", GetErrorName(ErrUnallocatedEncoding))
	assert.Equal(t, "ReservedValue", GetErrorName(ErrReservedValue))
	assert.Equal(t, "No Error", GetErrorName(nil))
	assert.Equal(t, "plain", GetErrorName(errors.New("plain")))

	wrapped := fmt.Errorf("SDOT_elt: %w", ErrReservedValue)
	assert.Equal(t, "ReservedValue", GetErrorName(wrapped))
	assert.True(t, errors.Is(wrapped, ErrReservedValue))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, "U1", GetErrorCode(ErrUnallocatedEncoding))
	assert.Equal(t, "R1", GetErrorCode(ErrReservedValue))
	assert.Equal(t, "", GetErrorCode(errors.New("plain")))
	assert.Equal(t, "The bit pattern has no architecturally assigned meaning.", GetErrorDesc(ErrUnallocatedEncoding))
}

func TestWrappedErrorParts(t *testing.T) {
	wrapped := fmt.Errorf("jit: translate 0x40: %w", fmt.Errorf("MUL_elt: %w", ErrUnallocatedEncoding))
	assert.Equal(t, "U1", GetErrorCode(wrapped))
	assert.Equal(t, "UnallocatedEncoding", GetErrorName(wrapped))
	assert.Equal(t, "The bit pattern has no architecturally assigned meaning.", GetErrorDesc(wrapped))

	assert.Equal(t, "no colon", GetErrorDesc(errors.New("plain: no colon")))
	assert.Equal(t, "DESC NOT SET", GetErrorDesc(errors.New("plain")))
}

func TestIsUndefined(t *testing.T) {
	assert.True(t, IsUndefined(ErrUnallocatedEncoding))
	assert.True(t, IsUndefined(fmt.Errorf("wrapped: %w", ErrReservedValue)))
	assert.False(t, IsUndefined(ErrNoMatch))
	assert.False(t, IsUndefined(nil))
	assert.False(t, errors.Is(ErrUnallocatedEncoding, ErrReservedValue))
}
