package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	t.Run("Wrapped sentinel keeps its reason", func(t *testing.T) {
		// Given: a wrapped illegal move error
		err := fmt.Errorf("failed to make move: %w", ErrCellOccupied)

		// When: mapping it to a reason code
		reason := Reason(err)

		// Then: the reason of the sentinel is returned
		assert.Equal(t, ReasonCellOccupied, reason)
	})

	t.Run("Validation errors share one reason", func(t *testing.T) {
		assert.Equal(t, ReasonValidation, Reason(ErrEmptyName))
		assert.Equal(t, ReasonValidation, Reason(ErrInvalidRoomCode))
		assert.Equal(t, ReasonValidation, Reason(ErrMessageTooLong))
	})

	t.Run("Unknown errors are internal", func(t *testing.T) {
		assert.Equal(t, ReasonInternal, Reason(errors.New("redis down")))
	})
}

func TestIsIllegalMove(t *testing.T) {
	assert.True(t, IsIllegalMove(fmt.Errorf("move: %w", ErrNotYourTurn)))
	assert.True(t, IsIllegalMove(ErrGameIsNotStarted))
	assert.True(t, IsIllegalMove(ErrOutOfBounds))
	assert.False(t, IsIllegalMove(ErrRoomFull))
	assert.False(t, IsIllegalMove(ErrRoomNotFound))
}
