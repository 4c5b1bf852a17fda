package apperrors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
)

func TestNotFoundError(t *testing.T) {
	err := apperrors.NewNotFoundError("Chat room doesn't exist", map[string]any{"chatRoomId": "room-1"})

	assert.Equal(t, 404, err.Code())
	assert.Equal(t, "Chat room doesn't exist", err.Error())
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, apperrors.IsStoreError(err))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.NewStoreError("failed to store message", cause)

	assert.Equal(t, 500, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.True(t, apperrors.IsStoreError(err))
	assert.False(t, apperrors.IsNotFound(err))
}

func TestTypedErrorsSurviveWrapping(t *testing.T) {
	inner := apperrors.NewNotFoundError("Chat room doesn't exist", nil)
	wrapped := pkgerrors.Wrap(inner, "checking session")

	assert.True(t, apperrors.IsNotFound(wrapped))
}
