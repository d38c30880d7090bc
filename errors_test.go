package chatql_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/chatql"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := chatql.NewNotFoundError("user")
		assert.Equal(t, "chatql: user not found", err.Error())
	})

	t.Run("ErrorWithID", func(t *testing.T) {
		err := chatql.NewNotFoundErrorWithID("message", 42)
		assert.Equal(t, "chatql: message not found (id=42)", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := chatql.NewNotFoundError("chat")
		assert.True(t, errors.Is(err, chatql.ErrNotFound))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := chatql.NewNotFoundError("user")
		assert.True(t, chatql.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("resolver: %w", err)
		assert.True(t, chatql.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, chatql.IsNotFound(chatql.ErrNotFound))

		// Non-matching error
		assert.False(t, chatql.IsNotFound(errors.New("other error")))
		assert.False(t, chatql.IsNotFound(nil))
	})
}

func TestEncodingError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := chatql.NewEncodingError("parameter 2 is a func", nil)
		assert.Equal(t, "chatql: encoding key: parameter 2 is a func", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("msgpack: unsupported type")
		err := chatql.NewEncodingError("parameter 0", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("IsEncodingError", func(t *testing.T) {
		err := chatql.NewEncodingError("bad input", nil)
		assert.True(t, chatql.IsEncodingError(err))
		assert.True(t, chatql.IsEncodingError(fmt.Errorf("wrap: %w", err)))
		assert.False(t, chatql.IsEncodingError(errors.New("other")))
		assert.False(t, chatql.IsEncodingError(nil))
	})
}

func TestFetchError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := chatql.NewFetchError("chat.user", cause)
		assert.Equal(t, "chatql: fetching chat.user: connection refused", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("bad conn")
		err := chatql.NewFetchError("", cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "chatql: fetch: bad conn", err.Error())
	})

	t.Run("IsFetchError", func(t *testing.T) {
		err := chatql.NewFetchError("chat.message", errors.New("timeout"))
		assert.True(t, chatql.IsFetchError(err))
		assert.True(t, chatql.IsFetchError(fmt.Errorf("wrap: %w", err)))
		assert.False(t, chatql.IsFetchError(errors.New("other")))
		assert.False(t, chatql.IsFetchError(nil))
	})
}

func TestInvalidArgumentError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := chatql.NewInvalidArgumentError("limit", "must be positive")
		assert.Equal(t, `chatql: invalid argument "limit": must be positive`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := chatql.NewInvalidArgumentError("limit", "must be positive")
		assert.True(t, errors.Is(err, chatql.ErrInvalidArgument))
	})

	t.Run("IsInvalidArgument", func(t *testing.T) {
		err := chatql.NewInvalidArgumentError("after", "cursor belongs to another chat")
		assert.True(t, chatql.IsInvalidArgument(err))
		assert.True(t, chatql.IsInvalidArgument(fmt.Errorf("wrap: %w", err)))
		assert.True(t, chatql.IsInvalidArgument(chatql.ErrInvalidArgument))
		assert.False(t, chatql.IsInvalidArgument(errors.New("other")))
		assert.False(t, chatql.IsInvalidArgument(nil))
	})
}
