package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	perrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(gorm.ErrDuplicatedKey))
	assert.True(t, IsRetryable(perrors.Wrap(&pgconn.PgError{Code: "23505"}, "insert")))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsRetryable(gorm.ErrRecordNotFound))
	assert.False(t, IsRetryable(nil))
}

func TestWithRetry(t *testing.T) {
	t.Run("berhasil setelah konflik", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), 3, func() error {
			calls++
			if calls < 3 {
				return gorm.ErrDuplicatedKey
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("error bisnis tidak di-retry", func(t *testing.T) {
		calls := 0
		boom := errors.New("saldo kurang")
		err := WithRetry(context.Background(), 5, func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("attempts habis", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), 2, func() error {
			calls++
			return &pgconn.PgError{Code: "40001"}
		})
		assert.True(t, IsRetryable(err))
		assert.Equal(t, 2, calls)
	})

	t.Run("context dibatalkan", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := WithRetry(ctx, 5, func() error {
			calls++
			return gorm.ErrDuplicatedKey
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
