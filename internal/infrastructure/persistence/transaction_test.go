package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockTransactionManager(t *testing.T) (*GormTransactionManager, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormTransactionManager(gormDB), mock
}

func TestGormTransactionManager_WithinTransaction(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		manager, mock := newMockTransactionManager(t)

		mock.ExpectBegin()
		mock.ExpectCommit()

		called := false
		err := manager.WithinTransaction(context.Background(), func(ctx context.Context) error {
			called = true
			tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
			assert.True(t, ok)
			assert.NotNil(t, tx)
			return nil
		})

		assert.NoError(t, err)
		assert.True(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		manager, mock := newMockTransactionManager(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		wantErr := errors.New("unit of work failed")
		err := manager.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return wantErr
		})

		assert.ErrorIs(t, err, wantErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call reuses the outer transaction", func(t *testing.T) {
		manager, mock := newMockTransactionManager(t)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := manager.WithinTransaction(context.Background(), func(outer context.Context) error {
			return manager.WithinTransaction(outer, func(inner context.Context) error {
				assert.Equal(t, outer.Value(txContextKey{}), inner.Value(txContextKey{}))
				return nil
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBFromContext(t *testing.T) {
	t.Run("falls back to the base connection", func(t *testing.T) {
		manager, _ := newMockTransactionManager(t)

		db := dbFromContext(context.Background(), manager.db)

		assert.NotNil(t, db)
	})
}
