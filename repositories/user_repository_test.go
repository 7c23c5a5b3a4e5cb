package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
)

func TestUserRepositoryFindIdentity(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, role, is_active, is_deleted FROM users WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "is_active", "is_deleted"}).
			AddRow(int64(1), "a@shop.test", "customer", true, false))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "is_active", "is_deleted"}))

	ident, err := repo.FindIdentity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@shop.test", ident.Email)
	assert.True(t, ident.IsActive)

	missing, err := repo.FindIdentity(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("a@shop.test", "hash", "customer", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	user := &models.User{Email: "a@shop.test", Password: "hash", Role: "customer"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, int64(1), user.ID)
	assert.True(t, user.IsActive)

	dup := &models.User{Email: "a@shop.test", Password: "hash", Role: "customer"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
