package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
	"storefront/repositories/memstore"
	"storefront/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	tokens := utils.NewJWTIssuer("test-secret", time.Hour)
	svc := NewAuthService(store.Users(), tokens, discardLogger())

	registered, err := svc.Register(ctx, models.RegisterRequest{Email: " Jane@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", registered.User.Email)
	assert.Equal(t, models.RoleCustomer, registered.User.Role)

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "jane@example.com", Password: "another1"})
	requireAppError(t, err, http.StatusConflict, "Email already registered")

	logged, err := svc.Login(ctx, models.LoginRequest{Email: "JANE@example.com", Password: "hunter22"})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	requireAppError(t, err, http.StatusUnauthorized, "Invalid email or password")

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	requireAppError(t, err, http.StatusUnauthorized, "Invalid email or password")
}

func TestLoginRejectsDisabledAccounts(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewAuthService(store.Users(), utils.NewJWTIssuer("s", time.Hour), discardLogger())

	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	store.SeedUser(models.User{Email: "off@example.com", Password: hash, Role: models.RoleCustomer})
	store.SeedUser(models.User{Email: "gone@example.com", Password: hash, Role: models.RoleCustomer, IsActive: true, IsDeleted: true})

	_, err = svc.Login(ctx, models.LoginRequest{Email: "off@example.com", Password: "hunter22"})
	requireAppError(t, err, http.StatusForbidden, "Account is not active")

	_, err = svc.Login(ctx, models.LoginRequest{Email: "gone@example.com", Password: "hunter22"})
	requireAppError(t, err, http.StatusForbidden, "Account has been deleted")
}
