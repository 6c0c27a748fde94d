package services_test

import (
	"testing"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	registerSvc := services.NewRegisterService()
	authSvc := services.NewAuthService()

	user, err := registerSvc.RegisterUser(db, services.RegistrationRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")

	loggedIn, err := authSvc.LoginUser(db, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = authSvc.LoginUser(db, "alice@example.com", "wrong-password")
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	registerSvc := services.NewRegisterService()

	_, err := registerSvc.RegisterUser(db, services.RegistrationRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = registerSvc.RegisterUser(db, services.RegistrationRequest{
		Email:    "alice@example.com",
		Password: "different456",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestGenerateAndRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	authSvc := services.NewAuthService()

	user := models.User{Email: "alice@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	accessToken, refreshToken, err := authSvc.GenerateToken(db, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	newAccess, newRefresh, expiresIn, err := authSvc.RefreshToken(db, refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEqual(t, refreshToken, newRefresh)
	assert.Equal(t, int64(3600), expiresIn)

	// The old refresh token is rotated out.
	_, _, _, err = authSvc.RefreshToken(db, refreshToken)
	assert.Error(t, err)
}
