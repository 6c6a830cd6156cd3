package service

import (
	"nexuslearn_backend/internal/config"
	"nexuslearn_backend/internal/model"
	"nexuslearn_backend/internal/repository"
	"nexuslearn_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-key"
	cfg.JWT.ExpireTime = time.Hour

	return NewAuthService(repository.NewUserRepository(db), cfg), db
}

func TestRegisterDefaults(t *testing.T) {
	svc, db := newTestAuthService(t)

	user := &model.User{
		Name:     "Alice Johnson",
		Email:    "alice@test.edu",
		Password: "password123",
		Role:     model.Student,
	}
	require.NoError(t, svc.Register(user))

	var stored model.User
	require.NoError(t, db.First(&stored, "email = ?", "alice@test.edu").Error)
	assert.Equal(t, "New user on NexusLearn!", stored.Bio)
	require.NotNil(t, stored.Year)
	assert.Equal(t, 1, *stored.Year)
	assert.Equal(t, 0, stored.Reputation)
	// 密码必须以哈希形式落盘
	assert.NotEqual(t, "password123", stored.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	first := &model.User{Name: "Alice", Email: "dup@test.edu", Password: "password123", Role: model.Student}
	require.NoError(t, svc.Register(first))

	second := &model.User{Name: "Other Alice", Email: "dup@test.edu", Password: "password456", Role: model.Student}
	err := svc.Register(second)
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user := &model.User{Name: "Bob", Email: "bob@test.edu", Password: "password123", Role: model.Student}
	require.NoError(t, svc.Register(user))

	token, err := svc.Login("bob@test.edu", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := util.ParseJWT(token, "test-secret-key")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Student, claims.Role)

	_, err = svc.Login("bob@test.edu", "wrong-password")
	assert.Error(t, err)

	_, err = svc.Login("nobody@test.edu", "password123")
	assert.Error(t, err)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, db := newTestAuthService(t)

	user := &model.User{Name: "Carl", Email: "carl@test.edu", Password: "password123", Role: model.Student}
	require.NoError(t, svc.Register(user))
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", user.ID).Update("disabled", true).Error)

	_, err := svc.Login("carl@test.edu", "password123")
	assert.ErrorIs(t, err, util.ErrAccountDisabled)
}
