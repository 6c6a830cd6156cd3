package service

import (
	"nexuslearn_backend/internal/model"
	"nexuslearn_backend/internal/repository"
	"nexuslearn_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAnswerRepository(db),
	), db
}

func TestGetProfileNotFound(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.GetProfile(999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestUpdateProfileSkillsRoundTrip(t *testing.T) {
	svc, _ := newTestUserService(t)
	db := svc.UserRepo.DB
	user := createTestUser(t, db, "Dana")

	year := 2
	profile, err := svc.UpdateProfile(user.ID, UpdateProfileRequest{
		Name:       "Dana Lee",
		Department: "Physics",
		Year:       &year,
		Bio:        "Hi there",
		Skills:     []string{" Go ", "SQL", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dana Lee", profile.Name)
	assert.Equal(t, []string{"go", "sql"}, profile.Skills)

	stored, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Physics", stored.Department)
	assert.Equal(t, []string{"go", "sql"}, stored.Skills)
}

func TestLeaderboardOrder(t *testing.T) {
	svc, db := newTestUserService(t)

	low := createTestUser(t, db, "Low")
	high := createTestUser(t, db, "High")
	mid := createTestUser(t, db, "Mid")
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", low.ID).Update("reputation", 10).Error)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", high.ID).Update("reputation", 300).Error)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", mid.ID).Update("reputation", 80).Error)

	users, err := svc.Leaderboard(2)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, high.ID, users[0].ID)
	assert.Equal(t, mid.ID, users[1].ID)
}

func TestDisableUser(t *testing.T) {
	svc, db := newTestUserService(t)
	user := createTestUser(t, db, "Eve")

	require.NoError(t, svc.DisableUser(user.ID, true))

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.Disabled)

	require.NoError(t, svc.DisableUser(user.ID, false))
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.False(t, stored.Disabled)

	assert.ErrorIs(t, svc.DisableUser(999, true), util.ErrUserNotFound)
}
