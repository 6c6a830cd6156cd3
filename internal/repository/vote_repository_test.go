package repository

import (
	"nexuslearn_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func dir(d model.VoteDirection) *model.VoteDirection {
	return &d
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name      string
		prev      *model.VoteDirection
		next      model.VoteDirection
		wantState *model.VoteDirection
		wantUp    int
		wantDown  int
	}{
		{"none to up", nil, model.VoteUp, dir(model.VoteUp), 1, 0},
		{"none to down", nil, model.VoteDown, dir(model.VoteDown), 0, 1},
		{"up toggled off", dir(model.VoteUp), model.VoteUp, nil, -1, 0},
		{"down toggled off", dir(model.VoteDown), model.VoteDown, nil, 0, -1},
		{"up to down", dir(model.VoteUp), model.VoteDown, dir(model.VoteDown), -1, 1},
		{"down to up", dir(model.VoteDown), model.VoteUp, dir(model.VoteUp), 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, deltaUp, deltaDown := Transition(tt.prev, tt.next)
			if tt.wantState == nil {
				assert.Nil(t, state)
			} else {
				require.NotNil(t, state)
				assert.Equal(t, *tt.wantState, *state)
			}
			assert.Equal(t, tt.wantUp, deltaUp)
			assert.Equal(t, tt.wantDown, deltaDown)
		})
	}
}

func setupVoteTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Question{}, &model.Answer{}, &model.Vote{}))
	return db
}

// 任意顺序的投票序列后，台账里同一用户对同一目标最多一行
func TestApplyKeepsSingleLedgerRow(t *testing.T) {
	db := setupVoteTestDB(t)
	repo := NewVoteRepository(db)

	author := &model.User{Name: "Author", Email: "author@test.edu", Password: "x"}
	require.NoError(t, db.Create(author).Error)
	voter := &model.User{Name: "Voter", Email: "voter@test.edu", Password: "x"}
	require.NoError(t, db.Create(voter).Error)

	question := &model.Question{Title: "t", Description: "d", Tags: "go", AuthorID: author.ID}
	require.NoError(t, db.Create(question).Error)

	sequence := []model.VoteDirection{
		model.VoteUp, model.VoteDown, model.VoteDown, model.VoteUp, model.VoteDown,
	}
	for _, d := range sequence {
		_, err := repo.Apply(voter.ID, model.TargetQuestion, question.ID, d, author.ID, 5, -2)
		require.NoError(t, err)
	}

	var rows int64
	db.Model(&model.Vote{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", voter.ID, model.TargetQuestion, question.ID).
		Count(&rows)
	assert.Equal(t, int64(1), rows)

	// 序列净效果：up, 换down, 撤销, up, 换down
	state, err := repo.Find(voter.ID, model.TargetQuestion, question.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, model.VoteDown, *state)

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	assert.Equal(t, 0, stored.Upvotes)
	assert.Equal(t, 1, stored.Downvotes)

	var storedAuthor model.User
	require.NoError(t, db.First(&storedAuthor, author.ID).Error)
	assert.Equal(t, -2, storedAuthor.Reputation)
}

func TestApplyRejectsUnknownTarget(t *testing.T) {
	db := setupVoteTestDB(t)
	repo := NewVoteRepository(db)

	_, err := repo.Apply(1, model.VoteTarget("post"), "some-id", model.VoteUp, 2, 5, -2)
	assert.Error(t, err)
}
