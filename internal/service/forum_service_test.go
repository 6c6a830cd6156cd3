package service

import (
	"nexuslearn_backend/internal/model"
	"nexuslearn_backend/internal/repository"
	"nexuslearn_backend/internal/util"
	"nexuslearn_backend/pkg/logger"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.User{}, &model.Question{}, &model.Answer{}, &model.Comment{}, &model.Vote{})
	require.NoError(t, err)

	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}

	return db
}

func newTestForumService(t *testing.T) (*ForumService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	return NewForumService(
		repository.NewQuestionRepository(db),
		repository.NewAnswerRepository(db),
		repository.NewCommentRepository(db),
		repository.NewVoteRepository(db),
		repository.NewUserRepository(db),
		nil,
	), db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()

	user := &model.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@test.edu",
		Password: "hashed",
		Role:     model.Student,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestQuestion(t *testing.T, db *gorm.DB, authorID uint, title string, tags []string) *model.Question {
	t.Helper()

	question := &model.Question{
		Title:       title,
		Description: "description for " + title,
		Tags:        util.JoinTags(tags),
		AuthorID:    authorID,
	}
	require.NoError(t, db.Create(question).Error)
	return question
}

func TestPostAnswerRejectsShortContent(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	responder := createTestUser(t, db, "Responder")
	question := createTestQuestion(t, db, author.ID, "Short answer test", []string{"go"})

	tests := []struct {
		name    string
		content string
	}{
		{"plain short", "too short"},
		// 多字节文本按字符数而不是字节数判断
		{"cjk short", "这是一个短回答啊"},
		// 首尾空白不计入长度
		{"whitespace padded", strings.Repeat(" ", 19) + "a"},
		{"newline padded", "\n\n  ok  \n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{Content: tt.content})
			assert.ErrorIs(t, err, util.ErrAnswerTooShort)
		})
	}

	// 校验失败时不落任何数据
	var answerCount int64
	db.Model(&model.Answer{}).Where("question_id = ?", question.ID).Count(&answerCount)
	assert.Equal(t, int64(0), answerCount)

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	assert.Equal(t, 0, stored.AnswerCount)

	// 刚好 20 个字符的多字节回答要能通过
	_, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{
		Content: strings.Repeat("答", util.MinAnswerLength),
	})
	require.NoError(t, err)
}

func TestPostAnswerIncrementsCounter(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	responder := createTestUser(t, db, "Responder")
	question := createTestQuestion(t, db, author.ID, "Counter test", []string{"go"})

	content := "This answer is definitely longer than twenty characters."
	answer, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{Content: content})
	require.NoError(t, err)
	assert.NotEmpty(t, answer.ID)
	assert.Equal(t, content, answer.Content)

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	assert.Equal(t, 1, stored.AnswerCount)

	var answerCount int64
	db.Model(&model.Answer{}).Where("question_id = ?", question.ID).Count(&answerCount)
	assert.Equal(t, answerCount, int64(stored.AnswerCount))
}

func TestPostAnswerUnknownQuestion(t *testing.T) {
	svc, db := newTestForumService(t)
	responder := createTestUser(t, db, "Responder")

	_, err := svc.PostAnswer(responder.ID, "missing-id", AnswerRequest{
		Content: "This answer is definitely longer than twenty characters.",
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestAcceptAnswerOnlyAuthor(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	responder := createTestUser(t, db, "Responder")
	stranger := createTestUser(t, db, "Stranger")
	question := createTestQuestion(t, db, author.ID, "Accept permissions", []string{"go"})

	answer, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{
		Content: "A perfectly reasonable answer with enough length.",
	})
	require.NoError(t, err)

	err = svc.AcceptAnswer(stranger.ID, question.ID, answer.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	assert.False(t, stored.IsSolved)
	assert.Nil(t, stored.AcceptedAnswerID)
}

func TestAcceptAnswerMismatchedQuestion(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	responder := createTestUser(t, db, "Responder")
	question := createTestQuestion(t, db, author.ID, "First question", []string{"go"})
	other := createTestQuestion(t, db, author.ID, "Second question", []string{"go"})

	answer, err := svc.PostAnswer(responder.ID, other.ID, AnswerRequest{
		Content: "An answer that belongs to the second question only.",
	})
	require.NoError(t, err)

	err = svc.AcceptAnswer(author.ID, question.ID, answer.ID)
	assert.ErrorIs(t, err, util.ErrAnswerMismatch)
}

func TestAcceptAnswerMarksSolvedAndAwardsReputation(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	responder := createTestUser(t, db, "Responder")
	question := createTestQuestion(t, db, author.ID, "Solved state", []string{"go"})

	answer, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{
		Content: "An accepted answer that certainly has enough characters.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.AcceptAnswer(author.ID, question.ID, answer.ID))

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	assert.True(t, stored.IsSolved)
	require.NotNil(t, stored.AcceptedAnswerID)
	assert.Equal(t, answer.ID, *stored.AcceptedAnswerID)
	assert.NotNil(t, stored.SolvedAt)

	var storedResponder model.User
	require.NoError(t, db.First(&storedResponder, responder.ID).Error)
	assert.Equal(t, util.RepAnswerAccepted, storedResponder.Reputation)

	// 重复采纳同一答案是幂等的，声望不重复发放
	require.NoError(t, svc.AcceptAnswer(author.ID, question.ID, answer.ID))
	require.NoError(t, db.First(&storedResponder, responder.ID).Error)
	assert.Equal(t, util.RepAnswerAccepted, storedResponder.Reputation)
}

func TestReacceptTransfersReputation(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	first := createTestUser(t, db, "First")
	second := createTestUser(t, db, "Second")
	question := createTestQuestion(t, db, author.ID, "Changing the accepted answer", []string{"go"})

	a1, err := svc.PostAnswer(first.ID, question.ID, AnswerRequest{
		Content: "The original accepted answer, long enough to pass.",
	})
	require.NoError(t, err)
	a2, err := svc.PostAnswer(second.ID, question.ID, AnswerRequest{
		Content: "A better answer that will replace the first one.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.AcceptAnswer(author.ID, question.ID, a1.ID))
	require.NoError(t, svc.AcceptAnswer(author.ID, question.ID, a2.ID))

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	require.NotNil(t, stored.AcceptedAnswerID)
	assert.Equal(t, a2.ID, *stored.AcceptedAnswerID)
	assert.True(t, stored.IsSolved)

	var u1, u2 model.User
	require.NoError(t, db.First(&u1, first.ID).Error)
	require.NoError(t, db.First(&u2, second.ID).Error)
	assert.Equal(t, 0, u1.Reputation)
	assert.Equal(t, util.RepAnswerAccepted, u2.Reputation)
}

func TestSelfAcceptNoReputation(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	question := createTestQuestion(t, db, author.ID, "Self answered", []string{"go"})

	answer, err := svc.PostAnswer(author.ID, question.ID, AnswerRequest{
		Content: "Answering my own question with plenty of detail here.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.AcceptAnswer(author.ID, question.ID, answer.ID))

	var stored model.User
	require.NoError(t, db.First(&stored, author.ID).Error)
	assert.Equal(t, 0, stored.Reputation)
}

func TestVoteToggleRestoresCounters(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	voter := createTestUser(t, db, "Voter")
	question := createTestQuestion(t, db, author.ID, "Toggle votes", []string{"go"})

	result, err := svc.Vote(voter.ID, model.TargetQuestion, question.ID, model.VoteUp)
	require.NoError(t, err)
	require.NotNil(t, result.State)
	assert.Equal(t, model.VoteUp, *result.State)

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	assert.Equal(t, 1, stored.Upvotes)
	assert.Equal(t, 0, stored.Downvotes)

	var storedAuthor model.User
	require.NoError(t, db.First(&storedAuthor, author.ID).Error)
	assert.Equal(t, util.RepQuestionUpvote, storedAuthor.Reputation)

	// 再点一次同方向撤销，计数器和声望都回到原点
	result, err = svc.Vote(voter.ID, model.TargetQuestion, question.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Nil(t, result.State)

	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	assert.Equal(t, 0, stored.Upvotes)
	assert.Equal(t, 0, stored.Downvotes)

	require.NoError(t, db.First(&storedAuthor, author.ID).Error)
	assert.Equal(t, 0, storedAuthor.Reputation)

	var ledgerCount int64
	db.Model(&model.Vote{}).Where("user_id = ?", voter.ID).Count(&ledgerCount)
	assert.Equal(t, int64(0), ledgerCount)
}

func TestVoteSwitchDirection(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	responder := createTestUser(t, db, "Responder")
	voter := createTestUser(t, db, "Voter")
	question := createTestQuestion(t, db, author.ID, "Switch votes", []string{"go"})

	answer, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{
		Content: "An answer to vote on, with sufficient content length.",
	})
	require.NoError(t, err)

	_, err = svc.Vote(voter.ID, model.TargetAnswer, answer.ID, model.VoteUp)
	require.NoError(t, err)

	result, err := svc.Vote(voter.ID, model.TargetAnswer, answer.ID, model.VoteDown)
	require.NoError(t, err)
	require.NotNil(t, result.State)
	assert.Equal(t, model.VoteDown, *result.State)

	var stored model.Answer
	require.NoError(t, db.First(&stored, "id = ?", answer.ID).Error)
	assert.Equal(t, 0, stored.Upvotes)
	assert.Equal(t, 1, stored.Downvotes)

	// +10 后换向：-10 再 -2
	var storedResponder model.User
	require.NoError(t, db.First(&storedResponder, responder.ID).Error)
	assert.Equal(t, util.RepAnswerDownvote, storedResponder.Reputation)

	// 台账只保留一行，方向已翻转
	var votes []model.Vote
	require.NoError(t, db.Where("user_id = ?", voter.ID).Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, model.VoteDown, votes[0].Direction)
}

func TestSelfVoteSkipsReputation(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	question := createTestQuestion(t, db, author.ID, "Self vote", []string{"go"})

	_, err := svc.Vote(author.ID, model.TargetQuestion, question.ID, model.VoteUp)
	require.NoError(t, err)

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", question.ID).Error)
	assert.Equal(t, 1, stored.Upvotes)

	var storedAuthor model.User
	require.NoError(t, db.First(&storedAuthor, author.ID).Error)
	assert.Equal(t, 0, storedAuthor.Reputation)
}

func TestCreateQuestionRequiresTags(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")

	_, err := svc.CreateQuestion(author.ID, QuestionRequest{
		Title:       "No tags",
		Description: "A question with only whitespace tags.",
		Tags:        []string{"  ", ""},
	})
	assert.ErrorIs(t, err, util.ErrTagsRequired)

	created, err := svc.CreateQuestion(author.ID, QuestionRequest{
		Title:       "With tags",
		Description: "A properly tagged question.",
		Tags:        []string{" Go ", "Concurrency"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "concurrency"}, created.Tags)
}

func TestGetRelatedQuestionsSharedTag(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")

	target := createTestQuestion(t, db, author.ID, "Target", []string{"x", "y"})
	onlyX := createTestQuestion(t, db, author.ID, "Shares x", []string{"x"})
	onlyZ := createTestQuestion(t, db, author.ID, "Shares nothing", []string{"z"})
	sharesY := createTestQuestion(t, db, author.ID, "Shares y", []string{"y", "w"})
	createTestQuestion(t, db, author.ID, "Untagged sibling", []string{"q"})

	related, err := svc.GetRelatedQuestions(target.ID)
	require.NoError(t, err)
	require.Len(t, related, 2)

	ids := []string{related[0].ID, related[1].ID}
	assert.Contains(t, ids, onlyX.ID)
	assert.Contains(t, ids, sharesY.ID)
	assert.NotContains(t, ids, onlyZ.ID)
	assert.NotContains(t, ids, target.ID)
}

// 标签匹配按完整标签对齐，不跨边界命中子串
func TestTagMatchExactBoundary(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")

	target := createTestQuestion(t, db, author.ID, "About go", []string{"go"})
	goLang := createTestQuestion(t, db, author.ID, "About golang", []string{"golang"})
	goMiddle := createTestQuestion(t, db, author.ID, "Multi tagged", []string{"web", "go", "http"})
	createTestQuestion(t, db, author.ID, "Django question", []string{"django"})

	related, err := svc.GetRelatedQuestions(target.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, goMiddle.ID, related[0].ID)

	byTag, total, err := svc.GetQuestions(1, 20, "go", "", "new", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	ids := []string{byTag[0].ID, byTag[1].ID}
	assert.Contains(t, ids, target.ID)
	assert.Contains(t, ids, goMiddle.ID)
	assert.NotContains(t, ids, goLang.ID)
}

func TestGetRelatedQuestionsLimit(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")

	target := createTestQuestion(t, db, author.ID, "Target", []string{"go"})
	for i := 0; i < 8; i++ {
		createTestQuestion(t, db, author.ID, "Sibling", []string{"go"})
	}

	related, err := svc.GetRelatedQuestions(target.ID)
	require.NoError(t, err)
	assert.Len(t, related, 5)
}

func TestCreateCommentOnAnswer(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	responder := createTestUser(t, db, "Responder")
	question := createTestQuestion(t, db, author.ID, "Comments", []string{"go"})

	answer, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{
		Content: "An answer worth commenting on, long enough to pass.",
	})
	require.NoError(t, err)

	comment, err := svc.CreateComment(author.ID, answer.ID, CommentCreateRequest{Content: "Thanks, this helped!"})
	require.NoError(t, err)
	assert.Equal(t, answer.ID, comment.AnswerID)

	comments, err := svc.GetComments(answer.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Thanks, this helped!", comments[0].Content)

	_, err = svc.CreateComment(author.ID, "missing-id", CommentCreateRequest{Content: "orphan"})
	assert.ErrorIs(t, err, util.ErrAnswerNotFound)
}

func TestGetAnswersMarksAccepted(t *testing.T) {
	svc, db := newTestForumService(t)
	author := createTestUser(t, db, "Asker")
	responder := createTestUser(t, db, "Responder")
	question := createTestQuestion(t, db, author.ID, "Accepted flag", []string{"go"})

	a1, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{
		Content: "The first answer, which will not be accepted here.",
	})
	require.NoError(t, err)
	a2, err := svc.PostAnswer(responder.ID, question.ID, AnswerRequest{
		Content: "The second answer, which the author will accept.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.AcceptAnswer(author.ID, question.ID, a2.ID))

	answers, err := svc.GetAnswers(question.ID, 0)
	require.NoError(t, err)
	require.Len(t, answers, 2)

	byID := map[string]AnswerResponse{}
	for _, a := range answers {
		byID[a.ID] = a
	}
	assert.False(t, byID[a1.ID].IsAccepted)
	assert.True(t, byID[a2.ID].IsAccepted)
}

func TestGetQuestionsTabs(t *testing.T) {
	svc, db := newTestForumService(t)
	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")

	answered := createTestQuestion(t, db, alice.ID, "Answered one", []string{"go"})
	open := createTestQuestion(t, db, bob.ID, "Open one", []string{"go"})

	_, err := svc.PostAnswer(bob.ID, answered.ID, AnswerRequest{
		Content: "An answer long enough to mark the question answered.",
	})
	require.NoError(t, err)

	unanswered, total, err := svc.GetQuestions(1, 20, "", "", "unanswered", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, unanswered, 1)
	assert.Equal(t, open.ID, unanswered[0].ID)

	mine, total, err := svc.GetQuestions(1, 20, "", "", "my", nil, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, answered.ID, mine[0].ID)

	byTag, _, err := svc.GetQuestions(1, 20, "go", "", "new", nil, 0)
	require.NoError(t, err)
	assert.Len(t, byTag, 2)
}
