package service

import (
	"context"
	"fmt"
	"nexuslearn_backend/internal/model"
	"nexuslearn_backend/internal/repository"
	"nexuslearn_backend/internal/util"
	"nexuslearn_backend/pkg/logger"
	"nexuslearn_backend/pkg/monitoring"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ForumService struct {
	QuestionRepo *repository.QuestionRepository
	AnswerRepo   *repository.AnswerRepository
	CommentRepo  *repository.CommentRepository
	VoteRepo     *repository.VoteRepository
	UserRepo     *repository.UserRepository
	Redis        *redis.Client
}

func NewForumService(
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	commentRepo *repository.CommentRepository,
	voteRepo *repository.VoteRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
) *ForumService {
	return &ForumService{
		QuestionRepo: questionRepo,
		AnswerRepo:   answerRepo,
		CommentRepo:  commentRepo,
		VoteRepo:     voteRepo,
		UserRepo:     userRepo,
		Redis:        rdb,
	}
}

type QuestionRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description" binding:"required"`
	Tags        []string `json:"tags" binding:"required,min=1"`
}

type AnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentCreateRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type VoteRequest struct {
	Direction model.VoteDirection `json:"direction" binding:"required,oneof=up down"`
}

type QuestionResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Tags             []string   `json:"tags"`
	AuthorID         uint       `json:"authorId"`
	Author           string     `json:"author"`
	Avatar           string     `json:"avatarUrl"`
	CreatedAt        time.Time  `json:"createdAt"`
	Views            int        `json:"views"`
	Upvotes          int        `json:"upvotes"`
	Downvotes        int        `json:"downvotes"`
	AnswerCount      int        `json:"answerCount"`
	IsSolved         bool       `json:"isSolved"`
	AcceptedAnswerID *string    `json:"acceptedAnswerId,omitempty"`
	SolvedAt         *time.Time `json:"solvedAt,omitempty"`
}

type QuestionDetailResponse struct {
	QuestionResponse
	MyVote *model.VoteDirection `json:"myVote"`
}

type AnswerResponse struct {
	ID         string               `json:"id"`
	QuestionID string               `json:"questionId"`
	AuthorID   uint                 `json:"authorId"`
	Author     string               `json:"author"`
	Avatar     string               `json:"avatarUrl"`
	Content    string               `json:"content"`
	CreatedAt  time.Time            `json:"createdAt"`
	Upvotes    int                  `json:"upvotes"`
	Downvotes  int                  `json:"downvotes"`
	IsAccepted bool                 `json:"isAccepted"`
	MyVote     *model.VoteDirection `json:"myVote"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	AnswerID  string    `json:"answerId"`
	AuthorID  uint      `json:"authorId"`
	Author    string    `json:"author"`
	Avatar    string    `json:"avatarUrl"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toQuestionResponse(q *model.Question) QuestionResponse {
	return QuestionResponse{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		Tags:             util.SplitTags(q.Tags),
		AuthorID:         q.AuthorID,
		Author:           q.Author.Name,
		Avatar:           q.Author.Avatar,
		CreatedAt:        q.CreatedAt,
		Views:            q.Views,
		Upvotes:          q.Upvotes,
		Downvotes:        q.Downvotes,
		AnswerCount:      q.AnswerCount,
		IsSolved:         q.IsSolved,
		AcceptedAnswerID: q.AcceptedAnswerID,
		SolvedAt:         q.SolvedAt,
	}
}

func (s *ForumService) GetQuestions(page, limit int, tag, search, tab string, solved *bool, userID uint) ([]QuestionResponse, int64, error) {
	offset := (page - 1) * limit
	questions, total, err := s.QuestionRepo.FindWithPagination(offset, limit, tag, search, tab, solved, userID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]QuestionResponse, len(questions))
	for i := range questions {
		responses[i] = toQuestionResponse(&questions[i])
	}

	return responses, total, nil
}

// GetQuestionDetail 返回问题详情并记录一次浏览。
// 浏览量是允许不精确的计数器：自增异步执行，失败只记日志，绝不阻塞渲染。
func (s *ForumService) GetQuestionDetail(questionID string, userID uint, ip string) (*QuestionDetailResponse, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	if s.recordView(questionID, userID, ip) {
		question.Views++ // 本次返回的数据 +1
	}

	res := &QuestionDetailResponse{QuestionResponse: toQuestionResponse(question)}

	if userID > 0 {
		res.MyVote, _ = s.VoteRepo.Find(userID, model.TargetQuestion, questionID)
	}

	return res, nil
}

// recordView 通过 Redis SetNX 做 10 分钟去重，首次可见才计数。
// 返回是否触发了自增，便于把本次响应里的 views 同步 +1。
func (s *ForumService) recordView(questionID string, userID uint, ip string) bool {
	isNewVisit := true
	if s.Redis != nil {
		var userKey string
		if userID > 0 {
			userKey = fmt.Sprintf("q_v:%s:u:%d", questionID, userID)
		} else {
			userKey = fmt.Sprintf("q_v:%s:ip:%s", questionID, ip)
		}
		isNewVisit, _ = s.Redis.SetNX(context.Background(), userKey, "1", 10*time.Minute).Result()
	}

	if isNewVisit {
		go func(qid string) {
			if err := s.QuestionRepo.IncrementViews(qid); err != nil {
				monitoring.ViewIncrementFailures.Inc()
				logger.Log.Error("failed to increment question views",
					zap.String("questionId", qid), zap.Error(err))
			}
		}(questionID)
	}
	return isNewVisit
}

func (s *ForumService) CreateQuestion(userID uint, req QuestionRequest) (*QuestionResponse, error) {
	joined := util.JoinTags(req.Tags)
	if joined == "" {
		return nil, util.ErrTagsRequired
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		Title:       req.Title,
		Description: req.Description,
		Tags:        joined,
		AuthorID:    userID,
	}

	if err := s.QuestionRepo.Create(question); err != nil {
		return nil, err
	}

	question.Author = *user
	res := toQuestionResponse(question)
	return &res, nil
}

func (s *ForumService) GetAnswers(questionID string, userID uint) ([]AnswerResponse, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	answers, err := s.AnswerRepo.FindByQuestion(questionID)
	if err != nil {
		return nil, err
	}

	responses := make([]AnswerResponse, len(answers))
	for i, a := range answers {
		responses[i] = AnswerResponse{
			ID:         a.ID,
			QuestionID: a.QuestionID,
			AuthorID:   a.AuthorID,
			Author:     a.Author.Name,
			Avatar:     a.Author.Avatar,
			Content:    a.Content,
			CreatedAt:  a.CreatedAt,
			Upvotes:    a.Upvotes,
			Downvotes:  a.Downvotes,
			// 采纳状态由当前 accepted_answer_id 相等判断得出，换采纳后自动纠正
			IsAccepted: question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == a.ID,
		}
		if userID > 0 {
			responses[i].MyVote, _ = s.VoteRepo.Find(userID, model.TargetAnswer, a.ID)
		}
	}

	return responses, nil
}

// PostAnswer 校验先于任何写入；创建答案与父问题计数器自增在仓储层同一事务内完成。
// 长度按去除首尾空白后的字符数计，多字节文本不按字节算
func (s *ForumService) PostAnswer(userID uint, questionID string, req AnswerRequest) (*AnswerResponse, error) {
	if utf8.RuneCountInString(strings.TrimSpace(req.Content)) < util.MinAnswerLength {
		return nil, util.ErrAnswerTooShort
	}

	if _, err := s.QuestionRepo.FindByID(questionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		QuestionID: questionID,
		AuthorID:   userID,
		Content:    req.Content,
	}

	if err := s.AnswerRepo.Create(answer); err != nil {
		return nil, err
	}

	return &AnswerResponse{
		ID:         answer.ID,
		QuestionID: answer.QuestionID,
		AuthorID:   userID,
		Author:     user.Name,
		Avatar:     user.Avatar,
		Content:    answer.Content,
		CreatedAt:  answer.CreatedAt,
	}, nil
}

// AcceptAnswer 只有问题作者可以采纳；答案必须属于该问题。
// 重复采纳同一答案是幂等操作，换采纳覆盖旧的并回收声望。
func (s *ForumService) AcceptAnswer(userID uint, questionID, answerID string) error {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionNotFound
		}
		return err
	}

	if question.AuthorID != userID {
		return util.ErrPermissionDenied
	}

	answer, err := s.AnswerRepo.FindByID(answerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrAnswerNotFound
		}
		return err
	}

	if answer.QuestionID != questionID {
		return util.ErrAnswerMismatch
	}

	if question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == answerID {
		return nil
	}

	var prev *model.Answer
	if question.AcceptedAnswerID != nil {
		if p, err := s.AnswerRepo.FindByID(*question.AcceptedAnswerID); err == nil {
			prev = p
		}
	}

	return s.QuestionRepo.AcceptAnswer(question, answer, prev, util.RepAnswerAccepted)
}

// Vote 根据用户对目标的当前台账状态计算转移增量并落盘
func (s *ForumService) Vote(userID uint, targetType model.VoteTarget, targetID string, direction model.VoteDirection) (*repository.VoteResult, error) {
	var authorID uint

	switch targetType {
	case model.TargetQuestion:
		question, err := s.QuestionRepo.FindByID(targetID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, util.ErrQuestionNotFound
			}
			return nil, err
		}
		authorID = question.AuthorID
		return s.VoteRepo.Apply(userID, targetType, targetID, direction, authorID,
			util.RepQuestionUpvote, util.RepQuestionDownvote)
	case model.TargetAnswer:
		answer, err := s.AnswerRepo.FindByID(targetID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, util.ErrAnswerNotFound
			}
			return nil, err
		}
		authorID = answer.AuthorID
		return s.VoteRepo.Apply(userID, targetType, targetID, direction, authorID,
			util.RepAnswerUpvote, util.RepAnswerDownvote)
	}

	return nil, util.ErrBadVoteTarget
}

func (s *ForumService) CreateComment(userID uint, answerID string, req CommentCreateRequest) (*CommentResponse, error) {
	if _, err := s.AnswerRepo.FindByID(answerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAnswerNotFound
		}
		return nil, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		AnswerID: answerID,
		AuthorID: userID,
		Content:  req.Content,
	}

	if err := s.CommentRepo.Create(comment); err != nil {
		return nil, err
	}

	return &CommentResponse{
		ID:        comment.ID,
		AnswerID:  answerID,
		AuthorID:  userID,
		Author:    user.Name,
		Avatar:    user.Avatar,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}

func (s *ForumService) GetComments(answerID string) ([]CommentResponse, error) {
	comments, err := s.CommentRepo.FindByAnswer(answerID)
	if err != nil {
		return nil, err
	}

	responses := make([]CommentResponse, len(comments))
	for i, c := range comments {
		responses[i] = CommentResponse{
			ID:        c.ID,
			AnswerID:  c.AnswerID,
			AuthorID:  c.AuthorID,
			Author:    c.Author.Name,
			Avatar:    c.Author.Avatar,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		}
	}
	return responses, nil
}

// GetRelatedQuestions 返回与目标至少共享一个标签的问题，最多 5 条
func (s *ForumService) GetRelatedQuestions(questionID string) ([]QuestionResponse, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	related, err := s.QuestionRepo.FindRelated(questionID, util.SplitTags(question.Tags), 5)
	if err != nil {
		return nil, err
	}

	responses := make([]QuestionResponse, len(related))
	for i := range related {
		responses[i] = toQuestionResponse(&related[i])
	}
	return responses, nil
}

type UserAnswerResponse struct {
	ID            string    `json:"id"`
	QuestionID    string    `json:"questionId"`
	QuestionTitle string    `json:"questionTitle"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	Upvotes       int       `json:"upvotes"`
	Downvotes     int       `json:"downvotes"`
	IsAccepted    bool      `json:"isAccepted"`
}

func (s *ForumService) GetQuestionsByAuthor(authorID uint) ([]QuestionResponse, error) {
	questions, err := s.QuestionRepo.FindByAuthor(authorID)
	if err != nil {
		return nil, err
	}

	responses := make([]QuestionResponse, len(questions))
	for i := range questions {
		responses[i] = toQuestionResponse(&questions[i])
	}
	return responses, nil
}

func (s *ForumService) GetAnswersByAuthor(authorID uint) ([]UserAnswerResponse, error) {
	answers, err := s.AnswerRepo.FindByAuthor(authorID)
	if err != nil {
		return nil, err
	}

	responses := make([]UserAnswerResponse, len(answers))
	for i, a := range answers {
		accepted := a.Question.AcceptedAnswerID != nil && *a.Question.AcceptedAnswerID == a.ID
		responses[i] = UserAnswerResponse{
			ID:            a.ID,
			QuestionID:    a.QuestionID,
			QuestionTitle: a.Question.Title,
			Content:       a.Content,
			CreatedAt:     a.CreatedAt,
			Upvotes:       a.Upvotes,
			Downvotes:     a.Downvotes,
			IsAccepted:    accepted,
		}
	}
	return responses, nil
}
