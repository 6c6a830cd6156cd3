package repository

import (
	"nexuslearn_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// tagMatch 精确匹配逗号拼接列中的单个标签。
// 朴素的 LIKE %tag% 会跨标签边界命中（查 go 连 golang 一起带出来），
// 这里按四种位置（唯一/开头/结尾/中间）锚定边界
func (r *QuestionRepository) tagMatch(tag string) *gorm.DB {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return r.DB.Where("tags = ?", tag).
		Or("tags LIKE ?", tag+",%").
		Or("tags LIKE ?", "%,"+tag).
		Or("tags LIKE ?", "%,"+tag+",%")
}

func (r *QuestionRepository) FindWithPagination(offset, limit int, tag, search, tab string, solved *bool, userID uint) ([]model.Question, int64, error) {
	var questions []model.Question
	var total int64

	query := r.DB.Model(&model.Question{})

	if tag != "" {
		query = query.Where(r.tagMatch(tag))
	}

	if search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if solved != nil {
		query = query.Where("is_solved = ?", *solved)
	}

	switch tab {
	case "my":
		if userID > 0 {
			query = query.Where("author_id = ?", userID)
		}
	case "unanswered":
		query = query.Where("answer_count = 0")
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 排序
	switch tab {
	case "popular":
		query = query.Order("(upvotes * 5 + views) DESC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	err := query.Offset(offset).Limit(limit).
		Preload("Author").
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var question model.Question
	err := r.DB.Preload("Author").First(&question, "id = ?", id).Error
	return &question, err
}

func (r *QuestionRepository) FindByAuthor(authorID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&questions).Error
	return questions, err
}

// IncrementViews 原子自增浏览量。调用方负责异步化，失败只记录不上抛
func (r *QuestionRepository) IncrementViews(id string) error {
	return r.DB.Model(&model.Question{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).
		Error
}

// FindRelated 返回与目标问题至少共享一个标签的其他问题，最多 limit 条
func (r *QuestionRepository) FindRelated(questionID string, tags []string, limit int) ([]model.Question, error) {
	var questions []model.Question
	if len(tags) == 0 {
		return questions, nil
	}

	query := r.DB.Where("id != ?", questionID)

	tagQuery := r.tagMatch(tags[0])
	for _, t := range tags[1:] {
		tagQuery = tagQuery.Or(r.tagMatch(t))
	}
	query = query.Where(tagQuery)

	err := query.Order("created_at DESC").
		Limit(limit).
		Preload("Author").
		Find(&questions).Error
	return questions, err
}

// SelectTags 取出所有问题的标签列（逗号拼接原样返回），聚合在服务层完成
func (r *QuestionRepository) SelectTags() ([]string, error) {
	var joined []string
	err := r.DB.Model(&model.Question{}).Pluck("tags", &joined).Error
	return joined, err
}

// AcceptAnswer 在一个事务里写入采纳状态并调整声望。
// accepted_answer_id / is_solved / solved_at 在同一条 UPDATE 中落盘，
// 任何读取都不可能观测到二者不一致。
func (r *QuestionRepository) AcceptAnswer(question *model.Question, answer *model.Answer, prev *model.Answer, repAccepted int) error {
	now := time.Now()
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Question{}).
			Where("id = ?", question.ID).
			Updates(map[string]interface{}{
				"accepted_answer_id": answer.ID,
				"is_solved":          true,
				"solved_at":          now,
			}).Error; err != nil {
			return err
		}

		// 换采纳时收回旧答案作者的声望
		if prev != nil && prev.AuthorID != question.AuthorID {
			if err := tx.Model(&model.User{}).
				Where("id = ?", prev.AuthorID).
				Update("reputation", gorm.Expr("reputation - ?", repAccepted)).Error; err != nil {
				return err
			}
		}

		// 自问自答不加声望
		if answer.AuthorID != question.AuthorID {
			if err := tx.Model(&model.User{}).
				Where("id = ?", answer.AuthorID).
				Update("reputation", gorm.Expr("reputation + ?", repAccepted)).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// Create 创建答案并自增所属问题的 answer_count，两个写入在同一事务中，
// 计数器不会因半途失败而与真实答案数脱钩
func (r *AnswerRepository) Create(answer *model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(answer).Error; err != nil {
			return err
		}
		return tx.Model(&model.Question{}).
			Where("id = ?", answer.QuestionID).
			Update("answer_count", gorm.Expr("answer_count + 1")).
			Error
	})
}

func (r *AnswerRepository) FindByID(id string) (*model.Answer, error) {
	var answer model.Answer
	err := r.DB.Preload("Author").First(&answer, "id = ?", id).Error
	return &answer, err
}

func (r *AnswerRepository) FindByQuestion(questionID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Where("question_id = ?", questionID).
		Order("created_at ASC").
		Preload("Author").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) FindByAuthor(authorID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Preload("Question").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) CountByQuestion(questionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Answer{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	return count, err
}

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.DB.Create(comment).Error
}

func (r *CommentRepository) FindByAnswer(answerID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.DB.Where("answer_id = ?", answerID).
		Order("created_at ASC").
		Preload("Author").
		Find(&comments).Error
	return comments, err
}
