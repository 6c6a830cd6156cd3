package model

import (
	"time"
)

type Question struct {
	UUIDBase
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text;not null" json:"description"`
	Tags             string     `gorm:"size:255;index" json:"-"`
	AuthorID         uint       `gorm:"index" json:"authorId"`
	Author           User       `gorm:"foreignKey:AuthorID" json:"author"`
	Views            int        `gorm:"default:0" json:"views"`
	Upvotes          int        `gorm:"default:0" json:"upvotes"`
	Downvotes        int        `gorm:"default:0" json:"downvotes"`
	AnswerCount      int        `gorm:"default:0" json:"answerCount"`
	IsSolved         bool       `gorm:"default:false" json:"isSolved"`
	AcceptedAnswerID *string    `gorm:"size:36" json:"acceptedAnswerId,omitempty"`
	SolvedAt         *time.Time `json:"solvedAt,omitempty"`
	Answers          []Answer   `gorm:"foreignKey:QuestionID" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

type Answer struct {
	UUIDBase
	QuestionID string    `gorm:"index;type:varchar(36)" json:"questionId"`
	Question   Question  `gorm:"foreignKey:QuestionID" json:"-"`
	AuthorID   uint      `gorm:"index" json:"authorId"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"author"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Upvotes    int       `gorm:"default:0" json:"upvotes"`
	Downvotes  int       `gorm:"default:0" json:"downvotes"`
	Comments   []Comment `gorm:"foreignKey:AnswerID" json:"-"`
}

func (Answer) TableName() string {
	return "answers"
}

// Comment 仅追加，不带计数器
type Comment struct {
	UUIDBase
	AnswerID string `gorm:"index;type:varchar(36)" json:"answerId"`
	AuthorID uint   `gorm:"index" json:"authorId"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	Content  string `gorm:"type:text;not null" json:"content"`
}

func (Comment) TableName() string {
	return "comments"
}

type VoteTarget string

const (
	TargetQuestion VoteTarget = "question"
	TargetAnswer   VoteTarget = "answer"
)

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Vote 每个用户对每个目标最多一行，方向可翻转；唯一索引从结构上阻止重复投票
type Vote struct {
	ID         uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	UserID     uint          `gorm:"uniqueIndex:idx_user_target" json:"userId"`
	TargetType VoteTarget    `gorm:"uniqueIndex:idx_user_target;size:20" json:"targetType"`
	TargetID   string        `gorm:"uniqueIndex:idx_user_target;size:36" json:"targetId"`
	Direction  VoteDirection `gorm:"size:10;not null" json:"direction"`
}

func (Vote) TableName() string {
	return "votes"
}
