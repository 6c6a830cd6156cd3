package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Department string    `gorm:"size:100" json:"department"`
	Year       *int      `json:"year,omitempty"` // 教师/管理员无年级
	Bio        string    `gorm:"type:text" json:"bio"`
	Skills     string    `gorm:"size:255" json:"-"`
	Avatar     string    `gorm:"size:255" json:"avatarUrl"`
	Reputation int       `gorm:"default:0" json:"reputation"`
	Disabled   bool      `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time `json:"lastLogin"`
	LastSeen   time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
