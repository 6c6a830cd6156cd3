package database

import (
	"fmt"
	"log"
	"nexuslearn_backend/internal/config"
	"nexuslearn_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.Answer{},
		&model.Comment{},
		&model.Vote{},
	)
}

// SeedAdmin 保证系统至少存在一个管理员账号（首次启动时创建）
func SeedAdmin(db *gorm.DB, email, password string) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:       "Admin User",
		Email:      email,
		Password:   string(hashed),
		Role:       model.Admin,
		Department: "University Administration",
		Bio:        "System administrator for NexusLearn.",
	}
	return db.Create(admin).Error
}
