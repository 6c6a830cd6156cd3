// 填充演示数据脚本
//
// 在空数据库中写入一批演示用户、问题和回答，方便本地联调前端。
// 已存在同邮箱用户时跳过，不会重复写入。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"log"
	"nexuslearn_backend/internal/config"
	"nexuslearn_backend/internal/model"
	"nexuslearn_backend/internal/repository"
	"nexuslearn_backend/internal/util"
	"nexuslearn_backend/pkg/database"
	"nexuslearn_backend/pkg/logger"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type demoUser struct {
	name       string
	email      string
	role       model.UserRole
	department string
	bio        string
	reputation int
}

var demoUsers = []demoUser{
	{"Alice Johnson", "alice@nexuslearn.edu", model.Student, "Computer Science", "Third-year CS student, interested in distributed systems.", 120},
	{"Bob Williams", "bob@nexuslearn.edu", model.Student, "Mathematics", "Math major, minor in CS.", 85},
	{"Charlie Brown", "charlie@nexuslearn.edu", model.Teacher, "Computer Science", "Teaching assistant for the algorithms course.", 310},
}

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)

	users := make([]*model.User, 0, len(demoUsers))
	for _, du := range demoUsers {
		if existing, err := userRepo.FindByEmail(du.email); err == nil {
			log.Printf("用户 %s 已存在，跳过", du.email)
			users = append(users, existing)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("密码加密失败: %v", err)
		}

		year := 3
		user := &model.User{
			Name:       du.name,
			Email:      du.email,
			Password:   string(hashed),
			Role:       du.role,
			Department: du.department,
			Year:       &year,
			Bio:        du.bio,
			Reputation: du.reputation,
		}
		if err := userRepo.Create(user); err != nil {
			log.Fatalf("创建用户失败: %v", err)
		}
		users = append(users, user)
		log.Printf("创建用户 %s", du.email)
	}

	var count int64
	db.Model(&model.Question{}).Count(&count)
	if count > 0 {
		log.Println("已存在问题数据，跳过问题填充")
		return
	}

	question := &model.Question{
		Title:       "How do goroutines differ from OS threads?",
		Description: "I keep reading that goroutines are lightweight, but what does that actually mean in practice? How does the Go scheduler map them onto OS threads?",
		Tags:        util.JoinTags([]string{"go", "concurrency", "operating-systems"}),
		AuthorID:    users[0].ID,
	}
	if err := questionRepo.Create(question); err != nil {
		log.Fatalf("创建问题失败: %v", err)
	}

	answer := &model.Answer{
		QuestionID: question.ID,
		AuthorID:   users[2].ID,
		Content:    "Goroutines are multiplexed onto a small number of OS threads by the Go runtime scheduler. Their stacks start at a few kilobytes and grow on demand, which is why you can run hundreds of thousands of them.",
	}
	if err := answerRepo.Create(answer); err != nil {
		log.Fatalf("创建回答失败: %v", err)
	}

	second := &model.Question{
		Title:       "Best way to prove a function is injective?",
		Description: "For my discrete math homework I need to show a function is injective. Is the contrapositive approach always the cleanest, or are there cases where a direct proof is easier?",
		Tags:        util.JoinTags([]string{"mathematics", "proofs"}),
		AuthorID:    users[1].ID,
	}
	if err := questionRepo.Create(second); err != nil {
		log.Fatalf("创建问题失败: %v", err)
	}

	log.Println("演示数据填充完成！")
}
