package service

import (
	"nexuslearn_backend/internal/model"
	"nexuslearn_backend/internal/repository"
	"nexuslearn_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo     *repository.UserRepository
	QuestionRepo *repository.QuestionRepository
	AnswerRepo   *repository.AnswerRepository
}

func NewUserService(
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
) *UserService {
	return &UserService{
		UserRepo:     userRepo,
		QuestionRepo: questionRepo,
		AnswerRepo:   answerRepo,
	}
}

type ProfileResponse struct {
	ID         uint           `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Avatar     string         `json:"avatarUrl"`
	Role       model.UserRole `json:"role"`
	Department string         `json:"department"`
	Year       *int           `json:"year,omitempty"`
	Bio        string         `json:"bio"`
	Skills     []string       `json:"skills"`
	Reputation int            `json:"reputation"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type UpdateProfileRequest struct {
	Name       string   `json:"name" binding:"required,max=100"`
	Department string   `json:"department" binding:"max=100"`
	Year       *int     `json:"year"`
	Bio        string   `json:"bio" binding:"max=2000"`
	Skills     []string `json:"skills"`
}

func toProfileResponse(user *model.User) *ProfileResponse {
	return &ProfileResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Avatar:     user.Avatar,
		Role:       user.Role,
		Department: user.Department,
		Year:       user.Year,
		Bio:        user.Bio,
		Skills:     util.SplitTags(user.Skills),
		Reputation: user.Reputation,
		CreatedAt:  user.CreatedAt,
	}
}

func (s *UserService) GetProfile(id uint) (*ProfileResponse, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return toProfileResponse(user), nil
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*ProfileResponse, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	user.Name = req.Name
	user.Department = req.Department
	user.Year = req.Year
	user.Bio = req.Bio
	user.Skills = util.JoinTags(req.Skills)

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return toProfileResponse(user), nil
}

func (s *UserService) UpdateAvatar(userID uint, avatarURL string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}
	user.Avatar = avatarURL
	return s.UserRepo.Update(user)
}

// Leaderboard 按声望降序返回贡献榜
func (s *UserService) Leaderboard(limit int) ([]ProfileResponse, error) {
	users, err := s.UserRepo.FindTopByReputation(limit)
	if err != nil {
		return nil, err
	}

	responses := make([]ProfileResponse, len(users))
	for i := range users {
		responses[i] = *toProfileResponse(&users[i])
	}
	return responses, nil
}

func (s *UserService) GetUsers(page, limit int, search string) ([]model.User, int64, error) {
	offset := (page - 1) * limit
	return s.UserRepo.FindWithPagination(offset, limit, search)
}

func (s *UserService) DisableUser(id uint, disable bool) error {
	if _, err := s.UserRepo.FindByID(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrUserNotFound
		}
		return err
	}
	return s.UserRepo.SetDisabled(id, disable)
}
