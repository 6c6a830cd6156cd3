package controller

import (
	"errors"
	"fmt"
	"nexuslearn_backend/internal/service"
	"nexuslearn_backend/internal/util"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct {
	UserService    *service.UserService
	ForumService   *service.ForumService
	StorageService *service.StorageService
}

func NewUserController(userService *service.UserService, forumService *service.ForumService, storageService *service.StorageService) *UserController {
	return &UserController{
		UserService:    userService,
		ForumService:   forumService,
		StorageService: storageService,
	}
}

// @Summary 获取用户公开资料
// @Description 获取指定用户的公开资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=service.ProfileResponse}
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/forum/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	profile, err := c.UserService.GetProfile(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}

// @Summary 获取用户提问
// @Description 获取指定用户发布的全部问题
// @Tags 用户
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/forum/users/{id}/questions [get]
func (c *UserController) GetUserQuestions(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	questions, err := c.ForumService.GetQuestionsByAuthor(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"questions": questions})
}

// @Summary 获取用户回答
// @Description 获取指定用户发布的全部回答
// @Tags 用户
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/forum/users/{id}/answers [get]
func (c *UserController) GetUserAnswers(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	answers, err := c.ForumService.GetAnswersByAuthor(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"answers": answers})
}

// @Summary 声望排行榜
// @Description 按声望值降序返回用户排行
// @Tags 用户
// @Accept json
// @Produce json
// @Param limit query int false "数量" default(10)
// @Success 200 {object} util.Response
// @Router /api/forum/leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	users, err := c.UserService.Leaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"users": users})
}

// @Summary 更新个人资料
// @Description 更新当前用户的姓名、院系、简介、技能等信息
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.UpdateProfileRequest true "资料内容"
// @Success 200 {object} util.Response{data=service.ProfileResponse}
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.UserService.UpdateProfile(user.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}

// @Summary 上传头像
// @Description 上传当前用户的头像图片
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "头像文件"
// @Success 200 {object} util.Response
// @Router /api/user/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedAvatarExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, "unsupported image type")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, util.MimeImage) {
		contentType = util.MimeOctetStream
	}

	filename := fmt.Sprintf("avatars/%d_%s%s", user.UserID, uuid.New().String(), ext)
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.UserService.UpdateAvatar(user.UserID, url); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"avatarUrl": url})
}

// @Summary 获取用户列表
// @Description 管理员分页查看用户列表
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param search query string false "按姓名或邮箱搜索"
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	search := ctx.Query("search")

	users, total, err := c.UserService.GetUsers(page, limit, search)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

type DisableUserRequest struct {
	Disabled bool `json:"disabled"`
}

// @Summary 禁用/启用用户
// @Description 管理员禁用或恢复指定用户账号
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param body body DisableUserRequest true "禁用状态"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disable [patch]
func (c *UserController) DisableUser(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req DisableUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.DisableUser(uint(id), req.Disabled); err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"id": id, "disabled": req.Disabled})
}
