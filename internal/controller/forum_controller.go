package controller

import (
	"nexuslearn_backend/internal/model"
	"nexuslearn_backend/internal/service"
	"nexuslearn_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ForumController struct {
	ForumService *service.ForumService
	TagService   *service.TagService
}

func NewForumController(forumService *service.ForumService, tagService *service.TagService) *ForumController {
	return &ForumController{
		ForumService: forumService,
		TagService:   tagService,
	}
}

func currentUserID(ctx *gin.Context) uint {
	if user := util.GetUserFromContext(ctx); user != nil {
		return user.UserID
	}
	return 0
}

// @Summary 获取问题列表
// @Description 获取问答区问题列表，支持标签、关键词、标签页筛选
// @Tags 问答
// @Accept json
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param tag query string false "标签筛选"
// @Param search query string false "关键词搜索"
// @Param tab query string false "标签页" Enums(new, popular, unanswered, my) default(new)
// @Param solved query bool false "是否已解决"
// @Success 200 {object} util.Response
// @Router /api/forum/questions [get]
func (c *ForumController) GetQuestions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	tag := ctx.Query("tag")
	search := ctx.Query("search")
	tab := ctx.DefaultQuery("tab", "new")
	solvedStr := ctx.Query("solved")

	var solved *bool
	if solvedStr != "" {
		s := solvedStr == "true"
		solved = &s
	}

	userID := currentUserID(ctx)
	if tab == "my" && userID == 0 {
		util.Unauthorized(ctx)
		return
	}

	questions, total, err := c.ForumService.GetQuestions(page, limit, tag, search, tab, solved, userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"questions": questions,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// @Summary 获取问题详情
// @Description 获取单个问题详情，同一用户 10 分钟内重复访问不计入浏览量
// @Tags 问答
// @Accept json
// @Produce json
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response
// @Router /api/forum/questions/{id} [get]
func (c *ForumController) GetQuestionDetail(ctx *gin.Context) {
	questionID := ctx.Param("id")
	userID := currentUserID(ctx)

	question, err := c.ForumService.GetQuestionDetail(questionID, userID, ctx.ClientIP())
	if err != nil {
		if err == util.ErrQuestionNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, question)
}

// @Summary 发布问题
// @Description 创建新问题，至少需要一个标签
// @Tags 问答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question body service.QuestionRequest true "问题内容"
// @Success 201 {object} util.Response
// @Router /api/forum/questions [post]
func (c *ForumController) CreateQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.ForumService.CreateQuestion(user.UserID, req)
	if err != nil {
		if err == util.ErrTagsRequired {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, question)
}

// @Summary 获取问题回答
// @Description 获取指定问题下的全部回答，按时间正序
// @Tags 问答
// @Accept json
// @Produce json
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response
// @Router /api/forum/questions/{id}/answers [get]
func (c *ForumController) GetAnswers(ctx *gin.Context) {
	questionID := ctx.Param("id")
	userID := currentUserID(ctx)

	answers, err := c.ForumService.GetAnswers(questionID, userID)
	if err != nil {
		if err == util.ErrQuestionNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"answers": answers})
}

// @Summary 发布回答
// @Description 为问题发布回答，内容不少于 20 个字符
// @Tags 问答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param answer body service.AnswerRequest true "回答内容"
// @Success 201 {object} util.Response
// @Router /api/forum/questions/{id}/answers [post]
func (c *ForumController) PostAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID := ctx.Param("id")

	var req service.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.ForumService.PostAnswer(user.UserID, questionID, req)
	if err != nil {
		switch err {
		case util.ErrAnswerTooShort:
			util.BadRequest(ctx, err.Error())
		case util.ErrQuestionNotFound:
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, answer)
}

// @Summary 采纳回答
// @Description 问题作者采纳某个回答为最佳答案，可改选
// @Tags 问答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param answerId path string true "回答ID"
// @Success 200 {object} util.Response
// @Router /api/forum/questions/{id}/answers/{answerId}/accept [post]
func (c *ForumController) AcceptAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID := ctx.Param("id")
	answerID := ctx.Param("answerId")

	if err := c.ForumService.AcceptAnswer(user.UserID, questionID, answerID); err != nil {
		switch err {
		case util.ErrQuestionNotFound, util.ErrAnswerNotFound:
			util.NotFound(ctx)
		case util.ErrPermissionDenied:
			util.Forbidden(ctx)
		case util.ErrAnswerMismatch:
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"accepted": answerID})
}

// @Summary 对问题投票
// @Description 对问题投赞成/反对票，重复同向投票视为撤销
// @Tags 问答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "问题ID"
// @Param vote body service.VoteRequest true "投票方向"
// @Success 200 {object} util.Response
// @Router /api/forum/questions/{id}/vote [post]
func (c *ForumController) VoteQuestion(ctx *gin.Context) {
	c.vote(ctx, model.TargetQuestion, ctx.Param("id"))
}

// @Summary 对回答投票
// @Description 对回答投赞成/反对票，重复同向投票视为撤销
// @Tags 问答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path string true "回答ID"
// @Param vote body service.VoteRequest true "投票方向"
// @Success 200 {object} util.Response
// @Router /api/forum/answers/{answerId}/vote [post]
func (c *ForumController) VoteAnswer(ctx *gin.Context) {
	c.vote(ctx, model.TargetAnswer, ctx.Param("answerId"))
}

func (c *ForumController) vote(ctx *gin.Context, targetType model.VoteTarget, targetID string) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ForumService.Vote(user.UserID, targetType, targetID, req.Direction)
	if err != nil {
		switch err {
		case util.ErrQuestionNotFound, util.ErrAnswerNotFound:
			util.NotFound(ctx)
		case util.ErrBadVoteTarget:
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"myVote": result.State})
}

// @Summary 获取回答评论
// @Description 获取指定回答下的评论列表
// @Tags 问答
// @Accept json
// @Produce json
// @Param answerId path string true "回答ID"
// @Success 200 {object} util.Response
// @Router /api/forum/answers/{answerId}/comments [get]
func (c *ForumController) GetComments(ctx *gin.Context) {
	comments, err := c.ForumService.GetComments(ctx.Param("answerId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"comments": comments})
}

// @Summary 发布评论
// @Description 对某个回答发表评论
// @Tags 问答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path string true "回答ID"
// @Param comment body service.CommentCreateRequest true "评论内容"
// @Success 201 {object} util.Response
// @Router /api/forum/answers/{answerId}/comments [post]
func (c *ForumController) CreateComment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CommentCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.ForumService.CreateComment(user.UserID, ctx.Param("answerId"), req)
	if err != nil {
		if err == util.ErrAnswerNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, comment)
}

// @Summary 获取相关问题
// @Description 获取与目标问题至少共享一个标签的问题，最多 5 条
// @Tags 问答
// @Accept json
// @Produce json
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response
// @Router /api/forum/questions/{id}/related [get]
func (c *ForumController) GetRelatedQuestions(ctx *gin.Context) {
	related, err := c.ForumService.GetRelatedQuestions(ctx.Param("id"))
	if err != nil {
		if err == util.ErrQuestionNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"related": related})
}

// @Summary 获取热门标签
// @Description 按关联问题数量返回前 10 个标签
// @Tags 问答
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/forum/tags/popular [get]
func (c *ForumController) PopularTags(ctx *gin.Context) {
	tags, err := c.TagService.PopularTags()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"tags": tags})
}
