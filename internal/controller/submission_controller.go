package controller

import (
	"strconv"

	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
	SubmissionQuery   *service.SubmissionQueryService
}

func NewSubmissionController(submissionService *service.SubmissionService, submissionQuery *service.SubmissionQueryService) *SubmissionController {
	return &SubmissionController{
		SubmissionService: submissionService,
		SubmissionQuery:   submissionQuery,
	}
}

// SubmitQuiz godoc
// @Summary 提交测验作答
// @Description 对测验作答评分并落库，通过时同步更新课时进度、路径完成度与用户档案
// @Tags 提交
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param body body service.SubmitQuizRequest true "作答列表"
// @Success 201 {object} util.Response{data=model.QuizSubmission} "评分结果"
// @Failure 400 {object} util.Response "作答无效或测验不存在"
// @Failure 409 {object} util.Response "不允许重考或系统繁忙"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/quizzes/{id}/submissions [post]
func (c *SubmissionController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var req service.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.SubmissionService.SubmitQuiz(ctx.Request.Context(), user.UserID, uint(quizID), req)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}

	util.Created(ctx, submission)
}

// GetSubmission godoc
// @Summary 查看单次提交的评分明细
// @Tags 提交
// @Produce json
// @Security BearerAuth
// @Param id path string true "提交ID"
// @Success 200 {object} util.Response{data=model.QuizSubmission}
// @Failure 404 {object} util.Response
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submission, err := c.SubmissionQuery.GetForUser(user, ctx.Param("id"))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}

// ListMySubmissions godoc
// @Summary 当前用户在某测验下的全部提交（按提交时间升序）
// @Tags 提交
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=[]model.QuizSubmission}
// @Router /api/quizzes/{id}/submissions [get]
func (c *SubmissionController) ListMySubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	submissions, err := c.SubmissionQuery.ListByUserAndQuiz(user.UserID, uint(quizID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, submissions)
}

// swagger:model RegradeRequest
type RegradeRequest struct {
	Overrides []service.AnswerOverride `json:"overrides" binding:"required"`
}

// Regrade godoc
// @Summary 教师改判提交（短答题人工批改）
// @Description 按改判覆盖重新评分整个提交；若首次变为通过则照常触发进度与档案聚合
// @Tags 提交
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "提交ID"
// @Param body body RegradeRequest true "逐题改判"
// @Success 200 {object} util.Response{data=model.QuizSubmission}
// @Failure 400 {object} util.Response "提交不存在或改判无效"
// @Failure 403 {object} util.Response "需要教师权限"
// @Router /api/instructor/submissions/{id}/regrade [post]
func (c *SubmissionController) Regrade(ctx *gin.Context) {
	var req RegradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.SubmissionService.RegradeSubmission(ctx.Request.Context(), ctx.Param("id"), req.Overrides)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}
