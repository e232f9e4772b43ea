package controller

import (
	"strconv"

	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	SubmissionService *service.SubmissionService
	ProgressService   *service.ProgressService
}

func NewLearningController(submissionService *service.SubmissionService, progressService *service.ProgressService) *LearningController {
	return &LearningController{
		SubmissionService: submissionService,
		ProgressService:   progressService,
	}
}

// ViewLesson godoc
// @Summary 记录课时浏览
// @Description 首次浏览建立进度记录，之后每次浏览次数加一。浏览不影响完成状态与任何聚合
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Progress}
// @Failure 400 {object} util.Response "课时不存在"
// @Router /api/lessons/{id}/view [post]
func (c *LearningController) ViewLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}

	progress, err := c.SubmissionService.ViewLesson(ctx.Request.Context(), user.UserID, uint(lessonID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CompleteLesson godoc
// @Summary 标记课时完成
// @Description 幂等：重复调用不改变 completedAt，也不会重复累计积分或完成度。有测验把关的课时要求已通过对应测验
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Progress}
// @Failure 400 {object} util.Response "课时不存在或由测验把关"
// @Failure 409 {object} util.Response "系统繁忙，请重试"
// @Router /api/lessons/{id}/complete [post]
func (c *LearningController) CompleteLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}

	progress, err := c.SubmissionService.CompleteLesson(ctx.Request.Context(), user.UserID, uint(lessonID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// GetProgress godoc
// @Summary 查询当前用户在某课时的进度
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Progress}
// @Failure 400 {object} util.Response "无进度记录"
// @Router /api/lessons/{id}/progress [get]
func (c *LearningController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}

	progress, err := c.ProgressService.GetProgress(user.UserID, uint(lessonID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
