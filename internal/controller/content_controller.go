package controller

import (
	"strconv"

	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// ListPaths godoc
// @Summary 已发布的学习路径列表
// @Tags 内容
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.LearningPath}
// @Router /api/paths [get]
func (c *ContentController) ListPaths(ctx *gin.Context) {
	paths, err := c.ContentService.ListPaths()
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, paths)
}

// GetPath godoc
// @Summary 学习路径详情（含模块与课时）
// @Tags 内容
// @Produce json
// @Security BearerAuth
// @Param id path int true "学习路径ID"
// @Success 200 {object} util.Response{data=model.LearningPath}
// @Failure 400 {object} util.Response "路径不存在"
// @Router /api/paths/{id} [get]
func (c *ContentController) GetPath(ctx *gin.Context) {
	pathID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid path id")
		return
	}

	path, err := c.ContentService.GetPath(uint(pathID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, path)
}

// GetLesson godoc
// @Summary 课时详情
// @Tags 内容
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response "课时不存在"
// @Router /api/lessons/{id} [get]
func (c *ContentController) GetLesson(ctx *gin.Context) {
	lessonID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}

	lesson, err := c.ContentService.GetLesson(uint(lessonID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// GetQuiz godoc
// @Summary 测验的学习者视图
// @Description 返回题目与选项，不包含正确选项标记与参考答案
// @Tags 内容
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [get]
func (c *ContentController) GetQuiz(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	quiz, err := c.ContentService.GetQuiz(uint(quizID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}
