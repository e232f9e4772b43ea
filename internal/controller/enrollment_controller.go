package controller

import (
	"strconv"

	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// Enroll godoc
// @Summary 加入学习路径
// @Description 完成度从 0 开始。重复加入返回既有记录，不重置进度
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Param id path int true "学习路径ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response "路径不存在"
// @Router /api/paths/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	pathID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid path id")
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(user.UserID, uint(pathID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// GetEnrollment godoc
// @Summary 查询当前用户在某路径的完成度
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Param id path int true "学习路径ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response "未加入该路径"
// @Router /api/paths/{id}/enrollment [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	pathID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid path id")
		return
	}

	enrollment, err := c.EnrollmentService.Get(user.UserID, uint(pathID))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// ListMyEnrollments godoc
// @Summary 当前用户的全部选课记录
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListMyEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.EnrollmentService.ListByUser(user.UserID)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}
