package controller

import (
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

// GetStats godoc
// @Summary 当前用户的游戏化统计
// @Description 积分、连续学习天数、完成计数与已获徽章
// @Tags 档案
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.UserProfile}
// @Router /api/profile/stats [get]
func (c *ProfileController) GetStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.ProfileService.GetStats(user.UserID)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// GetBadges godoc
// @Summary 当前用户的徽章列表
// @Tags 档案
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/profile/badges [get]
func (c *ProfileController) GetBadges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.ProfileService.GetStats(user.UserID)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"badges": profile.Badges})
}
