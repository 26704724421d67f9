package controller

import (
	"errors"

	"github.com/HrushithaL/CyberQuest-sub001/internal/service"
	"github.com/HrushithaL/CyberQuest-sub001/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetProgress godoc
// @Summary The caller's score, level and per-mission progress
// @Tags progress
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.UserProgressView}
// @Failure 401 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.ProgressService.UserProgress(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// GetMissionProgress godoc
// @Summary The caller's progress record for one mission
// @Tags progress
// @Produce  json
// @Security BearerAuth
// @Param   missionId path string true "mission id"
// @Success 200 {object} util.Response{data=model.MissionProgress}
// @Router /api/progress/{missionId} [get]
func (c *ProgressController) GetMissionProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.MissionProgress(claims.UserID, ctx.Param("missionId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
