package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/HrushithaL/CyberQuest-sub001/internal/service"
	"github.com/HrushithaL/CyberQuest-sub001/internal/util"

	"github.com/gin-gonic/gin"
)

type MissionController struct {
	MissionService *service.MissionService
}

func NewMissionController(missionService *service.MissionService) *MissionController {
	return &MissionController{MissionService: missionService}
}

// GetMissions godoc
// @Summary List published missions with the caller's progress
// @Tags missions
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.MissionView}
// @Router /api/missions [get]
func (c *MissionController) GetMissions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.MissionService.MissionsWithProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// GetMission godoc
// @Summary Fetch one mission, masked for play
// @Tags missions
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "mission id"
// @Success 200 {object} util.Response{data=service.MissionView}
// @Failure 404 {object} util.Response
// @Router /api/missions/{id} [get]
func (c *MissionController) GetMission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.MissionService.MissionByID(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary Submit mission answers for scoring
// @Tags missions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SubmitMissionRequest true "submission"
// @Success 200 {object} util.Response{data=service.SubmitMissionResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/missions/submit [post]
func (c *MissionController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitMissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.MissionService.SubmitMission(ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Evaluate godoc
// @Summary Grade one challenge submission without persisting a score
// @Tags missions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.EvaluateChallengeRequest true "challenge submission"
// @Success 200 {object} util.Response{data=grading.Result}
// @Failure 400 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/missions/evaluate [post]
func (c *MissionController) Evaluate(ctx *gin.Context) {
	var req service.EvaluateChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.MissionService.EvaluateChallenge(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, util.ErrAIEvalDisabled) {
			util.Error(ctx, http.StatusServiceUnavailable, "AI evaluation not available on server")
			return
		}
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Autosave godoc
// @Summary Save the caller's in-flight draft
// @Tags missions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.AutosaveRequest true "draft state"
// @Success 200 {object} util.Response{data=model.MissionProgress}
// @Failure 400 {object} util.Response
// @Router /api/missions/autosave [post]
func (c *MissionController) Autosave(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AutosaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.MissionService.Autosave(claims.UserID, &req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// ValidateSection godoc
// @Summary Check one section's answers against the authored key
// @Tags missions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.ValidateSectionRequest true "section answers"
// @Success 200 {object} util.Response{data=[]service.SectionItemResult}
// @Failure 400 {object} util.Response
// @Router /api/missions/validate-section [post]
func (c *MissionController) ValidateSection(ctx *gin.Context) {
	var req service.ValidateSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	results, err := c.MissionService.ValidateSection(&req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"results": results})
}

// Complete godoc
// @Summary Award a mission's full points unconditionally
// @Tags missions
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "mission id"
// @Success 200 {object} util.Response{data=service.CompleteMissionResult}
// @Failure 404 {object} util.Response
// @Router /api/missions/{id}/complete [post]
func (c *MissionController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.MissionService.CompleteMission(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Attachment godoc
// @Summary Download a challenge's evidence attachment
// @Tags missions
// @Produce  octet-stream
// @Security BearerAuth
// @Param   id path string true "mission id"
// @Param   index path int true "challenge index"
// @Success 200 {file} binary
// @Failure 404 {object} util.Response
// @Router /api/missions/{id}/challenges/{index}/attachment [get]
func (c *MissionController) Attachment(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.BadRequest(ctx, "invalid challenge index")
		return
	}

	reader, filename, err := c.MissionService.ChallengeAttachment(ctx.Request.Context(), ctx.Param("id"), index)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	defer reader.Close()

	ctx.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	ctx.Header("Content-Type", "application/octet-stream")
	io.Copy(ctx.Writer, reader)
}

func (c *MissionController) writeError(ctx *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		util.BadRequest(ctx, verr.Message)
	case errors.Is(err, util.ErrInvalidAnswers):
		util.BadRequest(ctx, "Invalid answers format")
	case errors.Is(err, util.ErrNoSubmission):
		util.BadRequest(ctx, "No submission provided")
	case errors.Is(err, util.ErrMissionNotFound),
		errors.Is(err, util.ErrMissionNotPublished),
		errors.Is(err, util.ErrChallengeNotFound),
		errors.Is(err, util.ErrAttachmentNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
