package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type ProgressRequest struct {
	CompletedVideos []uint `json:"completedVideos"`
}

// GetProgress godoc
// @Summary Own progress in a course
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	view, err := c.ProgressService.Get(actor, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// CreateProgress godoc
// @Summary Start tracking progress in a course
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param body body ProgressRequest false "Videos already completed"
// @Success 201 {object} util.Response{data=service.ProgressView}
// @Failure 409 {object} util.Response
// @Router /api/courses/{id}/progress [post]
func (c *ProgressController) CreateProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req ProgressRequest
	if ctx.Request.ContentLength != 0 && !bindJSON(ctx, &req) {
		return
	}
	view, err := c.ProgressService.Create(actor, courseID, req.CompletedVideos)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// ReplaceProgress godoc
// @Summary Replace the completed videos
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param body body ProgressRequest true "Completed videos"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Router /api/courses/{id}/progress [put]
func (c *ProgressController) ReplaceProgress(ctx *gin.Context) {
	c.update(ctx, true)
}

// AddProgress godoc
// @Summary Mark more videos as completed
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param body body ProgressRequest true "Newly completed videos"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Router /api/courses/{id}/progress [patch]
func (c *ProgressController) AddProgress(ctx *gin.Context) {
	c.update(ctx, false)
}

func (c *ProgressController) update(ctx *gin.Context, replace bool) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req ProgressRequest
	if !bindJSON(ctx, &req) {
		return
	}
	view, err := c.ProgressService.Update(actor, courseID, req.CompletedVideos, replace)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// DeleteProgress godoc
// @Summary Stop tracking progress in a course
// @Tags progress
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/progress [delete]
func (c *ProgressController) DeleteProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ProgressService.Delete(actor, courseID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// StudentsProgress godoc
// @Summary Progress of the students in a course
// @Description Instructors see the approved students assigned to them
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=[]service.ProgressView}
// @Failure 403 {object} util.Response
// @Router /api/courses/{id}/students-progress [get]
func (c *ProgressController) StudentsProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	views, err := c.ProgressService.StudentsProgress(actor, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, views)
}
