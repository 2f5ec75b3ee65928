package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type VideoController struct {
	VideoService *service.VideoService
}

func NewVideoController(videoService *service.VideoService) *VideoController {
	return &VideoController{VideoService: videoService}
}

type BulkDeleteVideosRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// ListVideos godoc
// @Summary Videos of a course
// @Tags videos
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=[]model.CourseVideo}
// @Failure 403 {object} util.Response
// @Router /api/courses/{id}/videos [get]
func (c *VideoController) ListVideos(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	videos, err := c.VideoService.List(actor, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, videos)
}

// UploadVideo godoc
// @Summary Upload a video to a course
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param title formData string true "Title"
// @Param order formData int false "Position within the course"
// @Param video formData file true "Video file"
// @Success 201 {object} util.Response{data=model.CourseVideo}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/courses/{id}/videos [post]
func (c *VideoController) UploadVideo(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("video")
	if err != nil {
		util.HandleError(ctx, util.NewValidationError("video", "this field is required"))
		return
	}

	up := service.VideoUpload{
		Title:    ctx.PostForm("title"),
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
	}
	if raw := ctx.PostForm("order"); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			util.HandleError(ctx, util.NewValidationError("order", "must be an integer"))
			return
		}
		up.Order = &order
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()
	up.File = file

	video, err := c.VideoService.Upload(ctx.Request.Context(), actor, courseID, up)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, video)
}

// BulkDeleteVideos godoc
// @Summary Delete several videos of a course
// @Description Every id must belong to the course, otherwise nothing is deleted
// @Tags videos
// @Accept json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param body body BulkDeleteVideosRequest true "Video ids"
// @Success 204
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/courses/{id}/videos [delete]
func (c *VideoController) BulkDeleteVideos(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req BulkDeleteVideosRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.VideoService.BulkDelete(ctx.Request.Context(), actor, courseID, req.IDs); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// DeleteVideo godoc
// @Summary Delete a video
// @Tags videos
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param videoId path int true "Video ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/videos/{videoId} [delete]
func (c *VideoController) DeleteVideo(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	videoID, ok := util.ParamID(ctx, "videoId")
	if !ok {
		return
	}
	if err := c.VideoService.Delete(ctx.Request.Context(), actor, courseID, videoID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
