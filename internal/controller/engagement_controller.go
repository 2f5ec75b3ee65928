package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EngagementController serves comments, likes and ratings of a course.
type EngagementController struct {
	EngagementService *service.EngagementService
}

func NewEngagementController(engagementService *service.EngagementService) *EngagementController {
	return &EngagementController{EngagementService: engagementService}
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type RatingRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// ListComments godoc
// @Summary Comments of a course
// @Tags engagement
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=[]model.CourseComment}
// @Router /api/courses/{id}/comments [get]
func (c *EngagementController) ListComments(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	comments, err := c.EngagementService.ListComments(actor, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, comments)
}

// AddComment godoc
// @Summary Comment on a course
// @Tags engagement
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param body body CommentRequest true "Comment"
// @Success 201 {object} util.Response{data=model.CourseComment}
// @Router /api/courses/{id}/comments [post]
func (c *EngagementController) AddComment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := c.EngagementService.AddComment(ctx.Request.Context(), actor, courseID, req.Content)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}

// EditComment godoc
// @Summary Edit an own comment
// @Tags engagement
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param commentId path int true "Comment ID"
// @Param body body CommentRequest true "New content"
// @Success 200 {object} util.Response{data=model.CourseComment}
// @Failure 403 {object} util.Response
// @Router /api/courses/{id}/comments/{commentId} [patch]
func (c *EngagementController) EditComment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := util.ParamID(ctx, "commentId")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := c.EngagementService.EditComment(ctx.Request.Context(), actor, courseID, commentID, req.Content)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, comment)
}

// DeleteComment godoc
// @Summary Delete an own comment
// @Tags engagement
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Router /api/courses/{id}/comments/{commentId} [delete]
func (c *EngagementController) DeleteComment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := util.ParamID(ctx, "commentId")
	if !ok {
		return
	}
	if err := c.EngagementService.DeleteComment(ctx.Request.Context(), actor, courseID, commentID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// Like godoc
// @Summary Like a course
// @Tags engagement
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 201 {object} util.Response{data=model.CourseLike}
// @Failure 409 {object} util.Response
// @Router /api/courses/{id}/likes [post]
func (c *EngagementController) Like(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	like, err := c.EngagementService.Like(ctx.Request.Context(), actor, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, like)
}

// Unlike godoc
// @Summary Remove an own like
// @Tags engagement
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/likes [delete]
func (c *EngagementController) Unlike(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.EngagementService.Unlike(ctx.Request.Context(), actor, courseID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// Rate godoc
// @Summary Rate a course
// @Tags engagement
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param body body RatingRequest true "Rating from 1 to 5"
// @Success 201 {object} util.Response{data=model.CourseRating}
// @Failure 409 {object} util.Response
// @Router /api/courses/{id}/ratings [post]
func (c *EngagementController) Rate(ctx *gin.Context) {
	c.rate(ctx, false)
}

// ChangeRating godoc
// @Summary Change an own rating
// @Tags engagement
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param body body RatingRequest true "Rating from 1 to 5"
// @Success 200 {object} util.Response{data=model.CourseRating}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/ratings [put]
func (c *EngagementController) ChangeRating(ctx *gin.Context) {
	c.rate(ctx, true)
}

func (c *EngagementController) rate(ctx *gin.Context, change bool) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req RatingRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if change {
		rating, err := c.EngagementService.ChangeRating(ctx.Request.Context(), actor, courseID, req.Rating)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		util.Success(ctx, rating)
		return
	}

	rating, err := c.EngagementService.Rate(ctx.Request.Context(), actor, courseID, req.Rating)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, rating)
}

// Unrate godoc
// @Summary Remove an own rating
// @Tags engagement
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/ratings [delete]
func (c *EngagementController) Unrate(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courseID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.EngagementService.Unrate(ctx.Request.Context(), actor, courseID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
