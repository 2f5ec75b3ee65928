package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

type CourseRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Description   string `json:"description"`
	InstructorIDs []uint `json:"instructors"`
}

// ListCourses godoc
// @Summary List courses
// @Description Lists live courses; search matches name and description
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param search query string false "Search terms"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response{data=service.CoursePage}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	result, err := c.CourseService.List(ctx.Request.Context(), ctx.Query("search"), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListAllCourses godoc
// @Summary List all courses including soft-deleted ones
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response{data=service.CoursePage}
// @Router /api/admin/courses [get]
func (c *CourseController) ListAllCourses(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	result, err := c.CourseService.ListAll(page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetCourse godoc
// @Summary Course detail with comments
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CourseRequest true "Course"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req CourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.Create(ctx.Request.Context(), service.CourseInput{
		Name:          req.Name,
		Description:   req.Description,
		InstructorIDs: req.InstructorIDs,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary Replace a course
// @Description The instructor set is replaced only when "instructors" is present
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param body body CourseRequest true "Course"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req CourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.Update(ctx.Request.Context(), id, service.CourseInput{
		Name:          req.Name,
		Description:   req.Description,
		InstructorIDs: req.InstructorIDs,
	}, req.InstructorIDs != nil)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary Soft-delete a course
// @Tags courses
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// RestoreCourse godoc
// @Summary Restore a soft-deleted course
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/admin/courses/{id}/restore [post]
func (c *CourseController) RestoreCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Restore(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// GetInstructors godoc
// @Summary Instructors of a course
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=[]model.User}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/instructors [get]
func (c *CourseController) GetInstructors(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Instructors(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course.Instructors)
}

// InstructorCourses godoc
// @Summary Courses the current instructor teaches
// @Tags instructor
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/instructor/courses [get]
func (c *CourseController) InstructorCourses(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	courses, err := c.CourseService.InstructorCourses(actor.ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
