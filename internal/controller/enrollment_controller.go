package controller

import (
	"encoding/json"
	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// nullableID tells an explicit null apart from an absent field.
type nullableID struct {
	Set   bool
	Value *uint
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type EnrollmentRequest struct {
	CourseID     uint                   `json:"course" binding:"required"`
	StudentID    uint                   `json:"student" binding:"required"`
	InstructorID *uint                  `json:"instructor"`
	Status       model.EnrollmentStatus `json:"status" binding:"required,enrollment_status"`
}

type EnrollmentPatchRequest struct {
	Instructor nullableID              `json:"instructor" swaggertype:"integer"`
	Status     *model.EnrollmentStatus `json:"status" binding:"omitempty,enrollment_status"`
}

type EnrollRequest struct {
	CourseID uint `json:"course" binding:"required"`
}

// ListEnrollments godoc
// @Summary List all enrollments
// @Tags enrollments
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response{data=pageResult}
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	items, total, err := c.EnrollmentService.List(page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, pageResult{Items: items, Total: total, Page: page, Limit: limit})
}

// GetEnrollment godoc
// @Summary Get an enrollment
// @Tags enrollments
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response{data=service.EnrollmentView}
// @Failure 404 {object} util.Response
// @Router /api/enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	view, err := c.EnrollmentService.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ReplaceEnrollment godoc
// @Summary Replace an enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Enrollment ID"
// @Param body body EnrollmentRequest true "Enrollment"
// @Success 200 {object} util.Response{data=service.EnrollmentView}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/enrollments/{id} [put]
func (c *EnrollmentController) ReplaceEnrollment(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req EnrollmentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	view, err := c.EnrollmentService.Replace(id, service.EnrollmentInput{
		CourseID:     req.CourseID,
		StudentID:    req.StudentID,
		InstructorID: req.InstructorID,
		Status:       req.Status,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// PatchEnrollment godoc
// @Summary Assign an instructor or change the status
// @Description Allowed for the admin and the course's instructors
// @Tags enrollments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Enrollment ID"
// @Param body body EnrollmentPatchRequest true "Fields to change"
// @Success 200 {object} util.Response{data=service.EnrollmentView}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/enrollments/{id} [patch]
func (c *EnrollmentController) PatchEnrollment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req EnrollmentPatchRequest
	if !bindJSON(ctx, &req) {
		return
	}
	view, err := c.EnrollmentService.Patch(actor, id, service.EnrollmentPatch{
		SetInstructor: req.Instructor.Set,
		InstructorID:  req.Instructor.Value,
		Status:        req.Status,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// DeleteEnrollment godoc
// @Summary Delete an enrollment
// @Tags enrollments
// @Security ApiKeyAuth
// @Param id path int true "Enrollment ID"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/enrollments/{id} [delete]
func (c *EnrollmentController) DeleteEnrollment(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.EnrollmentService.Delete(id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// StudentEnrollments godoc
// @Summary Own enrollments
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.EnrollmentView}
// @Router /api/student/enrollments [get]
func (c *EnrollmentController) StudentEnrollments(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	views, err := c.EnrollmentService.StudentEnrollments(actor.ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// StudentEnrollment godoc
// @Summary One of the own enrollments
// @Tags student
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response{data=service.EnrollmentView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/student/enrollments/{id} [get]
func (c *EnrollmentController) StudentEnrollment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	view, err := c.EnrollmentService.StudentEnrollment(actor.ID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Enroll godoc
// @Summary Request enrollment in a course
// @Description Creates a pending enrollment with no instructor
// @Tags student
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body EnrollRequest true "Course"
// @Success 201 {object} util.Response{data=service.EnrollmentView}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/student/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req EnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}
	view, err := c.EnrollmentService.Enroll(actor.ID, req.CourseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// Withdraw godoc
// @Summary Withdraw an own enrollment
// @Tags student
// @Security ApiKeyAuth
// @Param id path int true "Enrollment ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/student/enrollments/{id} [delete]
func (c *EnrollmentController) Withdraw(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.EnrollmentService.Withdraw(actor.ID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// InstructorStudents godoc
// @Summary Enrollments assigned to the current instructor
// @Tags instructor
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.EnrollmentView}
// @Router /api/instructor/students [get]
func (c *EnrollmentController) InstructorStudents(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	views, err := c.EnrollmentService.InstructorStudents(actor.ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, views)
}
