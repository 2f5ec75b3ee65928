package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuizController serves quizzes and their questions.
type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

type QuizRequest struct {
	VideoID     uint   `json:"video" binding:"required"`
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description"`
}

type QuestionRequest struct {
	QuizID   uint   `json:"quiz" binding:"required"`
	Question string `json:"question" binding:"required"`
	Marks    int    `json:"marks" binding:"omitempty,min=1"`
}

type UpdateQuestionRequest struct {
	Question string `json:"question" binding:"required"`
	Marks    int    `json:"marks" binding:"omitempty,min=1"`
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Quizzes of a course's videos. Only the admin may omit the course.
// @Tags quizzes
// @Produce json
// @Security ApiKeyAuth
// @Param course query int false "Course ID"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var courseID uint
	if raw := ctx.Query("course"); raw != "" {
		courseID = util.MustParseUint(raw)
		if courseID == 0 {
			util.HandleError(ctx, util.NewValidationError("course", "invalid course id"))
			return
		}
	}
	quizzes, err := c.QuizService.List(actor, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuiz godoc
// @Summary Get a quiz with its questions
// @Tags quizzes
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	quiz, err := c.QuizService.Get(actor, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// CreateQuiz godoc
// @Summary Create a quiz for a video
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body QuizRequest true "Quiz"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 409 {object} util.Response "Video already has a quiz"
// @Router /api/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req QuizRequest
	if !bindJSON(ctx, &req) {
		return
	}
	quiz, err := c.QuizService.Create(actor, service.QuizInput{
		VideoID:     req.VideoID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary Replace a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Quiz ID"
// @Param body body QuizRequest true "Quiz"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req QuizRequest
	if !bindJSON(ctx, &req) {
		return
	}
	quiz, err := c.QuizService.Update(actor, id, service.QuizInput{
		VideoID:     req.VideoID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags quizzes
// @Security ApiKeyAuth
// @Param id path int true "Quiz ID"
// @Success 204
// @Router /api/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuizService.Delete(actor, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// GetQuestion godoc
// @Summary Get a question
// @Tags quizzes
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [get]
func (c *QuizController) GetQuestion(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	q, err := c.QuizService.GetQuestion(actor, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// CreateQuestion godoc
// @Summary Add a question to a quiz
// @Description Marks default to 1. The quiz totals are recomputed.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body QuestionRequest true "Question"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/questions [post]
func (c *QuizController) CreateQuestion(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req QuestionRequest
	if !bindJSON(ctx, &req) {
		return
	}
	q, err := c.QuizService.CreateQuestion(actor, service.QuestionInput{
		QuizID:   req.QuizID,
		Question: req.Question,
		Marks:    req.Marks,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary Replace a question
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Param body body UpdateQuestionRequest true "Question"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateQuestionRequest
	if !bindJSON(ctx, &req) {
		return
	}
	q, err := c.QuizService.UpdateQuestion(actor, id, req.Question, req.Marks)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags quizzes
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Success 204
// @Router /api/questions/{id} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuizService.DeleteQuestion(actor, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
