package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizAttemptController struct {
	AttemptService *service.QuizAttemptService
}

func NewQuizAttemptController(attemptService *service.QuizAttemptService) *QuizAttemptController {
	return &QuizAttemptController{AttemptService: attemptService}
}

type AnswerRequest struct {
	QuestionID uint   `json:"question" binding:"required"`
	Answer     string `json:"answer"`
}

type SubmitAttemptRequest struct {
	QuizID  uint            `json:"quiz" binding:"required"`
	Answers []AnswerRequest `json:"answers" binding:"required,dive"`
}

type GradeRequest struct {
	AnswerID  uint `json:"id" binding:"required"`
	IsCorrect bool `json:"isCorrect"`
}

type GradeAttemptRequest struct {
	Answers []GradeRequest `json:"answers" binding:"required,dive"`
}

// SubmitAttempt godoc
// @Summary Submit answers to a quiz
// @Description One answer per question of the quiz. The attempt stays pending until graded.
// @Tags quiz-attempts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SubmitAttemptRequest true "Answers"
// @Success 201 {object} util.Response{data=model.QuizAttempt}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/quiz-attempts [post]
func (c *QuizAttemptController) SubmitAttempt(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req SubmitAttemptRequest
	if !bindJSON(ctx, &req) {
		return
	}
	answers := make([]service.AnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.AnswerInput{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	attempt, err := c.AttemptService.Submit(actor, req.QuizID, answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

// MyAttempts godoc
// @Summary Own quiz attempts
// @Tags quiz-attempts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.QuizAttempt}
// @Router /api/quiz-attempts/mine [get]
func (c *QuizAttemptController) MyAttempts(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	attempts, err := c.AttemptService.Mine(actor.ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// GetAttempt godoc
// @Summary Get an attempt
// @Tags quiz-attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Failure 403 {object} util.Response
// @Router /api/quiz-attempts/{id} [get]
func (c *QuizAttemptController) GetAttempt(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	attempt, err := c.AttemptService.Get(actor, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// GradeAttempt godoc
// @Summary Grade the answers of an attempt
// @Description Every answer of the attempt must be graded exactly once
// @Tags quiz-attempts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Param body body GradeAttemptRequest true "Grades"
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/quiz-attempts/{id} [put]
func (c *QuizAttemptController) GradeAttempt(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req GradeAttemptRequest
	if !bindJSON(ctx, &req) {
		return
	}
	grades := make([]service.GradeInput, 0, len(req.Answers))
	for _, g := range req.Answers {
		grades = append(grades, service.GradeInput{AnswerID: g.AnswerID, IsCorrect: g.IsCorrect})
	}
	attempt, err := c.AttemptService.Grade(actor, id, grades)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// DeleteAttempt godoc
// @Summary Delete an attempt
// @Tags quiz-attempts
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Router /api/quiz-attempts/{id} [delete]
func (c *QuizAttemptController) DeleteAttempt(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AttemptService.Delete(actor, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
