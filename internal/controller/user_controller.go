package controller

import (
	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response{data=pageResult}
// @Failure 403 {object} util.Response
// @Router /api/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	users, total, err := c.UserService.List(page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, pageResult{Items: users, Total: total, Page: page, Limit: limit})
}

// GetUser godoc
// @Summary Get a user
// @Description Users can read themselves; the admin can read anyone
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.UserService.Get(actor, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

type UpdateUserRequest struct {
	Username  *string         `json:"username" binding:"omitempty,max=100"`
	Email     *string         `json:"email" binding:"omitempty,email,max=100"`
	Password  *string         `json:"password"`
	Password2 *string         `json:"password2"`
	Role      *model.UserRole `json:"role" binding:"omitempty,user_role"`
	IsActive  *bool           `json:"isActive"`
}

// UpdateUser godoc
// @Summary Partially update a user
// @Description Role and isActive may only be changed by the admin
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param body body UpdateUserRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/users/{id} [patch]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.UserService.Update(actor, id, service.UserPatch{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	if err := c.UserService.Delete(actor, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Password        string `json:"password" binding:"required"`
	Password2       string `json:"password2" binding:"required"`
}

// ChangePassword godoc
// @Summary Change own password
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/users/password [put]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.UserService.ChangePassword(actor.ID, req.CurrentPassword, req.Password, req.Password2); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Password updated successfully"})
}
