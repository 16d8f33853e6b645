package handlers

import (
	"net/http"

	"github.com/gestor-dev/gestor/db"
	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/services"
	"github.com/gestor-dev/gestor/internal/utils"
	"github.com/gin-gonic/gin"
)

type UpdateUserRequest struct {
	Username *string      `json:"username"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Nombre   *string      `json:"nombre"`
	Password *string      `json:"password" binding:"omitempty,min=8"`
	Rol      *models.Role `json:"rol"`
}

func ListUsers(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	users, err := services.ListUsers(db.DB, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]UserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, toUserResponse(user))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetUser(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := services.GetUser(db.DB, actor, id)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(user))
}

func UpdateUser(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := services.UpdateUser(db.DB, actor, id, services.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Nombre:   req.Nombre,
		Password: req.Password,
		Rol:      req.Rol,
	})

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteSelf removes the actor's own account, subject to the deletion
// guard.
func DeleteSelf(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := services.DeleteUser(db.DB, actor, actor.ID); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func DeleteUser(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteUser(db.DB, actor, id); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
