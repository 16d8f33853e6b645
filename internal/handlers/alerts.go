package handlers

import (
	"net/http"

	"github.com/gestor-dev/gestor/db"
	"github.com/gestor-dev/gestor/internal/services"
	"github.com/gestor-dev/gestor/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateAlertRequest struct {
	Usuario uint   `json:"usuario" binding:"required"`
	Mensaje string `json:"mensaje" binding:"required"`
}

type UpdateVisibilityRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

func CreateAlert(ctx *gin.Context) {
	if _, err := utils.GetCurrentUser(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateAlertRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	alert, err := services.CreateAlert(db.DB, req.Usuario, req.Mensaje)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	BroadcastAlert(alert)

	ctx.JSON(http.StatusCreated, toAlertResponse(alert))
}

func ListAlerts(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	alerts, err := services.ListAlerts(db.DB, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]AlertResponse, 0, len(alerts))

	for _, alert := range alerts {
		response = append(response, toAlertResponse(alert))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetAlert(ctx *gin.Context) {
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

	alert, err := services.GetAlert(db.DB, actor, id)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toAlertResponse(alert))
}

func DeleteAlert(ctx *gin.Context) {
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

	if err := services.DeleteAlert(db.DB, actor, id); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// UpdateAlertVisibility is the bulk hide. All ids must resolve or nothing
// is touched.
func UpdateAlertVisibility(ctx *gin.Context) {
	if _, err := utils.GetCurrentUser(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateVisibilityRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := services.HideAlerts(db.DB, req.IDs)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"updated": updated})
}
