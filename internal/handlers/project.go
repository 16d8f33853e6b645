package handlers

import (
	"net/http"
	"time"

	"github.com/gestor-dev/gestor/db"
	"github.com/gestor-dev/gestor/internal/services"
	"github.com/gestor-dev/gestor/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateProjectRequest struct {
	Nombre      string `json:"nombre" binding:"required"`
	Descripcion string `json:"descripcion"`
	FechaInicio string `json:"fecha_inicio" binding:"required"`
	FechaFin    string `json:"fecha_finalizacion" binding:"required"`
	Usuario     uint   `json:"usuario" binding:"required"`
}

type UpdateProjectRequest struct {
	Nombre      *string `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	FechaInicio *string `json:"fecha_inicio"`
	FechaFin    *string `json:"fecha_finalizacion"`
	Usuario     *uint   `json:"usuario"`
}

func CreateProject(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	inicio, err := time.Parse(dateLayout, req.FechaInicio)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fecha_inicio, expected YYYY-MM-DD"})
		return
	}

	fin, err := time.Parse(dateLayout, req.FechaFin)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fecha_finalizacion, expected YYYY-MM-DD"})
		return
	}

	project, alert, err := services.CreateProject(db.DB, actor, services.CreateProjectInput{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		FechaInicio: inicio,
		FechaFin:    fin,
		UsuarioID:   req.Usuario,
	})

	if err != nil {
		serviceError(ctx, err)
		return
	}

	BroadcastAlert(alert)

	ctx.JSON(http.StatusCreated, toProjectResponse(project))
}

func ListProjects(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := services.ListProjects(db.DB, actor)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, toProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
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

	project, err := services.GetProject(db.DB, actor, id)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toProjectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
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

	var req UpdateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	update := services.ProjectUpdate{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		UsuarioID:   req.Usuario,
	}

	if req.FechaInicio != nil {
		inicio, err := time.Parse(dateLayout, *req.FechaInicio)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fecha_inicio, expected YYYY-MM-DD"})
			return
		}
		update.FechaInicio = &inicio
	}

	if req.FechaFin != nil {
		fin, err := time.Parse(dateLayout, *req.FechaFin)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fecha_finalizacion, expected YYYY-MM-DD"})
			return
		}
		update.FechaFin = &fin
	}

	project, alert, err := services.UpdateProject(db.DB, actor, id, update)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	if alert != nil {
		BroadcastAlert(*alert)
	}

	ctx.JSON(http.StatusOK, toProjectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
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

	if err := services.DeleteProject(db.DB, actor, id); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
