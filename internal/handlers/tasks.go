package handlers

import (
	"net/http"
	"strconv"

	"github.com/gestor-dev/gestor/db"
	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/services"
	"github.com/gestor-dev/gestor/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	Nombre      string            `json:"nombre" binding:"required"`
	Descripcion string            `json:"descripcion"`
	Estado      models.TaskStatus `json:"estado"`
	Proyecto    uint              `json:"proyecto" binding:"required"`
	AsignadaA   uint              `json:"asignada_a" binding:"required"`
}

type UpdateTaskRequest struct {
	Nombre      *string            `json:"nombre"`
	Descripcion *string            `json:"descripcion"`
	Estado      *models.TaskStatus `json:"estado"`
	Proyecto    *uint              `json:"proyecto"`
	AsignadaA   *uint              `json:"asignada_a"`
}

func CreateTask(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, alert, err := services.CreateTask(db.DB, actor, services.CreateTaskInput{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Estado:      req.Estado,
		ProyectoID:  req.Proyecto,
		AsignadaAID: req.AsignadaA,
	})

	if err != nil {
		serviceError(ctx, err)
		return
	}

	BroadcastAlert(alert)

	ctx.JSON(http.StatusCreated, toTaskResponse(task))
}

// ListTasks returns the tasks the actor may see, optionally narrowed with
// ?project_id=.
func ListTasks(ctx *gin.Context) {
	actor, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var projectID *uint

	if raw := ctx.Query("project_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
			return
		}
		id := uint(parsed)
		projectID = &id
	}

	tasks, err := services.ListTasks(db.DB, actor, projectID)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	response := make([]TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, toTaskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTask(ctx *gin.Context) {
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

	task, err := services.GetTask(db.DB, actor, id)

	if err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toTaskResponse(task))
}

func UpdateTask(ctx *gin.Context) {
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

	var req UpdateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, alerts, err := services.UpdateTask(db.DB, actor, id, services.TaskUpdate{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Estado:      req.Estado,
		ProyectoID:  req.Proyecto,
		AsignadaAID: req.AsignadaA,
	})

	if err != nil {
		serviceError(ctx, err)
		return
	}

	for _, alert := range alerts {
		BroadcastAlert(alert)
	}

	ctx.JSON(http.StatusOK, toTaskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
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

	if err := services.DeleteTask(db.DB, actor, id); err != nil {
		serviceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
