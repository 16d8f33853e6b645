package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/services"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type UserResponse struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Nombre   string      `json:"nombre"`
	Rol      models.Role `json:"rol"`
}

type ProjectResponse struct {
	ID          uint   `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	FechaInicio string `json:"fecha_inicio"`
	FechaFin    string `json:"fecha_finalizacion"`
	Usuario     uint   `json:"usuario"`
}

type TaskResponse struct {
	ID          uint              `json:"id"`
	Nombre      string            `json:"nombre"`
	Descripcion string            `json:"descripcion"`
	Estado      models.TaskStatus `json:"estado"`
	Proyecto    uint              `json:"proyecto"`
	AsignadaA   uint              `json:"asignada_a"`
}

type AlertResponse struct {
	ID           uint      `json:"id"`
	Usuario      uint      `json:"usuario"`
	Mensaje      string    `json:"mensaje"`
	Visible      bool      `json:"visible"`
	FechaEmision time.Time `json:"fecha_emision"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Nombre:   u.Nombre,
		Rol:      u.Rol,
	}
}

func toProjectResponse(p models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		FechaInicio: p.FechaInicio.Format(dateLayout),
		FechaFin:    p.FechaFin.Format(dateLayout),
		Usuario:     p.UsuarioID,
	}
}

func toTaskResponse(t models.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Nombre:      t.Nombre,
		Descripcion: t.Descripcion,
		Estado:      t.Estado,
		Proyecto:    t.ProyectoID,
		AsignadaA:   t.AsignadaAID,
	}
}

func toAlertResponse(a models.Alert) AlertResponse {
	return AlertResponse{
		ID:           a.ID,
		Usuario:      a.UsuarioID,
		Mensaje:      a.Mensaje,
		Visible:      a.Visible,
		FechaEmision: a.CreatedAt,
	}
}

// serviceError maps domain errors to HTTP statuses per the taxonomy:
// missing entities 404, policy denials 403, dependent/validation failures
// 400, anything else 500.
func serviceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrHasDependents),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidRole):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("unexpected service error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
