package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/policy"
	"gorm.io/gorm"
)

type CreateProjectInput struct {
	Nombre      string
	Descripcion string
	FechaInicio time.Time
	FechaFin    time.Time
	UsuarioID   uint
}

type ProjectUpdate struct {
	Nombre      *string
	Descripcion *string
	FechaInicio *time.Time
	FechaFin    *time.Time
	UsuarioID   *uint
}

// CreateProject is admin-only; the owner comes from the request and must
// exist. The owner gets an assignment alert in the same transaction.
func CreateProject(database *gorm.DB, actor models.User, input CreateProjectInput) (models.Project, models.Alert, error) {
	if !policy.Can(actor, policy.ActionCreate, models.Project{UsuarioID: input.UsuarioID}) {
		return models.Project{}, models.Alert{}, ErrForbidden
	}

	var owner models.User

	if err := database.First(&owner, input.UsuarioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, models.Alert{}, fmt.Errorf("usuario %d: %w", input.UsuarioID, ErrNotFound)
		}
		return models.Project{}, models.Alert{}, err
	}

	project := models.Project{
		Nombre:      input.Nombre,
		Descripcion: input.Descripcion,
		FechaInicio: input.FechaInicio,
		FechaFin:    input.FechaFin,
		UsuarioID:   input.UsuarioID,
	}

	var alert models.Alert

	err := database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		var err error
		alert, err = createAlertTx(tx, project.UsuarioID, ProjectAssignedMessage(project.Nombre))
		return err
	})

	if err != nil {
		return models.Project{}, models.Alert{}, err
	}

	return project, alert, nil
}

// ListProjects returns every project for admins and only owned ones
// otherwise.
func ListProjects(database *gorm.DB, actor models.User) ([]models.Project, error) {
	var projects []models.Project

	query := database.Order("id")

	if !actor.IsAdmin() {
		query = query.Where("usuario_id = ?", actor.ID)
	}

	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func GetProject(database *gorm.DB, actor models.User, id uint) (models.Project, error) {
	var project models.Project

	if err := database.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}

	if !policy.Can(actor, policy.ActionRead, project) {
		return models.Project{}, ErrForbidden
	}

	return project, nil
}

// UpdateProject applies a partial update. Handing the project to another
// owner requires the new owner to exist and emits an assignment alert.
func UpdateProject(database *gorm.DB, actor models.User, id uint, update ProjectUpdate) (models.Project, *models.Alert, error) {
	var project models.Project

	if err := database.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, nil, ErrNotFound
		}
		return models.Project{}, nil, err
	}

	if !policy.Can(actor, policy.ActionUpdate, project) {
		return models.Project{}, nil, ErrForbidden
	}

	reassigned := update.UsuarioID != nil && *update.UsuarioID != project.UsuarioID

	if reassigned {
		var owner models.User

		if err := database.First(&owner, *update.UsuarioID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Project{}, nil, fmt.Errorf("usuario %d: %w", *update.UsuarioID, ErrNotFound)
			}
			return models.Project{}, nil, err
		}
	}

	if update.Nombre != nil {
		project.Nombre = *update.Nombre
	}

	if update.Descripcion != nil {
		project.Descripcion = *update.Descripcion
	}

	if update.FechaInicio != nil {
		project.FechaInicio = *update.FechaInicio
	}

	if update.FechaFin != nil {
		project.FechaFin = *update.FechaFin
	}

	if reassigned {
		project.UsuarioID = *update.UsuarioID
	}

	var alert *models.Alert

	err := database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		if reassigned {
			created, err := createAlertTx(tx, project.UsuarioID, ProjectAssignedMessage(project.Nombre))
			if err != nil {
				return err
			}
			alert = &created
		}

		return nil
	})

	if err != nil {
		return models.Project{}, nil, err
	}

	return project, alert, nil
}

// DeleteProject refuses while the project still has tasks, for anyone.
func DeleteProject(database *gorm.DB, actor models.User, id uint) error {
	var project models.Project

	if err := database.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !policy.Can(actor, policy.ActionDelete, project) {
		return ErrForbidden
	}

	var tareas int64

	if err := database.Model(&models.Task{}).Where("proyecto_id = ?", project.ID).Count(&tareas).Error; err != nil {
		return err
	}

	if tareas > 0 {
		return ErrHasDependents
	}

	return database.Delete(&project).Error
}
