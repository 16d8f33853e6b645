package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/policy"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateTaskInput struct {
	Nombre      string
	Descripcion string
	Estado      models.TaskStatus
	ProyectoID  uint
	AsignadaAID uint
}

// TaskUpdate carries the fields a caller wants to change; nil means leave
// as is. Which fields are honored depends on who the actor is.
type TaskUpdate struct {
	Nombre      *string
	Descripcion *string
	Estado      *models.TaskStatus
	ProyectoID  *uint
	AsignadaAID *uint
}

func (u TaskUpdate) statusOnly() bool {
	return u.Nombre == nil && u.Descripcion == nil && u.ProyectoID == nil && u.AsignadaAID == nil
}

// CreateTask validates the references, checks that the actor is an admin or
// the parent project's owner and writes the task together with its
// assignment alert in one transaction.
func CreateTask(database *gorm.DB, actor models.User, input CreateTaskInput) (models.Task, models.Alert, error) {
	var proyecto models.Project

	if err := database.First(&proyecto, input.ProyectoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, models.Alert{}, fmt.Errorf("proyecto %d: %w", input.ProyectoID, ErrNotFound)
		}
		return models.Task{}, models.Alert{}, err
	}

	if !policy.Can(actor, policy.ActionCreate, models.Task{Proyecto: proyecto}) {
		return models.Task{}, models.Alert{}, ErrForbidden
	}

	var asignada models.User

	if err := database.First(&asignada, input.AsignadaAID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, models.Alert{}, fmt.Errorf("usuario %d: %w", input.AsignadaAID, ErrNotFound)
		}
		return models.Task{}, models.Alert{}, err
	}

	if input.Estado == "" {
		input.Estado = models.StatusPendiente
	}

	if !input.Estado.Valid() {
		return models.Task{}, models.Alert{}, ErrInvalidStatus
	}

	task := models.Task{
		Nombre:      input.Nombre,
		Descripcion: input.Descripcion,
		Estado:      input.Estado,
		ProyectoID:  input.ProyectoID,
		AsignadaAID: input.AsignadaAID,
	}

	var alert models.Alert

	err := database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		var err error
		alert, err = createAlertTx(tx, task.AsignadaAID, TaskAssignedMessage(task.Nombre))
		return err
	})

	if err != nil {
		return models.Task{}, models.Alert{}, err
	}

	task.Proyecto = proyecto
	task.AsignadaA = asignada

	return task, alert, nil
}

// UpdateTask applies a partial update under the field-level rule: admins
// and the project owner may change anything, the assignee only the status.
// The write, its audit row and any alerts land in a single transaction. A
// status update that does not change the value emits no alert.
func UpdateTask(database *gorm.DB, actor models.User, taskID uint, update TaskUpdate) (models.Task, []models.Alert, error) {
	var task models.Task

	if err := database.Preload("Proyecto").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, nil, ErrNotFound
		}
		return models.Task{}, nil, err
	}

	if !policy.CanUpdateTaskFields(actor, task, update.statusOnly()) {
		return models.Task{}, nil, ErrForbidden
	}

	if update.Estado != nil && !update.Estado.Valid() {
		return models.Task{}, nil, ErrInvalidStatus
	}

	if update.ProyectoID != nil && *update.ProyectoID != task.ProyectoID {
		var proyecto models.Project

		if err := database.First(&proyecto, *update.ProyectoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Task{}, nil, fmt.Errorf("proyecto %d: %w", *update.ProyectoID, ErrNotFound)
			}
			return models.Task{}, nil, err
		}

		// Moving the task is a create in the destination project, so the
		// actor must also own that project.
		if !policy.Can(actor, policy.ActionCreate, models.Task{Proyecto: proyecto}) {
			return models.Task{}, nil, ErrForbidden
		}
	}

	reassigned := update.AsignadaAID != nil && *update.AsignadaAID != task.AsignadaAID

	if reassigned {
		var asignada models.User

		if err := database.First(&asignada, *update.AsignadaAID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Task{}, nil, fmt.Errorf("usuario %d: %w", *update.AsignadaAID, ErrNotFound)
			}
			return models.Task{}, nil, err
		}
	}

	changes := make(map[string]interface{})

	if update.Nombre != nil && *update.Nombre != task.Nombre {
		task.Nombre = *update.Nombre
		changes["nombre"] = task.Nombre
	}

	if update.Descripcion != nil && *update.Descripcion != task.Descripcion {
		task.Descripcion = *update.Descripcion
		changes["descripcion"] = task.Descripcion
	}

	if update.ProyectoID != nil && *update.ProyectoID != task.ProyectoID {
		task.ProyectoID = *update.ProyectoID
		changes["proyecto_id"] = task.ProyectoID
	}

	if reassigned {
		task.AsignadaAID = *update.AsignadaAID
		changes["asignada_a_id"] = task.AsignadaAID
	}

	statusChanged := update.Estado != nil && *update.Estado != task.Estado

	if statusChanged {
		task.Estado = *update.Estado
		changes["estado"] = task.Estado
	}

	if len(changes) == 0 {
		return task, nil, nil
	}

	var alerts []models.Alert

	err := database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(changes).Error; err != nil {
			return err
		}

		if reassigned {
			alert, err := createAlertTx(tx, task.AsignadaAID, TaskAssignedMessage(task.Nombre))
			if err != nil {
				return err
			}
			alerts = append(alerts, alert)
		}

		if statusChanged {
			alert, err := createAlertTx(tx, task.AsignadaAID, TaskStatusMessage(task.Nombre, task.Estado))
			if err != nil {
				return err
			}
			alerts = append(alerts, alert)
		}

		payload, err := json.Marshal(changes)
		if err != nil {
			return err
		}

		audit := models.TaskChange{
			TaskID:  task.ID,
			UserID:  actor.ID,
			Changes: datatypes.JSON(payload),
		}

		return tx.Create(&audit).Error
	})

	if err != nil {
		return models.Task{}, nil, err
	}

	return task, alerts, nil
}

// ListTasks returns every task for admins and only the actor's assigned
// tasks otherwise, optionally narrowed to one project.
func ListTasks(database *gorm.DB, actor models.User, projectID *uint) ([]models.Task, error) {
	var tasks []models.Task

	query := database.Preload("Proyecto").Order("id")

	if !actor.IsAdmin() {
		query = query.Where("asignada_a_id = ?", actor.ID)
	}

	if projectID != nil {
		query = query.Where("proyecto_id = ?", *projectID)
	}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func GetTask(database *gorm.DB, actor models.User, id uint) (models.Task, error) {
	var task models.Task

	if err := database.Preload("Proyecto").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}

	if !policy.Can(actor, policy.ActionRead, task) {
		return models.Task{}, ErrForbidden
	}

	return task, nil
}

func DeleteTask(database *gorm.DB, actor models.User, id uint) error {
	var task models.Task

	if err := database.Preload("Proyecto").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !policy.Can(actor, policy.ActionDelete, task) {
		return ErrForbidden
	}

	return database.Delete(&task).Error
}
