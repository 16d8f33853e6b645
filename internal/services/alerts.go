package services

import (
	"errors"
	"fmt"

	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/policy"
	"gorm.io/gorm"
)

func ProjectAssignedMessage(nombre string) string {
	return fmt.Sprintf("Se te ha asignado un nuevo proyecto: %s", nombre)
}

func TaskAssignedMessage(nombre string) string {
	return fmt.Sprintf("Se te ha asignado una nueva tarea: %s", nombre)
}

func TaskStatusMessage(nombre string, estado models.TaskStatus) string {
	return fmt.Sprintf("La tarea %s cambió de estado a %s", nombre, estado)
}

// CreateAlert appends an alert for an existing user. A missing target is
// the only failure mode.
func CreateAlert(database *gorm.DB, targetID uint, mensaje string) (models.Alert, error) {
	var target models.User

	if err := database.First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Alert{}, fmt.Errorf("usuario %d: %w", targetID, ErrNotFound)
		}
		return models.Alert{}, err
	}

	alert := models.Alert{UsuarioID: targetID, Mensaje: mensaje, Visible: true}

	if err := database.Create(&alert).Error; err != nil {
		return models.Alert{}, err
	}

	return alert, nil
}

// createAlertTx appends an alert inside an already-running transaction.
// The target is assumed to have been validated by the caller.
func createAlertTx(tx *gorm.DB, targetID uint, mensaje string) (models.Alert, error) {
	alert := models.Alert{UsuarioID: targetID, Mensaje: mensaje, Visible: true}

	if err := tx.Create(&alert).Error; err != nil {
		return models.Alert{}, err
	}

	return alert, nil
}

// ListAlerts returns every alert for admins and only the actor's own
// otherwise, in insertion order.
func ListAlerts(database *gorm.DB, actor models.User) ([]models.Alert, error) {
	var alerts []models.Alert

	query := database.Order("id")

	if !actor.IsAdmin() {
		query = query.Where("usuario_id = ?", actor.ID)
	}

	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

func GetAlert(database *gorm.DB, actor models.User, id uint) (models.Alert, error) {
	var alert models.Alert

	if err := database.First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Alert{}, ErrNotFound
		}
		return models.Alert{}, err
	}

	if !policy.Can(actor, policy.ActionRead, alert) {
		return models.Alert{}, ErrForbidden
	}

	return alert, nil
}

func DeleteAlert(database *gorm.DB, actor models.User, id uint) error {
	var alert models.Alert

	if err := database.First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !policy.Can(actor, policy.ActionDelete, alert) {
		return ErrForbidden
	}

	return database.Delete(&alert).Error
}

// HideAlerts flips Visible off for every named alert. The operation is
// all-or-nothing: if any id does not resolve, zero alerts are touched and
// ErrNotFound comes back.
func HideAlerts(database *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))

	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var updated int64

	err := database.Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&models.Alert{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
			return err
		}

		if count != int64(len(unique)) {
			return fmt.Errorf("alguna alerta %w", ErrNotFound)
		}

		result := tx.Model(&models.Alert{}).Where("id IN ?", unique).Update("visible", false)

		if result.Error != nil {
			return result.Error
		}

		updated = result.RowsAffected
		return nil
	})

	if err != nil {
		return 0, err
	}

	return updated, nil
}
