package services

import (
	"errors"
	"strings"

	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/policy"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserUpdate struct {
	Username *string
	Email    *string
	Nombre   *string
	Password *string
	Rol      *models.Role
}

// ListUsers returns everyone for admins and just the actor otherwise.
func ListUsers(database *gorm.DB, actor models.User) ([]models.User, error) {
	var users []models.User

	query := database.Order("id")

	if !actor.IsAdmin() {
		query = query.Where("id = ?", actor.ID)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func GetUser(database *gorm.DB, actor models.User, id uint) (models.User, error) {
	var user models.User

	if err := database.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}

	if !policy.Can(actor, policy.ActionRead, user) {
		return models.User{}, ErrForbidden
	}

	return user, nil
}

// UpdateUser lets admins edit anyone and users edit themselves. Only
// admins may touch the role, and only with a valid one.
func UpdateUser(database *gorm.DB, actor models.User, id uint, update UserUpdate) (models.User, error) {
	var user models.User

	if err := database.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}

	if !policy.Can(actor, policy.ActionUpdate, user) {
		return models.User{}, ErrForbidden
	}

	if update.Rol != nil {
		if !policy.CanModifyRole(actor) {
			return models.User{}, ErrForbidden
		}
		if !update.Rol.Valid() {
			return models.User{}, ErrInvalidRole
		}
		user.Rol = *update.Rol
	}

	if update.Username != nil {
		user.Username = strings.TrimSpace(*update.Username)
	}

	if update.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*update.Email))
	}

	if update.Nombre != nil {
		user.Nombre = *update.Nombre
	}

	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, err
		}
		user.PasswordHash = string(hash)
	}

	if err := database.Save(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

// DeleteUser is the deletion guard. A user with owned projects or assigned
// tasks is never deleted, no matter who asks; otherwise admins may delete
// anyone and users themselves. Refusal over cascade, so no history is
// silently destroyed.
func DeleteUser(database *gorm.DB, actor models.User, id uint) error {
	var user models.User

	if err := database.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var proyectos int64

	if err := database.Model(&models.Project{}).Where("usuario_id = ?", user.ID).Count(&proyectos).Error; err != nil {
		return err
	}

	var tareas int64

	if err := database.Model(&models.Task{}).Where("asignada_a_id = ?", user.ID).Count(&tareas).Error; err != nil {
		return err
	}

	if proyectos > 0 || tareas > 0 {
		return ErrHasDependents
	}

	if !policy.Can(actor, policy.ActionDelete, user) {
		return ErrForbidden
	}

	// Hard delete. A soft-deleted row would keep the unique username and
	// email claimed forever, and the guard above already rules out
	// dependents.
	return database.Unscoped().Delete(&user).Error
}
