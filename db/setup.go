package db

import (
	"errors"

	"github.com/gestor-dev/gestor/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Alert{},
		&models.Token{},
		&models.TaskChange{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// EnsureAdminUser creates the initial admin account when none exists yet.
// Project creation is admin-only, so a fresh install needs one.
func EnsureAdminUser(username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var existing models.User

	err := DB.Where("rol = ?", models.RoleAdmin).First(&existing).Error

	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	admin := models.User{
		Username:     username,
		Email:        username + "@localhost",
		Nombre:       "Administrador",
		Rol:          models.RoleAdmin,
		PasswordHash: string(hash),
	}

	return DB.Create(&admin).Error
}
