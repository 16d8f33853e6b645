package policy

import (
	"testing"

	"github.com/gestor-dev/gestor/internal/models"
	"gorm.io/gorm"
)

func user(id uint, rol models.Role) models.User {
	return models.User{Model: gorm.Model{ID: id}, Rol: rol}
}

func TestAdminCanEverything(t *testing.T) {
	admin := user(1, models.RoleAdmin)
	other := user(2, models.RoleUsuario)

	targets := []interface{}{
		models.Project{UsuarioID: other.ID},
		models.Task{AsignadaAID: other.ID},
		other,
		models.Alert{UsuarioID: other.ID},
	}

	actions := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

	for _, target := range targets {
		for _, action := range actions {
			if !Can(admin, action, target) {
				t.Errorf("expected admin to be allowed %s on %T", action, target)
			}
		}
	}
}

func TestProjectOwnership(t *testing.T) {
	owner := user(1, models.RoleUsuario)
	stranger := user(2, models.RoleUsuario)
	project := models.Project{UsuarioID: owner.ID}

	for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete} {
		if !Can(owner, action, project) {
			t.Errorf("expected owner to be allowed %s on own project", action)
		}
		if Can(stranger, action, project) {
			t.Errorf("expected non-owner to be denied %s", action)
		}
	}

	// Project creation is admin-only regardless of ownership.
	if Can(owner, ActionCreate, project) {
		t.Error("expected regular user to be denied project creation")
	}
}

func TestTaskVisibilityAndOwnership(t *testing.T) {
	owner := user(1, models.RoleUsuario)
	assignee := user(2, models.RoleUsuario)
	stranger := user(3, models.RoleUsuario)

	task := models.Task{
		AsignadaAID: assignee.ID,
		Proyecto:    models.Project{UsuarioID: owner.ID},
	}

	if !Can(assignee, ActionRead, task) {
		t.Error("expected assignee to read their task")
	}

	if Can(stranger, ActionRead, task) {
		t.Error("expected stranger to be denied task read")
	}

	if Can(assignee, ActionUpdate, task) {
		t.Error("expected assignee to be denied full task update")
	}

	for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
		if !Can(owner, action, task) {
			t.Errorf("expected project owner to be allowed %s on task", action)
		}
	}
}

func TestTaskWithoutProjectDenies(t *testing.T) {
	actor := user(1, models.RoleUsuario)

	// Proyecto not populated: deny rather than guess.
	if Can(actor, ActionUpdate, models.Task{AsignadaAID: actor.ID}) {
		t.Error("expected update denial when parent project is not set")
	}
}

func TestUpdateTaskFields(t *testing.T) {
	owner := user(1, models.RoleUsuario)
	assignee := user(2, models.RoleUsuario)
	stranger := user(3, models.RoleUsuario)
	admin := user(4, models.RoleAdmin)

	task := models.Task{
		AsignadaAID: assignee.ID,
		Proyecto:    models.Project{UsuarioID: owner.ID},
	}

	cases := []struct {
		name       string
		actor      models.User
		statusOnly bool
		want       bool
	}{
		{"admin full", admin, false, true},
		{"owner full", owner, false, true},
		{"assignee status only", assignee, true, true},
		{"assignee full", assignee, false, false},
		{"stranger status only", stranger, true, false},
		{"stranger full", stranger, false, false},
	}

	for _, tc := range cases {
		if got := CanUpdateTaskFields(tc.actor, task, tc.statusOnly); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUserRecordAccess(t *testing.T) {
	self := user(1, models.RoleUsuario)
	other := user(2, models.RoleUsuario)

	for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete} {
		if !Can(self, action, self) {
			t.Errorf("expected user to be allowed %s on own record", action)
		}
		if Can(self, action, other) {
			t.Errorf("expected user to be denied %s on another record", action)
		}
	}

	if CanModifyRole(self) {
		t.Error("expected regular user to be denied role changes")
	}

	if !CanModifyRole(user(3, models.RoleAdmin)) {
		t.Error("expected admin to be allowed role changes")
	}
}

func TestAlertAccess(t *testing.T) {
	target := user(1, models.RoleUsuario)
	stranger := user(2, models.RoleUsuario)
	alert := models.Alert{UsuarioID: target.ID}

	if !Can(target, ActionRead, alert) {
		t.Error("expected target to read their alert")
	}

	if Can(stranger, ActionRead, alert) {
		t.Error("expected stranger to be denied alert read")
	}

	if Can(stranger, ActionDelete, alert) {
		t.Error("expected stranger to be denied alert delete")
	}

	// Anyone authenticated may create an alert.
	if !Can(stranger, ActionCreate, alert) {
		t.Error("expected any user to be allowed alert creation")
	}
}
