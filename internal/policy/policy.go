// Package policy holds every role/ownership decision in one place. The
// predicates are pure: no database access, no mutation, and a violation is
// reported as false rather than an error. Mapping a denial to 403 vs 404 is
// the handler's business.
package policy

import "github.com/gestor-dev/gestor/internal/models"

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Can reports whether actor may perform action on target. Admins may do
// anything. Task decisions other than read depend on the parent project, so
// Task targets must be passed with Proyecto populated; an unset association
// denies.
//
// Both actor and target are assumed to exist; resolving them is the
// caller's job.
func Can(actor models.User, action Action, target interface{}) bool {
	if actor.IsAdmin() {
		return true
	}

	switch t := target.(type) {
	case models.Project:
		return canProject(actor, action, t)
	case models.Task:
		return canTask(actor, action, t)
	case models.User:
		return canUser(actor, action, t)
	case models.Alert:
		return canAlert(actor, action, t)
	}

	return false
}

func canProject(actor models.User, action Action, p models.Project) bool {
	// Only admins create projects; the owner is named in the request.
	if action == ActionCreate {
		return false
	}

	return p.UsuarioID == actor.ID
}

func canTask(actor models.User, action Action, t models.Task) bool {
	if action == ActionRead {
		return t.AsignadaAID == actor.ID
	}

	// Create, full update and delete belong to the parent project's owner.
	return t.Proyecto.UsuarioID == actor.ID
}

func canUser(actor models.User, action Action, u models.User) bool {
	// Registration is unauthenticated and never consults the policy, so
	// create by a non-admin actor is a denial.
	if action == ActionCreate {
		return false
	}

	return u.ID == actor.ID
}

func canAlert(actor models.User, action Action, a models.Alert) bool {
	// Any authenticated user may emit an alert at an existing target.
	if action == ActionCreate {
		return true
	}

	return a.UsuarioID == actor.ID
}

// CanUpdateTaskFields applies the field-level task rule: admins and the
// parent project's owner may touch any field, the assignee only the status
// field. The task must carry its Proyecto association.
func CanUpdateTaskFields(actor models.User, t models.Task, statusOnly bool) bool {
	if actor.IsAdmin() || t.Proyecto.UsuarioID == actor.ID {
		return true
	}

	return statusOnly && t.AsignadaAID == actor.ID
}

// CanModifyRole reports whether actor may change a user's role.
func CanModifyRole(actor models.User) bool {
	return actor.IsAdmin()
}
