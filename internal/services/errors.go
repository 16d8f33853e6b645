package services

import "errors"

// Service errors. Handlers map these to HTTP statuses: ErrNotFound to 404,
// ErrForbidden to 403, the rest to 400. Checks run before any write, so a
// returned error means nothing was mutated.
var (
	ErrNotFound      = errors.New("no existe")
	ErrForbidden     = errors.New("operación no permitida")
	ErrHasDependents = errors.New("tiene proyectos o tareas asociadas")
	ErrInvalidStatus = errors.New("estado de tarea inválido")
	ErrInvalidRole   = errors.New("rol inválido")
)
