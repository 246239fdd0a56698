package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrValidation    = errors.New("entrada inválida")
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrOverAllocated = errors.New("los pagos superan el capital")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrStore         = errors.New("error de persistencia")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
)

// Conflictos específicos; todos cumplen errors.Is(err, ErrConflict).
var (
	ErrInvalidTransition = conflict("transición de estado no permitida")
	ErrUnitUnavailable   = conflict("la unidad está tomada por otra venta")
	ErrNoTeamAssigned    = conflict("el proyecto no tiene equipos asignados")
	ErrNoMembers         = conflict("los equipos del proyecto no tienen miembros")
	ErrPhoneOwned        = conflict("el teléfono ya pertenece a otro lead activo")
	ErrDuplicate         = conflict("recurso duplicado")
)

type conflictError struct{ msg string }

func conflict(msg string) error { return &conflictError{msg: msg} }

func (e *conflictError) Error() string { return e.msg }

func (e *conflictError) Unwrap() error { return ErrConflict }

// Validation envuelve ErrValidation con el detalle del campo.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound envuelve ErrNotFound con el recurso buscado.
func NotFound(resource, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, id)
}

// Store envuelve un error del almacenamiento.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
