package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrCapacityExceeded = errors.New("se alcanzó el máximo de borradores abiertos")
	ErrDraftNotFound    = errors.New("borrador no encontrado")
	ErrMissingSession   = errors.New("sesión requerida")
)
