package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrInvalidAdjustmentType = errors.New("tipo de ajuste inválido")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInsufficientReserved  = errors.New("cantidad reservada insuficiente")
	ErrBelowReserved         = errors.New("el stock físico quedaría por debajo de lo reservado")
	ErrLockTimeout           = errors.New("tiempo de espera de bloqueo agotado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
)
