package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrConcurrencyConflict: la versión de la proyección cambió entre la lectura y la escritura.
	ErrConcurrencyConflict = fmt.Errorf("%w: versión de proyección desactualizada", ErrConflict)
	// ErrRetriesExhausted es transitorio; el llamador puede reenviar la misma intención.
	ErrRetriesExhausted = fmt.Errorf("%w: reintentos agotados", ErrConcurrencyConflict)

	ErrInvalidTransition = fmt.Errorf("%w: transición de alerta no permitida", ErrConflict)
)

// Errores de validación del registro de movimientos. Todos envuelven ErrInvalidInput.
var (
	ErrUnknownItem         = fmt.Errorf("%w: ítem desconocido", ErrInvalidInput)
	ErrUnknownLocation     = fmt.Errorf("%w: ubicación desconocida", ErrInvalidInput)
	ErrInvalidQuantitySign = fmt.Errorf("%w: signo de cantidad incompatible con el tipo", ErrInvalidInput)
	ErrMissingReason       = fmt.Errorf("%w: el ajuste requiere motivo", ErrInvalidInput)
	ErrZeroQuantity        = fmt.Errorf("%w: la cantidad no puede ser cero", ErrInvalidInput)
	ErrSameLocation        = fmt.Errorf("%w: origen y destino son la misma ubicación", ErrInvalidInput)
	ErrUnknownKind         = fmt.Errorf("%w: tipo de movimiento desconocido", ErrInvalidInput)
)

// InsufficientStockError rechazo de un movimiento que dejaría la proyección en negativo.
type InsufficientStockError struct {
	ItemID     string
	LocationID string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s en %s: disponible %s, solicitado %s",
		e.ItemID, e.LocationID, e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// TransferFailedError: la segunda pata de un traslado falló después de confirmar la primera.
// CompensatingEntryID identifica el movimiento de reversa en origen (vacío si la compensación también falló).
type TransferFailedError struct {
	TransferGroupID     string
	CompensatingEntryID string
	Err                 error
}

func (e *TransferFailedError) Error() string {
	if e.CompensatingEntryID == "" {
		return fmt.Sprintf("traslado %s fallido sin compensación: %v", e.TransferGroupID, e.Err)
	}
	return fmt.Sprintf("traslado %s fallido, compensado con %s: %v", e.TransferGroupID, e.CompensatingEntryID, e.Err)
}

func (e *TransferFailedError) Unwrap() error { return e.Err }

// ProjectionDriftError: la proyección almacenada no coincide con la reconstrucción desde el historial.
type ProjectionDriftError struct {
	ItemID     string
	LocationID string
	Stored     decimal.Decimal
	Replayed   decimal.Decimal
}

func (e *ProjectionDriftError) Error() string {
	return fmt.Sprintf("proyección %s/%s desalineada: almacenada %s, historial %s",
		e.ItemID, e.LocationID, e.Stored.String(), e.Replayed.String())
}

func (e *ProjectionDriftError) Is(target error) bool {
	return target == ErrConflict
}
