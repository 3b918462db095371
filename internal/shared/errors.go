package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePayment occurs when a payment number is reused.
	ErrDuplicatePayment = errors.New("payment already registered")
)

// UserSafeMessage returns a message suitable for operator-facing responses.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "El recurso solicitado no existe"
	case errors.Is(err, ErrDuplicatePayment):
		return "La cobranza ya fue registrada"
	case errors.Is(err, ErrIdempotencyConflict):
		return "La operación ya fue procesada"
	default:
		return "Ocurrió un error procesando la solicitud"
	}
}
