package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Error is the error shape exposed to API clients.
// Every instance gets its own ErrorID, RequestID is filled in by the renderer.
type Error struct {
	Name              string    `json:"name"`
	Message           string    `json:"message"`
	Action            string    `json:"action"`
	StatusCode        int       `json:"status_code"`
	ErrorID           uuid.UUID `json:"error_id"`
	RequestID         string    `json:"request_id"`
	ErrorLocationCode string    `json:"error_location_code"`
	Key               string    `json:"key,omitempty"`
	Type              string    `json:"type,omitempty"`

	// Underlying cause, never rendered
	Cause error `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// As extracts *Error from the chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

const (
	ValidationErrorName       = "ValidationError"
	UnauthorizedErrorName     = "UnauthorizedError"
	ForbiddenErrorName        = "ForbiddenError"
	NotFoundErrorName         = "NotFoundError"
	MethodNotAllowedErrorName = "MethodNotAllowedError"
	InternalServerErrorName   = "InternalServerError"
)

const (
	defaultValidationAction = "Ajuste os dados enviados e tente novamente."
	defaultInternalMessage  = "Um erro interno não esperado aconteceu."
	defaultInternalAction   = `Informe ao suporte o valor encontrado no campo "error_id".`
)

func NewValidationError(message, key, errType, location string) *Error {
	return &Error{
		Name:              ValidationErrorName,
		Message:           message,
		Action:            defaultValidationAction,
		StatusCode:        http.StatusBadRequest,
		ErrorID:           uuid.New(),
		ErrorLocationCode: location,
		Key:               key,
		Type:              errType,
	}
}

func NewUnauthorizedError(message, action, location string) *Error {
	return &Error{
		Name:              UnauthorizedErrorName,
		Message:           message,
		Action:            action,
		StatusCode:        http.StatusUnauthorized,
		ErrorID:           uuid.New(),
		ErrorLocationCode: location,
	}
}

func NewForbiddenError(message, action, location string) *Error {
	return &Error{
		Name:              ForbiddenErrorName,
		Message:           message,
		Action:            action,
		StatusCode:        http.StatusForbidden,
		ErrorID:           uuid.New(),
		ErrorLocationCode: location,
	}
}

func NewNotFoundError(message, action, key, location string) *Error {
	return &Error{
		Name:              NotFoundErrorName,
		Message:           message,
		Action:            action,
		StatusCode:        http.StatusNotFound,
		ErrorID:           uuid.New(),
		ErrorLocationCode: location,
		Key:               key,
	}
}

func NewMethodNotAllowedError(method, location string) *Error {
	return &Error{
		Name:              MethodNotAllowedErrorName,
		Message:           fmt.Sprintf(`Método "%s" não permitido para este recurso.`, method),
		Action:            "Utilize um método HTTP válido para este recurso.",
		StatusCode:        http.StatusMethodNotAllowed,
		ErrorID:           uuid.New(),
		ErrorLocationCode: location,
	}
}

// NewInternalServerError hides cause from the client, it is only kept for logging
func NewInternalServerError(cause error, location string) *Error {
	return &Error{
		Name:              InternalServerErrorName,
		Message:           defaultInternalMessage,
		Action:            defaultInternalAction,
		StatusCode:        http.StatusInternalServerError,
		ErrorID:           uuid.New(),
		ErrorLocationCode: location,
		Cause:             cause,
	}
}
