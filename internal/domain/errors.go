package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrNoSession     = errors.New("no hay sesión activa")
	ErrEmptyCart     = errors.New("el carrito está vacío")
	ErrInvalidStatus = errors.New("estado de orden inválido")
)

// ErrorKind clasifica los fallos que llegan desde la API remota o del transporte.
type ErrorKind string

const (
	// KindNetwork fallo de transporte: no hubo respuesta HTTP.
	KindNetwork ErrorKind = "network"
	// KindAuth respuesta clase 401: dispara el teardown global de sesión.
	KindAuth ErrorKind = "auth"
	// KindApplication respuesta 4xx/5xx con código y mensaje estructurados del servidor.
	KindApplication ErrorKind = "application"
	// KindValidation error detectado en el cliente antes de llamar a la API.
	KindValidation ErrorKind = "validation"
)

// APIError error estructurado de la capa de sincronización.
// Se guarda tal cual en las entradas de caché para que la UI decida la presentación.
type APIError struct {
	Kind    ErrorKind
	Status  int    // código HTTP (0 si no hubo respuesta)
	Code    string // código de error del servidor, ej. "CART_EMPTY"
	Message string
	cause   error
}

// Error implementa la interfaz error.
func (e *APIError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap expone la causa original para errors.Is / errors.As.
func (e *APIError) Unwrap() error { return e.cause }

// NewNetworkError envuelve un fallo de transporte (timeout, DNS, conexión rechazada).
func NewNetworkError(cause error) *APIError {
	msg := "fallo de red"
	if cause != nil {
		msg = cause.Error()
	}
	return &APIError{Kind: KindNetwork, Message: msg, cause: cause}
}

// NewAuthError construye el error de autenticación que dispara el teardown global.
func NewAuthError(status int, code, message string) *APIError {
	if message == "" {
		message = ErrUnauthorized.Error()
	}
	return &APIError{Kind: KindAuth, Status: status, Code: code, Message: message, cause: ErrUnauthorized}
}

// NewApplicationError construye un error 4xx/5xx con código estructurado del servidor.
func NewApplicationError(status int, code, message string) *APIError {
	return &APIError{Kind: KindApplication, Status: status, Code: code, Message: message}
}

// NewValidationError construye un error detectado del lado cliente; nunca llega a la caché.
func NewValidationError(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message, cause: ErrInvalidInput}
}

// AsAPIError normaliza cualquier error a *APIError.
// Errores desconocidos se tratan como fallo de red (no hubo respuesta utilizable).
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewNetworkError(err)
}

// IsAuth reporta si el error es clase 401 (sesión inválida).
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

// IsNetwork reporta si el error fue de transporte, sin respuesta del servidor.
func IsNetwork(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}
