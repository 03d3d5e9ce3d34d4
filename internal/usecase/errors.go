package usecase

import (
	"errors"
	"fmt"
)

// RejectionKind вид отказа в отметке. Значения уходят клиенту в поле "kind".
type RejectionKind string

const (
	InvalidInput         RejectionKind = "invalid_input"
	NetworkDenied        RejectionKind = "network_denied"
	ConfigurationMissing RejectionKind = "configuration_missing"
	GeofenceDenied       RejectionKind = "geofence_denied"
	TokenRequired        RejectionKind = "token_required"
	TokenInvalid         RejectionKind = "token_invalid"
	RoleDenied           RejectionKind = "role_denied"
	ReasonRequired       RejectionKind = "reason_required"
)

// RejectionError отказ с понятным человеку сообщением и диагностикой (адрес, расстояние).
type RejectionError struct {
	Kind    RejectionKind
	Message string
	Details map[string]any
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func reject(kind RejectionKind, msg string) *RejectionError {
	return &RejectionError{Kind: kind, Message: msg}
}

func (e *RejectionError) with(key string, value any) *RejectionError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// KindOf возвращает вид отказа или пустую строку, если err не отказ.
func KindOf(err error) RejectionKind {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Kind
	}
	return ""
}
