// Package apperror berisi taksonomi error yang bisa ditangani pemanggil.
// Error selain *Error dianggap fault infrastruktur (500).
package apperror

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindNotFound
	KindConflict
	KindState
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindAuthorization:
		return "authorization_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindState:
		return "state_error"
	case KindUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// FieldError menandai kesalahan pada field tertentu.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type Error struct {
	Kind         Kind
	Message      string
	Fields       []FieldError
	CurrentState string
	Detail       any
}

func (e *Error) Error() string {
	if e.CurrentState != "" {
		return fmt.Sprintf("%s: %s (current state: %s)", e.Kind, e.Message, e.CurrentState)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// Unauthenticated: credential tidak ada, salah, atau kedaluwarsa.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// NotFound juga dipakai untuk resource di luar scope pemanggil.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " tidak ditemukan"}
}

func Conflict(msg string, detail any) *Error {
	return &Error{Kind: KindConflict, Message: msg, Detail: detail}
}

func State(msg string, current string) *Error {
	return &Error{Kind: KindState, Message: msg, CurrentState: current}
}

// As mengambil *Error dari rantai error (termasuk hasil errors.Wrap).
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is mengecek kind dari err.
func Is(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
