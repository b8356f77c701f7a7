package apperr

import (
	"errors"
	"fmt"
)

// Code — класс ошибки ядра. Транспорт отображает коды в HTTP-статусы,
// сами сервисы про HTTP не знают.
type Code string

const (
	CodeNotFound   Code = "not_found"
	CodeBadRequest Code = "bad_request"
	CodeConflict   Code = "conflict"
	CodeInternal   Code = "internal"
)

// Error — ошибка с машинно-проверяемой причиной.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(msg string) *Error   { return &Error{Code: CodeNotFound, Message: msg} }
func BadRequest(msg string) *Error { return &Error{Code: CodeBadRequest, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Code: CodeConflict, Message: msg} }

// Internal оборачивает неожиданную ошибку нижних слоёв.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// CodeOf достаёт класс ошибки; всё нераспознанное считается internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is позволяет сравнивать ошибки по коду через errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}
