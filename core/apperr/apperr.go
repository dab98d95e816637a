package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so handlers can map it to an HTTP
// status and decide whether the message is safe to show to the caller.
type Kind int

const (
	// KindValidation 表示输入校验失败，消息可以直接返回给用户
	KindValidation Kind = iota
	// KindAuth 表示凭证校验失败，消息必须保持通用以避免枚举攻击
	KindAuth
	// KindConflict 表示唯一性冲突
	KindConflict
	// KindSessionExpired 表示会话失效，按导航跳转处理而不是报错
	KindSessionExpired
	// KindInternal 表示内部错误，详细信息只记录日志
	KindInternal
)

// Error is the application error type carrying a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, logged but never shown
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error with a specific user-facing message.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Auth creates a credential-mismatch error. Callers should pass a generic
// message; login failures always use "Invalid credentials".
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Conflict creates a uniqueness-violation error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// SessionExpired creates the navigation-outcome error for stale sessions.
func SessionExpired() *Error {
	return &Error{Kind: KindSessionExpired, Message: "session expired"}
}

// Internal wraps an unexpected failure. The message shown to the caller is
// generic; cause goes to the log.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindSessionExpired:
		return http.StatusSeeOther
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message safe to show to the caller.
func UserMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Internal server error"
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
