package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"Bt1Arena/core/apperr"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: apperr.Validation("bad input"), want: http.StatusBadRequest},
		{name: "auth", err: apperr.Auth("Invalid credentials"), want: http.StatusUnauthorized},
		{name: "conflict", err: apperr.Conflict("taken"), want: http.StatusConflict},
		{name: "session expired", err: apperr.SessionExpired(), want: http.StatusSeeOther},
		{name: "internal", err: apperr.Internal("oops", errors.New("db down")), want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped", err: fmt.Errorf("context: %w", apperr.Conflict("taken")), want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUserMessageHidesInternalCause(t *testing.T) {
	err := apperr.Internal("Failed to save", errors.New("dsn: connection refused"))
	if msg := apperr.UserMessage(err); msg != "Internal server error" {
		t.Errorf("UserMessage() = %q, want generic message", msg)
	}

	if msg := apperr.UserMessage(apperr.Validation("Bio too long")); msg != "Bio too long" {
		t.Errorf("UserMessage() = %q, want the validation message", msg)
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperr.Auth("Invalid credentials"))
	if !apperr.IsKind(err, apperr.KindAuth) {
		t.Error("IsKind should see through wrapping")
	}
	if apperr.IsKind(err, apperr.KindConflict) {
		t.Error("IsKind must not match a different kind")
	}
}
