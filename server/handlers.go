package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"Bt1Arena/config"
	"Bt1Arena/core/apperr"
	"Bt1Arena/core/auth"
	"Bt1Arena/logger"
	"Bt1Arena/model"
	"Bt1Arena/repository"
	"Bt1Arena/storage"

	"github.com/google/uuid"
)

// ServiceName and ServiceVersion identify this service in the health payload.
const (
	ServiceName    = "bt1arena-account"
	ServiceVersion = "1.0.0"
)

// SessionCookieName is the session cookie. The name is kept from the first
// version of the platform for compatibility; the value is a signed token,
// not a raw user id.
const SessionCookieName = "user_id"

type contextKey string

const (
	userIDContextKey    contextKey = "userID"
	requestIDContextKey contextKey = "requestID"
)

// APIHandler holds the dependencies for all HTTP handlers.
type APIHandler struct {
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	avatarStore  *storage.AvatarStore
	cfg          *config.Config
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	avatarStore *storage.AvatarStore,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		avatarStore:  avatarStore,
		cfg:          cfg,
	}
}

// RequestIDMiddleware attaches a request id for log correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware extracts the authenticated user id from the session
// cookie. A missing, tampered or expired cookie is a navigation outcome:
// clear the cookie and send the caller to the login page.
func (h *APIHandler) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			h.redirectToLogin(w, r)
			return
		}

		userID, err := auth.ParseSessionToken(h.cfg.SessionSecret, cookie.Value)
		if err != nil {
			logger.Debug("[Session] 会话令牌无效", logger.ErrorField(err))
			h.redirectToLogin(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// requireUser loads the user row behind the session. A vanished row means
// the session is stale: the cookie is cleared and the caller redirected.
func (h *APIHandler) requireUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		h.redirectToLogin(w, r)
		return nil, false
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		logger.Error("[Session] 查询会话用户失败", logger.Int64("userId", userID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("failed to load user", err))
		return nil, false
	}
	if user == nil {
		// 用户已不存在，按导航跳转处理
		h.redirectToLogin(w, r)
		return nil, false
	}
	return user, true
}

func (h *APIHandler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// setSessionCookie issues the session cookie. Secure is only set in
// production so local development over plain HTTP keeps working.
func (h *APIHandler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *APIHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// writeJSON writes a JSON response body.
func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("[HTTP] 编码响应失败", logger.ErrorField(err))
	}
}

// writeSuccess writes the standard success envelope.
func (h *APIHandler) writeSuccess(w http.ResponseWriter, message string, data interface{}) {
	payload := map[string]interface{}{
		"success": true,
	}
	if message != "" {
		payload["message"] = message
	}
	if data != nil {
		payload["data"] = data
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// writeError maps an application error to its HTTP status. Internal causes
// are logged and replaced with a generic message.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	if apperr.IsKind(err, apperr.KindInternal) {
		logger.Error("[HTTP] 内部错误", logger.ErrorField(err))
	}
	h.writeJSON(w, apperr.StatusCode(err), map[string]interface{}{
		"success": false,
		"message": apperr.UserMessage(err),
	})
}

// nullString wraps a trimmed form value; empty input clears the field.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// HealthHandler is the stateless liveness endpoint.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   ServiceName,
		"version":   ServiceVersion,
	})
}
