package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"Bt1Arena/cache"
	"Bt1Arena/core/apperr"
	"Bt1Arena/core/auth"
	"Bt1Arena/core/theme"
	"Bt1Arena/logger"
	"Bt1Arena/model"
	"Bt1Arena/repository"
)

// GetSettingsHandler returns the settings page data for the session user.
// The settings row is created lazily with defaults on first access. Reads
// go through the Redis cache when available.
func (h *APIHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	settings, err := h.loadSettings(r, user.ID)
	if err != nil {
		logger.Error("[Settings] 加载设置失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to load settings", err))
		return
	}

	colors := theme.Colors{
		AccentColor:     settings.AccentColor,
		BackgroundColor: settings.BackgroundColor,
		CardColor:       settings.CardColor,
		TextColor:       settings.TextColor,
	}

	h.writeSuccess(w, "", map[string]interface{}{
		"user": map[string]interface{}{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"displayName": user.Profile().DisplayName,
		},
		"settings": settings,
		// 派生变量每次重新计算，不落库
		"cssVars": theme.Apply(colors),
		"presets": theme.Presets,
	})
}

// loadSettings is the read-through path: cache first, then the database,
// then refill. Cache failures are logged and treated as misses.
func (h *APIHandler) loadSettings(r *http.Request, userID int64) (*model.UserSettings, error) {
	ctx := r.Context()

	if cached, hit, err := cache.GetSettings(ctx, userID); err != nil {
		logger.Warn("[Settings] 读取缓存失败", logger.Int64("userId", userID), logger.ErrorField(err))
	} else if hit {
		return cached, nil
	}

	settings, err := h.settingsRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if err := cache.SetSettings(ctx, settings); err != nil {
		logger.Warn("[Settings] 写入缓存失败", logger.Int64("userId", userID), logger.ErrorField(err))
	}
	return settings, nil
}

// invalidateSettings drops the cached row after any settings mutation.
func (h *APIHandler) invalidateSettings(r *http.Request, userID int64) {
	if err := cache.InvalidateSettings(r.Context(), userID); err != nil {
		logger.Warn("[Settings] 缓存失效失败", logger.Int64("userId", userID), logger.ErrorField(err))
	}
}

// ChangePasswordRequest is the password change form contract.
type ChangePasswordRequest struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

var changePasswordMessages = map[string]string{
	"CurrentPassword.required": "All password fields are required",
	"NewPassword.required":     "All password fields are required",
	"ConfirmPassword.required": "All password fields are required",
	"NewPassword.min":          "New password must be at least 6 characters",
	"ConfirmPassword.eqfield":  "New passwords do not match",
}

// ChangePasswordHandler rehashes and persists a new password. The current
// password is re-verified even though the caller holds a valid session.
func (h *APIHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	req := ChangePasswordRequest{
		CurrentPassword: r.FormValue("currentPassword"),
		NewPassword:     r.FormValue("newPassword"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}
	if err := checkRequest(req, changePasswordMessages); err != nil {
		h.writeError(w, err)
		return
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		h.writeError(w, apperr.Auth("Current password is incorrect"))
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.writeError(w, apperr.Internal("Failed to change password", err))
		return
	}

	if err := h.userRepo.UpdatePasswordHash(user.ID, newHash); err != nil {
		logger.Error("[Settings] 更新密码失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to change password", err))
		return
	}

	logger.Info("[Settings] 密码修改成功", logger.Int64("userId", user.ID))
	h.writeSuccess(w, "Password changed successfully", nil)
}

// ChangeEmailRequest is the email change form contract.
type ChangeEmailRequest struct {
	NewEmail string `validate:"required,email"`
	Password string `validate:"required"`
}

var changeEmailMessages = map[string]string{
	"NewEmail.required": "Email and password are required",
	"Password.required": "Email and password are required",
	"NewEmail.email":    "Please provide a valid email address",
}

// ChangeEmailHandler changes the account email after re-verifying the password.
func (h *APIHandler) ChangeEmailHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	req := ChangeEmailRequest{
		NewEmail: strings.ToLower(strings.TrimSpace(r.FormValue("newEmail"))),
		Password: r.FormValue("password"),
	}
	if err := checkRequest(req, changeEmailMessages); err != nil {
		h.writeError(w, err)
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		h.writeError(w, apperr.Auth("Password is incorrect"))
		return
	}

	if user.Email == req.NewEmail {
		h.writeError(w, apperr.Validation("New email is the same as current email"))
		return
	}

	if existing, err := h.userRepo.GetUserByEmail(req.NewEmail); err != nil {
		h.writeError(w, apperr.Internal("Failed to change email", err))
		return
	} else if existing != nil {
		h.writeError(w, apperr.Conflict("Email is already in use"))
		return
	}

	if err := h.userRepo.UpdateEmail(user.ID, req.NewEmail); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			h.writeError(w, apperr.Conflict("Email is already in use"))
			return
		}
		logger.Error("[Settings] 更新邮箱失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to change email", err))
		return
	}

	logger.Info("[Settings] 邮箱修改成功", logger.Int64("userId", user.ID))
	h.writeSuccess(w, "Email changed successfully", nil)
}

// UpdatePreferencesHandler upserts the audio preferences group.
func (h *APIHandler) UpdatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	soundEnabled := r.FormValue("soundEnabled") == "on"
	musicVolume := formInt(r, "musicVolume", 50)
	sfxVolume := formInt(r, "sfxVolume", 50)

	if err := h.settingsRepo.UpsertPreferences(user.ID, soundEnabled, musicVolume, sfxVolume); err != nil {
		logger.Error("[Settings] 保存偏好失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to save preferences", err))
		return
	}
	h.invalidateSettings(r, user.ID)

	h.writeSuccess(w, "Preferences saved", nil)
}

// UpdatePrivacyHandler upserts the privacy flags group.
func (h *APIHandler) UpdatePrivacyHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	showOnlineStatus := r.FormValue("showOnlineStatus") == "on"
	showMatchHistory := r.FormValue("showMatchHistory") == "on"
	allowFriendRequests := r.FormValue("allowFriendRequests") == "on"

	if err := h.settingsRepo.UpsertPrivacy(user.ID, showOnlineStatus, showMatchHistory, allowFriendRequests); err != nil {
		logger.Error("[Settings] 保存隐私设置失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to save privacy settings", err))
		return
	}
	h.invalidateSettings(r, user.ID)

	h.writeSuccess(w, "Privacy settings saved", nil)
}

// UpdateNotificationsHandler upserts the notification flags group.
func (h *APIHandler) UpdateNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	emailNotifications := r.FormValue("emailNotifications") == "on"
	gameInviteNotifications := r.FormValue("gameInviteNotifications") == "on"

	if err := h.settingsRepo.UpsertNotifications(user.ID, emailNotifications, gameInviteNotifications); err != nil {
		logger.Error("[Settings] 保存通知设置失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to save notification settings", err))
		return
	}
	h.invalidateSettings(r, user.ID)

	h.writeSuccess(w, "Notification settings saved", nil)
}

// UpdateThemeRequest is the theme form contract. Absent color fields fall
// back to the default palette before validation.
type UpdateThemeRequest struct {
	AccentColor     string `validate:"hex6"`
	BackgroundColor string `validate:"hex6"`
	CardColor       string `validate:"hex6"`
	TextColor       string `validate:"hex6"`
}

var updateThemeMessages = map[string]string{
	"AccentColor.hex6":     "Invalid color format. Use hex colors like #ff6b9d",
	"BackgroundColor.hex6": "Invalid color format. Use hex colors like #ff6b9d",
	"CardColor.hex6":       "Invalid color format. Use hex colors like #ff6b9d",
	"TextColor.hex6":       "Invalid color format. Use hex colors like #ff6b9d",
}

// UpdateThemeHandler upserts the four theme colors.
func (h *APIHandler) UpdateThemeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	req := UpdateThemeRequest{
		AccentColor:     formString(r, "accentColor", theme.Default.AccentColor),
		BackgroundColor: formString(r, "backgroundColor", theme.Default.BackgroundColor),
		CardColor:       formString(r, "cardColor", theme.Default.CardColor),
		TextColor:       formString(r, "textColor", theme.Default.TextColor),
	}
	if err := checkRequest(req, updateThemeMessages); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.settingsRepo.UpsertTheme(user.ID, req.AccentColor, req.BackgroundColor, req.CardColor, req.TextColor); err != nil {
		logger.Error("[Settings] 保存主题失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to update theme", err))
		return
	}
	h.invalidateSettings(r, user.ID)

	h.writeSuccess(w, "Theme colors updated", nil)
}

// DeleteAccountHandler destroys the account. The settings row cascades at
// the database level. Requires the literal confirmation "DELETE" and the
// current password even though the caller is session-authenticated.
func (h *APIHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	password := r.FormValue("password")
	confirmation := r.FormValue("confirmation")

	if password == "" {
		h.writeError(w, apperr.Validation("Password is required to delete account"))
		return
	}
	// 确认串区分大小写，必须完全等于 DELETE
	if confirmation != "DELETE" {
		h.writeError(w, apperr.Validation("Please type DELETE to confirm"))
		return
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		h.writeError(w, apperr.Auth("Password is incorrect"))
		return
	}

	if err := h.userRepo.DeleteUser(user.ID); err != nil {
		logger.Error("[Settings] 删除账号失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to delete account", err))
		return
	}
	h.invalidateSettings(r, user.ID)

	logger.Info("[Settings] 账号已删除", logger.Int64("userId", user.ID), logger.String("username", user.Username))
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/?deleted=true", http.StatusSeeOther)
}

// formInt reads an integer form field, falling back on absent or malformed input.
func formInt(r *http.Request, key string, fallback int) int {
	raw := r.FormValue(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

// formString reads a form field with a fallback for absent input.
func formString(r *http.Request, key, fallback string) string {
	if val := r.FormValue(key); val != "" {
		return val
	}
	return fallback
}
