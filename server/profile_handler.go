package server

import (
	"database/sql"
	"net/http"
	"strings"

	"Bt1Arena/core/apperr"
	"Bt1Arena/logger"
	"Bt1Arena/model"
	"Bt1Arena/storage"
)

// GetProfileHandler returns the profile page data for the session user.
func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	h.writeSuccess(w, "", map[string]interface{}{
		"user":  user.Profile(),
		"stats": model.EmptyGameStats(),
	})
}

// UpdateProfileRequest is the profile edit form contract.
type UpdateProfileRequest struct {
	DisplayName string `validate:"omitempty,max=50"`
	Bio         string `validate:"omitempty,max=500"`
}

var updateProfileMessages = map[string]string{
	"DisplayName.max": "Display name must be 50 characters or less",
	"Bio.max":         "Bio must be 500 characters or less",
}

// UpdateProfileHandler persists display name and bio. Empty values clear the fields.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	req := UpdateProfileRequest{
		DisplayName: strings.TrimSpace(r.FormValue("displayName")),
		Bio:         strings.TrimSpace(r.FormValue("bio")),
	}
	if err := checkRequest(req, updateProfileMessages); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.userRepo.UpdateProfile(user.ID, nullString(req.DisplayName), nullString(req.Bio)); err != nil {
		logger.Error("[Profile] 更新资料失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to update profile. Please try again.", err))
		return
	}

	h.writeSuccess(w, "Profile updated successfully", nil)
}

// UploadAvatarHandler stores an uploaded avatar. The new file is written
// and the database pointer moved before the old file is removed, so a
// crash mid-operation leaves at worst an orphaned file.
func (h *APIHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(storage.MaxAvatarSize); err != nil {
		h.writeError(w, apperr.Validation("Invalid upload data"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil || header.Size == 0 {
		h.writeError(w, apperr.Validation("No file selected"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !storage.AllowedAvatarTypes[contentType] {
		h.writeError(w, apperr.Validation("Invalid file type. Please upload a JPG, PNG, GIF, or WebP image."))
		return
	}

	if header.Size > storage.MaxAvatarSize {
		h.writeError(w, apperr.Validation("File too large. Maximum size is 5MB."))
		return
	}

	// 先写新文件
	avatarURL, err := h.avatarStore.Save(user.ID, header.Filename, file)
	if err != nil {
		logger.Error("[Avatar] 保存头像文件失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to upload avatar. Please try again.", err))
		return
	}

	// 再移动数据库指针
	if err := h.userRepo.UpdateAvatar(user.ID, sql.NullString{String: avatarURL, Valid: true}); err != nil {
		logger.Error("[Avatar] 更新头像指针失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to upload avatar. Please try again.", err))
		return
	}

	// 最后尽力删除旧文件
	if user.Avatar.Valid {
		h.avatarStore.Remove(user.Avatar.String)
	}

	logger.Info("[Avatar] 头像上传成功", logger.Int64("userId", user.ID), logger.String("avatar", avatarURL))
	h.writeSuccess(w, "Avatar updated successfully", map[string]interface{}{"avatar": avatarURL})
}

// RemoveAvatarHandler deletes the uploaded avatar file (best-effort) and
// clears the pointer.
func (h *APIHandler) RemoveAvatarHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if user.Avatar.Valid {
		h.avatarStore.Remove(user.Avatar.String)
	}

	if err := h.userRepo.UpdateAvatar(user.ID, sql.NullString{}); err != nil {
		logger.Error("[Avatar] 清除头像指针失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to remove avatar. Please try again.", err))
		return
	}

	h.writeSuccess(w, "Avatar removed", nil)
}

// SelectPredefinedAvatarHandler points the avatar at one of the built-in
// assets. Any previously uploaded file is removed; predefined assets are
// never deleted.
func (h *APIHandler) SelectPredefinedAvatarHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	avatarPath := r.FormValue("avatarPath")
	if !storage.IsPredefinedAvatar(avatarPath) {
		h.writeError(w, apperr.Validation("Invalid avatar selection"))
		return
	}

	if user.Avatar.Valid {
		h.avatarStore.Remove(user.Avatar.String)
	}

	if err := h.userRepo.UpdateAvatar(user.ID, sql.NullString{String: avatarPath, Valid: true}); err != nil {
		logger.Error("[Avatar] 更新预设头像失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("Failed to select avatar. Please try again.", err))
		return
	}

	h.writeSuccess(w, "Avatar updated", map[string]interface{}{"avatar": avatarPath})
}

// ListAvatarsHandler returns the closed table of predefined avatars.
func (h *APIHandler) ListAvatarsHandler(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, "", map[string]interface{}{"avatars": storage.PredefinedAvatars})
}
