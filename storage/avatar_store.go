package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"Bt1Arena/logger"
)

// MaxAvatarSize is the upload limit for avatar files (5 MiB).
const MaxAvatarSize = 5 * 1024 * 1024

// UploadedAvatarPrefix is the public URL prefix for user-uploaded avatars.
const UploadedAvatarPrefix = "/uploads/avatars/"

// PredefinedAvatarPrefix is the public URL prefix for the built-in avatar assets.
const PredefinedAvatarPrefix = "/avatars/"

// AllowedAvatarTypes is the MIME whitelist for avatar uploads.
var AllowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// PredefinedAvatar is one entry of the built-in avatar table.
type PredefinedAvatar struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// PredefinedAvatars is the closed table of built-in avatars.
var PredefinedAvatars = []PredefinedAvatar{
	{Name: "Robot", Path: "/avatars/robot.svg"},
	{Name: "Alien", Path: "/avatars/alien.svg"},
	{Name: "Astronaut", Path: "/avatars/astronaut.svg"},
	{Name: "Ninja", Path: "/avatars/ninja.svg"},
	{Name: "Wizard", Path: "/avatars/wizard.svg"},
	{Name: "Ghost", Path: "/avatars/ghost.svg"},
	{Name: "Cat", Path: "/avatars/cat.svg"},
	{Name: "Panda", Path: "/avatars/panda.svg"},
}

// IsPredefinedAvatar reports whether p is a member of the built-in table.
func IsPredefinedAvatar(p string) bool {
	for _, a := range PredefinedAvatars {
		if a.Path == p {
			return true
		}
	}
	return false
}

// AvatarStore manages uploaded avatar files under a fixed local directory.
// Files are written before the database pointer moves, so a crash between
// the two steps leaves at worst an orphaned file, never a dangling pointer.
type AvatarStore struct {
	uploadDir string
}

// NewAvatarStore creates an avatar store rooted at uploadDir.
func NewAvatarStore(uploadDir string) *AvatarStore {
	return &AvatarStore{uploadDir: uploadDir}
}

// IsUploaded reports whether a stored avatar pointer references a file
// managed by this store.
func (s *AvatarStore) IsUploaded(avatarURL string) bool {
	return strings.HasPrefix(avatarURL, UploadedAvatarPrefix)
}

// Save writes the avatar bytes and returns the public URL. The filename is
// derived from the user ID and a millisecond timestamp plus the original
// extension; same-millisecond collisions are accepted for this use.
func (s *AvatarStore) Save(userID int64, originalFilename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create avatar upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == "" {
		ext = ".jpg"
	}
	filename := fmt.Sprintf("%d-%d%s", userID, time.Now().UnixMilli(), ext)
	dst := filepath.Join(s.uploadDir, filename)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		// 写入失败时清理半成品文件
		os.Remove(dst)
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	return UploadedAvatarPrefix + filename, nil
}

// Remove deletes the file behind an uploaded-avatar URL. Best-effort: a
// pointer outside the managed prefix is ignored and deletion failures are
// logged, never surfaced.
func (s *AvatarStore) Remove(avatarURL string) {
	if !s.IsUploaded(avatarURL) {
		return
	}

	filename := path.Base(avatarURL)
	target := filepath.Join(s.uploadDir, filename)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		logger.Warn("[AvatarStore] 删除旧头像文件失败",
			logger.String("path", target),
			logger.ErrorField(err))
	}
}
