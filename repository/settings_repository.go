package repository

import (
	"errors"
	"fmt"

	"Bt1Arena/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository defines the interface for per-user settings operations.
// All mutating operations are upserts keyed by user ID: create-if-absent,
// else update exactly the columns of that settings group. Applying the same
// input twice yields the same stored state.
type SettingsRepository interface {
	GetOrCreate(userID int64) (*model.UserSettings, error)
	UpsertPreferences(userID int64, soundEnabled bool, musicVolume, sfxVolume int) error
	UpsertPrivacy(userID int64, showOnlineStatus, showMatchHistory, allowFriendRequests bool) error
	UpsertNotifications(userID int64, emailNotifications, gameInviteNotifications bool) error
	UpsertTheme(userID int64, accentColor, backgroundColor, cardColor, textColor string) error
}

// gormSettingsRepository implements SettingsRepository on GORM.
type gormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new gormSettingsRepository.
func NewGormSettingsRepository(db *gorm.DB) SettingsRepository {
	return &gormSettingsRepository{db: db}
}

// GetOrCreate reads the settings row, creating it from the defaults table
// when absent. Two-step contract: attempt read, then construct defaults.
func (r *gormSettingsRepository) GetOrCreate(userID int64) (*model.UserSettings, error) {
	var settings model.UserSettings
	err := r.db.First(&settings, "user_id = ?", userID).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load settings for user %d: %w", userID, err)
	}

	settings = model.DefaultSettings(userID)
	if err := r.db.Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create default settings for user %d: %w", userID, err)
	}
	return &settings, nil
}

// upsert writes a settings row, updating only the named columns when the
// row already exists. The non-updated columns keep their stored values on
// conflict and their defaults on insert.
func (r *gormSettingsRepository) upsert(settings *model.UserSettings, columns []string) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(settings).Error
	if err != nil {
		return fmt.Errorf("failed to upsert settings for user %d: %w", settings.UserID, err)
	}
	return nil
}

// UpsertPreferences saves the audio preferences group. Volumes are clamped to [0,100].
func (r *gormSettingsRepository) UpsertPreferences(userID int64, soundEnabled bool, musicVolume, sfxVolume int) error {
	settings := model.DefaultSettings(userID)
	settings.SoundEnabled = soundEnabled
	settings.MusicVolume = model.ClampVolume(musicVolume)
	settings.SfxVolume = model.ClampVolume(sfxVolume)
	return r.upsert(&settings, []string{"sound_enabled", "music_volume", "sfx_volume"})
}

// UpsertPrivacy saves the privacy flags group.
func (r *gormSettingsRepository) UpsertPrivacy(userID int64, showOnlineStatus, showMatchHistory, allowFriendRequests bool) error {
	settings := model.DefaultSettings(userID)
	settings.ShowOnlineStatus = showOnlineStatus
	settings.ShowMatchHistory = showMatchHistory
	settings.AllowFriendRequests = allowFriendRequests
	return r.upsert(&settings, []string{"show_online_status", "show_match_history", "allow_friend_requests"})
}

// UpsertNotifications saves the notification flags group.
func (r *gormSettingsRepository) UpsertNotifications(userID int64, emailNotifications, gameInviteNotifications bool) error {
	settings := model.DefaultSettings(userID)
	settings.EmailNotifications = emailNotifications
	settings.GameInviteNotifications = gameInviteNotifications
	return r.upsert(&settings, []string{"email_notifications", "game_invite_notifications"})
}

// UpsertTheme saves the four theme colors. Color format validation happens
// at the handler layer before this is called.
func (r *gormSettingsRepository) UpsertTheme(userID int64, accentColor, backgroundColor, cardColor, textColor string) error {
	settings := model.DefaultSettings(userID)
	settings.AccentColor = accentColor
	settings.BackgroundColor = backgroundColor
	settings.CardColor = cardColor
	settings.TextColor = textColor
	return r.upsert(&settings, []string{"accent_color", "background_color", "card_color", "text_color"})
}
