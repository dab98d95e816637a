package model

// UserSettings holds the per-user settings row, one-to-one with User.
// The row is created lazily with defaults on first access and updated via
// upserts keyed by UserID.
type UserSettings struct {
	UserID int64 `gorm:"primaryKey;column:user_id" json:"userId"`

	// 主题颜色
	AccentColor     string `gorm:"column:accent_color;size:7" json:"accentColor"`
	BackgroundColor string `gorm:"column:background_color;size:7" json:"backgroundColor"`
	CardColor       string `gorm:"column:card_color;size:7" json:"cardColor"`
	TextColor       string `gorm:"column:text_color;size:7" json:"textColor"`

	// 音频偏好
	SoundEnabled bool `gorm:"column:sound_enabled" json:"soundEnabled"`
	MusicVolume  int  `gorm:"column:music_volume" json:"musicVolume"`
	SfxVolume    int  `gorm:"column:sfx_volume" json:"sfxVolume"`

	// 隐私设置
	ShowOnlineStatus    bool `gorm:"column:show_online_status" json:"showOnlineStatus"`
	ShowMatchHistory    bool `gorm:"column:show_match_history" json:"showMatchHistory"`
	AllowFriendRequests bool `gorm:"column:allow_friend_requests" json:"allowFriendRequests"`

	// 通知设置
	EmailNotifications      bool `gorm:"column:email_notifications" json:"emailNotifications"`
	GameInviteNotifications bool `gorm:"column:game_invite_notifications" json:"gameInviteNotifications"`
}

// TableName sets the GORM table name.
func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultSettings is the documented defaults table used when a settings row
// is created lazily on first access.
func DefaultSettings(userID int64) UserSettings {
	return UserSettings{
		UserID:                  userID,
		AccentColor:             "#ff6b9d",
		BackgroundColor:         "#1a1a2e",
		CardColor:               "#16213e",
		TextColor:               "#e5e5e5",
		SoundEnabled:            true,
		MusicVolume:             50,
		SfxVolume:               50,
		ShowOnlineStatus:        true,
		ShowMatchHistory:        true,
		AllowFriendRequests:     true,
		EmailNotifications:      true,
		GameInviteNotifications: true,
	}
}

// ClampVolume 将音量限制在 [0,100] 范围内
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
