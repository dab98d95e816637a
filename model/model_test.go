package model_test

import (
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"Bt1Arena/model"
)

func TestClampVolume(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-1, 0},
		{0, 0},
		{50, 50},
		{100, 100},
		{101, 100},
		{1000, 100},
	}
	for _, tt := range tests {
		if got := model.ClampVolume(tt.in); got != tt.want {
			t.Errorf("ClampVolume(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	s := model.DefaultSettings(9)

	if s.UserID != 9 {
		t.Errorf("UserID = %d, want 9", s.UserID)
	}
	if s.AccentColor != "#ff6b9d" || s.BackgroundColor != "#1a1a2e" {
		t.Errorf("default palette wrong: %q / %q", s.AccentColor, s.BackgroundColor)
	}
	if s.MusicVolume != 50 || s.SfxVolume != 50 {
		t.Errorf("default volumes = %d/%d, want 50/50", s.MusicVolume, s.SfxVolume)
	}
	if !s.SoundEnabled || !s.ShowOnlineStatus || !s.ShowMatchHistory ||
		!s.AllowFriendRequests || !s.EmailNotifications || !s.GameInviteNotifications {
		t.Error("all boolean defaults should be on")
	}
}

func TestProfileOmitsUnsetFields(t *testing.T) {
	u := model.User{
		ID:           1,
		Username:     "player1",
		Email:        "player1@example.com",
		PasswordHash: "$2a$10$hash",
		DisplayName:  sql.NullString{String: "Ace", Valid: true},
	}

	p := u.Profile()
	if p.DisplayName != "Ace" {
		t.Errorf("DisplayName = %q, want Ace", p.DisplayName)
	}
	if p.Avatar != "" || p.Bio != "" {
		t.Errorf("unset fields should be empty, got %q / %q", p.Avatar, p.Bio)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hash") {
		t.Error("profile JSON must not leak the password hash")
	}
	if strings.Contains(out, "avatar") || strings.Contains(out, "bio") {
		t.Errorf("unset optional fields should be omitted: %s", out)
	}
}
