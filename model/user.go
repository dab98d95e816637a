package model

import (
	"database/sql"
	"time"
)

// User represents a player account on the platform.
type User struct {
	ID           int64          `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	DisplayName  sql.NullString `json:"-"`
	Avatar       sql.NullString `json:"-"`
	Bio          sql.NullString `json:"-"`
	PasswordHash string         `json:"-"` // Not exposed in API responses
	IsOnline     bool           `json:"isOnline"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// PublicProfile is the JSON shape returned for profile reads.
type PublicProfile struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	IsOnline    bool      `json:"isOnline"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Profile builds the public view of a user.
func (u *User) Profile() PublicProfile {
	p := PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsOnline:  u.IsOnline,
		CreatedAt: u.CreatedAt,
	}
	if u.DisplayName.Valid {
		p.DisplayName = u.DisplayName.String
	}
	if u.Avatar.Valid {
		p.Avatar = u.Avatar.String
	}
	if u.Bio.Valid {
		p.Bio = u.Bio.String
	}
	return p
}

// GameStats is the placeholder statistics block shown on the profile page.
// TODO: populate from the match service once game results are recorded.
type GameStats struct {
	TotalGames    int    `json:"totalGames"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	WinRate       int    `json:"winRate"`
	CurrentStreak int    `json:"currentStreak"`
	BestStreak    int    `json:"bestStreak"`
	Rank          string `json:"rank"`
}

// EmptyGameStats 返回默认的统计数据
func EmptyGameStats() GameStats {
	return GameStats{Rank: "Unranked"}
}
