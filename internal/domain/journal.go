package domain

import "time"

// Entry is a journaled commit.
type Entry struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	PhysicalAchievement string    `json:"physical_achievement"`
	SocialWin           string    `json:"social_win"`
	CommittedAt         time.Time `json:"committed_at"`
	UpdatedRange        string    `json:"updated_range,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}
