package models

import "time"

const (
	SongStatusGenerating = "generating"
	SongStatusCompleted  = "completed"
	SongStatusFailed     = "failed"
)

const (
	MasteringStatusPending    = "pending"
	MasteringStatusInProgress = "in_progress"
	MasteringStatusCompleted  = "completed"
	MasteringStatusCancelled  = "cancelled"
)

type Song struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Genre     string    `json:"genre" db:"genre"`
	Concept   string    `json:"concept" db:"concept"`
	Lyrics    string    `json:"original_lyrics" db:"original_lyrics"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Genre struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	DisplayName string  `json:"display_name" db:"display_name"`
	Description *string `json:"description" db:"description"`
	Emoji       *string `json:"emoji" db:"emoji"`
	SortOrder   int     `json:"sort_order" db:"sort_order"`
}

type MasteringRequest struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	SongID      string     `json:"song_id" db:"song_id"`
	Status      string     `json:"status" db:"status"`
	Notes       string     `json:"notes" db:"notes"`
	RequestedAt time.Time  `json:"requested_at" db:"requested_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
