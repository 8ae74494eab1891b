package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/songforge/backend/internal/models"
)

var ErrSongNotFound = errors.New("song not found")

type CreateSongRequest struct {
	Title   string `json:"title" validate:"required,max=120"`
	Genre   string `json:"genre" validate:"required,max=50"`
	Concept string `json:"concept" validate:"omitempty,max=500"`
	Lyrics  string `json:"lyrics" validate:"omitempty,max=5000"`
}

type MasteringRequestInput struct {
	SongID string `json:"song_id" validate:"required,uuid4"`
	Notes  string `json:"notes" validate:"omitempty,max=1000"`
}

type SongService struct {
	db       *sql.DB
	ledger   *CreditLedgerService
	songCost int64
}

func NewSongService(db *sql.DB, ledger *CreditLedgerService, songCost int64) *SongService {
	return &SongService{
		db:       db,
		ledger:   ledger,
		songCost: songCost,
	}
}

// CreateSong inserts the song row and deducts the song cost in one
// transaction: a failed deduction never leaves an orphaned song and a failed
// insert never burns credits.
func (s *SongService) CreateSong(userID string, req *CreateSongRequest) (*models.Song, *models.CreditTransaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	song := &models.Song{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.Title,
		Genre:     req.Genre,
		Concept:   req.Concept,
		Lyrics:    req.Lyrics,
		Status:    models.SongStatusGenerating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.Exec(`
		INSERT INTO song (id, user_id, title, genre, concept, original_lyrics, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		song.ID, song.UserID, song.Title, song.Genre, song.Concept, song.Lyrics, song.Status, song.CreatedAt, song.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}

	txn, err := s.ledger.DeductCreditsTx(tx, userID, s.songCost,
		fmt.Sprintf("Song generation: %s", req.Title), &song.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return song, txn, nil
}

// RequestMastering records a mastering request for a song the user owns.
func (s *SongService) RequestMastering(userID string, req *MasteringRequestInput) (*models.MasteringRequest, error) {
	var owner string
	err := s.db.QueryRow(`SELECT user_id FROM song WHERE id = $1`, req.SongID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, err
	}
	if owner != userID {
		// Do not reveal whether the song exists for someone else.
		return nil, ErrSongNotFound
	}

	mr := &models.MasteringRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		SongID:      req.SongID,
		Status:      models.MasteringStatusPending,
		Notes:       req.Notes,
		RequestedAt: time.Now().UTC(),
	}
	_, err = s.db.Exec(`
		INSERT INTO mastering_request (id, user_id, song_id, status, notes, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		mr.ID, mr.UserID, mr.SongID, mr.Status, mr.Notes, mr.RequestedAt)
	if err != nil {
		return nil, err
	}
	return mr, nil
}

// ListMasteringRequests returns the user's mastering requests, newest first.
func (s *SongService) ListMasteringRequests(userID string) ([]models.MasteringRequest, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, song_id, status, notes, requested_at, completed_at
		FROM mastering_request
		WHERE user_id = $1
		ORDER BY requested_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.MasteringRequest
	for rows.Next() {
		var mr models.MasteringRequest
		if err := rows.Scan(&mr.ID, &mr.UserID, &mr.SongID, &mr.Status, &mr.Notes, &mr.RequestedAt, &mr.CompletedAt); err != nil {
			return nil, err
		}
		requests = append(requests, mr)
	}
	return requests, rows.Err()
}
