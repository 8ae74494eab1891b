package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/songforge/backend/internal/models"
)

const (
	genreCacheKey = "genres:active"
	genreCacheTTL = 5 * time.Minute
)

type GenreService struct {
	db    *sql.DB
	redis *redis.Client
}

func NewGenreService(db *sql.DB, redisClient *redis.Client) *GenreService {
	return &GenreService{db: db, redis: redisClient}
}

// ListGenres returns the active genre catalog in display order. The
// serialized catalog is cached in Redis when a client is available; the
// database stays the source of truth.
func (s *GenreService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, genreCacheKey).Result(); err == nil {
			var genres []models.Genre
			if err := json.Unmarshal([]byte(cached), &genres); err == nil {
				return genres, nil
			}
		}
	}

	rows, err := s.db.Query(`
		SELECT id, name, display_name, description, emoji, sort_order
		FROM genre
		WHERE is_active = true
		ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.DisplayName, &g.Description, &g.Emoji, &g.SortOrder); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(genres); err == nil {
			if err := s.redis.Set(ctx, genreCacheKey, payload, genreCacheTTL).Err(); err != nil {
				log.Printf("[GENRES] Failed to cache catalog: %v", err)
			}
		}
	}
	return genres, nil
}
