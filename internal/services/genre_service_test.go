package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/songforge/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

const listGenresQuery = `SELECT id, name, display_name, description, emoji, sort_order FROM genre WHERE is_active = true ORDER BY sort_order`

func TestGenreService_ListGenres(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss reads the database and fills the cache", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		service := NewGenreService(db, redisClient)

		mock.ExpectQuery(listGenresQuery).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "display_name", "description", "emoji", "sort_order"}).
				AddRow("g1", "pop", "Pop", nil, nil, 1).
				AddRow("g2", "rap", "Rap", nil, nil, 2))

		expected := []models.Genre{
			{ID: "g1", Name: "pop", DisplayName: "Pop", SortOrder: 1},
			{ID: "g2", Name: "rap", DisplayName: "Rap", SortOrder: 2},
		}
		payload, err := json.Marshal(expected)
		assert.NoError(t, err)

		redisMock.ExpectGet(genreCacheKey).RedisNil()
		redisMock.ExpectSet(genreCacheKey, payload, genreCacheTTL).SetVal("OK")

		genres, err := service.ListGenres(ctx)
		assert.NoError(t, err)
		assert.Equal(t, expected, genres)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		service := NewGenreService(db, redisClient)

		cached := []models.Genre{{ID: "g1", Name: "pop", DisplayName: "Pop", SortOrder: 1}}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)

		redisMock.ExpectGet(genreCacheKey).SetVal(string(payload))

		genres, err := service.ListGenres(ctx)
		assert.NoError(t, err)
		assert.Equal(t, cached, genres)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("without redis the database is queried directly", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		service := NewGenreService(db, nil)

		mock.ExpectQuery(listGenresQuery).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "display_name", "description", "emoji", "sort_order"}).
				AddRow("g1", "pop", "Pop", nil, nil, 1))

		genres, err := service.ListGenres(ctx)
		assert.NoError(t, err)
		assert.Len(t, genres, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
