package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/catalog-crawler/internal/repository"
)

var websiteCols = []string{"id", "name", "url", "enabled", "last_scraped_at"}

func TestWebsiteRepo_FindByNameOrID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("WHERE id::text = \\$1 OR LOWER\\(name\\) = LOWER\\(\\$1\\)").
		WithArgs("Snitch").
		WillReturnRows(pgxmock.NewRows(websiteCols).
			AddRow(testWebsiteID, "snitch", "https://www.snitch.com", true, (*time.Time)(nil)))

	w, err := NewWebsiteRepo(mock).FindByNameOrID(context.Background(), "Snitch")
	require.NoError(t, err)
	assert.Equal(t, testWebsiteID, w.ID)
	assert.Equal(t, "snitch", w.Name)
	assert.True(t, w.Enabled)
	assert.Nil(t, w.LastScrapedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebsiteRepo_FindByNameOrIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM websites").WithArgs("zara").WillReturnError(pgx.ErrNoRows)

	_, err = NewWebsiteRepo(mock).FindByNameOrID(context.Background(), "zara")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWebsiteRepo_ListEnabled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	last := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE enabled").
		WillReturnRows(pgxmock.NewRows(websiteCols).
			AddRow(testWebsiteID, "offduety", "https://offduty.in", true, &last).
			AddRow(uuid.NewString(), "snitch", "https://www.snitch.com", true, (*time.Time)(nil)))

	websites, err := NewWebsiteRepo(mock).ListEnabled(context.Background())
	require.NoError(t, err)
	require.Len(t, websites, 2)
	require.NotNil(t, websites[0].LastScrapedAt)
	assert.True(t, last.Equal(*websites[0].LastScrapedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebsiteRepo_UpdateLastScraped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewWebsiteRepo(mock)

	at := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE websites SET last_scraped_at").
		WithArgs(at, uuid.MustParse(testWebsiteID)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateLastScraped(context.Background(), testWebsiteID, at))

	mock.ExpectExec("UPDATE websites SET last_scraped_at").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateLastScraped(context.Background(), testWebsiteID, at), repository.ErrNotFound)

	assert.Error(t, repo.UpdateLastScraped(context.Background(), "snitch", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
