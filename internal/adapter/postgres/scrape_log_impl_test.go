package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/catalog-crawler/internal/entity"
)

var logCols = []string{
	"id", "website_id", "items_scraped", "items_updated", "status", "error_message", "scraped_at",
	"name", "url", "enabled", "last_scraped_at",
}

func TestScrapeLogRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	log := entity.NewScrapeLog(testWebsiteID, entity.FailedOutcome(assert.AnError), at)

	mock.ExpectExec("INSERT INTO scrape_logs").
		WithArgs(pgxmock.AnyArg(), uuid.MustParse(testWebsiteID), 0, 0, "failed", log.ErrorMessage, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewScrapeLogRepo(mock).Append(context.Background(), log))
	_, err = uuid.Parse(log.ID)
	assert.NoError(t, err, "append assigns a uuid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScrapeLogRepo_ListForWebsite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM scrape_logs l WHERE l.website_id::text = \\$1").
		WithArgs(testWebsiteID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery("ORDER BY l.scraped_at DESC\\s+LIMIT \\$2 OFFSET \\$3").
		WithArgs(testWebsiteID, 20, 40).
		WillReturnRows(pgxmock.NewRows(logCols).
			AddRow(uuid.NewString(), testWebsiteID, 12, 12, "success", (*string)(nil), at,
				"snitch", "https://www.snitch.com", true, &at))

	logs, total, err := NewScrapeLogRepo(mock).List(context.Background(), testWebsiteID, 20, 40)
	require.NoError(t, err)
	assert.Equal(t, 41, total)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.ScrapeStatusSuccess, logs[0].Status)
	assert.Equal(t, 12, logs[0].ItemsScraped)
	assert.Nil(t, logs[0].Website)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScrapeLogRepo_ListAllAttachesWebsite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	msg := "browser session unavailable"
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM scrape_logs l ;").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("LIMIT \\$1 OFFSET \\$2").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(logCols).
			AddRow(uuid.NewString(), testWebsiteID, 0, 0, "failed", &msg, at,
				"offduety", "https://offduty.in", true, (*time.Time)(nil)))

	logs, total, err := NewScrapeLogRepo(mock).List(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].Website)
	assert.Equal(t, "offduety", logs[0].Website.Name)
	assert.Equal(t, testWebsiteID, logs[0].Website.ID)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Equal(t, msg, *logs[0].ErrorMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
