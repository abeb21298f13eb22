package response

import (
	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/internal/usecase"
)

type ScrapeStartResponse struct {
	Message string            `json:"message"`
	Data    *entity.ScrapeLog `json:"data"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ScrapeLogsResponse is a DTO for one page of scrape logs.
type ScrapeLogsResponse struct {
	Data       []*entity.ScrapeLog `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

func NewScrapeLogsResponse(page *usecase.LogPage) ScrapeLogsResponse {
	logs := page.Logs
	if logs == nil {
		logs = []*entity.ScrapeLog{}
	}
	return ScrapeLogsResponse{
		Data: logs,
		Pagination: Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
