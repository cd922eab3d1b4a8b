package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-content-watch/internal/common/httputil"
	"github.com/central-university-dev/go-content-watch/internal/config"
	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

// PageFetcher получает нормализованный список тизеров страницы
// у внешнего crawl-сервиса.
type PageFetcher struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

func NewPageFetcher(baseURL string, cfg *config.Config, logger *slog.Logger) *PageFetcher {
	client := httputil.CreateResilientHTTPClient(cfg, logger, "crawl_service")

	return &PageFetcher{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

type pageTeaser struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
	StartDate     string `json:"start_date"`
}

type pageListing struct {
	PageTitle string       `json:"page_title"`
	Teasers   []pageTeaser `json:"teasers"`
}

func (f *PageFetcher) Fetch(ctx context.Context, monitor *models.Monitor) (*Result, error) {
	if len(monitor.Sites) == 0 {
		return nil, &customerrors.ErrSourceNotConfigured{GUID: monitor.GUID()}
	}

	var listing pageListing

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("site", monitor.Sites[0]).
		SetQueryParam("name", monitor.Name).
		SetQueryParam("type", string(monitor.ContentType)).
		SetResult(&listing).
		Get(f.baseURL + "/api/v1/teasers")
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе тизеров: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, &customerrors.ErrSourceNotConfigured{GUID: monitor.GUID()}
	}

	if !resp.IsSuccess() {
		return nil, &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	teasers := make([]models.Teaser, 0, len(listing.Teasers))

	for _, item := range listing.Teasers {
		teaser := models.Teaser{
			Title: item.Title,
			URL:   item.URL,
		}

		raw := item.PublishedDate
		if monitor.ContentType == models.EventPage && item.StartDate != "" {
			raw = item.StartDate
		}

		if raw != "" {
			date, parseErr := time.Parse("2006-01-02", raw)
			if parseErr != nil {
				f.logger.Warn("Не удалось разобрать дату тизера",
					"monitor", monitor.GUID(),
					"date", raw,
				)
			} else {
				teaser.Date = date
			}
		}

		teasers = append(teasers, teaser)
	}

	return &Result{
		Teasers:   applyConstraints(teasers, monitor.Keyword, monitor.MaxResults),
		PageTitle: listing.PageTitle,
	}, nil
}
