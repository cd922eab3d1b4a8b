package fetch

import (
	"context"
	"strings"

	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

// Result — итог одной выборки источника.
type Result struct {
	Teasers   []models.Teaser
	PageTitle string
}

// Fetcher возвращает упорядоченный список тизеров источника монитора.
// Выборка обязана уважать отмену контекста.
type Fetcher interface {
	Fetch(ctx context.Context, monitor *models.Monitor) (*Result, error)
}

type Factory struct {
	pageFetcher    Fetcher
	channelFetcher Fetcher
}

func NewFactory(pageFetcher, channelFetcher Fetcher) *Factory {
	return &Factory{
		pageFetcher:    pageFetcher,
		channelFetcher: channelFetcher,
	}
}

func (f *Factory) CreateFetcher(contentType models.ContentType) (Fetcher, error) {
	switch contentType {
	case models.Page, models.EventPage:
		return f.pageFetcher, nil
	case models.Video:
		return f.channelFetcher, nil
	case models.Unknown:
		return nil, &customerrors.ErrUnknownContentType{Type: string(contentType)}
	default:
		return nil, &customerrors.ErrUnknownContentType{Type: string(contentType)}
	}
}

// applyConstraints применяет к списку тизеров фильтр по ключевому слову
// и ограничение на количество результатов.
func applyConstraints(teasers []models.Teaser, keyword string, maxResults int) []models.Teaser {
	filtered := teasers

	if keyword != "" {
		filtered = make([]models.Teaser, 0, len(teasers))
		needle := strings.ToLower(keyword)

		for _, teaser := range teasers {
			if strings.Contains(strings.ToLower(teaser.Title), needle) {
				filtered = append(filtered, teaser)
			}
		}
	}

	if maxResults > 0 && len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}

	return filtered
}
