package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-content-watch/internal/common/httputil"
	"github.com/central-university-dev/go-content-watch/internal/config"
	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

const defaultChannelResults = 50

// ChannelFetcher получает список последних видео канала через API
// видеоплатформы.
type ChannelFetcher struct {
	client  *resty.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

func NewChannelFetcher(baseURL, token string, cfg *config.Config, logger *slog.Logger) *ChannelFetcher {
	client := httputil.CreateResilientHTTPClient(cfg, logger, "video_api")

	return &ChannelFetcher{
		client:  client,
		baseURL: baseURL,
		token:   token,
		logger:  logger,
	}
}

type channelSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string    `json:"title"`
			PublishedAt  time.Time `json:"publishedAt"`
			ChannelTitle string    `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

func (f *ChannelFetcher) Fetch(ctx context.Context, monitor *models.Monitor) (*Result, error) {
	if len(monitor.Sites) == 0 {
		return nil, &customerrors.ErrSourceNotConfigured{GUID: monitor.GUID()}
	}

	maxResults := monitor.MaxResults
	if maxResults <= 0 {
		maxResults = defaultChannelResults
	}

	var search channelSearchResponse

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("part", "snippet").
		SetQueryParam("channelId", monitor.Sites[0]).
		SetQueryParam("order", "date").
		SetQueryParam("type", "video").
		SetQueryParam("maxResults", strconv.Itoa(maxResults)).
		SetQueryParam("key", f.token).
		SetResult(&search).
		Get(f.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе видео канала: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, &customerrors.ErrSourceNotConfigured{GUID: monitor.GUID()}
	}

	if !resp.IsSuccess() {
		return nil, &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	teasers := make([]models.Teaser, 0, len(search.Items))
	channelTitle := ""

	for _, item := range search.Items {
		if channelTitle == "" {
			channelTitle = item.Snippet.ChannelTitle
		}

		teasers = append(teasers, models.Teaser{
			Title:   item.Snippet.Title,
			VideoID: item.ID.VideoID,
			URL:     "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Date:    item.Snippet.PublishedAt.Truncate(24 * time.Hour),
		})
	}

	return &Result{
		Teasers:   applyConstraints(teasers, monitor.Keyword, monitor.MaxResults),
		PageTitle: channelTitle,
	}, nil
}
