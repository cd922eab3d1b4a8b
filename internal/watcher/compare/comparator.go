package compare

import (
	"context"
	"log/slog"

	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

// ContentLookup разрешает неоднозначные элементы диффа по ранее
// опубликованному контенту. Возвращает nil, nil, если контент не найден.
type ContentLookup interface {
	FindByTitle(ctx context.Context, title string) (*models.PublishedContent, error)
	FindByKey(ctx context.Context, key string) (*models.PublishedContent, error)
}

type ResultKind string

const (
	Unchanged ResultKind = "unchanged"
	Changed   ResultKind = "changed"
	Anomaly   ResultKind = "anomaly"
)

// Result — явный вариант исхода сравнения. Аномальное сокращение — это
// отдельный исход, а не дифф и не ошибка: вызывающий обязан его обработать.
type Result struct {
	Kind            ResultKind
	Diff            *models.Snapshot
	DiffPercent     float64
	DecreasePercent float64

	// Latest — свежий снапшот с проставленными last_* аннотациями,
	// его и следует сохранить на монитор.
	Latest *models.Snapshot
}

type Comparator struct {
	shrinkageThreshold float64
	logger             *slog.Logger
}

func NewComparator(shrinkageThreshold int, logger *slog.Logger) *Comparator {
	if shrinkageThreshold <= 0 {
		shrinkageThreshold = 50
	}

	return &Comparator{
		shrinkageThreshold: float64(shrinkageThreshold),
		logger:             logger,
	}
}

// Compare классифицирует разницу между сохранённым и свежим снапшотами.
// Заголовок и идентификатор могут дрейфовать независимо, поэтому элементы
// сопоставляются по обоим ключам, а остаток сверяется со справочником
// контента, прежде чем попасть в итоговый дифф.
//
//nolint:gocognit,funlen // алгоритм сверки описан целиком в одном месте
func (c *Comparator) Compare(
	ctx context.Context,
	current, latest *models.Snapshot,
	lookup ContentLookup,
	guardShrinkage bool,
) (*Result, error) {
	if current.ContentType() != latest.ContentType() {
		return nil, &customerrors.ErrSnapshotMismatch{
			Expected: string(current.ContentType()),
			Actual:   string(latest.ContentType()),
		}
	}

	contentType := latest.ContentType()
	currentCount := current.Count()
	latestCount := latest.Count()

	if guardShrinkage && currentCount > 0 && latestCount < currentCount {
		decrease := float64(currentCount-latestCount) / float64(currentCount) * 100

		if decrease > c.shrinkageThreshold {
			c.logger.Warn("Аномальное сокращение списка тизеров",
				"contentType", contentType,
				"current", currentCount,
				"latest", latestCount,
				"decreasePercent", decrease,
			)

			return &Result{Kind: Anomaly, DecreasePercent: decrease}, nil
		}
	}

	items := latest.Items()

	titleUnresolved := make([]bool, len(items))
	keyUnresolved := make([]bool, len(items))

	for i := range items {
		titleUnresolved[i] = !current.HasTitle(items[i].Title)
		keyUnresolved[i] = !current.HasKey(items[i].Key(contentType))
	}

	if lookup != nil {
		// Сначала по заголовку: элемент с новым идентификатором может быть
		// известным контентом со сменившимся URL или video id.
		for i := range items {
			if !keyUnresolved[i] {
				continue
			}

			stored, err := lookup.FindByTitle(ctx, items[i].Title)
			if err != nil {
				return nil, err
			}

			if stored == nil {
				continue
			}

			if storedKey := stored.Key(contentType); storedKey != "" && storedKey != items[i].Key(contentType) {
				if contentType == models.Video {
					items[i].LastVideoID = stored.VideoID
				} else {
					items[i].LastURL = stored.URL
				}
			}

			if !stored.Date.IsZero() && !stored.Date.Equal(items[i].Date) {
				items[i].LastDate = stored.Date
			}

			keyUnresolved[i] = false
		}

		// Симметрично по идентификатору: элемент с новым заголовком может
		// быть переименованным известным контентом.
		for i := range items {
			if !titleUnresolved[i] {
				continue
			}

			stored, err := lookup.FindByKey(ctx, items[i].Key(contentType))
			if err != nil {
				return nil, err
			}

			if stored == nil {
				continue
			}

			if stored.Title != "" && stored.Title != items[i].Title {
				items[i].LastTitle = stored.Title
			}

			if !stored.Date.IsZero() && !stored.Date.Equal(items[i].Date) {
				items[i].LastDate = stored.Date
			}

			titleUnresolved[i] = false
		}
	}

	var diffItems []models.Teaser

	for i := range items {
		if titleUnresolved[i] || keyUnresolved[i] {
			diffItems = append(diffItems, items[i])
		}
	}

	annotated := models.NewSnapshot(contentType, items)

	if len(diffItems) == 0 {
		return &Result{Kind: Unchanged, Latest: annotated}, nil
	}

	percent := 100.0
	if latestCount > 0 {
		percent = float64(len(diffItems)) / float64(latestCount) * 100
	}

	return &Result{
		Kind:        Changed,
		Diff:        models.NewSnapshot(contentType, diffItems),
		DiffPercent: percent,
		Latest:      annotated,
	}, nil
}
