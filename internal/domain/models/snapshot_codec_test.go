package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

func TestEncodeSnapshot_PageFormat(t *testing.T) {
	snapshot := models.NewSnapshot(models.Page, []models.Teaser{
		{
			Title: "Новая версия продукта",
			URL:   "https://example.com/news/1",
			Date:  time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		},
	})

	data := models.EncodeSnapshot(snapshot)

	var document map[string]json.RawMessage

	require.NoError(t, json.Unmarshal(data, &document))
	require.Contains(t, document, "page")
	require.Contains(t, document, "count")

	var count int

	require.NoError(t, json.Unmarshal(document["count"], &count))
	assert.Equal(t, 1, count)

	var items []map[string]string

	require.NoError(t, json.Unmarshal(document["page"], &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Новая версия продукта", items[0]["title"])
	assert.Equal(t, "2025-04-02", items[0]["published_date"])
	assert.Equal(t, "https://example.com/news/1", items[0]["url"])
}

func TestEncodeSnapshot_EventPageUsesStartDate(t *testing.T) {
	snapshot := models.NewSnapshot(models.EventPage, []models.Teaser{
		{
			Title: "Конференция",
			URL:   "https://example.com/events/5",
			Date:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
	})

	var document map[string]json.RawMessage

	require.NoError(t, json.Unmarshal(models.EncodeSnapshot(snapshot), &document))
	require.Contains(t, document, "event")

	var items []map[string]string

	require.NoError(t, json.Unmarshal(document["event"], &items))
	assert.Equal(t, "2025-06-15", items[0]["start_date"])
	assert.NotContains(t, items[0], "published_date")
}

func TestSnapshotCodec_Roundtrip(t *testing.T) {
	original := models.NewSnapshot(models.Video, []models.Teaser{
		{
			Title:   "Выпуск 12",
			VideoID: "dQw4w9WgXcQ",
			URL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Date:    time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:     "Выпуск 11",
			VideoID:   "abc123",
			URL:       "https://www.youtube.com/watch?v=abc123",
			LastTitle: "Черновик выпуска 11",
		},
	})

	decoded, err := models.DecodeSnapshot(models.EncodeSnapshot(original))

	require.NoError(t, err)
	assert.True(t, original.Equal(decoded))
}

func TestDecodeSnapshot_UnknownTag(t *testing.T) {
	_, err := models.DecodeSnapshot([]byte(`{"billing": [], "count": 0}`))

	require.Error(t, err)

	var invalidErr *customerrors.ErrInvalidSnapshot

	require.ErrorAs(t, err, &invalidErr)
}

func TestDecodeSnapshot_Empty(t *testing.T) {
	_, err := models.DecodeSnapshot(nil)

	require.Error(t, err)
}

func TestDecodeSnapshot_BadDate(t *testing.T) {
	_, err := models.DecodeSnapshot([]byte(`{"page": [{"title": "x", "published_date": "02.04.2025"}], "count": 1}`))

	require.Error(t, err)
}
