package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

func TestNewSnapshot_CopiesItems(t *testing.T) {
	items := []models.Teaser{
		{Title: "Первая новость", URL: "https://example.com/1"},
		{Title: "Вторая новость", URL: "https://example.com/2"},
	}

	snapshot := models.NewSnapshot(models.Page, items)

	items[0].Title = "изменено после создания"

	got := snapshot.Items()
	assert.Equal(t, "Первая новость", got[0].Title)

	got[1].Title = "изменено в копии"
	assert.Equal(t, "Вторая новость", snapshot.Items()[1].Title)
}

func TestSnapshot_HasKey_VideoUsesVideoID(t *testing.T) {
	snapshot := models.NewSnapshot(models.Video, []models.Teaser{
		{Title: "Выпуск 1", VideoID: "abc123", URL: "https://www.youtube.com/watch?v=abc123"},
	})

	assert.True(t, snapshot.HasKey("abc123"))
	assert.False(t, snapshot.HasKey("https://www.youtube.com/watch?v=abc123"))

	page := models.NewSnapshot(models.Page, []models.Teaser{
		{Title: "Новость", URL: "https://example.com/1"},
	})

	assert.True(t, page.HasKey("https://example.com/1"))
}

func TestSnapshot_Equal(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	a := models.NewSnapshot(models.Page, []models.Teaser{
		{Title: "Новость", URL: "https://example.com/1", Date: date},
	})
	b := models.NewSnapshot(models.Page, []models.Teaser{
		{Title: "Новость", URL: "https://example.com/1", Date: date.In(time.FixedZone("MSK", 3*3600))},
	})

	assert.True(t, a.Equal(b))

	c := models.NewSnapshot(models.Page, []models.Teaser{
		{Title: "Другая новость", URL: "https://example.com/1", Date: date},
	})

	assert.False(t, a.Equal(c))

	otherType := models.NewSnapshot(models.EventPage, []models.Teaser{
		{Title: "Новость", URL: "https://example.com/1", Date: date},
	})

	assert.False(t, a.Equal(otherType))
}

func TestEmptySnapshot(t *testing.T) {
	snapshot := models.EmptySnapshot(models.Page)

	require.True(t, snapshot.IsEmpty())
	assert.Equal(t, 0, snapshot.Count())
	assert.Equal(t, models.Page, snapshot.ContentType())
}
