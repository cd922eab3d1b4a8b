package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

func TestChangeEvent_Close(t *testing.T) {
	m := newTestMonitor()
	before := models.EmptySnapshot(models.Page)
	after := models.NewSnapshot(models.Page, []models.Teaser{{Title: "Новость", URL: "https://example.com/1"}})

	event := models.NewChangeEvent(m, before, after, 100, time.Second)

	require.NotEmpty(t, event.ID)
	assert.Equal(t, m.ID, event.MonitorID)
	assert.Equal(t, m.GUID(), event.GUID)
	assert.Equal(t, models.ChangeOpen, event.Status)

	// закрытие нетерминальным статусом отклоняется
	assert.False(t, event.Close(models.ChangeOpen, "operator"))
	assert.Equal(t, models.ChangeOpen, event.Status)

	require.True(t, event.Close(models.ChangeConfirmed, "operator"))
	assert.Equal(t, models.ChangeConfirmed, event.Status)
	assert.Equal(t, "operator", event.UpdatedBy)

	// уже закрытое событие нельзя перевести в другой статус
	assert.False(t, event.Close(models.ChangeSkipped, "operator"))
	assert.Equal(t, models.ChangeConfirmed, event.Status)
}

func TestAlertEvent_Close(t *testing.T) {
	m := newTestMonitor()

	event := models.NewAlertEvent(m, models.AlertInactivity, time.Now().AddDate(0, 0, -90))

	require.True(t, event.Close(models.AlertIgnored, "operator"))
	assert.False(t, event.Close(models.AlertClosed, "operator"))
	assert.Equal(t, models.AlertIgnored, event.Status)
}

func TestReviewEvent_Close(t *testing.T) {
	m := newTestMonitor()

	event := models.NewReviewEvent(m, models.ReviewUnreliable, time.Now())

	assert.Equal(t, models.ReviewOpen, event.Status)

	// закрытие нетерминальным статусом отклоняется
	assert.False(t, event.Close(models.ReviewOpen, "operator"))

	require.True(t, event.Close(models.ReviewDone, "operator"))
	assert.Equal(t, models.ReviewDone, event.Status)
	assert.Equal(t, "operator", event.UpdatedBy)

	assert.False(t, event.Close(models.ReviewSkipped, "operator"))
	assert.Equal(t, models.ReviewDone, event.Status)
}

func TestFailureEvent_Close(t *testing.T) {
	m := newTestMonitor()

	event := models.NewFailureEvent(m, models.FailureAccessDenied, "session-1")

	assert.Equal(t, models.FailureOpen, event.Status)
	assert.Equal(t, "session-1", event.SessionID)

	assert.False(t, event.Close(models.FailureOpen, "operator"))

	require.True(t, event.Close(models.FailureSkipped, "operator"))
	assert.Equal(t, models.FailureSkipped, event.Status)

	assert.False(t, event.Close(models.FailureFixed, "operator"))
	assert.Equal(t, models.FailureSkipped, event.Status)
}

func TestEventBase_SetNotes(t *testing.T) {
	m := newTestMonitor()

	event := models.NewFailureEvent(m, models.FailureIntermittent, "session-1")
	event.SetNotes("сайт недоступен третий день", "operator")

	assert.Equal(t, "сайт недоступен третий день", event.Notes)
	assert.Equal(t, "operator", event.UpdatedBy)
}
