package models

import (
	"fmt"
	"time"

	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
)

type MonitorState string

const (
	StateNew       MonitorState = "NEW"
	StateWaiting   MonitorState = "WAITING"
	StateExecuting MonitorState = "EXECUTING"
	StateChanged   MonitorState = "CHANGED"
	StateReview    MonitorState = "REVIEW"
	StateAlert     MonitorState = "ALERT"
	StateRetrying  MonitorState = "RETRYING"
	StateError     MonitorState = "ERROR"
	StateResuming  MonitorState = "RESUMING"
	StateDisabled  MonitorState = "DISABLED"
)

// EventRef — ссылка монитора на текущее открытое событие.
// У монитора может быть не более одного открытого события.
type EventRef struct {
	Kind EventKind
	ID   string
}

type Monitor struct {
	ID          int64
	OrgCode     string
	ContentType ContentType
	Name        string

	IntervalMinutes int
	Sites           []string
	MaxResults      int
	Keyword         string
	Enabled         bool

	LastExecuted  time.Time
	LastSucceeded time.Time
	LastDuration  time.Duration
	Snapshot      *Snapshot
	State         MonitorState
	OpenEvent     *EventRef
	ErrorMessage  string
	RetryCount    int
	PageTitle     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewMonitor(orgCode, name string, contentType ContentType, intervalMinutes int, sites []string) *Monitor {
	m := &Monitor{
		OrgCode:         orgCode,
		Name:            name,
		ContentType:     contentType,
		IntervalMinutes: intervalMinutes,
		Sites:           sites,
		Enabled:         true,
		Snapshot:        EmptySnapshot(contentType),
		State:           StateNew,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if intervalMinutes > 0 {
		m.State = StateWaiting
	}

	return m
}

func (m *Monitor) GUID() string {
	return fmt.Sprintf("%s-%s-%s", m.ContentType, m.OrgCode, m.Name)
}

// AttachInterval переводит монитор из NEW в WAITING, как только задан интервал.
func (m *Monitor) AttachInterval(minutes int) {
	m.IntervalMinutes = minutes

	if m.State == StateNew && minutes > 0 {
		m.State = StateWaiting
		m.UpdatedAt = time.Now()
	}
}

// BeginExecution переводит монитор в EXECUTING. Повторный вызов для уже
// выполняющегося монитора отклоняется: одновременно допускается
// только одно выполнение на монитор.
func (m *Monitor) BeginExecution() error {
	if !m.Enabled || m.State == StateDisabled {
		return &customerrors.ErrMonitorDisabled{ID: m.ID}
	}

	switch m.State {
	case StateExecuting:
		return &customerrors.ErrMonitorExecuting{ID: m.ID}
	case StateWaiting, StateResuming, StateRetrying:
		m.State = StateExecuting
		m.LastExecuted = time.Now()
		m.UpdatedAt = time.Now()

		return nil
	default:
		return &customerrors.ErrInvalidValue{FieldName: "state", Value: string(m.State)}
	}
}

// CompleteExecution фиксирует успешную проверку без существенных изменений.
func (m *Monitor) CompleteExecution(snapshot *Snapshot, duration time.Duration, pageTitle string) {
	m.Snapshot = snapshot
	m.LastSucceeded = time.Now()
	m.LastDuration = duration
	m.PageTitle = pageTitle
	m.RetryCount = 0
	m.ErrorMessage = ""
	m.State = StateWaiting
	m.UpdatedAt = time.Now()
}

// MarkChanged помечает монитор изменившимся. Возвращает false, если монитор
// уже находится в CHANGED: повторное обнаружение того же изменения
// не должно порождать дубликат события.
func (m *Monitor) MarkChanged(eventID string) bool {
	return m.markOpen(StateChanged, KindChange, eventID)
}

func (m *Monitor) MarkReview(eventID string) bool {
	return m.markOpen(StateReview, KindReview, eventID)
}

func (m *Monitor) MarkAlert(eventID string) bool {
	return m.markOpen(StateAlert, KindAlert, eventID)
}

// markOpen не трогает выключенный монитор: из DISABLED выходят только
// через Enable.
func (m *Monitor) markOpen(state MonitorState, kind EventKind, eventID string) bool {
	if m.State == state || m.State == StateDisabled {
		return false
	}

	m.State = state
	m.OpenEvent = &EventRef{Kind: kind, ID: eventID}
	m.UpdatedAt = time.Now()

	return true
}

// MarkRetry фиксирует временную ошибку выборки. Возвращает true, когда
// превышен потолок ретраев и монитор перешёл в ERROR.
func (m *Monitor) MarkRetry(message string, maxRetries int) bool {
	m.RetryCount++
	m.ErrorMessage = message
	m.UpdatedAt = time.Now()

	if m.RetryCount > maxRetries {
		m.State = StateError
		return true
	}

	m.State = StateRetrying

	return false
}

// MarkError — жёсткая невосстановимая ошибка, минуя ретраи.
func (m *Monitor) MarkError(message string) {
	m.State = StateError
	m.ErrorMessage = message
	m.UpdatedAt = time.Now()
}

// RecordFailureEvent привязывает событие сбоя к монитору в ERROR.
func (m *Monitor) RecordFailureEvent(eventID string) bool {
	if m.State != StateError || m.OpenEvent != nil {
		return false
	}

	m.OpenEvent = &EventRef{Kind: KindFailure, ID: eventID}
	m.UpdatedAt = time.Now()

	return true
}

// ClearChange снимает состояние CHANGED, но только если переданный
// идентификатор совпадает с текущим открытым событием: устаревшее или
// чужое событие не должно сбрасывать монитор.
func (m *Monitor) ClearChange(eventID string) bool {
	return m.clearOpen(StateChanged, KindChange, eventID)
}

func (m *Monitor) ClearReview(eventID string) bool {
	return m.clearOpen(StateReview, KindReview, eventID)
}

func (m *Monitor) ClearAlert(eventID string) bool {
	return m.clearOpen(StateAlert, KindAlert, eventID)
}

func (m *Monitor) ClearFailure(eventID string) bool {
	return m.clearOpen(StateError, KindFailure, eventID)
}

func (m *Monitor) clearOpen(state MonitorState, kind EventKind, eventID string) bool {
	if m.State != state || m.OpenEvent == nil {
		return false
	}

	if m.OpenEvent.Kind != kind || m.OpenEvent.ID != eventID {
		return false
	}

	m.OpenEvent = nil
	m.ErrorMessage = ""
	m.RetryCount = 0
	m.State = StateResuming
	m.UpdatedAt = time.Now()

	return true
}

// Restart принудительно сбрасывает монитор после ручного вмешательства:
// очищает время выполнения, открытое событие и сообщение об ошибке.
func (m *Monitor) Restart() {
	if m.State == StateDisabled {
		return
	}

	m.LastExecuted = time.Time{}
	m.OpenEvent = nil
	m.ErrorMessage = ""
	m.RetryCount = 0
	m.State = StateResuming
	m.UpdatedAt = time.Now()
}

func (m *Monitor) Disable() {
	m.Enabled = false
	m.State = StateDisabled
	m.UpdatedAt = time.Now()
}

func (m *Monitor) Enable() {
	if m.Enabled && m.State != StateDisabled {
		return
	}

	m.Enabled = true
	m.State = StateResuming
	m.UpdatedAt = time.Now()
}
