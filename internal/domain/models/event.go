package models

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	KindChange  EventKind = "change"
	KindAlert   EventKind = "alert"
	KindReview  EventKind = "review"
	KindFailure EventKind = "failure"
)

// EventBase — общая форма всех четырёх видов событий. Событие ссылается
// на монитор только по идентификатору, обратной ссылки нет.
type EventBase struct {
	ID        string
	MonitorID int64
	OrgCode   string
	GUID      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Notes     string
	UpdatedBy string
}

func newEventBase(m *Monitor) EventBase {
	now := time.Now()

	return EventBase{
		ID:        uuid.NewString(),
		MonitorID: m.ID,
		OrgCode:   m.OrgCode,
		GUID:      m.GUID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *EventBase) SetNotes(notes, user string) {
	b.Notes = notes
	b.UpdatedBy = user
	b.UpdatedAt = time.Now()
}

type ChangeStatus string

const (
	ChangeOpen      ChangeStatus = "open"
	ChangeConfirmed ChangeStatus = "confirmed"
	ChangeSkipped   ChangeStatus = "skipped"
)

func (s ChangeStatus) Terminal() bool {
	return s == ChangeConfirmed || s == ChangeSkipped
}

type AlertReason string

const (
	AlertInactivity  AlertReason = "inactivity"
	AlertSuspended   AlertReason = "suspended"
	AlertUnreachable AlertReason = "unreachable"
	AlertManual      AlertReason = "manual"
)

type AlertStatus string

const (
	AlertOpen    AlertStatus = "open"
	AlertClosed  AlertStatus = "closed"
	AlertIgnored AlertStatus = "ignored"
)

func (s AlertStatus) Terminal() bool {
	return s == AlertClosed || s == AlertIgnored
}

type ReviewReason string

const (
	ReviewUnreliable   ReviewReason = "unreliable"
	ReviewBroken       ReviewReason = "broken"
	ReviewBlocked      ReviewReason = "blocked"
	ReviewVerification ReviewReason = "verification"
	ReviewUndefined    ReviewReason = "undefined"
)

type ReviewStatus string

const (
	ReviewOpen    ReviewStatus = "open"
	ReviewDone    ReviewStatus = "done"
	ReviewSkipped ReviewStatus = "skipped"
)

func (s ReviewStatus) Terminal() bool {
	return s == ReviewDone || s == ReviewSkipped
}

type FailureReason string

const (
	FailureUndefined    FailureReason = "undefined"
	FailureIntermittent FailureReason = "intermittent"
	FailureAccessDenied FailureReason = "access_denied"
	FailureVerification FailureReason = "verification"
	FailureDefective    FailureReason = "defective"
	FailureHanging      FailureReason = "hanging"
)

type FailureStatus string

const (
	FailureOpen    FailureStatus = "open"
	FailureFixed   FailureStatus = "fixed"
	FailureSkipped FailureStatus = "skipped"
)

func (s FailureStatus) Terminal() bool {
	return s == FailureFixed || s == FailureSkipped
}

// ChangeEvent фиксирует существенную разницу между двумя снапшотами.
type ChangeEvent struct {
	EventBase

	Status        ChangeStatus
	Before        *Snapshot
	After         *Snapshot
	DiffPercent   float64
	ExecutionTime time.Duration
}

func NewChangeEvent(m *Monitor, before, after *Snapshot, diffPercent float64, executionTime time.Duration) *ChangeEvent {
	return &ChangeEvent{
		EventBase:     newEventBase(m),
		Status:        ChangeOpen,
		Before:        before,
		After:         after,
		DiffPercent:   diffPercent,
		ExecutionTime: executionTime,
	}
}

func (e *ChangeEvent) Close(status ChangeStatus, user string) bool {
	if e.Status.Terminal() || !status.Terminal() {
		return false
	}

	e.Status = status
	e.UpdatedBy = user
	e.UpdatedAt = time.Now()

	return true
}

type AlertEvent struct {
	EventBase

	Status        AlertStatus
	Reason        AlertReason
	EffectiveFrom time.Time
}

func NewAlertEvent(m *Monitor, reason AlertReason, effectiveFrom time.Time) *AlertEvent {
	return &AlertEvent{
		EventBase:     newEventBase(m),
		Status:        AlertOpen,
		Reason:        reason,
		EffectiveFrom: effectiveFrom,
	}
}

func (e *AlertEvent) Close(status AlertStatus, user string) bool {
	if e.Status.Terminal() || !status.Terminal() {
		return false
	}

	e.Status = status
	e.UpdatedBy = user
	e.UpdatedAt = time.Now()

	return true
}

type ReviewEvent struct {
	EventBase

	Status   ReviewStatus
	Reason   ReviewReason
	ReviewAt time.Time
}

func NewReviewEvent(m *Monitor, reason ReviewReason, reviewAt time.Time) *ReviewEvent {
	return &ReviewEvent{
		EventBase: newEventBase(m),
		Status:    ReviewOpen,
		Reason:    reason,
		ReviewAt:  reviewAt,
	}
}

func (e *ReviewEvent) Close(status ReviewStatus, user string) bool {
	if e.Status.Terminal() || !status.Terminal() {
		return false
	}

	e.Status = status
	e.UpdatedBy = user
	e.UpdatedAt = time.Now()

	return true
}

type FailureEvent struct {
	EventBase

	Status    FailureStatus
	Reason    FailureReason
	ReviewAt  time.Time
	SessionID string
}

func NewFailureEvent(m *Monitor, reason FailureReason, sessionID string) *FailureEvent {
	return &FailureEvent{
		EventBase: newEventBase(m),
		Status:    FailureOpen,
		Reason:    reason,
		ReviewAt:  time.Now(),
		SessionID: sessionID,
	}
}

func (e *FailureEvent) Close(status FailureStatus, user string) bool {
	if e.Status.Terminal() || !status.Terminal() {
		return false
	}

	e.Status = status
	e.UpdatedBy = user
	e.UpdatedAt = time.Now()

	return true
}
