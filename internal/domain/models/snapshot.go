package models

import (
	"time"
)

type ContentType string

const (
	Page      ContentType = "page"
	Video     ContentType = "video"
	EventPage ContentType = "event"
	Unknown   ContentType = "unknown"
)

func (t ContentType) Valid() bool {
	switch t {
	case Page, Video, EventPage:
		return true
	case Unknown:
		return false
	default:
		return false
	}
}

// DateField — имя поля даты в сериализованном снапшоте.
func (t ContentType) DateField() string {
	if t == EventPage {
		return "start_date"
	}

	return "published_date"
}

// KeyField — имя поля идентификатора: для видео всегда video_id, иначе url.
func (t ContentType) KeyField() string {
	if t == Video {
		return "video_id"
	}

	return "url"
}

type Teaser struct {
	Title   string
	URL     string
	VideoID string
	Date    time.Time

	// Прежние значения, зафиксированные при сверке с опубликованным контентом.
	LastTitle   string
	LastURL     string
	LastVideoID string
	LastDate    time.Time
}

// Key возвращает идентификатор тизера для сопоставления.
func (t Teaser) Key(contentType ContentType) string {
	if contentType == Video {
		return t.VideoID
	}

	return t.URL
}

// Snapshot — неизменяемый упорядоченный срез тизеров одного монитора.
// Снапшоты сравниваются, но никогда не изменяются на месте.
type Snapshot struct {
	contentType ContentType
	items       []Teaser
}

func NewSnapshot(contentType ContentType, items []Teaser) *Snapshot {
	copied := make([]Teaser, len(items))
	copy(copied, items)

	return &Snapshot{
		contentType: contentType,
		items:       copied,
	}
}

func EmptySnapshot(contentType ContentType) *Snapshot {
	return &Snapshot{contentType: contentType}
}

func (s *Snapshot) ContentType() ContentType {
	return s.contentType
}

func (s *Snapshot) Count() int {
	return len(s.items)
}

func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.items) == 0
}

func (s *Snapshot) Items() []Teaser {
	copied := make([]Teaser, len(s.items))
	copy(copied, s.items)

	return copied
}

func (s *Snapshot) HasTitle(title string) bool {
	for i := range s.items {
		if s.items[i].Title == title {
			return true
		}
	}

	return false
}

func (s *Snapshot) HasKey(key string) bool {
	for i := range s.items {
		if s.items[i].Key(s.contentType) == key {
			return true
		}
	}

	return false
}

// Equal — структурное равенство: тот же тип контента и те же тизеры в том же порядке.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}

	if s.contentType != other.contentType || len(s.items) != len(other.items) {
		return false
	}

	for i := range s.items {
		if !s.items[i].Date.Equal(other.items[i].Date) {
			return false
		}

		a, b := s.items[i], other.items[i]
		a.Date, b.Date = time.Time{}, time.Time{}
		a.LastDate, b.LastDate = time.Time{}, time.Time{}

		if a != b || !s.items[i].LastDate.Equal(other.items[i].LastDate) {
			return false
		}
	}

	return true
}
