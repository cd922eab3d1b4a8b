package models

import (
	"time"
)

// PublishedContent — ранее опубликованный контент из внешнего хранилища.
// Используется только как справочник при сверке диффов.
type PublishedContent struct {
	Title   string
	URL     string
	VideoID string
	Date    time.Time
}

func (c *PublishedContent) Key(contentType ContentType) string {
	if contentType == Video {
		return c.VideoID
	}

	return c.URL
}
