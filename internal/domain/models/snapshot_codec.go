package models

import (
	"time"

	"github.com/go-faster/jx"

	customerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
)

// Формат сериализации снапшота: документ с ключом-тегом типа контента,
// значением-массивом тизеров и числовым полем count рядом с тегом:
//
//	{"page": [{"title": "...", "published_date": "...", "url": "..."}], "count": 1}
const snapshotDateLayout = "2006-01-02"

func EncodeSnapshot(s *Snapshot) []byte {
	var e jx.Encoder

	e.ObjStart()
	e.FieldStart(string(s.contentType))
	e.ArrStart()

	for i := range s.items {
		encodeTeaser(&e, s.contentType, &s.items[i])
	}

	e.ArrEnd()
	e.FieldStart("count")
	e.Int(len(s.items))
	e.ObjEnd()

	return e.Bytes()
}

func encodeTeaser(e *jx.Encoder, contentType ContentType, t *Teaser) {
	e.ObjStart()

	e.FieldStart("title")
	e.Str(t.Title)

	if !t.Date.IsZero() {
		e.FieldStart(contentType.DateField())
		e.Str(t.Date.Format(snapshotDateLayout))
	}

	if contentType == Video {
		e.FieldStart("video_id")
		e.Str(t.VideoID)
	}

	if t.URL != "" {
		e.FieldStart("url")
		e.Str(t.URL)
	}

	if t.LastTitle != "" {
		e.FieldStart("last_title")
		e.Str(t.LastTitle)
	}

	if t.LastURL != "" {
		e.FieldStart("last_url")
		e.Str(t.LastURL)
	}

	if t.LastVideoID != "" {
		e.FieldStart("last_video_id")
		e.Str(t.LastVideoID)
	}

	if !t.LastDate.IsZero() {
		e.FieldStart("last_" + contentType.DateField())
		e.Str(t.LastDate.Format(snapshotDateLayout))
	}

	e.ObjEnd()
}

func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, &customerrors.ErrInvalidSnapshot{Cause: &customerrors.ErrMissingRequiredField{FieldName: "snapshot"}}
	}

	var (
		contentType ContentType
		items       []Teaser
	)

	d := jx.DecodeBytes(data)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "count" {
			_, err := d.Int()
			return err
		}

		tag := ContentType(key)
		if !tag.Valid() {
			return &customerrors.ErrUnknownContentType{Type: key}
		}

		contentType = tag

		return d.Arr(func(d *jx.Decoder) error {
			teaser, err := decodeTeaser(d, tag)
			if err != nil {
				return err
			}

			items = append(items, teaser)

			return nil
		})
	})
	if err != nil {
		return nil, &customerrors.ErrInvalidSnapshot{Cause: err}
	}

	if contentType == "" {
		return nil, &customerrors.ErrInvalidSnapshot{Cause: &customerrors.ErrMissingRequiredField{FieldName: "content type tag"}}
	}

	return &Snapshot{contentType: contentType, items: items}, nil
}

//nolint:gocognit // разбор всех полей тизера в одном месте
func decodeTeaser(d *jx.Decoder, contentType ContentType) (Teaser, error) {
	var t Teaser

	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error

		switch key {
		case "title":
			t.Title, err = d.Str()
		case "url":
			t.URL, err = d.Str()
		case "video_id":
			t.VideoID, err = d.Str()
		case "published_date", "start_date":
			t.Date, err = decodeDate(d)
		case "last_title":
			t.LastTitle, err = d.Str()
		case "last_url":
			t.LastURL, err = d.Str()
		case "last_video_id":
			t.LastVideoID, err = d.Str()
		case "last_published_date", "last_start_date":
			t.LastDate, err = decodeDate(d)
		default:
			return d.Skip()
		}

		return err
	})
	if err != nil {
		return Teaser{}, err
	}

	if t.Title == "" && t.Key(contentType) == "" {
		return Teaser{}, &customerrors.ErrMissingRequiredField{FieldName: "title"}
	}

	return t, nil
}

func decodeDate(d *jx.Decoder) (time.Time, error) {
	raw, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}

	parsed, err := time.Parse(snapshotDateLayout, raw)
	if err != nil {
		return time.Time{}, &customerrors.ErrInvalidValue{FieldName: "date", Value: raw}
	}

	return parsed, nil
}
