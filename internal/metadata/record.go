// Package metadata stores one JSON record per article in the metadata
// directory and assigns article numbers.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/raven/internal/dateutil"
)

// ErrNoNumber indicates a record without an article_number.
var ErrNoNumber = errors.New("record has no article_number")

// Record is the stored metadata of one article.
type Record struct {
	Slug         string `json:"-"`
	Number       int    `json:"article_number"`
	Title        string `json:"title"`
	DateCreated  string `json:"date_created"`
	Thumbnail    string `json:"thumbnail"`
	ThumbnailAlt string `json:"thumbnail_alt_text"`
	NotArticle   bool   `json:"-"`
}

// Created parses DateCreated.
func (r Record) Created() (time.Time, error) {
	return dateutil.ParseTimestamp(r.DateCreated)
}

// DisplayDate formats DateCreated for pages, or "Unknown Date".
func (r Record) DisplayDate() string {
	return dateutil.DisplayDate(r.DateCreated)
}

type storedRecord struct {
	Number         *int    `json:"article_number"`
	Title          string  `json:"title"`
	DateCreated    string  `json:"date_created"`
	Thumbnail      string  `json:"thumbnail"`
	ThumbnailAlt   *string `json:"thumbnail_alt_text"`
	LegacyThumbAlt string  `json:"thumbnailAltText"`
	NotArticle     bool    `json:"not-article"`
}

// decodeRecord parses a stored record. The legacy thumbnailAltText key is
// read when thumbnail_alt_text is absent.
func decodeRecord(slug string, data []byte) (Record, error) {
	var raw storedRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, err
	}
	if raw.Number == nil {
		return Record{}, ErrNoNumber
	}
	rec := Record{
		Slug:         slug,
		Number:       *raw.Number,
		Title:        raw.Title,
		DateCreated:  raw.DateCreated,
		Thumbnail:    raw.Thumbnail,
		ThumbnailAlt: raw.LegacyThumbAlt,
		NotArticle:   raw.NotArticle,
	}
	if raw.ThumbnailAlt != nil {
		rec.ThumbnailAlt = *raw.ThumbnailAlt
	}
	return rec, nil
}

// encodeRecord renders r as 4-space indented JSON.
func encodeRecord(r Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding record %s: %w", r.Slug, err)
	}
	return buf.Bytes(), nil
}
