package domain

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// Book is a single recommendation as returned by the backend.
// Only Title is guaranteed; every other field may be empty.
type Book struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Description string   `json:"description,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}

// UnmarshalJSON accepts both cover_url and coverUrl, null for every
// optional field, and a string or numeric id.
func (b *Book) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            json.RawMessage `json:"id"`
		Title         *string         `json:"title"`
		Author        *string         `json:"author"`
		Genres        []*string       `json:"genres"`
		Description   *string         `json:"description"`
		CoverURL      *string         `json:"cover_url"`
		CoverURLCamel *string         `json:"coverUrl"`
		Score         *float64        `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Book{
		ID:          decodeID(raw.ID),
		Title:       deref(raw.Title),
		Author:      deref(raw.Author),
		Description: deref(raw.Description),
		CoverURL:    deref(raw.CoverURL),
		Score:       raw.Score,
	}
	if b.CoverURL == "" {
		b.CoverURL = deref(raw.CoverURLCamel)
	}
	for _, g := range raw.Genres {
		if g != nil && strings.TrimSpace(*g) != "" {
			b.Genres = append(b.Genres, *g)
		}
	}
	return nil
}

// PrimaryGenre is the badge shown on a card.
func (b Book) PrimaryGenre() string {
	if len(b.Genres) == 0 {
		return "Book"
	}
	return b.Genres[0]
}

// ScorePercent clamps the relevance score to 0..100. ok is false when
// the backend sent no score.
func (b Book) ScorePercent() (pct int, ok bool) {
	if b.Score == nil {
		return 0, false
	}
	p := int(*b.Score*100 + 0.5)
	switch {
	case p < 0:
		p = 0
	case p > 100:
		p = 100
	}
	return p, true
}

func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
