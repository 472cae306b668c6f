package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

// Field labels used when the three answers are merged into one text.
const (
	FavoriteMovieLabel = "Favorite movie and why"
	MoodLabel          = "In the mood for something new or a classic"
	ToneLabel          = "Wants something fun or serious"
)

// Query holds the three answers of one recommendation request.
type Query struct {
	favoriteMovie string
	mood          string
	tone          string
}

// New validates the answers. Every field must contain non-whitespace text.
func New(favoriteMovie, mood, tone string) (Query, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"q1", favoriteMovie},
		{"q2", mood},
		{"q3", tone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return Query{}, domain.Validationf("%s is required", f.name)
		}
	}

	return Query{
		favoriteMovie: strings.TrimSpace(favoriteMovie),
		mood:          strings.TrimSpace(mood),
		tone:          strings.TrimSpace(tone),
	}, nil
}

// FavoriteMovie returns the favorite movie answer (q1).
func (q *Query) FavoriteMovie() string { return q.favoriteMovie }

// Mood returns the new-or-classic answer (q2).
func (q *Query) Mood() string { return q.mood }

// Tone returns the fun-or-serious answer (q3).
func (q *Query) Tone() string { return q.tone }

// CombinedText labels and joins the answers in fixed order: favorite movie, mood, tone.
func (q *Query) CombinedText() string {
	return fmt.Sprintf("%s: %s\n%s: %s\n%s: %s",
		FavoriteMovieLabel, q.favoriteMovie,
		MoodLabel, q.mood,
		ToneLabel, q.tone,
	)
}
