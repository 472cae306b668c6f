package popchoice

import "github.com/kailas-cloud/popchoice/internal/domain/recommendation"

// Outcome classifies how a recommendation was produced.
type Outcome string

// Outcome values.
const (
	OutcomeOK       Outcome = "ok"
	OutcomeNoMatch  Outcome = "no_match"
	OutcomeFallback Outcome = "fallback"
)

// Recommendation is the answer to one query.
// Similarity is the best match's score, or 0 for the fixed messages.
type Recommendation struct {
	Content    string
	Similarity float64
	Outcome    Outcome
	Matches    []Match
}

// Match is one catalog passage that supported the recommendation.
type Match struct {
	ID         string
	Content    string
	Similarity float64
}

func fromResult(r recommendation.Result) Recommendation {
	matches := make([]Match, len(r.Matches))
	for i, m := range r.Matches {
		matches[i] = Match{ID: m.ID, Content: m.Content, Similarity: m.Similarity}
	}
	return Recommendation{
		Content:    r.Content,
		Similarity: r.Similarity,
		Outcome:    Outcome(r.Outcome),
		Matches:    matches,
	}
}
