package recommendation

import "github.com/kailas-cloud/popchoice/internal/domain/match"

// Fixed messages returned instead of generated text.
const (
	NoMatchMessage  = "Sorry, I couldn't find any movies matching your criteria."
	FallbackMessage = "Sorry, I couldn't generate a recommendation right now. Please try again."
)

// Outcome classifies how a recommendation was produced.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeNoMatch  Outcome = "no_match"
	OutcomeFallback Outcome = "fallback"
)

// Result is what the caller receives for one query.
type Result struct {
	Content    string
	Similarity float64
	Outcome    Outcome
	Matches    match.Set
}

// NoMatch is returned when search finds nothing at or above the threshold.
func NoMatch() Result {
	return Result{Content: NoMatchMessage, Outcome: OutcomeNoMatch, Matches: match.Set{}}
}

// Fallback is returned when synthesis fails after matches were found.
func Fallback(matches match.Set) Result {
	return Result{Content: FallbackMessage, Outcome: OutcomeFallback, Matches: matches}
}

// Generated wraps synthesized text with the top match similarity.
func Generated(content string, matches match.Set) Result {
	top, _ := matches.Top()
	return Result{
		Content:    content,
		Similarity: top.Similarity,
		Outcome:    OutcomeOK,
		Matches:    matches,
	}
}
