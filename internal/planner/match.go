package planner

import (
	"strings"

	"github.com/danielpatrickdp/coherence-planner/internal/attention"
	"github.com/danielpatrickdp/coherence-planner/internal/manifold"
)

// patternCoherence is the fixed context coherence knowledge patterns are
// embedded at.
const patternCoherence = 0.8

const unknownResponse = "Unknown intent"

func unknownMatch() Match {
	return Match{Response: unknownResponse}
}

// bestMatch scores every knowledge entry by the mean correlation over the
// cross product of the query's points and the pattern's points. The query
// points are the last history points of the field, one per query token, so
// it must run after the query was ingested. Only a strictly higher score
// replaces the current best, so the earliest entry wins ties.
func (e *Engine) bestMatch(query string) Match {
	best := unknownMatch()

	queryPoints := e.field.Recent(len(strings.Fields(query)))
	if len(queryPoints) == 0 {
		return best
	}

	for _, entry := range e.knowledge.Entries() {
		patternPoints := manifold.TokensToPoints(strings.Fields(entry.Pattern), patternCoherence)
		if len(patternPoints) == 0 {
			continue
		}

		var sum float64
		for _, q := range queryPoints {
			for _, p := range patternPoints {
				sum += attention.Correlate(q, p)
			}
		}
		score := sum / float64(len(queryPoints)*len(patternPoints))

		if score > best.Score {
			best = Match{Pattern: entry.Pattern, Response: entry.Response, Score: score}
		}
	}

	return best
}
