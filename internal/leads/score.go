// Package leads scores captured leads for display ordering and coloring.
package leads

import (
	"regexp"
	"sort"

	"github.com/nexus-ai/nexus/internal/api"
)

var (
	intentRe   = regexp.MustCompile(`(?i)buy|order|interested|yes|please`)
	positiveRe = regexp.MustCompile(`(?i)love|great|excited|happy`)
	negativeRe = regexp.MustCompile(`(?i)not|no|hate|bad|frustrated`)
)

// Score computes a lead score from the captured message: longer messages,
// buying intent and positive sentiment raise it, negative sentiment lowers
// it. Never below 1.
func Score(lead api.Lead) int {
	score := 0
	if len(lead.Message) > 60 {
		score += 2
	}
	if intentRe.MatchString(lead.Message) {
		score += 3
	}
	if positiveRe.MatchString(lead.Message) {
		score += 2
	}
	if negativeRe.MatchString(lead.Message) {
		score -= 2
	}
	if score < 1 {
		return 1
	}
	return score
}

// Level buckets a score for display coloring.
type Level int

const (
	Cold Level = iota
	Warm
	Hot
)

// LevelFor maps a score to its display level.
func LevelFor(score int) Level {
	switch {
	case score >= 5:
		return Hot
	case score >= 3:
		return Warm
	default:
		return Cold
	}
}

// SortByScore orders leads hottest first, newest first within equal scores.
func SortByScore(ls []api.Lead) {
	sort.SliceStable(ls, func(i, j int) bool {
		si, sj := Score(ls[i]), Score(ls[j])
		if si != sj {
			return si > sj
		}
		return ls[i].CreatedAt.After(ls[j].CreatedAt)
	})
}
