// package match implements candidate scoring and selection for track downloads.
package match

import (
	"math"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
)

// DefaultThreshold is the minimum confidence a candidate must strictly exceed to be selected.
const DefaultThreshold = 0.2

// Scoring weights. The duration penalty is per second of gap.
const (
	titleWeight     = 0.4
	artistWeight    = 0.6
	durationPenalty = 0.0002
)

// stripKeywords are removed as literal substrings from candidate titles
// before comparison. "lyrics" appears twice; re-stripping is idempotent and
// the list must stay as-is to keep scores comparable across versions.
var stripKeywords = []string{"(", ")", "[", "]", "hd", "original", "lyrics", "video", "lyrics", "official"}

// Decision is the outcome of selecting a candidate for a track.
//
// The zero value means no candidate exceeded the threshold.
type Decision struct {
	Candidate  models.Candidate
	Confidence float64
	matched    bool
}

// Matched reports whether a candidate was selected.
func (d Decision) Matched() bool {
	return d.matched
}

// NormalizeTitle lowercases a candidate title and strips noise keywords.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	for _, w := range stripKeywords {
		t = strings.ReplaceAll(t, w, "")
	}
	return strings.TrimSpace(t)
}

// Score computes the match confidence between a source track and one candidate.
//
// Confidence = 0.4*titleSimilarity + 0.6*artistSimilarity - 0.0002*durationGapSeconds.
// The result is not clamped and can exceed 1 or go negative.
// Score is a pure function; identical inputs always yield the identical float.
func Score(track models.Track, candidate models.Candidate) float64 {
	candidateTitle := NormalizeTitle(candidate.Title)

	trackTitle := strings.ToLower(track.Title)
	trackArtist := strings.ToLower(track.Artist)

	titleScore := float64(fuzzy.Ratio(trackTitle, candidateTitle)) / 100

	artistScore := 0.0
	for _, artist := range candidate.Artists {
		score := float64(fuzzy.Ratio(trackArtist, strings.ToLower(artist))) / 100
		if score > artistScore {
			artistScore = score
		}
	}

	gap := math.Abs(track.Duration - candidate.Duration)

	return titleScore*titleWeight + artistScore*artistWeight - gap*durationPenalty
}

// SelectBest picks the candidate with the highest confidence strictly above threshold.
//
// Candidates are visited in the order supplied by the search provider; a later
// candidate replaces the running best only with strictly greater confidence,
// so ties keep the earliest-seen candidate. An empty candidate list or no
// candidate above threshold yields an unmatched Decision.
func SelectBest(track models.Track, candidates []models.Candidate, threshold float64) Decision {
	best := Decision{Confidence: threshold}

	for _, candidate := range candidates {
		confidence := Score(track, candidate)
		if confidence > best.Confidence {
			best = Decision{
				Candidate:  candidate,
				Confidence: confidence,
				matched:    true,
			}
		}
	}

	if !best.matched {
		return Decision{}
	}
	return best
}
