// Package diarize adapts external speaker diarization tooling behind the
// Diarizer capability interface and maps speaker turns onto audio chunks.
package diarize

import (
	"context"
	"sort"
)

// Turn is a span of audio attributed to one speaker.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Diarizer identifies who speaks when in an audio file.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]Turn, error)
}

// SpeakerForSpan returns the label of the turn containing the midpoint of
// [start, end]. When no turn contains the midpoint the fallback label is
// returned, so chunks in untracked regions still carry a speaker.
func SpeakerForSpan(turns []Turn, start, end float64, fallback string) string {
	mid := (start + end) / 2
	for _, turn := range turns {
		if mid >= turn.Start && mid <= turn.End {
			return turn.Speaker
		}
	}
	return fallback
}

// Labels returns the distinct speaker labels in sorted order.
func Labels(turns []Turn) []string {
	seen := make(map[string]struct{})
	for _, turn := range turns {
		seen[turn.Speaker] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
