// Package transcript assembles per-chunk transcription results into the
// final transcript structure and renders it as plain text, SRT, or WebVTT.
package transcript

import (
	"sort"
	"strings"

	"quill/internal/queue"
)

// Result is the assembled output of a completed job.
type Result struct {
	FullText       string
	TranslatedText string
	Segments       []queue.Segment
	Speakers       []queue.SpeakerStat
}

// Assemble merges chunk-ordered segments into the final transcript. Text is
// joined with single spaces in chunk order; empty chunk texts (from
// tolerated per-chunk failures) are skipped. Speaker aggregates sum the
// span duration and segment count per assigned label.
func Assemble(segments []queue.Segment, translations []string) Result {
	ordered := make([]queue.Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ChunkIndex < ordered[j].ChunkIndex
	})

	var parts []string
	totals := make(map[string]*queue.SpeakerStat)
	for _, segment := range ordered {
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
		if segment.Speaker == "" {
			continue
		}
		stat, ok := totals[segment.Speaker]
		if !ok {
			stat = &queue.SpeakerStat{JobID: segment.JobID, Label: segment.Speaker}
			totals[segment.Speaker] = stat
		}
		stat.TotalSeconds += segment.EndSeconds - segment.StartSeconds
		stat.SegmentCount++
	}

	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	speakers := make([]queue.SpeakerStat, 0, len(labels))
	for _, label := range labels {
		speakers = append(speakers, *totals[label])
	}

	var translated string
	if len(translations) > 0 {
		var translatedParts []string
		for _, text := range translations {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				translatedParts = append(translatedParts, trimmed)
			}
		}
		translated = strings.Join(translatedParts, " ")
	}

	return Result{
		FullText:       strings.Join(parts, " "),
		TranslatedText: translated,
		Segments:       ordered,
		Speakers:       speakers,
	}
}
