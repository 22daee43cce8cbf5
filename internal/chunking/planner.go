package chunking

import (
	"math"

	"quill/internal/config"
	"quill/internal/media"
	"quill/internal/vad"
)

// minPauseSeconds is the shortest silence between speech intervals that
// qualifies as a split candidate in the scored window search.
const minPauseSeconds = 0.2

// Chunk is a bounded slice of the source audio. Start and End are the
// logical boundaries used for coverage math; Audio may extend past End by
// the configured overlap.
type Chunk struct {
	Index     int
	Start     float64
	End       float64
	HasSpeech bool
	Audio     media.Audio
}

// Duration returns the logical chunk length in seconds.
func (c Chunk) Duration() float64 {
	return c.End - c.Start
}

// Planner carves audio into transcription-sized chunks, preferring to split
// inside pauses between speech intervals.
type Planner struct {
	target    float64
	tolerance float64
	max       float64
	overlap   float64
}

// NewPlanner builds a planner from the chunking config section.
func NewPlanner(cfg config.Chunking) *Planner {
	return &Planner{
		target:    cfg.TargetSeconds,
		tolerance: cfg.ToleranceSeconds,
		max:       cfg.MaxSeconds,
		overlap:   cfg.OverlapSeconds,
	}
}

// Plan splits the audio at pause boundaries. Chunks cover [0, duration]
// contiguously: chunk 0 starts at 0, each chunk starts where the previous
// ended, and the final chunk ends at the audio duration. When no speech was
// detected the whole file becomes a single chunk. Zero-duration audio yields
// no chunks.
//
// When the remaining tail is at most half the target duration it is merged
// into the final chunk rather than split again; the boundary case
// (remaining == target/2) merges. No chunk except that forced merge may
// exceed the configured maximum duration.
func (p *Planner) Plan(audio media.Audio, intervals []vad.Interval) []Chunk {
	total := audio.DurationSeconds()
	if total <= 0 {
		return nil
	}

	if len(intervals) == 0 {
		return []Chunk{{
			Index:     0,
			Start:     0,
			End:       total,
			HasSpeech: false,
			Audio:     audio,
		}}
	}

	var chunks []Chunk
	currentStart := 0.0
	index := 0
	for currentStart < total {
		var chunkEnd float64
		remaining := total - currentStart
		if remaining <= p.target/2 {
			chunkEnd = total
		} else {
			chunkEnd = p.pickBoundary(currentStart, total, intervals)
		}

		audioEnd := math.Min(chunkEnd+p.overlap, total)
		chunks = append(chunks, Chunk{
			Index:     index,
			Start:     currentStart,
			End:       chunkEnd,
			HasSpeech: true,
			Audio:     audio.Slice(currentStart, audioEnd),
		})
		currentStart = chunkEnd
		index++
	}
	return chunks
}

func (p *Planner) pickBoundary(currentStart, total float64, intervals []vad.Interval) float64 {
	minEnd := currentStart + p.target - p.tolerance
	maxEnd := math.Min(currentStart+p.target+p.tolerance, total)
	idealEnd := currentStart + p.target

	if split, found := FindBestPause(intervals, minEnd, maxEnd, idealEnd); found {
		return split
	}

	// No pause in the tolerance window; take the first inter-interval gap
	// past the ideal point that still respects the hard cap. Unlike the
	// scored search, any gap qualifies here, however short.
	hardCap := currentStart + p.max
	for i := 0; i+1 < len(intervals); i++ {
		mid := pauseBetween(intervals[i], intervals[i+1]).midpoint()
		if mid <= idealEnd {
			continue
		}
		if mid <= hardCap {
			return mid
		}
		break
	}
	return math.Min(hardCap, total)
}

// FindBestPause scores every pause of at least 0.2s whose midpoint falls in
// [minEnd, maxEnd] and returns the midpoint of the best one. The score
// weighs closeness to idealEnd at 0.7 and pause length (saturating at one
// second) at 0.3; ties keep the earliest candidate. When no pause qualifies
// it returns idealEnd with found=false.
func FindBestPause(intervals []vad.Interval, minEnd, maxEnd, idealEnd float64) (split float64, found bool) {
	window := maxEnd - minEnd
	best := idealEnd
	bestScore := math.Inf(-1)

	for i := 0; i+1 < len(intervals); i++ {
		pause := pauseBetween(intervals[i], intervals[i+1])
		duration := pause.Duration()
		if duration < minPauseSeconds {
			continue
		}
		mid := pause.midpoint()
		if mid < minEnd || mid > maxEnd {
			continue
		}

		proximity := 0.0
		if window > 0 {
			proximity = 1 - math.Abs(mid-idealEnd)/window
		}
		score := 0.7*proximity + 0.3*math.Min(duration/1.0, 1.0)
		if score > bestScore {
			bestScore = score
			best = mid
			found = true
		}
	}
	return best, found
}

type pause struct {
	start float64
	end   float64
}

func (p pause) Duration() float64 {
	return p.end - p.start
}

func (p pause) midpoint() float64 {
	return (p.start + p.end) / 2
}

func pauseBetween(left, right vad.Interval) pause {
	return pause{start: left.End, end: right.Start}
}
