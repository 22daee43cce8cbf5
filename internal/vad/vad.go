package vad

import (
	"context"
	"math"

	"quill/internal/config"
	"quill/internal/media"
)

// Interval is a span of detected speech in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the interval length in seconds.
func (i Interval) Duration() float64 {
	return i.End - i.Start
}

// Detector classifies audio into speech intervals. Implementations must
// return intervals that are non-overlapping and ascending. An empty result
// means no speech was detected and is not an error.
type Detector interface {
	DetectSpeech(ctx context.Context, audio media.Audio) ([]Interval, error)
}

// Segmenter normalizes audio to the detector's expected sample rate before
// running detection.
type Segmenter struct {
	detector   Detector
	sampleRate int
}

// NewSegmenter wraps a detector operating at the given sample rate.
func NewSegmenter(detector Detector, sampleRate int) *Segmenter {
	if sampleRate <= 0 {
		sampleRate = media.TargetSampleRate
	}
	return &Segmenter{detector: detector, sampleRate: sampleRate}
}

// Segment resamples the input if needed and returns the ordered speech
// intervals found by the detector.
func (s *Segmenter) Segment(ctx context.Context, audio media.Audio) ([]Interval, error) {
	if len(audio.Samples) == 0 {
		return nil, nil
	}
	if audio.SampleRate != s.sampleRate {
		audio = media.Resample(audio, s.sampleRate)
	}
	return s.detector.DetectSpeech(ctx, audio)
}

// EnergyDetector is the built-in frame-energy voice activity detector. A
// frame counts as speech when its RMS level exceeds the configured dB
// threshold; runs shorter than the minimum speech duration are discarded and
// gaps shorter than the minimum silence duration are bridged.
type EnergyDetector struct {
	frameMs      int
	thresholdDB  float64
	minSpeechMs  int
	minSilenceMs int
}

// NewEnergyDetector builds an energy detector from the VAD config section.
func NewEnergyDetector(cfg config.VAD) *EnergyDetector {
	frameMs := cfg.FrameMs
	if frameMs <= 0 {
		frameMs = 30
	}
	return &EnergyDetector{
		frameMs:      frameMs,
		thresholdDB:  cfg.EnergyThresholdDB,
		minSpeechMs:  cfg.MinSpeechMs,
		minSilenceMs: cfg.MinSilenceMs,
	}
}

// DetectSpeech implements Detector.
func (d *EnergyDetector) DetectSpeech(ctx context.Context, audio media.Audio) ([]Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if audio.SampleRate <= 0 || len(audio.Samples) == 0 {
		return nil, nil
	}

	frameLen := audio.SampleRate * d.frameMs / 1000
	if frameLen <= 0 {
		frameLen = 1
	}

	var raw []Interval
	speechStart := -1.0
	for offset := 0; offset < len(audio.Samples); offset += frameLen {
		end := offset + frameLen
		if end > len(audio.Samples) {
			end = len(audio.Samples)
		}
		frameTime := float64(offset) / float64(audio.SampleRate)
		if rmsDB(audio.Samples[offset:end]) >= d.thresholdDB {
			if speechStart < 0 {
				speechStart = frameTime
			}
		} else if speechStart >= 0 {
			raw = append(raw, Interval{Start: speechStart, End: frameTime})
			speechStart = -1
		}
	}
	if speechStart >= 0 {
		raw = append(raw, Interval{Start: speechStart, End: audio.DurationSeconds()})
	}

	merged := mergeClose(raw, float64(d.minSilenceMs)/1000)
	return dropShort(merged, float64(d.minSpeechMs)/1000), nil
}

func rmsDB(samples []float64) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, sample := range samples {
		sum += sample * sample
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}

func mergeClose(intervals []Interval, maxGapSec float64) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	merged := []Interval{intervals[0]}
	for _, interval := range intervals[1:] {
		last := &merged[len(merged)-1]
		if interval.Start-last.End <= maxGapSec {
			if interval.End > last.End {
				last.End = interval.End
			}
			continue
		}
		merged = append(merged, interval)
	}
	return merged
}

func dropShort(intervals []Interval, minDurationSec float64) []Interval {
	var kept []Interval
	for _, interval := range intervals {
		if interval.Duration() >= minDurationSec {
			kept = append(kept, interval)
		}
	}
	return kept
}
