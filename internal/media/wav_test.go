package media_test

import (
	"math"
	"path/filepath"
	"testing"

	"quill/internal/media"
	"quill/internal/testsupport"
)

func TestWAVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	samples := testsupport.ToneSamples(16000, 0.5, 440, 0.8)
	original := media.Audio{SampleRate: 16000, Samples: samples}
	if err := media.WriteWAV(path, original); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	decoded, err := media.ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if decoded.SampleRate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", decoded.SampleRate)
	}
	if len(decoded.Samples) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(decoded.Samples))
	}
	for i := 0; i < len(samples); i += 997 {
		if math.Abs(decoded.Samples[i]-samples[i]) > 1.0/16384 {
			t.Fatalf("sample %d drifted: want %v got %v", i, samples[i], decoded.Samples[i])
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := media.DecodeWAV([]byte("definitely not audio")); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}

func TestDurationSeconds(t *testing.T) {
	audio := media.Audio{SampleRate: 16000, Samples: make([]float64, 16000*3)}
	if got := audio.DurationSeconds(); math.Abs(got-3) > 1e-9 {
		t.Fatalf("expected 3s, got %v", got)
	}
}

func TestSliceClampsBounds(t *testing.T) {
	audio := media.Audio{SampleRate: 100, Samples: make([]float64, 1000)}

	slice := audio.Slice(2, 7)
	if len(slice.Samples) != 500 {
		t.Fatalf("expected 500 samples, got %d", len(slice.Samples))
	}

	slice = audio.Slice(-5, 100)
	if len(slice.Samples) != 1000 {
		t.Fatalf("expected clamp to full audio, got %d samples", len(slice.Samples))
	}

	slice = audio.Slice(20, 30)
	if len(slice.Samples) != 0 {
		t.Fatalf("expected empty slice past end, got %d samples", len(slice.Samples))
	}
}

func TestResample(t *testing.T) {
	audio := media.Audio{SampleRate: 8000, Samples: testsupport.ToneSamples(8000, 1, 200, 0.5)}

	up := media.Resample(audio, 16000)
	if up.SampleRate != 16000 {
		t.Fatalf("expected rate 16000, got %d", up.SampleRate)
	}
	if math.Abs(up.DurationSeconds()-1) > 0.01 {
		t.Fatalf("expected duration preserved, got %v", up.DurationSeconds())
	}

	same := media.Resample(audio, 8000)
	if len(same.Samples) != len(audio.Samples) {
		t.Fatal("expected identity resample to return input unchanged")
	}
}

func TestChecksumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	testsupport.WriteFile(t, path, 1024)

	first, err := media.ChecksumFile(path)
	if err != nil {
		t.Fatalf("ChecksumFile failed: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}

	second, err := media.ChecksumFile(path)
	if err != nil {
		t.Fatalf("ChecksumFile failed: %v", err)
	}
	if first != second {
		t.Fatal("expected deterministic checksum")
	}
}
