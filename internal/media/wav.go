package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// Audio holds decoded mono PCM samples normalized to [-1, 1].
type Audio struct {
	SampleRate int
	Samples    []float64
}

// DurationSeconds returns the audio length in seconds.
func (a Audio) DurationSeconds() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Slice returns the samples covering [startSec, endSec), clamped to the
// audio bounds.
func (a Audio) Slice(startSec, endSec float64) Audio {
	if a.SampleRate <= 0 {
		return Audio{SampleRate: a.SampleRate}
	}
	start := int(math.Round(startSec * float64(a.SampleRate)))
	end := int(math.Round(endSec * float64(a.SampleRate)))
	if start < 0 {
		start = 0
	}
	if end > len(a.Samples) {
		end = len(a.Samples)
	}
	if start >= end {
		return Audio{SampleRate: a.SampleRate}
	}
	return Audio{SampleRate: a.SampleRate, Samples: a.Samples[start:end]}
}

// ReadWAV decodes a 16-bit PCM WAV file into mono samples. Multi-channel
// input is averaged down to mono.
func ReadWAV(path string) (Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Audio{}, fmt.Errorf("read wav: %w", err)
	}
	return DecodeWAV(data)
}

// DecodeWAV decodes 16-bit PCM WAV bytes into mono samples.
func DecodeWAV(data []byte) (Audio, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Audio{}, errors.New("decode wav: not a RIFF/WAVE file")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcm           []byte
		haveFormat    bool
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			chunkLen = len(data) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return Audio{}, errors.New("decode wav: short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return Audio{}, fmt.Errorf("decode wav: unsupported format code %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFormat = true
		case "data":
			pcm = data[body : body+chunkLen]
		}
		// Chunks are word aligned.
		offset = body + chunkLen
		if chunkLen%2 == 1 {
			offset++
		}
	}

	if !haveFormat {
		return Audio{}, errors.New("decode wav: missing fmt chunk")
	}
	if pcm == nil {
		return Audio{}, errors.New("decode wav: missing data chunk")
	}
	if bitsPerSample != 16 {
		return Audio{}, fmt.Errorf("decode wav: unsupported bit depth %d (want 16)", bitsPerSample)
	}
	if channels <= 0 {
		return Audio{}, errors.New("decode wav: invalid channel count")
	}

	frameSize := channels * 2
	frames := len(pcm) / frameSize
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			raw := int16(binary.LittleEndian.Uint16(pcm[i*frameSize+c*2 : i*frameSize+c*2+2]))
			sum += float64(raw) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}

	return Audio{SampleRate: sampleRate, Samples: samples}, nil
}

// WriteWAV encodes mono samples as a 16-bit PCM WAV file at path.
func WriteWAV(path string, audio Audio) error {
	if audio.SampleRate <= 0 {
		return errors.New("write wav: invalid sample rate")
	}

	dataLen := len(audio.Samples) * 2
	buf := make([]byte, 0, 44+dataLen)
	buf = append(buf, []byte("RIFF")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+dataLen))
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1)
	buf = binary.LittleEndian.AppendUint16(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(audio.SampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(audio.SampleRate*2))
	buf = binary.LittleEndian.AppendUint16(buf, 2)
	buf = binary.LittleEndian.AppendUint16(buf, 16)
	buf = append(buf, []byte("data")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataLen))

	for _, sample := range audio.Samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(math.Round(sample*32767))))
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// Resample converts audio to the requested sample rate using linear
// interpolation. Returns the input unchanged when rates already match.
func Resample(audio Audio, targetRate int) Audio {
	if targetRate <= 0 || audio.SampleRate <= 0 || audio.SampleRate == targetRate || len(audio.Samples) == 0 {
		return audio
	}

	ratio := float64(audio.SampleRate) / float64(targetRate)
	outLen := int(math.Round(float64(len(audio.Samples)) / ratio))
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(audio.Samples)-1 {
			out[i] = audio.Samples[len(audio.Samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = audio.Samples[idx]*(1-frac) + audio.Samples[idx+1]*frac
	}
	return Audio{SampleRate: targetRate, Samples: out}
}
