// Package media wraps the external ffmpeg/ffprobe tools and provides WAV
// decoding helpers for the transcription pipeline. Submitted audio is probed
// for duration and stream layout, converted to mono 16kHz PCM, and decoded
// into normalized float samples for voice activity detection and chunking.
package media
