package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// TargetSampleRate is the sample rate all audio is normalized to before
// voice activity detection and transcription.
const TargetSampleRate = 16000

// ConvertToMono16k transcodes any supported audio container into a mono
// 16kHz 16-bit PCM WAV file at dest.
func ConvertToMono16k(ctx context.Context, ffmpegBinary, source, dest string) error {
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", TargetSampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg convert: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ChecksumFile computes the SHA-256 digest of a file as lowercase hex.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
