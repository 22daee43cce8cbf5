package chunking

import (
	"fmt"
	"os"
	"path/filepath"

	"quill/internal/media"
)

// WriteChunks materializes each chunk's audio as a WAV file under dir,
// named chunk_0000.wav, chunk_0001.wav and so on. It returns the written
// paths in chunk order.
func WriteChunks(dir string, chunks []Chunk) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	paths := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		path := filepath.Join(dir, fmt.Sprintf("chunk_%04d.wav", chunk.Index))
		if err := media.WriteWAV(path, chunk.Audio); err != nil {
			return nil, fmt.Errorf("write chunk %d: %w", chunk.Index, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// RemoveChunks deletes the per-job chunk directory and its contents.
func RemoveChunks(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove chunk dir: %w", err)
	}
	return nil
}
