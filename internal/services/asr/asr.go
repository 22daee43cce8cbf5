// Package asr adapts external speech recognition tooling behind the
// Transcriber capability interface. The command adapter shells out to an
// inference wrapper (Omnilingual ASR by default) and post-processes its
// output to break repetition loops that LLM decoders occasionally fall into.
package asr

import "context"

// Transcriber converts chunked audio files into text.
type Transcriber interface {
	// TranscribeBatch transcribes all paths in one model call and returns
	// one text per input path, in order. A batch-level failure returns an
	// error with no partial results.
	TranscribeBatch(ctx context.Context, audioPaths []string, languageHint string) ([]string, error)
	// TranscribeOne transcribes a single file; used when a batch call has
	// degraded to sequential processing.
	TranscribeOne(ctx context.Context, audioPath string, languageHint string) (string, error)
}
