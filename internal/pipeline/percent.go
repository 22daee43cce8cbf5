package pipeline

// Checkpoint percentages for each stage. Transcription owns the widest
// band since it dominates wall-clock time.
const (
	percentLoadAudio       = 10.0
	percentChunked         = 25.0
	percentDiarized        = 35.0
	percentTranscribeStart = 40.0
	percentTranscribeDone  = 90.0
	percentLanguage        = 95.0
	percentTranslateStart  = 96.0
	percentTranslateDone   = 99.0
	percentComplete        = 100.0
)
