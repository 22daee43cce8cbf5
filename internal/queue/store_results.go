package queue

import (
	"context"
	"fmt"
)

// Segment is a timestamped span of transcribed speech.
type Segment struct {
	JobID        int64
	ChunkIndex   int
	StartSeconds float64
	EndSeconds   float64
	Text         string
	Speaker      string
}

// SpeakerStat aggregates speaking time per diarized speaker label.
type SpeakerStat struct {
	JobID        int64
	Label        string
	TotalSeconds float64
	SegmentCount int
}

// DetectedLanguage records one detected language with its confidence and the
// detector that produced it.
type DetectedLanguage struct {
	JobID      int64
	Code       string
	Confidence float64
	Source     string
}

// Translation is the full transcript rendered in another language.
type Translation struct {
	JobID          int64
	TargetLanguage string
	SourceLanguage string
	Text           string
	ModelName      string
}

// ReplaceSegments overwrites the stored segments for a job.
func (s *Store) ReplaceSegments(ctx context.Context, jobID int64, segments []Segment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin segments tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}
	for _, segment := range segments {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO segments (job_id, chunk_index, start_seconds, end_seconds, text, speaker)
             VALUES (?, ?, ?, ?, ?, ?)`,
			jobID,
			segment.ChunkIndex,
			segment.StartSeconds,
			segment.EndSeconds,
			segment.Text,
			nullableString(segment.Speaker),
		); err != nil {
			return fmt.Errorf("insert segment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit segments: %w", err)
	}
	return nil
}

// SegmentsForJob returns the stored segments ordered by chunk then start time.
func (s *Store) SegmentsForJob(ctx context.Context, jobID int64) ([]Segment, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_id, chunk_index, start_seconds, end_seconds, text, COALESCE(speaker, '')
         FROM segments WHERE job_id = ? ORDER BY chunk_index, start_seconds`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var segment Segment
		if err := rows.Scan(
			&segment.JobID,
			&segment.ChunkIndex,
			&segment.StartSeconds,
			&segment.EndSeconds,
			&segment.Text,
			&segment.Speaker,
		); err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}
	return segments, rows.Err()
}

// ReplaceSpeakers overwrites the stored speaker aggregates for a job.
func (s *Store) ReplaceSpeakers(ctx context.Context, jobID int64, speakers []SpeakerStat) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin speakers tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM speakers WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("clear speakers: %w", err)
	}
	for _, speaker := range speakers {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO speakers (job_id, label, total_seconds, segment_count) VALUES (?, ?, ?, ?)`,
			jobID,
			speaker.Label,
			speaker.TotalSeconds,
			speaker.SegmentCount,
		); err != nil {
			return fmt.Errorf("insert speaker: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit speakers: %w", err)
	}
	return nil
}

// SpeakersForJob returns the stored speaker aggregates ordered by label.
func (s *Store) SpeakersForJob(ctx context.Context, jobID int64) ([]SpeakerStat, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_id, label, total_seconds, segment_count FROM speakers WHERE job_id = ? ORDER BY label`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}
	defer rows.Close()

	var speakers []SpeakerStat
	for rows.Next() {
		var speaker SpeakerStat
		if err := rows.Scan(&speaker.JobID, &speaker.Label, &speaker.TotalSeconds, &speaker.SegmentCount); err != nil {
			return nil, err
		}
		speakers = append(speakers, speaker)
	}
	return speakers, rows.Err()
}

// ReplaceDetectedLanguages overwrites the stored language detections for a job.
func (s *Store) ReplaceDetectedLanguages(ctx context.Context, jobID int64, languages []DetectedLanguage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin languages tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM detected_languages WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("clear detected languages: %w", err)
	}
	for _, language := range languages {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO detected_languages (job_id, code, confidence, source) VALUES (?, ?, ?, ?)`,
			jobID,
			language.Code,
			language.Confidence,
			language.Source,
		); err != nil {
			return fmt.Errorf("insert detected language: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit detected languages: %w", err)
	}
	return nil
}

// DetectedLanguagesForJob returns the stored language detections ordered by
// descending confidence.
func (s *Store) DetectedLanguagesForJob(ctx context.Context, jobID int64) ([]DetectedLanguage, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_id, code, confidence, source FROM detected_languages
         WHERE job_id = ? ORDER BY confidence DESC, code`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("query detected languages: %w", err)
	}
	defer rows.Close()

	var languages []DetectedLanguage
	for rows.Next() {
		var language DetectedLanguage
		if err := rows.Scan(&language.JobID, &language.Code, &language.Confidence, &language.Source); err != nil {
			return nil, err
		}
		languages = append(languages, language)
	}
	return languages, rows.Err()
}

// SaveTranslation stores or replaces the translation for one target language.
func (s *Store) SaveTranslation(ctx context.Context, translation Translation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin translation tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM translations WHERE job_id = ? AND target_language = ?`,
		translation.JobID,
		translation.TargetLanguage,
	); err != nil {
		return fmt.Errorf("clear translation: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO translations (job_id, target_language, source_language, text, model_name) VALUES (?, ?, ?, ?, ?)`,
		translation.JobID,
		translation.TargetLanguage,
		nullableString(translation.SourceLanguage),
		translation.Text,
		nullableString(translation.ModelName),
	); err != nil {
		return fmt.Errorf("insert translation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit translation: %w", err)
	}
	return nil
}

// TranslationsForJob returns the stored translations ordered by target language.
func (s *Store) TranslationsForJob(ctx context.Context, jobID int64) ([]Translation, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_id, target_language, COALESCE(source_language, ''), text, COALESCE(model_name, '')
         FROM translations WHERE job_id = ? ORDER BY target_language`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	var translations []Translation
	for rows.Next() {
		var translation Translation
		if err := rows.Scan(
			&translation.JobID,
			&translation.TargetLanguage,
			&translation.SourceLanguage,
			&translation.Text,
			&translation.ModelName,
		); err != nil {
			return nil, err
		}
		translations = append(translations, translation)
	}
	return translations, rows.Err()
}
