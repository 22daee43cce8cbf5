package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, uuid, source_path, processed_path, title, checksum, status, error_message, created_at, updated_at, started_at, completed_at, progress_stage, progress_percent, progress_message, model_name, language_hint, enable_diarization, enable_translation, target_language, chunk_seconds, duration_seconds, notes_json, cancel_requested, last_heartbeat"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		uuidStr         string
		sourcePath      string
		processedPath   sql.NullString
		title           sql.NullString
		checksum        sql.NullString
		statusStr       string
		errorMessage    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		startedRaw      sql.NullString
		completedRaw    sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		modelName       sql.NullString
		languageHint    sql.NullString
		enableDiarize   sql.NullInt64
		enableTranslate sql.NullInt64
		targetLanguage  sql.NullString
		chunkSeconds    sql.NullFloat64
		durationSeconds sql.NullFloat64
		notesJSON       sql.NullString
		cancelRequested sql.NullInt64
		heartbeatRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&uuidStr,
		&sourcePath,
		&processedPath,
		&title,
		&checksum,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&completedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&modelName,
		&languageHint,
		&enableDiarize,
		&enableTranslate,
		&targetLanguage,
		&chunkSeconds,
		&durationSeconds,
		&notesJSON,
		&cancelRequested,
		&heartbeatRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:                id,
		UUID:              uuidStr,
		SourcePath:        sourcePath,
		ProcessedPath:     processedPath.String,
		Title:             title.String,
		Checksum:          checksum.String,
		Status:            Status(statusStr),
		ErrorMessage:      errorMessage.String,
		ProgressStage:     progressStage.String,
		ProgressPercent:   progressPercent.Float64,
		ProgressMessage:   progressMessage.String,
		ModelName:         modelName.String,
		LanguageHint:      languageHint.String,
		EnableDiarization: enableDiarize.Int64 != 0,
		EnableTranslation: enableTranslate.Int64 != 0,
		TargetLanguage:    targetLanguage.String,
		ChunkSeconds:      chunkSeconds.Float64,
		DurationSeconds:   durationSeconds.Float64,
		NotesJSON:         notesJSON.String,
		CancelRequested:   cancelRequested.Int64 != 0,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	if heartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(heartbeatRaw.String); err == nil {
			job.LastHeartbeat = &heartbeat
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
