package pipeline

import (
	"strings"

	"quill/internal/chunking"
	"quill/internal/config"
	"quill/internal/langid"
	"quill/internal/media"
	"quill/internal/queue"
	"quill/internal/services/asr"
	"quill/internal/services/diarize"
	"quill/internal/services/translate"
	"quill/internal/stage"
	"quill/internal/vad"
	"quill/internal/workflow"
)

// Capabilities bundles the inference adapters the pipeline depends on.
// Tests substitute fakes; production wiring comes from DefaultCapabilities.
type Capabilities struct {
	VAD         vad.Detector
	Transcriber asr.Transcriber
	Diarizer    diarize.Diarizer
	Translator  translate.Translator
	Detector    langid.Detector
}

// DefaultCapabilities builds the command-backed adapters from config. VAD
// falls back to the in-process energy detector when no external command is
// configured.
func DefaultCapabilities(cfg *config.Config) Capabilities {
	caps := Capabilities{
		Transcriber: asr.NewCommandTranscriber(cfg.ASR),
		Detector:    langid.NewScriptDetector(),
	}
	if strings.TrimSpace(cfg.VAD.Command) != "" {
		caps.VAD = vad.NewCommandDetector(cfg.VAD, cfg.ChunksDir())
	} else {
		caps.VAD = vad.NewEnergyDetector(cfg.VAD)
	}
	if cfg.Diarization.Enabled {
		caps.Diarizer = diarize.NewCommandDiarizer(cfg.Diarization)
	}
	if cfg.Translation.Enabled {
		caps.Translator = translate.NewCommandTranslator(cfg.Translation)
	}
	return caps
}

// Stages assembles the ordered stage sequence the workflow manager runs.
func Stages(cfg *config.Config, store *queue.Store, caps Capabilities) []workflow.Stage {
	segmenter := vad.NewSegmenter(caps.VAD, media.TargetSampleRate)
	planner := chunking.NewPlanner(cfg.Chunking)

	diarizeStage := NewDiarize(cfg, caps.Diarizer)
	translateStage := NewTranslate(cfg, caps.Translator)

	return []workflow.Stage{
		{Name: "Load Audio", Handler: NewLoadAudio(cfg)},
		{Name: "Chunk", Handler: NewSegmentChunk(cfg, segmenter, planner)},
		{
			Name:    "Diarize",
			Handler: diarizeStage,
			Skip:    func(st *stage.State) bool { return !diarizeStage.Enabled(st) },
		},
		{Name: "Transcribe", Handler: NewTranscribe(cfg, caps.Transcriber)},
		{Name: "Detect Language", Handler: NewDetectLanguage(caps.Detector)},
		{
			Name:    "Translate",
			Handler: translateStage,
			Skip:    func(st *stage.State) bool { return !translateStage.Enabled(st) },
		},
		{Name: "Finalize", Handler: NewFinalize(cfg, store)},
	}
}
