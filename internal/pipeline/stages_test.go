package pipeline

import (
	"testing"

	"quill/internal/testsupport"
	"quill/internal/vad"
)

func TestDefaultCapabilitiesUsesCommandVAD(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.VAD.Command = "silero-vad"

	caps := DefaultCapabilities(cfg)
	if _, ok := caps.VAD.(*vad.CommandDetector); !ok {
		t.Fatalf("VAD detector = %T, want command-backed", caps.VAD)
	}
}

func TestDefaultCapabilitiesFallsBackToEnergyVAD(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.VAD.Command = "  "

	caps := DefaultCapabilities(cfg)
	if _, ok := caps.VAD.(*vad.EnergyDetector); !ok {
		t.Fatalf("VAD detector = %T, want in-process energy detector", caps.VAD)
	}
	if caps.Diarizer != nil {
		t.Fatal("diarizer must stay nil while diarization is disabled")
	}
	if caps.Translator != nil {
		t.Fatal("translator must stay nil while translation is disabled")
	}
}

func TestDefaultCapabilitiesOptionalAdapters(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithDiarization(true),
		testsupport.WithTranslation("spa_Latn"))

	caps := DefaultCapabilities(cfg)
	if caps.Diarizer == nil {
		t.Fatal("expected a diarizer when diarization is enabled")
	}
	if caps.Translator == nil {
		t.Fatal("expected a translator when translation is enabled")
	}
}
