package langid_test

import (
	"testing"

	"quill/internal/langid"
)

func TestScriptDetector(t *testing.T) {
	cases := []struct {
		name string
		text string
		code string
	}{
		{"empty defaults to english", "", "eng"},
		{"latin text", "the quick brown fox jumps over the lazy dog", "eng"},
		{"chinese", "今天天气很好我们去公园散步吧", "zho"},
		{"japanese kana", "こんにちは、元気ですか。またあした会いましょう", "jpn"},
		{"korean", "안녕하세요 오늘 날씨가 좋네요", "kor"},
		{"arabic", "مرحبا كيف حالك اليوم", "ara"},
		{"cyrillic", "сегодня хорошая погода, пойдем гулять", "rus"},
		{"thai", "สวัสดีครับ วันนี้อากาศดีมาก", "tha"},
		{"hebrew", "שלום מה שלומך היום", "heb"},
		{"greek", "καλημέρα τι κάνεις σήμερα", "ell"},
	}

	detector := langid.NewScriptDetector()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := detector.Detect(tc.text)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if got.Code != tc.code {
				t.Fatalf("Detect(%q) = %q, want %q", tc.text, got.Code, tc.code)
			}
			if got.Confidence <= 0 || got.Confidence > 1 {
				t.Fatalf("confidence out of range: %v", got.Confidence)
			}
			if got.Name == "" {
				t.Fatal("expected a language name")
			}
		})
	}
}

func TestDetectMixedLatinMajority(t *testing.T) {
	detector := langid.NewScriptDetector()
	// A few foreign characters inside mostly-Latin text stay English.
	got, err := detector.Detect("the meeting 会議 starts at nine tomorrow morning as planned")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if got.Code != "eng" {
		t.Fatalf("expected eng for Latin-majority text, got %q", got.Code)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"en", "eng"},
		{"EN", "eng"},
		{"eng", "eng"},
		{"zh-CN", "zho"},
		{"pt_BR", "por"},
		{"fra", "fra"},
		{"", ""},
		{"xx", "xx"},
	}
	for _, tc := range cases {
		if got := langid.Normalize(tc.input); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestName(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"eng", "English"},
		{"fra", "French"},
		{"zho", "Chinese"},
		{"deu", "German"},
	}
	for _, tc := range cases {
		if got := langid.Name(tc.code); got != tc.want {
			t.Fatalf("Name(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
