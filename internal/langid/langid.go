package langid

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Detection is the outcome of identifying the language of a text.
type Detection struct {
	Code       string
	Name       string
	Confidence float64
}

// Detector identifies the dominant language of a text.
type Detector interface {
	Detect(text string) (Detection, error)
}

// ScriptDetector is the built-in detector. It classifies text by the
// dominant Unicode script and maps the result to an ISO 639-3 code; text in
// Latin script defaults to English with reduced confidence since scripts
// alone cannot separate Latin-written languages.
type ScriptDetector struct{}

// NewScriptDetector returns the built-in script-based detector.
func NewScriptDetector() *ScriptDetector {
	return &ScriptDetector{}
}

type scriptRule struct {
	ranges     []*unicode.RangeTable
	code       string
	confidence float64
}

var scriptRules = []scriptRule{
	{ranges: []*unicode.RangeTable{unicode.Han}, code: "zho", confidence: 0.85},
	{ranges: []*unicode.RangeTable{unicode.Hiragana, unicode.Katakana}, code: "jpn", confidence: 0.85},
	{ranges: []*unicode.RangeTable{unicode.Hangul}, code: "kor", confidence: 0.85},
	{ranges: []*unicode.RangeTable{unicode.Arabic}, code: "ara", confidence: 0.85},
	{ranges: []*unicode.RangeTable{unicode.Cyrillic}, code: "rus", confidence: 0.80},
	{ranges: []*unicode.RangeTable{unicode.Thai}, code: "tha", confidence: 0.85},
	{ranges: []*unicode.RangeTable{unicode.Devanagari}, code: "hin", confidence: 0.85},
	{ranges: []*unicode.RangeTable{unicode.Hebrew}, code: "heb", confidence: 0.85},
	{ranges: []*unicode.RangeTable{unicode.Greek}, code: "ell", confidence: 0.85},
}

// dominanceRatio is the fraction of non-space characters a script must
// reach to claim the text.
const dominanceRatio = 0.3

// Detect implements Detector.
func (d *ScriptDetector) Detect(text string) (Detection, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Detection{Code: "eng", Name: Name("eng"), Confidence: 0.5}, nil
	}

	total := 0
	counts := make([]int, len(scriptRules))
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		for i, rule := range scriptRules {
			for _, table := range rule.ranges {
				if unicode.Is(table, r) {
					counts[i]++
					break
				}
			}
		}
	}
	if total == 0 {
		return Detection{Code: "eng", Name: Name("eng"), Confidence: 0.5}, nil
	}

	for i, rule := range scriptRules {
		if float64(counts[i])/float64(total) > dominanceRatio {
			return Detection{Code: rule.code, Name: Name(rule.code), Confidence: rule.confidence}, nil
		}
	}
	return Detection{Code: "eng", Name: Name("eng"), Confidence: 0.70}, nil
}

// iso1To3 maps the common ISO 639-1 codes accepted as language hints onto
// the ISO 639-3 codes used internally.
var iso1To3 = map[string]string{
	"en": "eng", "es": "spa", "fr": "fra", "de": "deu", "it": "ita",
	"pt": "por", "ru": "rus", "ja": "jpn", "ko": "kor", "zh": "zho",
	"ar": "ara", "hi": "hin", "tr": "tur", "vi": "vie", "pl": "pol",
	"nl": "nld", "sv": "swe", "id": "ind", "th": "tha", "uk": "ukr",
	"cs": "ces", "da": "dan", "fi": "fin", "el": "ell", "he": "heb",
	"hu": "hun", "no": "nor", "ro": "ron", "sk": "slk", "bg": "bul",
	"hr": "hrv", "sr": "srp", "ca": "cat", "lt": "lit", "lv": "lav",
	"et": "est", "sl": "slv", "fa": "fas", "ur": "urd", "bn": "ben",
	"ta": "tam", "te": "tel", "mr": "mar", "gu": "guj", "kn": "kan",
	"ml": "mal", "pa": "pan", "sw": "swa", "af": "afr",
}

// Normalize converts a user-supplied language code (ISO 639-1 or 639-3,
// any case) into the canonical lowercase ISO 639-3 form. Unknown codes are
// returned lowercased as-is.
func Normalize(code string) string {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return ""
	}
	// Strip a region subtag such as zh-cn.
	if idx := strings.IndexAny(trimmed, "-_"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	if mapped, ok := iso1To3[trimmed]; ok {
		return mapped
	}
	return trimmed
}

// Name resolves a human-readable English name for an ISO 639 code. Unknown
// codes come back uppercased.
func Name(code string) string {
	normalized := Normalize(code)
	if normalized == "" {
		return ""
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return strings.ToUpper(normalized)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(normalized)
	}
	return name
}
