// Package translate adapts external translation tooling behind the
// Translator capability interface. Language codes are carried internally as
// ISO 639-3 and converted to NLLB-style script-tagged codes at the tool
// boundary.
package translate

import "context"

// Translator renders texts from one language into another.
type Translator interface {
	// TranslateBatch translates all texts in one model call and returns one
	// output per input, in order.
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
}

// nllbCodes maps ISO 639-3 codes onto NLLB-200 language tokens.
var nllbCodes = map[string]string{
	"eng": "eng_Latn",
	"spa": "spa_Latn",
	"fra": "fra_Latn",
	"deu": "deu_Latn",
	"ita": "ita_Latn",
	"por": "por_Latn",
	"rus": "rus_Cyrl",
	"jpn": "jpn_Jpan",
	"kor": "kor_Hang",
	"zho": "zho_Hans",
	"ara": "arb_Arab",
	"hin": "hin_Deva",
	"tur": "tur_Latn",
	"vie": "vie_Latn",
	"pol": "pol_Latn",
	"nld": "nld_Latn",
	"swe": "swe_Latn",
	"ind": "ind_Latn",
	"tha": "tha_Thai",
	"ukr": "ukr_Cyrl",
}

// NLLBCode converts an ISO 639-3 code into the NLLB token the model
// expects. Unknown codes default to Latin script.
func NLLBCode(iso3 string) string {
	if code, ok := nllbCodes[iso3]; ok {
		return code
	}
	return iso3 + "_Latn"
}
