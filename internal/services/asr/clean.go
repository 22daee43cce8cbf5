package asr

import "strings"

// maxConsecutiveRepeats is how many times a phrase may appear back to back
// before the surplus is trimmed.
const maxConsecutiveRepeats = 3

// CleanRepetitions collapses runaway phrase loops in decoder output. It
// scans for consecutively repeated word patterns of two to ten words and
// keeps at most three occurrences of each.
func CleanRepetitions(text string) string {
	if len(text) < 10 {
		return text
	}
	words := strings.Fields(text)
	if len(words) < 6 {
		return text
	}

	maxPattern := len(words) / 3
	if maxPattern > 10 {
		maxPattern = 10
	}
	for patternLen := 2; patternLen <= maxPattern; patternLen++ {
		words = collapsePattern(words, patternLen)
	}
	return strings.Join(words, " ")
}

func collapsePattern(words []string, patternLen int) []string {
	out := make([]string, 0, len(words))
	i := 0
	for i < len(words) {
		if i+patternLen > len(words) {
			out = append(out, words[i:]...)
			break
		}
		pattern := words[i : i+patternLen]

		repeats := 1
		j := i + patternLen
		for j+patternLen <= len(words) && equalWords(words[j:j+patternLen], pattern) {
			repeats++
			j += patternLen
		}

		if repeats > maxConsecutiveRepeats {
			for r := 0; r < maxConsecutiveRepeats; r++ {
				out = append(out, pattern...)
			}
			i = j
			continue
		}
		out = append(out, words[i])
		i++
	}
	return out
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
