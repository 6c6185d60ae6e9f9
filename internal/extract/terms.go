package extract

import (
	"regexp"
	"strings"
)

var (
	acronymRE    = regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,5})\b`)
	definitionRE = regexp.MustCompile(`\b([A-Z]{2,6})\s*\(([^)]+)\)`)
	versionishRE = regexp.MustCompile(`^v?\d+`)
	numericRE    = regexp.MustCompile(`^[\d.\-/]+$`)
	allDigitsRE  = regexp.MustCompile(`^[0-9]+$`)
)

// codeChars in a definition mean it is code, not prose.
const codeChars = "={}[]<>/\\"

// Acronyms extracts runs of 2–6 uppercase alphanumeric characters with
// their raw occurrence counts. Known false positives (time zones, months,
// roman numerals, version-like tokens, ambiguous two-letter words) are
// skipped before counting.
func Acronyms(text string, vocab *Vocabulary) map[string]int {
	acronyms := make(map[string]int)
	for _, m := range acronymRE.FindAllStringSubmatch(text, -1) {
		token := m[1]
		if vocab.AcronymFalsePositives[token] {
			continue
		}
		if len(token) < 2 || allDigitsRE.MatchString(token) {
			continue
		}
		acronyms[token]++
	}
	return acronyms
}

// Definitions captures explicit `ACRONYM (Expanded Definition)` pairs.
// A definition is accepted when it is 5–100 characters, does not look like
// a version number or bare numeric string, does not start lowercase,
// contains no code-like punctuation, and reads like words (contains a space
// or starts with an uppercase letter). The first definition seen for an
// acronym wins.
func Definitions(text string, vocab *Vocabulary) map[string]string {
	defs := make(map[string]string)
	for _, m := range definitionRE.FindAllStringSubmatch(text, -1) {
		acronym := m[1]
		definition := strings.TrimSpace(m[2])

		if len(definition) < 5 || len(definition) > 100 {
			continue
		}
		if versionishRE.MatchString(definition) || numericRE.MatchString(definition) {
			continue
		}
		first := rune(definition[0])
		if first >= 'a' && first <= 'z' {
			continue
		}
		if strings.ContainsAny(definition, codeChars) {
			continue
		}
		if vocab.AcronymFalsePositives[acronym] {
			continue
		}
		if !strings.Contains(definition, " ") && !(first >= 'A' && first <= 'Z') {
			continue
		}
		if _, exists := defs[acronym]; !exists {
			defs[acronym] = definition
		}
	}
	return defs
}
