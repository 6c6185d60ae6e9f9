package extract

import (
	"regexp"
	"strings"
	"sync"
)

var (
	catalogMu     sync.Mutex
	phraseCache   = map[string][]*regexp.Regexp{}
	productCache  = map[string][]compiledProduct{}
	titleSplitRE  = regexp.MustCompile(`\s+`)
)

type compiledProduct struct {
	re      *regexp.Regexp
	display string
}

func phraseRegexps(vocab *Vocabulary) []*regexp.Regexp {
	key := strings.Join(vocab.PhrasePatterns, "\x00")
	catalogMu.Lock()
	defer catalogMu.Unlock()
	if cached, ok := phraseCache[key]; ok {
		return cached
	}
	compiled := make([]*regexp.Regexp, 0, len(vocab.PhrasePatterns))
	for _, expr := range vocab.PhrasePatterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)\b(`+expr+`)\b`))
	}
	phraseCache[key] = compiled
	return compiled
}

func productRegexps(vocab *Vocabulary) []compiledProduct {
	var sb strings.Builder
	for _, p := range vocab.Products {
		sb.WriteString(p.Literal)
		sb.WriteByte('\x00')
	}
	key := sb.String()

	catalogMu.Lock()
	defer catalogMu.Unlock()
	if cached, ok := productCache[key]; ok {
		return cached
	}
	compiled := make([]compiledProduct, 0, len(vocab.Products))
	for _, p := range vocab.Products {
		compiled = append(compiled, compiledProduct{
			re:      regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p.Literal) + `\b`),
			display: p.Display,
		})
	}
	productCache[key] = compiled
	return compiled
}

// Phrases matches the vocabulary's multi-word technical phrase catalogue
// case-insensitively and counts matches under a title-cased display form.
func Phrases(text string, vocab *Vocabulary) map[string]int {
	phrases := make(map[string]int)
	for _, re := range phraseRegexps(vocab) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			phrases[titleCase(m[1])]++
		}
	}
	return phrases
}

// Products matches the product-name catalogue case-insensitively and counts
// occurrences under each product's canonical display form.
func Products(text string, vocab *Vocabulary) map[string]int {
	products := make(map[string]int)
	for _, p := range productRegexps(vocab) {
		if n := len(p.re.FindAllStringIndex(text, -1)); n > 0 {
			products[p.display] += n
		}
	}
	return products
}

// titleCase capitalizes the first letter of each whitespace-separated word
// and lowercases the rest, so "data LAKEHOUSE" and "Data Lakehouse" count
// together.
func titleCase(s string) string {
	words := titleSplitRE.Split(strings.TrimSpace(s), -1)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
