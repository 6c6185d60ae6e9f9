package extract

import (
	"strings"
)

// GovernorConfig controls candidate filtering thresholds.
//
// Three filtering strata exist: permissive raw extraction, this per-pass
// validity check, and the corpus-wide confidence gate (internal/pipeline's
// prune stage). Heuristic extraction over free text produces many false
// positives that only resolve with repeated co-occurrence evidence, so
// the thresholds differ sharply between a single-document pass and the
// whole-corpus population pass.
type GovernorConfig struct {
	// MinPersonMentions is the occurrence floor for person candidates.
	// Per-document default: 2. Corpus population pass: 50.
	MinPersonMentions float64

	// MinTermMentions is the occurrence floor for acronym/phrase/product
	// candidates. Per-document default: 2. Corpus population pass: 20.
	MinTermMentions float64

	// KnownPeople are display names whose mention count is not questioned.
	// The structural person checks still apply unless AdmitKnownPeople is
	// set.
	KnownPeople map[string]bool

	// AdmitKnownPeople admits KnownPeople entries outright, skipping the
	// structural checks too (population pass only).
	AdmitKnownPeople bool

	// AdmitKnownTechTerms admits terms on the vocabulary's allow-list
	// regardless of count (population pass only).
	AdmitKnownTechTerms bool
}

// DefaultGovernorConfig returns the per-document (lenient) thresholds.
func DefaultGovernorConfig() GovernorConfig {
	return GovernorConfig{
		MinPersonMentions: 2,
		MinTermMentions:   2,
	}
}

// PopulationGovernorConfig returns the strict thresholds used when seeding
// the knowledge base from an aggregate corpus rather than one document.
func PopulationGovernorConfig() GovernorConfig {
	return GovernorConfig{
		MinPersonMentions:   50,
		MinTermMentions:     20,
		AdmitKnownPeople:    true,
		AdmitKnownTechTerms: true,
	}
}

// Governor decides which candidates are real. It applies structural
// validity checks per family, then the configured occurrence thresholds.
type Governor struct {
	config GovernorConfig
	vocab  *Vocabulary
}

// NewGovernor creates a Governor with the given thresholds and vocabulary.
func NewGovernor(cfg GovernorConfig, vocab *Vocabulary) *Governor {
	return &Governor{config: cfg, vocab: vocab}
}

// Accept reports whether a candidate passes filtering for its family.
func (g *Governor) Accept(c Candidate) bool {
	switch c.Family {
	case FamilyPerson:
		if g.config.AdmitKnownPeople && g.config.KnownPeople[c.Text] {
			return true
		}
		if !g.ValidPerson(c.Text) {
			return false
		}
		if g.config.KnownPeople[c.Text] {
			return true
		}
		return c.Count >= g.config.MinPersonMentions
	default:
		if g.config.AdmitKnownTechTerms && g.vocab.KnownTechTerms[normalizeTerm(c.Text)] {
			return true
		}
		if !g.ValidTerm(c.Text) {
			return false
		}
		return c.Count >= g.config.MinTermMentions
	}
}

// Apply filters a candidate list down to the accepted ones.
func (g *Governor) Apply(candidates []Candidate) []Candidate {
	accepted := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if g.Accept(c) {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// ValidPerson applies the structural checks for a person name: at least
// two space-separated tokens, every token at least two characters and
// uppercase-initial, no token on the common-word or organization/technology
// lists.
func (g *Governor) ValidPerson(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 4 {
		return false
	}
	if g.vocab.CommonWords[strings.ToLower(name)] {
		return false
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		if len(part) < 2 {
			return false
		}
		first := rune(part[0])
		if first < 'A' || first > 'Z' {
			return false
		}
		lower := strings.ToLower(part)
		if g.vocab.OrgTechNames[lower] {
			return false
		}
	}
	if g.vocab.CommonWords[strings.ToLower(parts[0])] || g.vocab.Pronouns[strings.ToLower(parts[0])] {
		return false
	}
	return true
}

// ValidTerm applies the structural checks for an acronym or phrase: not a
// common word, and at least three significant (non-hyphen, non-space)
// characters.
func (g *Governor) ValidTerm(term string) bool {
	term = strings.TrimSpace(term)
	if len(term) < 3 {
		return false
	}
	if g.vocab.CommonWords[strings.ToLower(term)] {
		return false
	}
	significant := strings.NewReplacer("-", "", " ", "").Replace(term)
	return len(significant) >= 3
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(term), " ", "-"))
}
