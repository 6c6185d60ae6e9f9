package extract

import "regexp"

// Family classifies a candidate by which extractor produced it.
type Family string

const (
	FamilyPerson  Family = "person"
	FamilyAcronym Family = "acronym"
	FamilyPhrase  Family = "phrase"
	FamilyProduct Family = "product"
)

// Candidate is one unvalidated extraction hit: a surface form, the family
// it belongs to, its raw occurrence count within the document, and — for
// acronyms with an adjacent explicit expansion — a definition. Candidates
// are ephemeral: the Governor consumes them immediately, and nothing
// persists them directly.
type Candidate struct {
	Text       string
	Family     Family
	Count      float64
	Definition string
}

// Result bundles everything one extraction pass found in a document.
type Result struct {
	People   map[string]float64
	Acronyms map[string]int
	Phrases  map[string]int
	Products map[string]int
	Defs     map[string]string
	Tasks    []string
}

// Extract runs all four extractors plus the task-line scan over the same
// text. The extractors share no mutable state and their relative order is
// irrelevant.
func Extract(text string, vocab *Vocabulary) *Result {
	return &Result{
		People:   People(text, vocab),
		Acronyms: Acronyms(text, vocab),
		Phrases:  Phrases(text, vocab),
		Products: Products(text, vocab),
		Defs:     Definitions(text, vocab),
		Tasks:    Tasks(text),
	}
}

// Candidates flattens a Result into the candidate list the Governor
// filters. Acronym candidates carry their captured definition when one was
// found.
func (r *Result) Candidates() []Candidate {
	var out []Candidate
	for name, count := range r.People {
		out = append(out, Candidate{Text: name, Family: FamilyPerson, Count: count})
	}
	for acronym, count := range r.Acronyms {
		out = append(out, Candidate{
			Text:       acronym,
			Family:     FamilyAcronym,
			Count:      float64(count),
			Definition: r.Defs[acronym],
		})
	}
	for phrase, count := range r.Phrases {
		out = append(out, Candidate{Text: phrase, Family: FamilyPhrase, Count: float64(count)})
	}
	for product, count := range r.Products {
		out = append(out, Candidate{Text: product, Family: FamilyProduct, Count: float64(count)})
	}
	return out
}

var taskLineRE = regexp.MustCompile(`(?im)^.*?(?:(?:TODO|Action Item|Task|Follow[- ]up):\s*(.+)|-\s*\[\s*\]\s*(.+))$`)

// Tasks scans for task-looking lines: "TODO:", "Action Item:", "Task:",
// "Follow-up:" prefixes and unchecked markdown checkboxes.
func Tasks(text string) []string {
	var tasks []string
	for _, m := range taskLineRE.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			tasks = append(tasks, m[1])
		} else if m[2] != "" {
			tasks = append(tasks, m[2])
		}
	}
	return tasks
}
