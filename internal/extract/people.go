package extract

import (
	"regexp"
	"strings"
	"sync"
)

var (
	possessiveRE = regexp.MustCompile(`\b([A-Z][a-z]+)'s\b`)
	fullNameRE   = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+)(?:\s+([A-Z][a-z]+))?\b`)

	speakerMu    sync.Mutex
	speakerCache = map[string]*regexp.Regexp{}
)

// speakerRE builds the "Name said" pattern from the vocabulary's verb list.
// Compiled patterns are cached per verb list; in practice only the default
// vocabulary and the occasional test vocabulary ever hit this.
func speakerRE(vocab *Vocabulary) *regexp.Regexp {
	if len(vocab.SpeakingVerbs) == 0 {
		return nil
	}
	verbs := strings.Join(vocab.SpeakingVerbs, "|")

	speakerMu.Lock()
	defer speakerMu.Unlock()
	if re, ok := speakerCache[verbs]; ok {
		return re
	}
	re := regexp.MustCompile(`\b([A-Z][a-z]+)\s+(?i:` + verbs + `)\b`)
	speakerCache[verbs] = re
	return re
}

// People extracts person-name candidates from text as a map from display
// name to accumulated count.
//
// Two signals combine: a capitalized word followed by a speaking verb
// (weight 1) or a possessive marker (weight 0.5) yields first-name hits;
// an independent scan finds two- or three-token capitalized sequences as
// full names. When a full name shares its first token with a first-name
// hit, the full name absorbs the first name's count and the bare entry is
// dropped — full names always win for the same identity.
func People(text string, vocab *Vocabulary) map[string]float64 {
	firstNames := speakerHits(text, vocab)
	fullNames := fullNameHits(text, vocab)

	people := make(map[string]float64, len(firstNames)+len(fullNames))
	for name, count := range firstNames {
		people[name] = count
	}

	for full, count := range fullNames {
		first := strings.Fields(full)[0]
		if prior, ok := people[first]; ok {
			people[full] = prior + count
			delete(people, first)
		} else {
			people[full] += count
		}
	}
	return people
}

// speakerHits finds capitalized words adjacent to speaking verbs or
// possessive markers. Possessives score half weight.
func speakerHits(text string, vocab *Vocabulary) map[string]float64 {
	hits := make(map[string]float64)

	if re := speakerRE(vocab); re != nil {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := m[1]
			lower := strings.ToLower(name)
			if vocab.Pronouns[lower] || vocab.CommonWords[lower] {
				continue
			}
			hits[name]++
		}
	}

	for _, m := range possessiveRE.FindAllStringSubmatch(text, -1) {
		name := m[1]
		lower := strings.ToLower(name)
		if vocab.Pronouns[lower] || vocab.CommonWords[lower] {
			continue
		}
		hits[name] += 0.5
	}

	return hits
}

// fullNameHits scans for First [Middle] Last sequences, applying the
// rejection rules before anything is counted.
func fullNameHits(text string, vocab *Vocabulary) map[string]float64 {
	names := make(map[string]float64)

	for _, m := range fullNameRE.FindAllStringSubmatch(text, -1) {
		first, last, middle := m[1], m[2], ""
		if m[3] != "" {
			middle, last = m[2], m[3]
		}
		fl, ll := strings.ToLower(first), strings.ToLower(last)

		if vocab.CommonWords[fl] || vocab.CommonWords[ll] {
			continue
		}
		if vocab.Pronouns[fl] || vocab.Pronouns[ll] {
			continue
		}
		if vocab.InvalidNameEndings[ll] {
			continue
		}
		if vocab.RoleWords[fl] || vocab.RoleWords[ll] {
			continue
		}
		if vocab.InvalidNameStarts[fl] {
			continue
		}
		if vocab.KnownFirstNames[fl] && vocab.KnownFirstNames[ll] {
			continue
		}

		full := first + " " + last
		if middle != "" {
			ml := strings.ToLower(middle)
			// A role or filler middle token degrades to First Last rather
			// than rejecting the whole match.
			if !vocab.CommonWords[ml] && !vocab.RoleWords[ml] && !vocab.InvalidNameEndings[ml] {
				full = first + " " + middle + " " + last
			}
		}

		if !partsWithinWindow(full, vocab) {
			continue
		}
		names[full]++
	}

	return names
}

func partsWithinWindow(name string, vocab *Vocabulary) bool {
	min, max := vocab.MinNamePartLen, vocab.MaxNamePartLen
	if min == 0 {
		min = 2
	}
	if max == 0 {
		max = 15
	}
	for _, part := range strings.Fields(name) {
		if len(part) < min || len(part) > max {
			return false
		}
	}
	return true
}
