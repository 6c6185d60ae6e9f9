// Package classify identifies where a raw document came from.
//
// Classification is a single-pass, stateless scoring function: each known
// source type carries a set of signal patterns, and a type's score is the
// number of distinct patterns present anywhere in the text. No pattern is
// counted more than once per document, so a transcript full of timestamps
// doesn't outscore one that also has speaker labels.
package classify

import (
	"regexp"
	"strings"
)

// SourceType labels the detected origin format of a document.
type SourceType string

const (
	SourceTranscript SourceType = "transcript"
	SourceChat       SourceType = "chat"
	SourceTicket     SourceType = "ticket"
	SourceEmail      SourceType = "email"
	SourceMeeting    SourceType = "meeting"
	SourceWiki       SourceType = "wiki"
	SourceNotes      SourceType = "notes" // fallback when nothing matches
)

// Confidence buckets the classifier's score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// signalSet is the pattern collection for one source type. Patterns are
// matched case-insensitively against the full document text; literals and
// regexes score identically (presence, not match count).
type signalSet struct {
	source   SourceType
	patterns []*regexp.Regexp
}

func signals(source SourceType, exprs ...string) signalSet {
	set := signalSet{source: source}
	for _, expr := range exprs {
		set.patterns = append(set.patterns, regexp.MustCompile(expr))
	}
	return set
}

// signalSets is declaration-ordered; ties between equal scores resolve to
// the earlier entry. The order is deterministic but otherwise arbitrary.
var signalSets = []signalSet{
	signals(SourceTranscript,
		`\d{2}:\d{2}:\d{2}`,
		`(?m)^\w+\s+\w+:\s`,
		`(?i)you're on mute`,
		`(?i)can you hear me`,
		`(?i)share my screen`,
		`(?i)webvtt`,
	),
	signals(SourceChat,
		`\d{1,2}:\d{2}\s*[AP]M`,
		`#[\w-]+`,
		`@[\w-]+`,
		`(?i)slack`,
		`(?i)replied to a thread`,
		`:\w+:`,
	),
	signals(SourceTicket,
		`[A-Z]{2,}-\d+`,
		`(?i)summary:`,
		`(?i)description:`,
		`(?i)acceptance criteria`,
		`(?i)story points`,
		`(?i)sprint`,
		`(?i)in progress`,
		`(?i)to do`,
		`(?i)\bdone\b`,
		`(?i)blocked`,
	),
	signals(SourceEmail,
		`(?im)^from:`,
		`(?im)^to:`,
		`(?im)^subject:`,
		`(?im)^date:`,
		`(?im)^sent:`,
		`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`,
		`(?im)^re:`,
		`(?im)^fwd:`,
		`(?i)best regards`,
		`(?i)sincerely`,
	),
	signals(SourceMeeting,
		`(?i)agenda`,
		`(?i)attendees`,
		`(?i)minutes`,
		`(?i)action items`,
		`(?i)meeting notes`,
		`(?i)next steps`,
		`(?i)decisions`,
		`(?i)discussion`,
	),
	signals(SourceWiki,
		`(?i)confluence`,
		`(?i)table of contents`,
		`(?i)wiki`,
		`(?m)^\s*={3,}`,
		`(?i)page information`,
		`(?i)\bspace\b`,
	),
}

// Classify scores text against every source type's signal set and returns
// the winning type with a confidence bucket: high for score >= 5, medium
// for >= 3, low for >= 1. A zero score falls back to SourceNotes with low
// confidence. Deterministic for identical input.
func Classify(text string) (SourceType, Confidence) {
	best := SourceNotes
	bestScore := 0

	for _, set := range signalSets {
		score := 0
		for _, p := range set.patterns {
			if p.MatchString(text) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = set.source
		}
	}

	switch {
	case bestScore >= 5:
		return best, ConfidenceHigh
	case bestScore >= 3:
		return best, ConfidenceMedium
	case bestScore >= 1:
		return best, ConfidenceLow
	default:
		return SourceNotes, ConfidenceLow
	}
}

// ParseSourceType maps a stored source string back to a SourceType.
// Unknown strings come back as SourceNotes.
func ParseSourceType(s string) SourceType {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceTranscript, SourceChat, SourceTicket, SourceEmail, SourceMeeting, SourceWiki:
		return SourceType(strings.ToLower(strings.TrimSpace(s)))
	}
	return SourceNotes
}
