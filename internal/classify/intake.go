package classify

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	isoDateRE     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRE   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDateRE   = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{1,2}),?\s+(\d{4})\b`)
	speakerLineRE = regexp.MustCompile(`(?m)^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s*:`)
	mentionRE     = regexp.MustCompile(`@([\w-]+)`)
	headerNameRE  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	datePartRE    = regexp.MustCompile(`^\d{4}(-\d{2}){0,2}$`)
	nonWordRE     = regexp.MustCompile(`[^\w-]`)
	nonWordSpRE   = regexp.MustCompile(`[^\w\s-]`)
)

var monthNumbers = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

// maxParticipants caps how many names intake records per document.
const maxParticipants = 10

// DetectDate finds the document's date: a YYYY-MM-DD in the filename wins,
// then the first recognizable date in the content, then the file's modified
// time. Always returns a YYYY-MM-DD string.
func DetectDate(filename, content string, modTime time.Time) string {
	if m := isoDateRE.FindStringSubmatch(filename); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	}
	if d := dateFromContent(content); d != "" {
		return d
	}
	return modTime.Format("2006-01-02")
}

func dateFromContent(content string) string {
	if m := isoDateRE.FindStringSubmatch(content); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	}
	if m := monthDateRE.FindStringSubmatch(content); m != nil {
		month := monthNumbers[strings.ToLower(m[1][:3])]
		if month != "" {
			day := m[2]
			if len(day) == 1 {
				day = "0" + day
			}
			return fmt.Sprintf("%s-%s-%s", m[3], month, day)
		}
	}
	if m := slashDateRE.FindStringSubmatch(content); m != nil {
		mm, dd := m[1], m[2]
		if len(mm) == 1 {
			mm = "0" + mm
		}
		if len(dd) == 1 {
			dd = "0" + dd
		}
		return fmt.Sprintf("%s-%s-%s", m[3], mm, dd)
	}
	return ""
}

// Participants pulls likely participant names from a document, using the
// detected source type to pick the right signal: speaker labels for
// transcripts, @mentions for chat, From/To/Attendees header lines for email
// and meeting notes. Results are deduplicated, sorted, and capped at 10.
func Participants(content string, source SourceType) []string {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	switch source {
	case SourceTranscript:
		for _, m := range speakerLineRE.FindAllStringSubmatch(content, -1) {
			add(m[1])
		}
	case SourceChat:
		for _, m := range mentionRE.FindAllStringSubmatch(content, -1) {
			add(m[1])
		}
	case SourceEmail, SourceMeeting:
		lines := strings.Split(content, "\n")
		if len(lines) > 20 {
			lines = lines[:20]
		}
		for _, line := range lines {
			lower := strings.ToLower(line)
			if strings.HasPrefix(lower, "from:") || strings.HasPrefix(lower, "to:") ||
				strings.HasPrefix(lower, "attendees:") {
				for _, name := range headerNameRE.FindAllString(line, -1) {
					add(name)
				}
			}
		}
	}

	sort.Strings(names)
	if len(names) > maxParticipants {
		names = names[:maxParticipants]
	}
	return names
}

// ShortDescription builds a filename-safe slug describing the document,
// preferring words from the original filename (minus date fragments) and
// falling back to the first substantial content line. At most 5 words and
// 50 characters; "document" when nothing usable is found.
func ShortDescription(content, filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var parts []string
	for _, part := range strings.Fields(stem) {
		if !datePartRE.MatchString(part) {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		if len(parts) > 5 {
			parts = parts[:5]
		}
		desc := nonWordRE.ReplaceAllString(strings.ToLower(strings.Join(parts, "-")), "")
		return clampDesc(desc)
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 5 {
			continue
		}
		cleaned := nonWordSpRE.ReplaceAllString(strings.ToLower(line), "")
		words := strings.Fields(cleaned)
		if len(words) == 0 {
			continue
		}
		if len(words) > 5 {
			words = words[:5]
		}
		return clampDesc(strings.Join(words, "-"))
	}

	return "document"
}

func clampDesc(desc string) string {
	if desc == "" {
		return "document"
	}
	if len(desc) > 50 {
		desc = desc[:50]
	}
	return desc
}
