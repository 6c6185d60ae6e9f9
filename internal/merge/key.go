// Package merge implements the knowledge merge engine: it maps accepted
// candidates to normalized identity keys and upserts them into persistent
// entity records, accumulating provenance without ever duplicating it.
package merge

import (
	"regexp"
	"strings"
)

var (
	keyStripRE    = regexp.MustCompile(`[^\w\s-]`)
	keyCollapseRE = regexp.MustCompile(`\s+`)
)

// NormalizeKey turns a display form into the identity key that
// deduplicates entities across merges: trimmed, punctuation stripped
// (internal hyphens survive), case-folded, whitespace collapsed to single
// hyphens. Total and deterministic — "Jane Doe" and "jane doe" both map
// to "jane-doe".
func NormalizeKey(display string) string {
	key := strings.TrimSpace(display)
	key = keyStripRE.ReplaceAllString(key, "")
	key = strings.ToLower(key)
	key = keyCollapseRE.ReplaceAllString(key, "-")
	return key
}

// projectRoute maps a filename substring to a project bucket.
type projectRoute struct {
	keyword string
	project string
}

// projectRoutes is the fixed catalogue for task/status routing. First
// match wins; order matters only for files naming several projects.
var projectRoutes = []projectRoute{
	{"iceberg", "apache-iceberg"},
	{"medallion", "medallion-architecture"},
	{"compliance", "compliance"},
	{"mongo", "mongodb-atlas"},
	{"atlas", "mongodb-atlas"},
	{"deployment", "deployment"},
	{"prod", "deployment"},
}

// RouteProject assigns a task or status record to a project by filename
// keyword. Best-effort routing, not authoritative classification; anything
// unrecognized lands in "general".
func RouteProject(filename string) string {
	lower := strings.ToLower(filename)
	for _, route := range projectRoutes {
		if strings.Contains(lower, route.keyword) {
			return route.project
		}
	}
	return "general"
}

// ProjectTitle renders a project key as a heading ("apache-iceberg" →
// "Apache Iceberg").
func ProjectTitle(project string) string {
	words := strings.Split(project, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
