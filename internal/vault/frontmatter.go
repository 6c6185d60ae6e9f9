// Package vault provides the document vault for loom: YAML frontmatter
// parsing and serialization, the typed document metadata record, and the
// stage directory layout that documents move through as they are processed.
//
// Frontmatter is the only persistence format documents use. Knowledge
// entities live in the SQLite store (internal/store); the vault holds raw
// and processed documents, extraction artifacts, proposal files, and run logs.
package vault

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the typed metadata block of a vault document.
//
// Recognized keys are explicit fields; anything else a document carries is
// preserved opaquely in Extra and written back on serialization, so documents
// authored by other tools survive a round-trip untouched.
//
// The zero value means "no metadata": string fields empty, slices nil.
// Date fields are YYYY-MM-DD strings, matching what the pipeline writes.
type Frontmatter struct {
	// Intake metadata
	Source           string   // source type: transcript, chat, ticket, email, meeting, wiki, notes
	SourceConfidence string   // high, medium, low
	OriginalFilename string
	IntakeDate       string
	DocumentDate     string
	Participants     []string
	Tags             []string

	// Lifecycle
	Status        string // pending, processed
	ProcessedDate string
	Organized     bool
	OrganizedDate string
	OrganizedTo   []string
	CrossrefDate  string
	CrossrefLinks []string

	// Extraction artifacts
	Type           string // extraction, person, definition, task-collection, status, proposed-update
	ExtractionType string // summary, tasks, entities
	SourceDocument string
	ExtractedDate  string
	TaskCount      int
	PeopleCount    int
	TermsCount     int

	// Knowledge entities (when rendered back to markdown)
	Term         string
	Project      string
	Created      string
	Updated      string
	Sources      []string
	MentionCount int

	// Proposals
	ProposalID string
	TargetFile string
	ChangeType string
	Confidence string

	// Unrecognized keys, preserved on round-trip.
	Extra map[string]any
}

// recognized key names, in canonical serialization order.
var fmKeys = []string{
	"type", "extraction_type", "source", "original_filename", "intake_date",
	"document_date", "status", "participants", "tags", "source_confidence",
	"source_document", "extracted_date", "task_count", "people_count",
	"terms_count", "processed_date", "organized", "organized_date",
	"organized_to", "crossref_date", "crossref_proposals", "term", "project",
	"created", "updated", "sources", "mention_count", "proposal_id",
	"target_file", "change_type", "confidence",
}

// ParseFrontmatter decodes a YAML metadata map into a Frontmatter record.
// Unrecognized keys land in Extra. A nil or empty map yields the zero value.
func ParseFrontmatter(raw map[string]any) Frontmatter {
	var fm Frontmatter
	for k, v := range raw {
		switch k {
		case "type":
			fm.Type = asString(v)
		case "extraction_type":
			fm.ExtractionType = asString(v)
		case "source":
			fm.Source = asString(v)
		case "original_filename":
			fm.OriginalFilename = asString(v)
		case "intake_date":
			fm.IntakeDate = asString(v)
		case "document_date":
			fm.DocumentDate = asString(v)
		case "status":
			fm.Status = asString(v)
		case "participants":
			fm.Participants = asStringList(v)
		case "tags":
			fm.Tags = asStringList(v)
		case "source_confidence":
			fm.SourceConfidence = asString(v)
		case "source_document":
			fm.SourceDocument = asString(v)
		case "extracted_date":
			fm.ExtractedDate = asString(v)
		case "task_count":
			fm.TaskCount = asInt(v)
		case "people_count":
			fm.PeopleCount = asInt(v)
		case "terms_count":
			fm.TermsCount = asInt(v)
		case "processed_date":
			fm.ProcessedDate = asString(v)
		case "organized":
			fm.Organized = asBool(v)
		case "organized_date":
			fm.OrganizedDate = asString(v)
		case "organized_to":
			fm.OrganizedTo = asStringList(v)
		case "crossref_date":
			fm.CrossrefDate = asString(v)
		case "crossref_proposals":
			fm.CrossrefLinks = asStringList(v)
		case "term":
			fm.Term = asString(v)
		case "project":
			fm.Project = asString(v)
		case "created":
			fm.Created = asString(v)
		case "updated":
			fm.Updated = asString(v)
		case "sources":
			fm.Sources = asStringList(v)
		case "mention_count":
			fm.MentionCount = asInt(v)
		case "proposal_id":
			fm.ProposalID = asString(v)
		case "target_file":
			fm.TargetFile = asString(v)
		case "change_type":
			fm.ChangeType = asString(v)
		case "confidence":
			fm.Confidence = asString(v)
		default:
			if fm.Extra == nil {
				fm.Extra = make(map[string]any)
			}
			fm.Extra[k] = v
		}
	}
	return fm
}

// toMap returns the metadata as a key → value map, recognized fields first.
// Zero-valued recognized fields are omitted so serialized frontmatter only
// carries keys that were actually set.
func (fm Frontmatter) toMap() map[string]any {
	out := make(map[string]any)
	put := func(k string, v any) {
		switch val := v.(type) {
		case string:
			if val != "" {
				out[k] = val
			}
		case int:
			if val != 0 {
				out[k] = val
			}
		case bool:
			if val {
				out[k] = val
			}
		case []string:
			if len(val) > 0 {
				out[k] = val
			}
		}
	}
	put("type", fm.Type)
	put("extraction_type", fm.ExtractionType)
	put("source", fm.Source)
	put("original_filename", fm.OriginalFilename)
	put("intake_date", fm.IntakeDate)
	put("document_date", fm.DocumentDate)
	put("status", fm.Status)
	put("participants", fm.Participants)
	put("tags", fm.Tags)
	put("source_confidence", fm.SourceConfidence)
	put("source_document", fm.SourceDocument)
	put("extracted_date", fm.ExtractedDate)
	put("task_count", fm.TaskCount)
	put("people_count", fm.PeopleCount)
	put("terms_count", fm.TermsCount)
	put("processed_date", fm.ProcessedDate)
	put("organized", fm.Organized)
	put("organized_date", fm.OrganizedDate)
	put("organized_to", fm.OrganizedTo)
	put("crossref_date", fm.CrossrefDate)
	put("crossref_proposals", fm.CrossrefLinks)
	put("term", fm.Term)
	put("project", fm.Project)
	put("created", fm.Created)
	put("updated", fm.Updated)
	put("sources", fm.Sources)
	put("mention_count", fm.MentionCount)
	put("proposal_id", fm.ProposalID)
	put("target_file", fm.TargetFile)
	put("change_type", fm.ChangeType)
	put("confidence", fm.Confidence)
	for k, v := range fm.Extra {
		out[k] = v
	}
	return out
}

// IsZero reports whether no metadata is set at all.
func (fm Frontmatter) IsZero() bool {
	return len(fm.toMap()) == 0
}

// Marshal serializes the frontmatter to YAML with recognized keys in
// canonical order and Extra keys sorted after them. Output is deterministic.
func (fm Frontmatter) Marshal() ([]byte, error) {
	m := fm.toMap()
	if len(m) == 0 {
		return nil, nil
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	appendKey := func(k string) error {
		v, ok := m[k]
		if !ok {
			return nil
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		valNode := &yaml.Node{}
		if err := valNode.Encode(v); err != nil {
			return fmt.Errorf("encoding frontmatter key %q: %w", k, err)
		}
		doc.Content = append(doc.Content, keyNode, valNode)
		return nil
	}

	for _, k := range fmKeys {
		if err := appendKey(k); err != nil {
			return nil, err
		}
	}

	extras := make([]string, 0, len(fm.Extra))
	for k := range fm.Extra {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	for _, k := range extras {
		if err := appendKey(k); err != nil {
			return nil, err
		}
	}

	return yaml.Marshal(doc)
}

// Split separates a document's content into its raw frontmatter text and
// body. Content without an opening "---" line, or without a closing
// delimiter, has no frontmatter: the full content is returned as body.
func Split(content string) (fmText, body string, ok bool) {
	if !strings.HasPrefix(content, "---") {
		return "", content, false
	}
	rest := content[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", content, false
	}
	fmText = rest[:idx]
	body = rest[idx+4:]
	body = strings.TrimPrefix(body, "\n")
	return fmText, body, true
}

// Parse decodes document content into metadata and body. Malformed YAML in
// the metadata block is not an error: the entire content becomes the body
// and the returned Frontmatter is zero, matching how the pipeline treats
// documents it can't fully understand.
func Parse(content string) (Frontmatter, string) {
	fmText, body, ok := Split(content)
	if !ok {
		return Frontmatter{}, content
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(fmText), &raw); err != nil {
		return Frontmatter{}, content
	}
	return ParseFrontmatter(raw), body
}

// Render produces full document content: serialized frontmatter between
// "---" delimiters, a blank line, then the body. A zero Frontmatter yields
// the body unchanged.
func Render(fm Frontmatter, body string) (string, error) {
	data, err := fm.Marshal()
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return body, nil
	}
	return "---\n" + string(data) + "---\n\n" + body, nil
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", val), ".0")
	case bool:
		if val {
			return "true"
		}
		return "false"
	}
	return ""
}

func asStringList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		return val
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	}
	return nil
}

func asInt(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	}
	return 0
}

func asBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "yes"
	}
	return false
}
