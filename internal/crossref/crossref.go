// Package crossref compares processed documents against the knowledge base
// and proposes updates for human review.
//
// The generator never mutates a knowledge entity. It only writes proposal
// records (and their reviewable markdown renderings) and marks the source
// document as cross-referenced so repeat runs skip it.
package crossref

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hurttlocker/loom/internal/merge"
	"github.com/hurttlocker/loom/internal/store"
	"github.com/hurttlocker/loom/internal/vault"
)

// Per-document proposal caps.
const (
	maxPersonProposals = 3
	maxStatusProposals = 2
)

var (
	personMentionRE = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	acronymRE       = regexp.MustCompile(`\b[A-Z]{2,}\b`)
)

// Relationships holds what a document shares with the knowledge base.
type Relationships struct {
	PeopleMentioned []string // display titles of known people found in the body
	TermsUsed       []string // known definition titles found in the body
	Projects        []string // filename-keyword project associations
}

// Generator produces proposals from processed documents.
type Generator struct {
	st store.Store
}

func NewGenerator(st store.Store) *Generator {
	return &Generator{st: st}
}

// Analyze intersects a document's capitalized-name and acronym mentions
// with the current knowledge base and detects project associations from
// the filename. Pure read; nothing is written.
func (g *Generator) Analyze(ctx context.Context, doc *vault.Document) (*Relationships, error) {
	rel := &Relationships{}

	people, err := g.st.ListEntities(ctx, store.ListOpts{Class: store.ClassPerson})
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	knownPeople := make(map[string]string, len(people))
	for _, p := range people {
		knownPeople[p.Title] = p.Key
	}
	seen := map[string]bool{}
	for _, mention := range personMentionRE.FindAllString(doc.Body, -1) {
		if _, ok := knownPeople[mention]; ok && !seen[mention] {
			seen[mention] = true
			rel.PeopleMentioned = append(rel.PeopleMentioned, mention)
		}
	}
	sort.Strings(rel.PeopleMentioned)

	defs, err := g.st.ListEntities(ctx, store.ListOpts{Class: store.ClassDefinition})
	if err != nil {
		return nil, fmt.Errorf("listing definitions: %w", err)
	}
	knownTerms := make(map[string]bool, len(defs))
	for _, d := range defs {
		knownTerms[strings.ToUpper(d.Title)] = true
	}
	seenTerm := map[string]bool{}
	for _, term := range acronymRE.FindAllString(doc.Body, -1) {
		if knownTerms[term] && !seenTerm[term] {
			seenTerm[term] = true
			rel.TermsUsed = append(rel.TermsUsed, term)
		}
	}
	sort.Strings(rel.TermsUsed)

	if project := merge.RouteProject(filepath.Base(doc.Path)); project != "general" {
		rel.Projects = append(rel.Projects, project)
	}

	return rel, nil
}

// Propose runs the full cross-reference pass for one document: analyzes
// relationships, emits at most 3 person-mention proposals and 2
// project-status proposals as store records plus reviewable markdown files
// under proposalsDir, and marks the document cross-referenced.
//
// A document already carrying a crossref_date is skipped (returns nil, nil).
func (g *Generator) Propose(ctx context.Context, doc *vault.Document, proposalsDir string) ([]*store.Proposal, error) {
	if doc.Meta.CrossrefDate != "" {
		return nil, nil
	}

	rel, err := g.Analyze(ctx, doc)
	if err != nil {
		return nil, err
	}

	counter, err := g.st.CountProposals(ctx)
	if err != nil {
		return nil, err
	}

	docName := filepath.Base(doc.Path)
	var created []*store.Proposal
	var links []string

	people := rel.PeopleMentioned
	if len(people) > maxPersonProposals {
		people = people[:maxPersonProposals]
	}
	for _, person := range people {
		counter++
		p := &store.Proposal{
			ID:         uuid.NewString(),
			TargetKey:  merge.NormalizeKey(person),
			ChangeType: "mention-update",
			SourceDoc:  "processed/" + docName,
			Confidence: "medium",
			Rationale:  fmt.Sprintf("New mention of %s in recent document", person),
			Evidence:   fmt.Sprintf("Person mentioned in context of: %s", docName),
		}
		if err := g.st.AddProposal(ctx, p); err != nil {
			return nil, err
		}
		link, err := writeProposalFile(proposalsDir, counter, "person-"+p.TargetKey, p)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
		created = append(created, p)
	}

	projects := rel.Projects
	if len(projects) > maxStatusProposals {
		projects = projects[:maxStatusProposals]
	}
	for _, project := range projects {
		counter++
		p := &store.Proposal{
			ID:         uuid.NewString(),
			TargetKey:  project + "-status",
			ChangeType: "status-update",
			SourceDoc:  "processed/" + docName,
			Confidence: "high",
			Rationale:  fmt.Sprintf("New activity for project %s", project),
			Evidence:   fmt.Sprintf("Document contains discussion about %s", project),
		}
		if err := g.st.AddProposal(ctx, p); err != nil {
			return nil, err
		}
		link, err := writeProposalFile(proposalsDir, counter, "status-"+project, p)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
		created = append(created, p)
	}

	doc.Meta.CrossrefDate = time.Now().UTC().Format("2006-01-02")
	doc.Meta.CrossrefLinks = links
	if err := doc.Write(); err != nil {
		return nil, err
	}

	return created, nil
}

// writeProposalFile renders a proposal as a reviewable markdown document.
func writeProposalFile(dir string, seq int64, slug string, p *store.Proposal) (string, error) {
	name := fmt.Sprintf("update-%03d-%s.md", seq, slug)

	meta := vault.Frontmatter{
		Type:           "proposed-update",
		Created:        time.Now().UTC().Format("2006-01-02"),
		ProposalID:     p.ID,
		TargetFile:     "knowledge/" + p.TargetKey + ".md",
		ChangeType:     p.ChangeType,
		SourceDocument: p.SourceDoc,
		Confidence:     p.Confidence,
		Status:         "pending_review",
	}

	title := titleWords(strings.ReplaceAll(p.ChangeType, "-", " "))
	body := fmt.Sprintf(`# Proposed Update: %s

## Target

**Entity:** %s

## Change Type

`+"`%s`"+` - %s

## Source Evidence

**Document:** %s

%s

## Confidence

**%s** - Based on analysis of document content.

---

## Review Actions

- [ ] Approve and apply
- [ ] Modify and apply
- [ ] Reject
- [ ] Defer

**Reviewer Notes:**
_Add notes here when reviewing_
`, title, p.TargetKey, p.ChangeType, p.Rationale, p.SourceDoc, p.Evidence, titleWords(p.Confidence))

	doc := &vault.Document{Path: filepath.Join(dir, name), Meta: meta, Body: body}
	if err := doc.Write(); err != nil {
		return "", err
	}
	return "proposed-updates/" + name, nil
}

func titleWords(s string) string {
	parts := strings.Fields(s)
	for i, w := range parts {
		parts[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(parts, " ")
}
