package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hurttlocker/loom/internal/extract"
	"github.com/hurttlocker/loom/internal/vault"
)

// Process extracts knowledge candidates from queued documents. Each pending
// document in to-process/ gets an extraction pass, noise filtering, and an
// entities artifact (plus a tasks artifact when task lines were found) in
// extractions/, then moves to processed/. Documents already marked
// processed are skipped.
func (r *Runner) Process(ctx context.Context) (*Summary, error) {
	sum := &Summary{Stage: "process"}

	if err := r.Vault.Require(vault.DirToProcess, vault.DirProcessed, vault.DirExtract); err != nil {
		return nil, err
	}

	paths, err := vault.ListMarkdown(r.Vault.ToProcess())
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.Base(path)

		doc, err := vault.ReadDocument(path)
		if err != nil {
			sum.fail(name, err)
			continue
		}
		if doc.Meta.Status == "processed" {
			sum.Skipped++
			continue
		}

		result := extract.Extract(doc.Body, r.Vocab)
		accepted := r.docGovernor(doc).Apply(result.Candidates())

		people, terms := splitFamilies(accepted)
		if err := r.writeEntitiesArtifact(doc, people, terms); err != nil {
			sum.fail(name, err)
			continue
		}
		if len(result.Tasks) > 0 {
			if err := r.writeTasksArtifact(doc, result.Tasks); err != nil {
				sum.fail(name, err)
				continue
			}
		}

		doc.Meta.Status = "processed"
		doc.Meta.ProcessedDate = r.today()
		if err := doc.Write(); err != nil {
			sum.fail(name, err)
			continue
		}
		if _, err := doc.MoveTo(r.Vault.Processed()); err != nil {
			sum.fail(name, err)
			continue
		}

		sum.Processed++
		sum.note("%s: %d people, %d terms, %d tasks",
			name, len(people), len(terms), len(result.Tasks))
	}

	return r.finish(sum), nil
}

// docGovernor builds the per-document noise filter. Names recorded as
// participants at intake time bypass the mention threshold.
func (r *Runner) docGovernor(doc *vault.Document) *extract.Governor {
	cfg := r.Thresholds
	if len(doc.Meta.Participants) > 0 {
		cfg.KnownPeople = make(map[string]bool, len(doc.Meta.Participants))
		for _, p := range doc.Meta.Participants {
			cfg.KnownPeople[p] = true
		}
	}
	return extract.NewGovernor(cfg, r.Vocab)
}

func splitFamilies(candidates []extract.Candidate) (people, terms []extract.Candidate) {
	for _, c := range candidates {
		if c.Family == extract.FamilyPerson {
			people = append(people, c)
		} else {
			terms = append(terms, c)
		}
	}
	sortCandidates(people)
	sortCandidates(terms)
	return people, terms
}

// sortCandidates orders by count descending, then text, so artifacts are
// stable across runs.
func sortCandidates(cs []extract.Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Count != cs[j].Count {
			return cs[i].Count > cs[j].Count
		}
		return cs[i].Text < cs[j].Text
	})
}

func (r *Runner) writeEntitiesArtifact(doc *vault.Document, people, terms []extract.Candidate) error {
	name := filepath.Base(doc.Path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	fmt.Fprintf(&b, "# Entities: %s\n\n## People\n\n", stem)
	if len(people) == 0 {
		b.WriteString("_None found._\n")
	}
	for _, c := range people {
		fmt.Fprintf(&b, "- **%s** (%.1f mentions)\n", c.Text, c.Count)
	}
	b.WriteString("\n## Terms\n\n")
	if len(terms) == 0 {
		b.WriteString("_None found._\n")
	}
	for _, c := range terms {
		if c.Definition != "" {
			fmt.Fprintf(&b, "- **%s** (%d mentions): %s\n", c.Text, int(c.Count), c.Definition)
		} else {
			fmt.Fprintf(&b, "- **%s** (%d mentions)\n", c.Text, int(c.Count))
		}
	}

	art := &vault.Document{
		Path: filepath.Join(r.Vault.Extract(), stem+"-entities.md"),
		Meta: vault.Frontmatter{
			Type:           "extraction",
			ExtractionType: "entities",
			SourceDocument: name,
			ExtractedDate:  r.today(),
			PeopleCount:    len(people),
			TermsCount:     len(terms),
		},
		Body: b.String(),
	}
	return art.Write()
}

func (r *Runner) writeTasksArtifact(doc *vault.Document, tasks []string) error {
	name := filepath.Base(doc.Path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	fmt.Fprintf(&b, "# Tasks: %s\n\n", stem)
	for _, t := range tasks {
		fmt.Fprintf(&b, "- [ ] %s\n", t)
	}

	art := &vault.Document{
		Path: filepath.Join(r.Vault.Extract(), stem+"-tasks.md"),
		Meta: vault.Frontmatter{
			Type:           "extraction",
			ExtractionType: "tasks",
			SourceDocument: name,
			ExtractedDate:  r.today(),
			TaskCount:      len(tasks),
		},
		Body: b.String(),
	}
	return art.Write()
}
