package pipeline

import (
	"context"
	"path/filepath"

	"github.com/hurttlocker/loom/internal/extract"
	"github.com/hurttlocker/loom/internal/merge"
	"github.com/hurttlocker/loom/internal/vault"
)

// Organize merges extracted knowledge into the store. Each processed
// document that has not been organized yet is re-extracted, noise-filtered,
// and its accepted candidates merged into persistent entity records, along
// with a task collection and a project status update. The document is then
// flagged organized so later runs skip it; provenance uniqueness in the
// store makes a forced re-run harmless anyway.
func (r *Runner) Organize(ctx context.Context) (*Summary, error) {
	sum := &Summary{Stage: "organize"}

	if err := r.Vault.Require(vault.DirProcessed); err != nil {
		return nil, err
	}

	paths, err := vault.ListMarkdown(r.Vault.Processed())
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
		if doc.Meta.Organized {
			sum.Skipped++
			continue
		}

		prov := merge.Provenance{SourceDoc: name, Date: r.docDate(doc)}
		result := extract.Extract(doc.Body, r.Vocab)
		accepted := r.docGovernor(doc).Apply(result.Candidates())

		var created, updated int
		failed := false
		for _, c := range accepted {
			res, err := r.engine.MergeCandidate(ctx, c, prov)
			if err != nil {
				sum.fail(name, err)
				failed = true
				break
			}
			if res.Created {
				created++
			} else if res.Updated {
				updated++
			}
		}
		if failed {
			continue
		}

		if len(result.Tasks) > 0 {
			if _, err := r.engine.MergeTasks(ctx, name, len(result.Tasks), prov); err != nil {
				sum.fail(name, err)
				continue
			}
		}
		if _, err := r.engine.MergeStatus(ctx, name, prov); err != nil {
			sum.fail(name, err)
			continue
		}

		doc.Meta.Organized = true
		doc.Meta.OrganizedDate = r.today()
		doc.Meta.OrganizedTo = []string{merge.RouteProject(name)}
		if err := doc.Write(); err != nil {
			sum.fail(name, err)
			continue
		}

		sum.Processed++
		sum.note("%s: %d entities created, %d updated", name, created, updated)
	}

	return r.finish(sum), nil
}

// docDate prefers the detected document date and falls back to today.
func (r *Runner) docDate(doc *vault.Document) string {
	if doc.Meta.DocumentDate != "" {
		return doc.Meta.DocumentDate
	}
	return r.today()
}
