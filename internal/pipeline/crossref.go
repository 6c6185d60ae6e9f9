package pipeline

import (
	"context"
	"path/filepath"

	"github.com/hurttlocker/loom/internal/vault"
)

// Crossref generates review proposals for processed documents that have
// not been cross-referenced yet. The generator itself stamps crossref_date
// on each document it handles, which is what makes re-runs skip it.
func (r *Runner) Crossref(ctx context.Context) (*Summary, error) {
	sum := &Summary{Stage: "crossref"}

	if err := r.Vault.Require(vault.DirProcessed, vault.DirProposals); err != nil {
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
		if doc.Meta.CrossrefDate != "" {
			sum.Skipped++
			continue
		}

		proposals, err := r.gen.Propose(ctx, doc, r.Vault.Proposals())
		if err != nil {
			sum.fail(name, err)
			continue
		}

		sum.Processed++
		sum.note("%s: %d proposals", name, len(proposals))
	}

	return r.finish(sum), nil
}
