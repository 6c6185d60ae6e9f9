package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hurttlocker/loom/internal/merge"
	"github.com/hurttlocker/loom/internal/store"
	"github.com/hurttlocker/loom/internal/vault"
)

// Prune is the knowledge base's only deletion path. It removes person
// entities never recorded as a participant of any processed document, and
// definition entities whose term is not on the vocabulary allow-list.
// Merge and populate only ever add or update; cleanup of accumulated
// heuristic noise is deliberately a separate, explicit pass.
func (r *Runner) Prune(ctx context.Context) (*Summary, error) {
	sum := &Summary{Stage: "prune"}

	if err := r.Vault.Require(vault.DirProcessed); err != nil {
		return nil, err
	}

	paths, err := vault.ListMarkdown(r.Vault.Processed())
	if err != nil {
		return nil, err
	}

	participantKeys := map[string]bool{}
	for _, path := range paths {
		doc, err := vault.ReadDocument(path)
		if err != nil {
			sum.fail(filepath.Base(path), err)
			continue
		}
		for _, p := range doc.Meta.Participants {
			participantKeys[merge.NormalizeKey(p)] = true
		}
	}

	people, err := r.Store.ListEntities(ctx, store.ListOpts{Class: store.ClassPerson})
	if err != nil {
		return nil, err
	}
	for _, p := range people {
		if participantKeys[p.Key] {
			sum.Skipped++
			continue
		}
		if err := r.Store.DeleteEntity(ctx, p.Key); err != nil {
			sum.fail(p.Key, err)
			continue
		}
		sum.Processed++
		sum.note("removed person %s (never a participant)", p.Key)
	}

	defs, err := r.Store.ListEntities(ctx, store.ListOpts{Class: store.ClassDefinition})
	if err != nil {
		return nil, err
	}
	for _, d := range defs {
		term := strings.ToLower(strings.ReplaceAll(d.Title, " ", "-"))
		if r.Vocab.KnownTechTerms[term] {
			sum.Skipped++
			continue
		}
		if err := r.Store.DeleteEntity(ctx, d.Key); err != nil {
			sum.fail(d.Key, err)
			continue
		}
		sum.Processed++
		sum.note("removed definition %s (not an allow-listed term)", d.Key)
	}

	return r.finish(sum), nil
}
