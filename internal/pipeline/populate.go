package pipeline

import (
	"context"
	"path/filepath"

	"github.com/hurttlocker/loom/internal/extract"
	"github.com/hurttlocker/loom/internal/merge"
	"github.com/hurttlocker/loom/internal/vault"
)

// Populate seeds the knowledge base from the whole processed corpus at
// once. Extraction counts are aggregated across every processed document,
// then filtered with the strict corpus thresholds: a name or term must be
// overwhelmingly frequent (or whitelisted) before a single corpus scan is
// allowed to create an entity for it. Participants recorded at intake are
// admitted outright; vocabulary allow-list terms bypass the term threshold.
//
// Provenance for this pass is the dated scan itself, so repeating a scan
// on the same day changes nothing.
func (r *Runner) Populate(ctx context.Context) (*Summary, error) {
	sum := &Summary{Stage: "populate"}

	if err := r.Vault.Require(vault.DirProcessed); err != nil {
		return nil, err
	}

	paths, err := vault.ListMarkdown(r.Vault.Processed())
	if err != nil {
		return nil, err
	}

	agg := &extract.Result{
		People:   map[string]float64{},
		Acronyms: map[string]int{},
		Phrases:  map[string]int{},
		Products: map[string]int{},
		Defs:     map[string]string{},
	}
	participants := map[string]bool{}

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
		for _, p := range doc.Meta.Participants {
			participants[p] = true
		}

		result := extract.Extract(doc.Body, r.Vocab)
		for k, v := range result.People {
			agg.People[k] += v
		}
		for k, v := range result.Acronyms {
			agg.Acronyms[k] += v
		}
		for k, v := range result.Phrases {
			agg.Phrases[k] += v
		}
		for k, v := range result.Products {
			agg.Products[k] += v
		}
		for k, v := range result.Defs {
			if _, ok := agg.Defs[k]; !ok {
				agg.Defs[k] = v
			}
		}
	}

	cfg := extract.PopulationGovernorConfig()
	cfg.KnownPeople = participants
	gov := extract.NewGovernor(cfg, r.Vocab)
	accepted := gov.Apply(agg.Candidates())

	prov := merge.Provenance{SourceDoc: "corpus-scan-" + r.today(), Date: r.today()}
	for _, c := range accepted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.engine.MergeCandidate(ctx, c, prov)
		if err != nil {
			sum.fail(c.Text, err)
			continue
		}
		if res.Created {
			sum.Processed++
			sum.note("created %s (%s)", res.Entity.Key, c.Family)
		} else {
			sum.Skipped++
		}
	}

	return r.finish(sum), nil
}
