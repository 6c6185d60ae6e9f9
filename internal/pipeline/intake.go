package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hurttlocker/loom/internal/classify"
	"github.com/hurttlocker/loom/internal/vault"
)

// Intake moves raw drops into the processing queue. For each file in raw/
// it classifies the source type, detects the document date and participants,
// stamps intake frontmatter, and writes the document to to-process/ under
// the canonical <date>-<source>-<description>.md name. Name collisions get
// a numeric suffix; the original raw file is removed once the renamed copy
// is safely written.
func (r *Runner) Intake(ctx context.Context) (*Summary, error) {
	sum := &Summary{Stage: "intake"}

	if err := r.Vault.Require(vault.DirRaw, vault.DirToProcess); err != nil {
		return nil, err
	}

	paths, err := vault.ListMarkdown(r.Vault.Raw())
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
		info, err := os.Stat(path)
		if err != nil {
			sum.fail(name, err)
			continue
		}

		source, confidence := classify.Classify(doc.Body)
		date := classify.DetectDate(name, doc.Body, info.ModTime())

		doc.Meta.Source = string(source)
		doc.Meta.SourceConfidence = string(confidence)
		doc.Meta.OriginalFilename = name
		doc.Meta.IntakeDate = r.today()
		doc.Meta.DocumentDate = date
		doc.Meta.Participants = classify.Participants(doc.Body, source)
		doc.Meta.Status = "pending"

		desc := classify.ShortDescription(doc.Body, name)
		newName := fmt.Sprintf("%s-%s-%s.md", date, source, desc)
		dest := vault.UniquePath(r.Vault.ToProcess(), newName)

		if err := doc.WriteTo(dest); err != nil {
			sum.fail(name, err)
			continue
		}
		if err := os.Remove(path); err != nil {
			sum.fail(name, fmt.Errorf("removing raw original: %w", err))
			continue
		}

		sum.Processed++
		sum.note("%s -> %s (%s, %s confidence)", name, filepath.Base(dest), source, confidence)
	}

	return r.finish(sum), nil
}
