// Package pipeline runs the batch stages that move documents through the
// vault: intake, process, organize, crossref, and the corpus-wide populate
// and prune passes.
//
// Every stage walks its input directory in lexicographic filename order,
// captures per-document failures without aborting the batch, and appends a
// dated entry to the vault's run log. Stages are idempotent: re-running one
// over already-handled documents is a no-op.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hurttlocker/loom/internal/crossref"
	"github.com/hurttlocker/loom/internal/extract"
	"github.com/hurttlocker/loom/internal/merge"
	"github.com/hurttlocker/loom/internal/store"
	"github.com/hurttlocker/loom/internal/vault"
)

// StageError records one document that failed inside a batch. The batch
// carries on past it.
type StageError struct {
	Doc string
	Err error
}

func (e StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Doc, e.Err)
}

// Summary is the end-of-run report for one stage.
type Summary struct {
	Stage     string
	Processed int
	Skipped   int
	Details   []string
	Errors    []StageError
}

func (s *Summary) note(format string, args ...any) {
	s.Details = append(s.Details, fmt.Sprintf(format, args...))
}

func (s *Summary) fail(doc string, err error) {
	s.Errors = append(s.Errors, StageError{Doc: doc, Err: err})
}

// Runner executes pipeline stages against one vault and one store.
type Runner struct {
	Vault vault.Vault
	Store store.Store
	Vocab *extract.Vocabulary

	// Thresholds is the per-document filter base config. Stage runs copy
	// it and add per-document whitelists.
	Thresholds extract.GovernorConfig

	engine *merge.Engine
	gen    *crossref.Generator

	// now is swapped in tests for stable dates.
	now func() time.Time
}

func NewRunner(v vault.Vault, st store.Store) *Runner {
	return &Runner{
		Vault:      v,
		Store:      st,
		Vocab:      extract.DefaultVocabulary(),
		Thresholds: extract.DefaultGovernorConfig(),
		engine:     merge.NewEngine(st),
		gen:        crossref.NewGenerator(st),
		now:        time.Now,
	}
}

func (r *Runner) today() string {
	return r.now().UTC().Format("2006-01-02")
}

// writeRunLog appends the stage summary to the vault's dated run log.
// Each day gets one markdown file; successive runs append sections.
func (r *Runner) writeRunLog(sum *Summary) error {
	path := filepath.Join(r.Vault.Logs(), r.today()+"-runlog.md")

	var b []byte
	if _, err := os.Stat(path); os.IsNotExist(err) {
		b = append(b, fmt.Sprintf("# Run Log %s\n", r.today())...)
	}

	b = append(b, fmt.Sprintf("\n## %s (%s)\n\n", sum.Stage, r.now().UTC().Format("15:04:05"))...)
	b = append(b, fmt.Sprintf("- processed: %d, skipped: %d, errors: %d\n",
		sum.Processed, sum.Skipped, len(sum.Errors))...)
	for _, d := range sum.Details {
		b = append(b, fmt.Sprintf("- %s\n", d)...)
	}
	for _, e := range sum.Errors {
		b = append(b, fmt.Sprintf("- ERROR %s: %v\n", e.Doc, e.Err)...)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	return nil
}

// finish writes the run log and returns the summary. Log write failures
// surface as a trailing stage error rather than losing the summary.
func (r *Runner) finish(sum *Summary) *Summary {
	if err := r.writeRunLog(sum); err != nil {
		sum.fail("runlog", err)
	}
	return sum
}
