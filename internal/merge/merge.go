package merge

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/hurttlocker/loom/internal/extract"
	"github.com/hurttlocker/loom/internal/store"
)

// Provenance identifies the document a merge draws from.
type Provenance struct {
	SourceDoc string // vault-relative path of the contributing document
	Date      string // YYYY-MM-DD extraction or document date
}

// Result reports what one merge did.
type Result struct {
	Entity  *store.Entity
	Created bool // record did not exist before this merge
	Updated bool // provenance was new; counters/body advanced
}

// Engine merges accepted candidates into the knowledge store.
//
// Every merge is idempotent per (candidate, provenance) pair: the
// provenance table's uniqueness constraint detects repeats, and all
// counter and body mutations are gated on the provenance actually being
// new. Re-running a batch over already-merged documents refreshes
// timestamps and nothing else.
type Engine struct {
	st store.Store
}

// NewEngine creates a merge engine over the given store.
func NewEngine(st store.Store) *Engine {
	return &Engine{st: st}
}

// MergeCandidate routes an accepted extraction candidate to the right
// per-class merge. Person candidates become person records; acronyms,
// phrases, and products all become definition records.
func (e *Engine) MergeCandidate(ctx context.Context, c extract.Candidate, prov Provenance) (*Result, error) {
	if c.Family == extract.FamilyPerson {
		// Person counts can be fractional (possessive hits weigh 0.5).
		// Round up so a real mention never lands as zero.
		return e.MergePerson(ctx, c.Text, int(math.Ceil(c.Count)), prov)
	}
	return e.MergeDefinition(ctx, c.Text, c.Definition, int(c.Count), prov)
}

// MergePerson upserts a person record.
func (e *Engine) MergePerson(ctx context.Context, name string, count int, prov Provenance) (*Result, error) {
	key := NormalizeKey(name)
	if key == "" {
		return nil, fmt.Errorf("person name %q normalizes to empty key", name)
	}

	entity, err := e.st.GetEntityByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if entity == nil {
		entity = &store.Entity{
			Key:   key,
			Title: name,
			Class: store.ClassPerson,
			Body:  fmt.Sprintf("# %s\n\n## Document Mentions\n\n%s", name, mentionLine(prov, "First mentioned")),
		}
		entity.MentionCount = count
		return e.commit(ctx, entity, prov, true)
	}

	added, err := e.st.AddProvenance(ctx, entity.ID, prov.SourceDoc)
	if err != nil {
		return nil, err
	}
	if added {
		entity.MentionCount += count
		entity.Body += mentionLine(prov, "Mentioned")
	}
	if _, err := e.st.UpsertEntity(ctx, entity); err != nil {
		return nil, err
	}
	return &Result{Entity: entity, Updated: added}, nil
}

// MergeDefinition upserts a definition record for an acronym, phrase, or
// product. Repeat merges from new documents advance counters only; the
// body is written once at creation.
func (e *Engine) MergeDefinition(ctx context.Context, term, definition string, count int, prov Provenance) (*Result, error) {
	key := NormalizeKey(term)
	if key == "" {
		return nil, fmt.Errorf("term %q normalizes to empty key", term)
	}

	entity, err := e.st.GetEntityByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if entity == nil {
		body := fmt.Sprintf("# %s\n\n## Definition\n\n", term)
		if definition != "" {
			body += fmt.Sprintf("**%s** — %s\n\n", term, definition)
		} else {
			body += "Technical term identified in project documents.\n\n"
		}
		body += fmt.Sprintf("## Sources\n\n- First mentioned: [%s](../processed/%s)\n",
			filepath.Base(prov.SourceDoc), filepath.Base(prov.SourceDoc))

		entity = &store.Entity{
			Key:          key,
			Title:        term,
			Class:        store.ClassDefinition,
			MentionCount: count,
			Body:         body,
		}
		return e.commit(ctx, entity, prov, true)
	}

	added, err := e.st.AddProvenance(ctx, entity.ID, prov.SourceDoc)
	if err != nil {
		return nil, err
	}
	if added {
		entity.MentionCount += count
	}
	if _, err := e.st.UpsertEntity(ctx, entity); err != nil {
		return nil, err
	}
	return &Result{Entity: entity, Updated: added}, nil
}

// MergeTasks upserts a per-project task collection, appending a dated
// section for each new contributing document.
func (e *Engine) MergeTasks(ctx context.Context, sourceFilename string, taskCount int, prov Provenance) (*Result, error) {
	project := RouteProject(sourceFilename)
	key := project + "-tasks"

	entity, err := e.st.GetEntityByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	section := ""
	if taskCount > 0 {
		section = fmt.Sprintf("\n### Tasks from %s\n**Extracted:** %s\n\n%d tasks identified.\nSee: [source](../processed/%s)\n\n---\n\n",
			prov.SourceDoc, prov.Date, taskCount, filepath.Base(prov.SourceDoc))
	}

	if entity == nil {
		entity = &store.Entity{
			Key:     key,
			Title:   ProjectTitle(project) + " - Tasks",
			Class:   store.ClassTasks,
			Project: project,
			Body:    fmt.Sprintf("# %s - Tasks\n\n## Active Tasks\n%s", ProjectTitle(project), section),
		}
		return e.commit(ctx, entity, prov, true)
	}

	added, err := e.st.AddProvenance(ctx, entity.ID, prov.SourceDoc)
	if err != nil {
		return nil, err
	}
	if added {
		entity.Body += section
	}
	if _, err := e.st.UpsertEntity(ctx, entity); err != nil {
		return nil, err
	}
	return &Result{Entity: entity, Updated: added}, nil
}

// MergeStatus upserts a per-project status record with a dated update
// section per contributing document.
func (e *Engine) MergeStatus(ctx context.Context, sourceFilename string, prov Provenance) (*Result, error) {
	project := RouteProject(sourceFilename)
	key := project + "-status"

	section := fmt.Sprintf("\n## Update: %s\n**Source:** [%s](../processed/%s)\n\nActivity recorded.\n\n---\n\n",
		prov.Date, filepath.Base(prov.SourceDoc), filepath.Base(prov.SourceDoc))

	entity, err := e.st.GetEntityByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if entity == nil {
		entity = &store.Entity{
			Key:     key,
			Title:   ProjectTitle(project) + " - Status",
			Class:   store.ClassStatus,
			Project: project,
			Body:    fmt.Sprintf("# %s - Status\n%s", ProjectTitle(project), section),
		}
		return e.commit(ctx, entity, prov, true)
	}

	added, err := e.st.AddProvenance(ctx, entity.ID, prov.SourceDoc)
	if err != nil {
		return nil, err
	}
	if added {
		entity.Body += section
	}
	if _, err := e.st.UpsertEntity(ctx, entity); err != nil {
		return nil, err
	}
	return &Result{Entity: entity, Updated: added}, nil
}

// commit inserts a brand-new entity and its first provenance entry.
func (e *Engine) commit(ctx context.Context, entity *store.Entity, prov Provenance, created bool) (*Result, error) {
	id, err := e.st.UpsertEntity(ctx, entity)
	if err != nil {
		return nil, err
	}
	if _, err := e.st.AddProvenance(ctx, id, prov.SourceDoc); err != nil {
		return nil, err
	}
	return &Result{Entity: entity, Created: created, Updated: true}, nil
}

func mentionLine(prov Provenance, verb string) string {
	base := filepath.Base(prov.SourceDoc)
	return fmt.Sprintf("- **%s**: %s in [%s](../processed/%s)\n", prov.Date, verb, base, base)
}
