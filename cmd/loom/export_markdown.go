package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hurttlocker/loom/internal/merge"
	"github.com/hurttlocker/loom/internal/store"
	"github.com/hurttlocker/loom/internal/vault"
)

type exportConfig struct {
	DryRun bool
	Clean  bool
}

// classDirs maps entity classes to knowledge subdirectories.
var classDirs = map[string]string{
	store.ClassPerson:     "people",
	store.ClassDefinition: "definitions",
	store.ClassTasks:      "tasks",
	store.ClassStatus:     "project-status",
}

// runExport renders every knowledge entity as a markdown file under the
// vault's knowledge/ tree, one file per entity, named by key. The database
// stays the source of truth; the export is a disposable view for editors
// like Obsidian.
func runExport(args []string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}

	ec := exportConfig{}
	for _, arg := range rest {
		switch arg {
		case "--dry-run", "-n":
			ec.DryRun = true
		case "--clean":
			ec.Clean = true
		default:
			return fmt.Errorf("unknown flag: %s", arg)
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	v := vault.New(cfg.VaultRoot.Value)
	if err := v.Require(vault.DirKnowledge); err != nil {
		return err
	}

	ctx := context.Background()
	entities, err := st.ListEntities(ctx, store.ListOpts{})
	if err != nil {
		return err
	}

	if ec.Clean && !ec.DryRun {
		if err := cleanKnowledgeTree(v); err != nil {
			return err
		}
	}

	written := 0
	byClass := make(map[string][]*store.Entity)
	for _, e := range entities {
		sub, ok := classDirs[e.Class]
		if !ok {
			continue
		}
		sources, err := st.ListProvenance(ctx, e.ID)
		if err != nil {
			return err
		}
		byClass[e.Class] = append(byClass[e.Class], e)

		path := filepath.Join(v.Knowledge(), sub, e.Key+".md")
		if ec.DryRun {
			fmt.Printf("would write %s\n", path)
			written++
			continue
		}

		doc := entityDocument(e, sources, path)
		if err := doc.Write(); err != nil {
			return err
		}
		written++
	}

	if !ec.DryRun {
		if err := writeClassIndex(v, "definitions", "Definitions", byClass[store.ClassDefinition]); err != nil {
			return err
		}
		if err := writeClassIndex(v, "people", "People", byClass[store.ClassPerson]); err != nil {
			return err
		}
	}

	if ec.DryRun {
		fmt.Printf("%d entities (dry run, nothing written)\n", written)
	} else {
		fmt.Printf("Exported %d entities to %s\n", written, v.Knowledge())
	}
	return nil
}

func entityDocument(e *store.Entity, sources []string, path string) *vault.Document {
	meta := vault.Frontmatter{
		Type:         e.Class,
		Project:      e.Project,
		Created:      e.CreatedAt.Format("2006-01-02"),
		Updated:      e.UpdatedAt.Format("2006-01-02"),
		Sources:      sources,
		MentionCount: e.MentionCount,
	}
	if e.Class == store.ClassDefinition {
		meta.Term = e.Title
	}
	return &vault.Document{Path: path, Meta: meta, Body: e.Body}
}

// writeClassIndex renders an index page wikilinking every entity page of one
// class, so editors like Obsidian get a navigation entry point per subtree.
func writeClassIndex(v vault.Vault, sub, title string, entities []*store.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, e := range entities {
		fmt.Fprintf(&b, "- [[%s]] (%s, %d mentions)\n", e.Key, e.Title, e.MentionCount)
	}

	path := filepath.Join(v.Knowledge(), sub, "index.md")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// cleanKnowledgeTree removes previously exported entity files so renames
// and deletions in the store are reflected in the tree.
func cleanKnowledgeTree(v vault.Vault) error {
	for _, sub := range []string{"people", "definitions", "tasks", "project-status"} {
		dir := filepath.Join(v.Knowledge(), sub)
		paths, err := vault.ListMarkdown(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		for _, p := range paths {
			if err := os.Remove(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// lookupEntity resolves a display name or key to an entity plus its
// provenance list.
func lookupEntity(ctx context.Context, st store.Store, name string) (*store.Entity, []string, error) {
	entity, err := st.GetEntityByKey(ctx, merge.NormalizeKey(name))
	if err != nil {
		return nil, nil, err
	}
	if entity == nil {
		return nil, nil, fmt.Errorf("no entity found for %q", name)
	}
	sources, err := st.ListProvenance(ctx, entity.ID)
	if err != nil {
		return nil, nil, err
	}
	return entity, sources, nil
}
