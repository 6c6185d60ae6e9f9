package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// Stage directory names inside a vault root.
const (
	DirRaw       = "raw"
	DirToProcess = "to-process"
	DirProcessed = "processed"
	DirExtract   = "extractions"
	DirKnowledge = "knowledge"
	DirProposals = "proposed-updates"
	DirLogs      = "logs"
)

// Knowledge subdirectories used when entities are rendered back to markdown.
var knowledgeSubdirs = []string{"people", "definitions", "tasks", "project-status"}

// Vault is a project directory holding the document pipeline's stage
// directories. All paths returned are absolute when Root is absolute.
type Vault struct {
	Root string
}

func New(root string) Vault {
	return Vault{Root: root}
}

func (v Vault) Dir(name string) string { return filepath.Join(v.Root, name) }

func (v Vault) Raw() string       { return v.Dir(DirRaw) }
func (v Vault) ToProcess() string { return v.Dir(DirToProcess) }
func (v Vault) Processed() string { return v.Dir(DirProcessed) }
func (v Vault) Extract() string   { return v.Dir(DirExtract) }
func (v Vault) Knowledge() string { return v.Dir(DirKnowledge) }
func (v Vault) Proposals() string { return v.Dir(DirProposals) }
func (v Vault) Logs() string      { return v.Dir(DirLogs) }

// EnsureLayout creates every stage directory, including knowledge subdirs.
func (v Vault) EnsureLayout() error {
	dirs := []string{
		v.Raw(), v.ToProcess(), v.Processed(), v.Extract(),
		v.Knowledge(), v.Proposals(), v.Logs(),
	}
	for _, sub := range knowledgeSubdirs {
		dirs = append(dirs, filepath.Join(v.Knowledge(), sub))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Require verifies that the named stage directories exist. Stage runners
// call this before touching any document; a missing directory aborts the
// whole batch up front.
func (v Vault) Require(names ...string) error {
	for _, name := range names {
		dir := v.Dir(name)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("required directory %s/ not found in %s", name, v.Root)
		}
	}
	return nil
}
