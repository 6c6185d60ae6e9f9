package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// Document is one text unit in the vault: a metadata record plus an opaque
// body. The document is owned by whichever stage directory it currently
// lives in; ownership transfers by moving the file.
type Document struct {
	Path string
	Meta Frontmatter
	Body string
}

// ReadDocument loads a document from disk. A missing or malformed metadata
// block is tolerated: the whole file becomes the body with zero metadata.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	meta, body := Parse(string(data))
	return &Document{Path: path, Meta: meta, Body: body}, nil
}

// Write serializes the document back to its current path.
func (d *Document) Write() error {
	content, err := Render(d.Meta, d.Body)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(d.Path), err)
	}
	if err := os.WriteFile(d.Path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(d.Path), err)
	}
	return nil
}

// WriteTo serializes the document to a new path and updates d.Path.
func (d *Document) WriteTo(path string) error {
	d.Path = path
	return d.Write()
}

// MoveTo transfers ownership of the document to another directory. On a
// filename collision the file gets a -1, -2, ... suffix before the extension.
func (d *Document) MoveTo(dir string) (string, error) {
	dest := UniquePath(dir, filepath.Base(d.Path))
	if err := os.Rename(d.Path, dest); err != nil {
		return "", fmt.Errorf("moving %s: %w", filepath.Base(d.Path), err)
	}
	d.Path = dest
	return dest, nil
}

// UniquePath returns dir/name, suffixed with -1, -2, ... if taken.
func UniquePath(dir, name string) string {
	dest := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for counter := 1; ; counter++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest
		}
		dest = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, counter, ext))
	}
}

// ListMarkdown returns the .md files directly under dir, sorted
// lexicographically so batch runs are deterministic.
func ListMarkdown(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".md" {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	// os.ReadDir already sorts by filename; keep the slice as-is.
	return out, nil
}
