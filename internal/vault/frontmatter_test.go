package vault

import (
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	content := `---
source: transcript
source_confidence: high
document_date: "2025-01-15"
participants:
  - Jane Doe
  - John Smith
status: pending
---

Body text here.`

	meta, body := Parse(content)
	if meta.Source != "transcript" {
		t.Errorf("Source = %q", meta.Source)
	}
	if meta.SourceConfidence != "high" {
		t.Errorf("SourceConfidence = %q", meta.SourceConfidence)
	}
	if meta.DocumentDate != "2025-01-15" {
		t.Errorf("DocumentDate = %q", meta.DocumentDate)
	}
	if len(meta.Participants) != 2 || meta.Participants[0] != "Jane Doe" {
		t.Errorf("Participants = %v", meta.Participants)
	}
	if strings.TrimSpace(body) != "Body text here." {
		t.Errorf("body = %q", body)
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	content := "Just a plain document.\nNo metadata at all."
	meta, body := Parse(content)
	if meta.Source != "" || meta.Status != "" {
		t.Errorf("expected zero metadata, got %+v", meta)
	}
	if body != content {
		t.Errorf("body = %q", body)
	}
}

func TestParseMalformedYAMLTolerated(t *testing.T) {
	content := "---\nsource: [unclosed\n---\n\nBody survives."
	meta, body := Parse(content)
	if meta.Source != "" {
		t.Errorf("malformed metadata produced %+v", meta)
	}
	if !strings.Contains(body, "Body survives.") {
		t.Errorf("body lost: %q", body)
	}
}

func TestRoundTripPreservesUnknownKeys(t *testing.T) {
	content := `---
source: email
custom_field: custom value
another_tool_key: 42
---

Body.`

	meta, body := Parse(content)
	if meta.Extra["custom_field"] != "custom value" {
		t.Errorf("Extra = %v", meta.Extra)
	}

	out, err := Render(meta, body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	meta2, _ := Parse(out)
	if meta2.Source != "email" {
		t.Errorf("Source lost in round-trip: %q", meta2.Source)
	}
	if meta2.Extra["custom_field"] != "custom value" {
		t.Errorf("unknown key lost in round-trip: %v", meta2.Extra)
	}
	if v, ok := meta2.Extra["another_tool_key"]; !ok {
		t.Errorf("another_tool_key lost: %v", v)
	}
}

func TestRenderDeterministicOrder(t *testing.T) {
	meta := Frontmatter{
		Source:       "chat",
		Status:       "pending",
		IntakeDate:   "2025-01-15",
		Participants: []string{"jane"},
		Extra:        map[string]any{"zeta": "z", "alpha": "a"},
	}

	first, err := Render(meta, "body")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Render(meta, "body")
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("nondeterministic render:\n%s\nvs\n%s", first, again)
		}
	}

	// Extra keys serialize sorted, after recognized keys.
	if strings.Index(first, "alpha:") > strings.Index(first, "zeta:") {
		t.Errorf("extra keys not sorted:\n%s", first)
	}
	if strings.Index(first, "source:") > strings.Index(first, "alpha:") {
		t.Errorf("recognized keys should precede extras:\n%s", first)
	}
}

func TestRenderOmitsZeroValues(t *testing.T) {
	out, err := Render(Frontmatter{Source: "notes"}, "body")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "task_count") || strings.Contains(out, "organized") {
		t.Errorf("zero values serialized:\n%s", out)
	}
}

func TestSplit(t *testing.T) {
	fm, body, ok := Split("---\na: b\n---\n\nrest")
	if !ok {
		t.Fatal("Split failed on valid frontmatter")
	}
	if !strings.Contains(fm, "a: b") {
		t.Errorf("fm = %q", fm)
	}
	if strings.TrimSpace(body) != "rest" {
		t.Errorf("body = %q", body)
	}

	if _, _, ok := Split("no frontmatter"); ok {
		t.Error("Split reported frontmatter where none exists")
	}
}
