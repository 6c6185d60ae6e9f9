package classify

import (
	"testing"
	"time"
)

func TestDetectDate(t *testing.T) {
	mod := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"filename wins", "2025-01-15-sync.md", "Meeting on 2025-02-20", "2025-01-15"},
		{"iso in content", "sync.md", "Meeting held 2025-02-20 at noon", "2025-02-20"},
		{"month name in content", "sync.md", "Meeting held January 5, 2025", "2025-01-05"},
		{"slash date in content", "sync.md", "Held on 1/5/2025 remotely", "2025-01-05"},
		{"fallback to mtime", "sync.md", "no dates anywhere", "2025-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDate(tt.filename, tt.content, mod); got != tt.want {
				t.Errorf("DetectDate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParticipantsTranscript(t *testing.T) {
	content := `Jane Doe: hello everyone
John Smith: hi
Jane Doe: let's start`

	got := Participants(content, SourceTranscript)
	want := []string{"Jane Doe", "John Smith"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestParticipantsChat(t *testing.T) {
	got := Participants("@jane can you look? cc @john-s", SourceChat)
	if len(got) != 2 || got[0] != "jane" || got[1] != "john-s" {
		t.Errorf("got %v", got)
	}
}

func TestParticipantsEmailHeaders(t *testing.T) {
	content := `From: Jane Doe
To: John Smith
Subject: rollout

Mary Major appears only in the body.`

	got := Participants(content, SourceEmail)
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 names", got)
	}
	for _, name := range got {
		if name == "Mary Major" {
			t.Error("body name extracted as participant")
		}
	}
}

func TestParticipantsCapped(t *testing.T) {
	content := ""
	for _, n := range []string{"Ann", "Bea", "Cal", "Dot", "Eli", "Fay", "Gus", "Hal", "Ivy", "Jax", "Kim", "Lou"} {
		content += n + " One: hi\n"
	}
	got := Participants(content, SourceTranscript)
	if len(got) != 10 {
		t.Errorf("cap failed: %d participants", len(got))
	}
}

func TestShortDescription(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		want     string
	}{
		{"from filename", "body", "Iceberg Migration Discussion.md", "iceberg-migration-discussion"},
		{"date fragment dropped", "body", "2025 sync notes.md", "sync-notes"},
		{"fallback to content line", "Quarterly planning review for the data team", "2025-01-15.md", "quarterly-planning-review-for-the"},
		{"nothing usable", "", "2025-01-15.md", "document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortDescription(tt.content, tt.filename); got != tt.want {
				t.Errorf("ShortDescription = %q, want %q", got, tt.want)
			}
		})
	}
}
