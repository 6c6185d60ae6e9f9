package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantSource SourceType
		wantConf   Confidence
	}{
		{
			name: "transcript high confidence",
			text: `WEBVTT
00:01:15 Jane Doe: Can you hear me?
00:01:22 John Smith: Yes. Let me share my screen.
Jane Doe: You're on mute.`,
			wantSource: SourceTranscript,
			wantConf:   ConfidenceHigh,
		},
		{
			name: "chat",
			text: `10:42 AM @jane replied to a thread in #data-platform :thumbsup:`,
			wantSource: SourceChat,
			wantConf:   ConfidenceHigh,
		},
		{
			name: "ticket",
			text: `DATA-1234
Summary: Iceberg table compaction
Description: Compaction jobs fail on large partitions.
Acceptance Criteria: jobs complete under an hour.
Story Points: 5
Status: In Progress`,
			wantSource: SourceTicket,
			wantConf:   ConfidenceHigh,
		},
		{
			name: "email",
			text: `From: jane@example.com
To: team@example.com
Subject: Re: schema rollout
Date: Mon, 13 Jan 2025

Best regards,
Jane`,
			wantSource: SourceEmail,
			wantConf:   ConfidenceHigh,
		},
		{
			name: "meeting notes",
			text: `Agenda
Attendees: Jane Doe, John Smith
Action Items
Next Steps
Decisions`,
			wantSource: SourceMeeting,
			wantConf:   ConfidenceHigh,
		},
		{
			name: "wiki",
			text: `Confluence page
Table of Contents
===
Page Information`,
			wantSource: SourceWiki,
			wantConf:   ConfidenceMedium,
		},
		{
			name:       "fallback notes",
			text:       `just some plain thoughts about nothing in particular`,
			wantSource: SourceNotes,
			wantConf:   ConfidenceLow,
		},
		{
			name:       "single weak signal",
			text:       `we talked about the sprint briefly`,
			wantSource: SourceTicket,
			wantConf:   ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, conf := Classify(tt.text)
			if source != tt.wantSource {
				t.Errorf("source = %s, want %s", source, tt.wantSource)
			}
			if conf != tt.wantConf {
				t.Errorf("confidence = %s, want %s", conf, tt.wantConf)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := `Agenda, attendees, and a sprint discussion with action items.`
	s1, c1 := Classify(text)
	for i := 0; i < 5; i++ {
		s2, c2 := Classify(text)
		if s1 != s2 || c1 != c2 {
			t.Fatalf("nondeterministic: (%s,%s) then (%s,%s)", s1, c1, s2, c2)
		}
	}
}

func TestParseSourceType(t *testing.T) {
	if got := ParseSourceType("Email"); got != SourceEmail {
		t.Errorf("ParseSourceType(Email) = %s", got)
	}
	if got := ParseSourceType("unknown-thing"); got != SourceNotes {
		t.Errorf("ParseSourceType fallback = %s", got)
	}
}
