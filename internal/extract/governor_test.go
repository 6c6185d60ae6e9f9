package extract

import "testing"

func TestGovernorPersonThreshold(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), DefaultVocabulary())

	if g.Accept(Candidate{Text: "Jane Doe", Family: FamilyPerson, Count: 1}) {
		t.Error("single mention accepted")
	}
	if !g.Accept(Candidate{Text: "Jane Doe", Family: FamilyPerson, Count: 2}) {
		t.Error("two mentions rejected")
	}
}

func TestGovernorKnownPeopleBypass(t *testing.T) {
	cfg := DefaultGovernorConfig()
	cfg.KnownPeople = map[string]bool{"Jane Doe": true, "Sunny": true}
	g := NewGovernor(cfg, DefaultVocabulary())

	if !g.Accept(Candidate{Text: "Jane Doe", Family: FamilyPerson, Count: 1}) {
		t.Error("whitelisted person rejected below threshold")
	}
	// The whitelist waives the count check only. A single-token speaker
	// label still fails the structural checks in a per-document pass.
	if g.Accept(Candidate{Text: "Sunny", Family: FamilyPerson, Count: 0.5}) {
		t.Error("single-token whitelisted name accepted in per-document pass")
	}
}

func TestGovernorPopulationAdmitsKnownPeopleOutright(t *testing.T) {
	cfg := PopulationGovernorConfig()
	cfg.KnownPeople = map[string]bool{"Madonna": true}
	g := NewGovernor(cfg, DefaultVocabulary())

	if !g.Accept(Candidate{Text: "Madonna", Family: FamilyPerson, Count: 1}) {
		t.Error("known person rejected in population pass")
	}
	if g.Accept(Candidate{Text: "Prince", Family: FamilyPerson, Count: 1}) {
		t.Error("unknown single-token name accepted in population pass")
	}
}

func TestGovernorTermThreshold(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), DefaultVocabulary())

	if g.Accept(Candidate{Text: "XYZ", Family: FamilyAcronym, Count: 1}) {
		t.Error("single-mention term accepted")
	}
	if !g.Accept(Candidate{Text: "XYZ", Family: FamilyAcronym, Count: 2}) {
		t.Error("two-mention term rejected")
	}
}

func TestGovernorPopulationThresholds(t *testing.T) {
	g := NewGovernor(PopulationGovernorConfig(), DefaultVocabulary())

	if g.Accept(Candidate{Text: "Jane Doe", Family: FamilyPerson, Count: 49}) {
		t.Error("49 mentions accepted under population thresholds")
	}
	if !g.Accept(Candidate{Text: "Jane Doe", Family: FamilyPerson, Count: 50}) {
		t.Error("50 mentions rejected under population thresholds")
	}
	if g.Accept(Candidate{Text: "XYZ", Family: FamilyAcronym, Count: 19}) {
		t.Error("19 term mentions accepted under population thresholds")
	}

	// Allow-listed tech terms bypass the count gate entirely.
	if !g.Accept(Candidate{Text: "CDC", Family: FamilyAcronym, Count: 1}) {
		t.Error("allow-listed term rejected in population pass")
	}
}

func TestValidPerson(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), DefaultVocabulary())

	tests := []struct {
		name  string
		valid bool
	}{
		{"Jane Doe", true},
		{"Jane Marie Doe", true},
		{"Jane", false},           // single token
		{"J Doe", false},          // part too short
		{"jane doe", false},       // lowercase initials
		{"Apache Kafka", false},   // org/tech name
		{"The Meeting", false},    // common word
		{"Ed", false},             // too short overall
	}
	for _, tt := range tests {
		if got := g.ValidPerson(tt.name); got != tt.valid {
			t.Errorf("ValidPerson(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestValidTerm(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), DefaultVocabulary())

	tests := []struct {
		term  string
		valid bool
	}{
		{"CDC", true},
		{"Data Lakehouse", true},
		{"ab", false},      // too short
		{"the", false},     // common word
		{"a-b", false},     // too few significant chars
		{"ci-cd", true},
	}
	for _, tt := range tests {
		if got := g.ValidTerm(tt.term); got != tt.valid {
			t.Errorf("ValidTerm(%q) = %v, want %v", tt.term, got, tt.valid)
		}
	}
}

func TestGovernorApply(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), DefaultVocabulary())

	in := []Candidate{
		{Text: "Jane Doe", Family: FamilyPerson, Count: 3},
		{Text: "Jane Doe", Family: FamilyPerson, Count: 1}, // below threshold
		{Text: "CDC", Family: FamilyAcronym, Count: 4},
		{Text: "the", Family: FamilyPhrase, Count: 10}, // invalid term
	}
	out := g.Apply(in)
	if len(out) != 2 {
		t.Fatalf("Apply kept %d candidates, want 2: %+v", len(out), out)
	}
}
