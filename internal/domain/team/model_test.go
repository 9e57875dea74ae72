package team

import "testing"

func TestParseBracket(t *testing.T) {
	tests := []struct {
		in      string
		want    Bracket
		wantErr bool
	}{
		{in: "beginner", want: BracketBeginner},
		{in: " Advanced ", want: BracketAdvanced},
		{in: "expert", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseBracket(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseBracket(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseBracket(%q)=%q,%v want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestTeam_Validate(t *testing.T) {
	valid := Team{Name: "alpha", Bracket: BracketBeginner, Members: []string{"ana"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid team: %v", err)
	}

	noMembers := valid
	noMembers.Members = nil
	if err := noMembers.Validate(); err == nil {
		t.Fatalf("expected error for team without members")
	}

	badBracket := valid
	badBracket.Bracket = "pro"
	if err := badBracket.Validate(); err == nil {
		t.Fatalf("expected error for unknown bracket")
	}
}

func TestTeam_HasActiveVersion(t *testing.T) {
	if (Team{ActiveVersion: "  "}).HasActiveVersion() {
		t.Fatalf("whitespace active version must count as empty")
	}
	if !(Team{ActiveVersion: "alpha/bot.py"}).HasActiveVersion() {
		t.Fatalf("expected active version")
	}
}
