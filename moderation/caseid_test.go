package moderation

import "testing"

func TestNewCaseID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewCaseID()
		if !ValidCaseID(id) {
			t.Fatalf("invalid case id %q", id)
		}
		seen[id] = true
	}
	// 36^6 ids; a thousand draws should essentially never collide.
	if len(seen) < 995 {
		t.Errorf("only %d distinct ids in 1000 draws", len(seen))
	}
}

func TestValidCaseID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"AB12CD", true},
		{"ab12cd", false},
		{"AB12C", false},
		{"AB12CDE", false},
		{"AB-2CD", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidCaseID(tt.id); got != tt.want {
			t.Errorf("ValidCaseID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
	if got := NormalizeCaseID(" ab12cd "); got != "AB12CD" {
		t.Errorf("NormalizeCaseID = %q", got)
	}
}
