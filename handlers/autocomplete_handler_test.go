package handlers

import "testing"

func TestCommandChoices(t *testing.T) {
	tests := []struct {
		typed string
		want  []string
	}{
		{"ba", []string{"ban", "banrequest"}},
		{"modc", []string{"modcases"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		got := commandChoices(tt.typed)
		var names []string
		for _, c := range got {
			names = append(names, c.Name)
		}
		if len(names) != len(tt.want) {
			t.Errorf("commandChoices(%q) = %v, want %v", tt.typed, names, tt.want)
			continue
		}
		for i := range names {
			if names[i] != tt.want[i] {
				t.Errorf("commandChoices(%q) = %v, want %v", tt.typed, names, tt.want)
				break
			}
		}
	}
	if n := len(commandChoices("")); n > maxChoices {
		t.Errorf("empty query returned %d choices", n)
	}
}
