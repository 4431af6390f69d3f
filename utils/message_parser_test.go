package utils

import (
	"reflect"
	"testing"
)

const (
	idA = "500000000000000001"
	idB = "500000000000000002"
)

func TestParsePrefixCommand(t *testing.T) {
	tests := []struct {
		content string
		want    PrefixCommand
		ok      bool
	}{
		{".warn <@" + idA + "> ?r spam", PrefixCommand{Name: "warn", Args: "<@" + idA + "> ?r spam"}, true},
		{".W", PrefixCommand{Name: "w"}, true},
		{".case   ABC123  ", PrefixCommand{Name: "case", Args: "ABC123"}, true},
		{"warn me", PrefixCommand{}, false},
		{".", PrefixCommand{}, false},
		{"...", PrefixCommand{}, false},
		{"", PrefixCommand{}, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrefixCommand(tt.content, ".")
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParsePrefixCommand(%q) = %+v, %v; want %+v, %v", tt.content, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExtractUserID(t *testing.T) {
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"<@" + idA + ">", idA, true},
		{"<@!" + idA + ">", idA, true},
		{idA, idA, true},
		{"<@&" + idA + ">", "", false},
		{"<#" + idA + ">", "", false},
		{"12345", "", false},
		{"someone", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractUserID(tt.token)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractUserID(%q) = %q, %v; want %q, %v", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseTargets(t *testing.T) {
	tests := []struct {
		name        string
		args        string
		wantTargets []string
		wantRest    string
	}{
		{"mentions then reason", "<@" + idA + "> " + idB + " ?r spamming links", []string{idA, idB}, "?r spamming links"},
		{"duration after target", "<@" + idA + "> 10m ?r calm down", []string{idA}, "10m ?r calm down"},
		{"no targets", "?r nothing", nil, "?r nothing"},
		{"stops at first non-user", idA + " hello " + idB, []string{idA}, "hello " + idB},
		{"empty", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, rest := ParseTargets(tt.args)
			if !reflect.DeepEqual(targets, tt.wantTargets) || rest != tt.wantRest {
				t.Errorf("got %v, %q; want %v, %q", targets, rest, tt.wantTargets, tt.wantRest)
			}
		})
	}
}

func TestParseReason(t *testing.T) {
	tests := map[string]string{
		"?r spamming":          "spamming",
		"ignored ?r kept ?r x": "kept ?r x",
		"plain reason":         "plain reason",
		"?r   ":                "",
		"":                     "",
	}
	for in, want := range tests {
		if got := ParseReason(in); got != want {
			t.Errorf("ParseReason(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNextToken(t *testing.T) {
	tok, rest := NextToken("  10m  ?r slow down")
	if tok != "10m" || rest != "?r slow down" {
		t.Errorf("NextToken = %q, %q", tok, rest)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 10); got != "héllo" {
		t.Errorf("short string changed: %q", got)
	}
	if got := Truncate("héllo world", 5); got != "héll…" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestParseHexColor(t *testing.T) {
	if got := ParseHexColor("#FACF24"); got != 0xFACF24 {
		t.Errorf("ParseHexColor = %x", got)
	}
	if got := ParseHexColor("nope"); got != ColorDanger {
		t.Errorf("invalid color = %x, want ColorDanger", got)
	}
}
