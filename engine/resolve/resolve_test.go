package resolve

import (
	"errors"
	"testing"

	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

func roster() []*types.Character {
	return []*types.Character{
		{ID: "p1", Name: "Aria Stormborn"},
		{ID: "p2", Name: "Bram"},
		{ID: "p3", Name: "Bram"},
		{ID: "p4", Name: "Aria Dawn"},
		{ID: "cato", Name: "Old Cato"},
		{ID: "p6", Name: "Cato"},
	}
}

func ids(cs []*types.Character) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestCharacters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"full name case-insensitive", "aria stormborn", []string{"p1"}},
		{"shared name keeps all", "BRAM", []string{"p2", "p3"}},
		{"single word", "stormborn", []string{"p1"}},
		{"exact name beats id", "cato", []string{"p6"}},
		{"id", "p4", []string{"p4"}},
		{"surrounding space", "  Dawn ", []string{"p4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Characters(tt.query, roster())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g := ids(got); len(g) != len(tt.want) || g[0] != tt.want[0] || g[len(g)-1] != tt.want[len(tt.want)-1] {
				t.Errorf("got %v, want %v", g, tt.want)
			}
		})
	}
}

func TestCharacters_Ambiguous(t *testing.T) {
	_, err := Characters("aria", roster())
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError, got %v", err)
	}
	if len(amb.Candidates) != 2 || amb.Candidates[0] != "Aria Dawn" || amb.Candidates[1] != "Aria Stormborn" {
		t.Errorf("candidates = %v", amb.Candidates)
	}
	if want := "which aria? (Aria Dawn, Aria Stormborn)"; err.Error() != want {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCharacters_NotFound(t *testing.T) {
	for _, q := range []string{"Zed", "ari", ""} {
		_, err := Characters(q, roster())
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("%q: expected NotFoundError, got %v", q, err)
		}
	}
	if _, err := Characters("Bram", nil); err == nil {
		t.Error("expected error with no candidates")
	}
}
