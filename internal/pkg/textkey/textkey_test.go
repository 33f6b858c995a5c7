package textkey

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Alice", want: "alice"},
		{name: "collapses_whitespace", in: "  Cafe   de  Flore ", want: "cafe de flore"},
		{name: "folds_diacritics", in: "Café de Flore", want: "cafe de flore"},
		{name: "folds_mixed", in: "Zoë  MÜLLER", want: "zoe muller"},
		{name: "empty", in: "", want: ""},
		{name: "only_spaces", in: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Fatalf("Normalize(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	// Names that must resolve to the same natural key.
	pairs := [][2]string{
		{"café de flore", "Cafe De Flore"},
		{"  alice ", "ALICE"},
		{"São Paulo", "sao   paulo"},
	}
	for _, p := range pairs {
		if Normalize(p[0]) != Normalize(p[1]) {
			t.Fatalf("expected %q and %q to share a key, got %q vs %q",
				p[0], p[1], Normalize(p[0]), Normalize(p[1]))
		}
	}
}
