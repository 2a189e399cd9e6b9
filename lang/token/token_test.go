package token

import "testing"

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		if k.String() == "" {
			t.Errorf("missing string representation of kind %d", k)
		}
	}
}

func TestLookupIdent(t *testing.T) {
	cases := map[string]Kind{
		"and":     AND,
		"class":   CLASS,
		"while":   WHILE,
		"super":   SUPER,
		"foo":     IDENTIFIER,
		"Class":   IDENTIFIER,
		"forEach": IDENTIFIER,
	}
	for ident, want := range cases {
		if got := LookupIdent(ident); got != want {
			t.Errorf("LookupIdent(%q) = %v, want %v", ident, got, want)
		}
	}
}
