package massimport

import "testing"

func TestNormalizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"  a1-2b ":          "A12B",
		"A1_2B":             "A12B",
		"a1.2b.pdf":         "A12B",
		"AB12 34":           "AB1234",
		"ab1234.PDF":        "AB1234",
		"\u00a0BE\u202f987": "BE987",
		"123.0":             "123",
		"1.2E9":             "1200000000",
		"1.5E+3":            "1500",
		"Élodie-7":          "ELODIE7",
		"   ":               "",
		".pdf":              "",
	}
	for in, want := range cases {
		if got := NormalizeIdentifier(in); got != want {
			t.Fatalf("NormalizeIdentifier(%q)=%q want %q", in, got, want)
		}
	}
}

func TestNormalizeIdentifierIsFixedPoint(t *testing.T) {
	inputs := []string{"  a1-2b ", "1.2E9", "123.0", "AB12 34", "1E5", "x.y.z", "Élodie-7"}
	for _, in := range inputs {
		once := NormalizeIdentifier(in)
		if twice := NormalizeIdentifier(once); twice != once {
			t.Fatalf("not a fixed point for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Formation EPI":        "formation_epi",
		"Mise à pied":          "mise_a_pied",
		"Blâme":                "blame",
		"  Travail en hauteur": "travail_en_hauteur",
		"Lutte--incendie":      "lutte_incendie",
		"Fin d'contrat":        "fin_d_contrat",
		"déjà_normalisé":       "deja_normalise",
	}
	for in, want := range cases {
		if got := NormalizeKey(in); got != want {
			t.Fatalf("NormalizeKey(%q)=%q want %q", in, got, want)
		}
	}
}
