package store

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Boulangerie Pâtisserie Marcel & Fils", "boulangerie-patisserie-marcel-fils"},
		{"SOCIÉTÉ GÉNÉRALE", "societe-generale"},
		{"  ACME  SARL  ", "acme-sarl"},
		{"Cœur d'Alsace", "coeur-d-alsace"},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestArtifactKey(t *testing.T) {
	got := ArtifactKey("ACME SARL", "550e8400-e29b-41d4-a716-446655440000", "json")
	want := "insights/acme-sarl/550e8400-e29b-41d4-a716-446655440000.json"
	if got != want {
		t.Errorf("ArtifactKey = %q, want %q", got, want)
	}
}
