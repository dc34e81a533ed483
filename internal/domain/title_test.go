package domain

import "testing"

func TestNormalizeAliases(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "trims segments", raw: " Software Engineer ; Developer ", want: "Software Engineer;Developer"},
		{name: "drops empty segments", raw: "Developer;;;Coder", want: "Developer;Coder"},
		{name: "dedup keeps first occurrence", raw: "Developer;developer;DEVELOPER;Coder", want: "Developer;Coder"},
		{name: "only separators collapse to empty", raw: ";;;", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeAliases(tc.raw)
			if got != tc.want {
				t.Errorf("NormalizeAliases(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestAddOtherName(t *testing.T) {
	title := Title{Name: "Software Engineer"}

	title.AddOtherName("Developer")
	title.AddOtherName("developer")
	title.AddOtherName("  ")
	title.AddOtherName("Coder")

	if got := title.OtherNames; got != "Developer;Coder" {
		t.Errorf("OtherNames = %q, want %q", got, "Developer;Coder")
	}
}
