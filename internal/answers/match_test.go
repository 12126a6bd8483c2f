package answers

import "testing"

func TestBestMatchPicksClosestOption(t *testing.T) {
	options := []string{"1-2 years", "3-5 years", "6-10 years", "10+ years"}

	if got := BestMatch("10+", options); got != "10+ years" {
		t.Fatalf("BestMatch = %q, want %q", got, "10+ years")
	}
	if got := BestMatch("3-5 Years", options); got != "3-5 years" {
		t.Fatalf("BestMatch = %q, want %q", got, "3-5 years")
	}
}

func TestBestMatchAlwaysReturnsMember(t *testing.T) {
	options := []string{"Yes", "No"}
	for _, answer := range []string{"", "completely unrelated reply", "yes and no"} {
		got := BestMatch(answer, options)
		if got != "Yes" && got != "No" {
			t.Fatalf("BestMatch(%q) = %q, not a member of options", answer, got)
		}
	}
}

func TestBestMatchDegenerateInputs(t *testing.T) {
	if got := BestMatch("anything", nil); got != "" {
		t.Fatalf("BestMatch on empty options = %q, want empty", got)
	}
	if got := BestMatch("", []string{"only"}); got != "only" {
		t.Fatalf("BestMatch on single option = %q, want %q", got, "only")
	}

	// Equidistant options keep the earliest one.
	if got := BestMatch("", []string{"a", "b", "c"}); got != "a" {
		t.Fatalf("BestMatch with empty answer = %q, want earliest option", got)
	}

	// An empty answer is closest to the shortest option.
	if got := BestMatch("", []string{"bb", "a", "cc"}); got != "a" {
		t.Fatalf("BestMatch with empty answer = %q, want shortest option", got)
	}
}

func TestBestMatchTieKeepsEarliest(t *testing.T) {
	if got := BestMatch("ax", []string{"ay", "az"}); got != "ay" {
		t.Fatalf("BestMatch on tie = %q, want earliest option", got)
	}
}

func TestExtractNumber(t *testing.T) {
	cases := []struct {
		in       string
		fallback int
		want     int
	}{
		{"I have 5 years of experience", 0, 5},
		{"around 12, maybe 13", 0, 12},
		{"no digits here", 3, 3},
		{"", 7, 7},
		{"42", 0, 42},
	}

	for _, tc := range cases {
		if got := ExtractNumber(tc.in, tc.fallback); got != tc.want {
			t.Fatalf("ExtractNumber(%q, %d) = %d, want %d", tc.in, tc.fallback, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2026-09-01")
	if !ok || got != "2026-09-01" {
		t.Fatalf("ParseDate = %q, %v", got, ok)
	}

	got, ok = ParseDate("09/01/2026")
	if !ok || got != "2026-09-01" {
		t.Fatalf("ParseDate slash format = %q, %v", got, ok)
	}

	if _, ok := ParseDate("whenever works"); ok {
		t.Fatalf("expected failure for unparseable date")
	}
}
