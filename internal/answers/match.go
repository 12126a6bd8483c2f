package answers

import (
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// BestMatch picks the option closest to answer by edit distance over the
// lowercased forms. Ties keep the earliest option. The result is always a
// member of options; an empty list yields the empty string.
func BestMatch(answer string, options []string) string {
	if len(options) == 0 {
		return ""
	}

	needle := strings.ToLower(strings.TrimSpace(answer))
	best := options[0]
	bestDistance := -1
	for _, option := range options {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(option))
		if bestDistance == -1 || d < bestDistance {
			best = option
			bestDistance = d
		}
	}
	return best
}

// ExtractNumber returns the first run of digits in s, or fallback when there
// is none.
func ExtractNumber(s string, fallback int) int {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return fallback
			}
			return n
		}
	}
	if start != -1 {
		n, err := strconv.Atoi(s[start:])
		if err != nil {
			return fallback
		}
		return n
	}
	return fallback
}

// dateLayouts are tried in order when parsing model replies.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"January 2, 2006",
	"2 January 2006",
}

// ParseDate extracts a calendar date from the reply and renders it as
// yyyy-mm-dd, the format the datepicker inputs accept.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
