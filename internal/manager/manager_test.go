package manager

import (
	"math/rand"
	"testing"
	"time"
)

func TestSearchPairsCrossesPositionsAndLocations(t *testing.T) {
	pairs := searchPairs([]string{"Go Developer", "SRE"}, []string{"Berlin", "Remote"})

	if len(pairs) != 4 {
		t.Fatalf("expected 4 pairs, got %d", len(pairs))
	}

	seen := make(map[pair]bool)
	for _, p := range pairs {
		seen[p] = true
	}
	for _, want := range []pair{
		{"Go Developer", "Berlin"},
		{"Go Developer", "Remote"},
		{"SRE", "Berlin"},
		{"SRE", "Remote"},
	} {
		if !seen[want] {
			t.Fatalf("missing pair %+v", want)
		}
	}
}

func TestShufflePairsKeepsAllPairs(t *testing.T) {
	original := searchPairs([]string{"a", "b", "c"}, []string{"x", "y"})
	shuffled := make([]pair, len(original))
	copy(shuffled, original)

	shufflePairs(rand.New(rand.NewSource(1)), shuffled)

	if len(shuffled) != len(original) {
		t.Fatalf("shuffle changed length: %d", len(shuffled))
	}
	seen := make(map[pair]int)
	for _, p := range shuffled {
		seen[p]++
	}
	for _, p := range original {
		if seen[p] != 1 {
			t.Fatalf("pair %+v appears %d times after shuffle", p, seen[p])
		}
	}
}

func TestPagePauseFillsOutThePeriod(t *testing.T) {
	m := &Manager{rand: rand.New(rand.NewSource(1)), pagePeriod: 15 * time.Minute}

	pause := m.pagePause(0, 5*time.Minute)
	if pause != 10*time.Minute {
		t.Fatalf("expected the remainder of the period, got %s", pause)
	}

	if pause := m.pagePause(0, 20*time.Minute); pause != 0 {
		t.Fatalf("a slow page must not sleep, got %s", pause)
	}
}

func TestPagePauseAddsExtraEveryFifthPage(t *testing.T) {
	m := &Manager{rand: rand.New(rand.NewSource(1)), pagePeriod: 15 * time.Minute}

	pause := m.pagePause(4, 15*time.Minute)
	if pause < extraPauseMin || pause > extraPauseMax {
		t.Fatalf("expected extra pause between %s and %s, got %s", extraPauseMin, extraPauseMax, pause)
	}

	if pause := m.pagePause(5, 15*time.Minute); pause != 0 {
		t.Fatalf("sixth page must not get an extra pause, got %s", pause)
	}
}
