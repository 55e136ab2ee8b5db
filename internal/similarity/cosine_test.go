package similarity

import (
	"math"
	"testing"
)

func TestCounterCosineEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		channel string
		tokens  []string
		expect  float64
	}{
		{name: "empty channel", channel: "", tokens: []string{"marine"}, expect: 0},
		{name: "blank channel", channel: "   ", tokens: []string{"marine"}, expect: 0},
		{name: "empty tokens", channel: "marine biology", tokens: []string{}, expect: 0},
		{name: "nil tokens", channel: "marine biology", tokens: nil, expect: 0},
		{name: "no shared vocabulary", channel: "quantum computing", tokens: []string{"marine"}, expect: 0},
		{name: "only empty tokens", channel: "marine", tokens: []string{"", ""}, expect: 0},
		{name: "identical bags", channel: "marine biology", tokens: []string{"biology", "marine"}, expect: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CounterCosine(tt.channel, tt.tokens)
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestCounterCosineFrequencies(t *testing.T) {
	// a = {marine:2, ocean:1}, b = {marine:1}; cos = 2 / (sqrt(5) * 1)
	got := CounterCosine("marine ocean marine", []string{"marine"})
	expect := 2 / math.Sqrt(5) * 100
	if math.Abs(got-expect) > 1e-9 {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

func TestCounterCosineBounds(t *testing.T) {
	t.Parallel()

	channels := []string{
		"marine biodiversity ocean conservation",
		"a a a a a",
		"x",
		"conservation conservation conservation policy",
	}
	tokenSets := [][]string{
		{"conservation"},
		{"a", "b", "c"},
		{"x", "x", "x", "x"},
		{"policy", "marine", "conservation", "conservation"},
	}

	for _, ch := range channels {
		for _, toks := range tokenSets {
			got := CounterCosine(ch, toks)
			if math.IsNaN(got) || math.IsInf(got, 0) || got < 0 || got > MaxScore {
				t.Fatalf("score out of range for %q vs %q: %v", ch, toks, got)
			}
		}
	}
}

func TestCounterCosineSwappedArgumentsDoNotPanic(t *testing.T) {
	a := "marine biodiversity"
	b := []string{"ocean", "marine"}

	forward := CounterCosine(a, b)
	swapped := CounterCosine(b[0]+" "+b[1], []string{"marine", "biodiversity"})

	if forward < 0 || swapped < 0 {
		t.Fatalf("expected non-negative scores, got %v and %v", forward, swapped)
	}
}

func TestCounterScoreMatchesCounterCosine(t *testing.T) {
	t.Parallel()

	channel := "marine biodiversity ocean conservation marine"
	tokens := []string{"research", "marine", "biodiversity", "conservation"}

	want := CounterCosine(channel, tokens)
	got := NewCounter([]string{"marine", "biodiversity", "ocean", "conservation", "marine"}).Score(NewCounter(tokens))
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got <= 0 || got > MaxScore {
		t.Fatalf("score out of range: %v", got)
	}
}
