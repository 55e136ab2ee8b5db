// Package similarity scores bag-of-words overlap between scholar and proposal text.
package similarity

import (
	"math"
	"strings"
)

// MaxScore is the score of two identical term-frequency vectors.
const MaxScore = 100.0

// Counter is a term-frequency multiset.
type Counter map[string]int

// NewCounter counts tokens, ignoring empty strings.
func NewCounter(tokens []string) Counter {
	c := make(Counter, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		c[t]++
	}
	return c
}

// Magnitude is the L2 norm of the frequency vector.
func (c Counter) Magnitude() float64 {
	var sum float64
	for _, n := range c {
		sum += float64(n) * float64(n)
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of c and other in [0,1].
// Zero-magnitude vectors score 0.
func (c Counter) Cosine(other Counter) float64 {
	if len(c) == 0 || len(other) == 0 {
		return 0
	}

	small, large := c, other
	if len(small) > len(large) {
		small, large = large, small
	}

	var dot float64
	for term, n := range small {
		if m, ok := large[term]; ok {
			dot += float64(n) * float64(m)
		}
	}

	denom := c.Magnitude() * other.Magnitude()
	if dot == 0 || denom == 0 {
		return 0
	}

	sim := dot / denom
	if math.IsNaN(sim) || math.IsInf(sim, 0) || sim < 0 {
		return 0
	}
	return math.Min(sim, 1)
}

// Score is Cosine scaled to [0, MaxScore]. Callers scoring one counter
// against many build the counters once and call Score directly.
func (c Counter) Score(other Counter) float64 {
	return c.Cosine(other) * MaxScore
}

// CounterCosine scores a whitespace-joined scholar channel against a proposal
// token list. The result is cosine x 100 in [0,100]; empty input on either side
// scores exactly 0.
func CounterCosine(channelText string, tokens []string) float64 {
	if strings.TrimSpace(channelText) == "" || len(tokens) == 0 {
		return 0
	}
	return NewCounter(strings.Fields(channelText)).Score(NewCounter(tokens))
}
