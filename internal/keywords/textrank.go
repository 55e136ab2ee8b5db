package keywords

import (
	"context"
	"math"
	"slices"

	"github.com/spigell/scholar-matcher/internal/textnorm"
)

const (
	textRankWindow  = 4
	textRankDamping = 0.85
	textRankMaxIter = 100
	textRankEpsilon = 1e-6
)

// textRankExtractor scores normalized words with PageRank over a
// co-occurrence graph.
type textRankExtractor struct {
	norm *textnorm.Normalizer
}

func (e *textRankExtractor) Algorithm() Algorithm { return Gensim }

func (e *textRankExtractor) Extract(ctx context.Context, text string, topN int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := e.norm.Normalize(text)
	nodes, edges := cooccurrence(words)
	scores := pageRank(len(nodes), edges)

	idx := make([]int, len(nodes))
	for i := range idx {
		idx[i] = i
	}
	// Nodes are in first-occurrence order, so stable sort keeps ties deterministic.
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		default:
			return 0
		}
	})

	out := make([]string, len(idx))
	for i, n := range idx {
		out[i] = nodes[n]
	}
	return truncate(out, topN), nil
}

type weightedEdge struct {
	to     int
	weight float64
}

func cooccurrence(words []string) ([]string, [][]weightedEdge) {
	index := make(map[string]int)
	var nodes []string
	for _, w := range words {
		if _, ok := index[w]; !ok {
			index[w] = len(nodes)
			nodes = append(nodes, w)
		}
	}

	weights := make([]map[int]float64, len(nodes))
	for i := range weights {
		weights[i] = make(map[int]float64)
	}
	for i, w := range words {
		from := index[w]
		for j := i + 1; j < min(i+textRankWindow, len(words)); j++ {
			to := index[words[j]]
			if from == to {
				continue
			}
			weights[from][to]++
			weights[to][from]++
		}
	}

	edges := make([][]weightedEdge, len(nodes))
	for i, m := range weights {
		for to, w := range m {
			edges[i] = append(edges[i], weightedEdge{to: to, weight: w})
		}
		slices.SortFunc(edges[i], func(a, b weightedEdge) int { return a.to - b.to })
	}
	return nodes, edges
}

func pageRank(n int, edges [][]weightedEdge) []float64 {
	if n == 0 {
		return nil
	}
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}
	out := make([]float64, n)
	for i, es := range edges {
		for _, e := range es {
			out[i] += e.weight
		}
	}

	for range textRankMaxIter {
		next := make([]float64, n)
		delta := 0.0
		for i := range n {
			sum := 0.0
			for _, e := range edges[i] {
				if out[e.to] > 0 {
					sum += e.weight / out[e.to] * scores[e.to]
				}
			}
			next[i] = (1-textRankDamping)/float64(n) + textRankDamping*sum
			delta = math.Max(delta, math.Abs(next[i]-scores[i]))
		}
		scores = next
		if delta < textRankEpsilon {
			break
		}
	}
	return scores
}
