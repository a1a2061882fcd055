package knowledge

import (
	"math"
	"sort"
)

// cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or their dimensions differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// nearest returns the indexes of the fetchK vectors most similar to query,
// best first, with their similarities.
func nearest(query []float32, vecs [][]float32, fetchK int) ([]int, []float64) {
	idx := make([]int, len(vecs))
	sims := make([]float64, len(vecs))
	for i, v := range vecs {
		idx[i] = i
		sims[i] = cosine(query, v)
	}
	sort.SliceStable(idx, func(a, b int) bool { return sims[idx[a]] > sims[idx[b]] })
	if fetchK > 0 && len(idx) > fetchK {
		idx = idx[:fetchK]
	}
	top := make([]float64, len(idx))
	for i, j := range idx {
		top[i] = sims[j]
	}
	return idx, top
}

// mmr selects up to k of the candidate vectors by maximal marginal
// relevance: each pick maximizes lambda*sim(query) - (1-lambda)*max
// sim(already picked). It returns positions into candidates.
func mmr(query []float32, candidates [][]float32, k int, lambda float64) []int {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	k = min(k, len(candidates))

	toQuery := make([]float64, len(candidates))
	best := 0
	for i, c := range candidates {
		toQuery[i] = cosine(query, c)
		if toQuery[i] > toQuery[best] {
			best = i
		}
	}

	selected := []int{best}
	picked := make([]bool, len(candidates))
	picked[best] = true
	// redundancy[i] is the highest similarity of candidate i to any pick.
	redundancy := make([]float64, len(candidates))
	for i, c := range candidates {
		redundancy[i] = cosine(c, candidates[best])
	}

	for len(selected) < k {
		next, nextScore := -1, math.Inf(-1)
		for i := range candidates {
			if picked[i] {
				continue
			}
			score := lambda*toQuery[i] - (1-lambda)*redundancy[i]
			if score > nextScore {
				next, nextScore = i, score
			}
		}
		selected = append(selected, next)
		picked[next] = true
		for i, c := range candidates {
			if s := cosine(c, candidates[next]); s > redundancy[i] {
				redundancy[i] = s
			}
		}
	}
	return selected
}
