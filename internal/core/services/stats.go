package services

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
)

// overrepresentation returns the one-sided Fisher exact p-value of observing
// at least overlap pathway members among sample genes, for a pathway of
// pathwaySize members in a background of background genes. This is the
// upper tail of the hypergeometric distribution.
//
//	            in pathway        not in pathway
//	sample      overlap           sample-overlap
//	rest        size-overlap      background-sample-size+overlap
func overrepresentation(overlap, sample, pathwaySize, background int) float64 {
	if overlap > sample || overlap > pathwaySize {
		return 1
	}
	if overlap <= 0 {
		return 1
	}
	// A background smaller than the table margins allows is widened.
	if minimum := sample + pathwaySize - overlap; background < minimum {
		background = minimum
	}

	n, k, total := float64(sample), float64(pathwaySize), float64(background)
	logTotal := combin.LogGeneralizedBinomial(total, n)

	hi := min(sample, pathwaySize)
	terms := make([]float64, 0, hi-overlap+1)
	for i := overlap; i <= hi; i++ {
		x := float64(i)
		if n-x > total-k {
			continue
		}
		terms = append(terms, combin.LogGeneralizedBinomial(k, x)+
			combin.LogGeneralizedBinomial(total-k, n-x)-logTotal)
	}
	return clampProbability(expSum(terms))
}

// expSum returns log-sum-exp of terms, exponentiated.
func expSum(terms []float64) float64 {
	if len(terms) == 0 {
		return 0
	}
	peak := terms[0]
	for _, t := range terms[1:] {
		peak = math.Max(peak, t)
	}
	var sum float64
	for _, t := range terms {
		sum += math.Exp(t - peak)
	}
	return math.Exp(peak) * sum
}

// benjaminiHochberg returns the step-up adjusted p-values in input order.
func benjaminiHochberg(pvalues []float64) []float64 {
	m := len(pvalues)
	adjusted := make([]float64, m)
	if m == 0 {
		return adjusted
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pvalues[order[a]] < pvalues[order[b]]
	})

	running := 1.0
	for rank := m; rank >= 1; rank-- {
		i := order[rank-1]
		q := pvalues[i] * float64(m) / float64(rank)
		if q < running {
			running = q
		}
		adjusted[i] = clampProbability(running)
	}
	return adjusted
}

// significance converts a corrected p-value into -log10(p), floored to
// avoid infinities for p == 0.
func significance(p float64) float64 {
	return -math.Log10(math.Max(p, 1e-300))
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// stableSum adds values in ascending order so the result does not depend on
// the order the values were collected in.
func stableSum(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum
}
