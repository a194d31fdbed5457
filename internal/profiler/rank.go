package profiler

import "sort"

// Spearman returns the rank correlation of x and y: Pearson's r over the
// ranks, so ties are handled exactly. It is 0 wherever Pearson is.
func Spearman(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return Pearson(Ranks(x), Ranks(y))
}

// Ranks converts values to 1-based ranks; tied values share the average
// of the ranks they span.
func Ranks(data []float64) []float64 {
	n := len(data)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return data[order[i]] < data[order[j]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && data[order[j]] == data[order[i]] {
			j++
		}
		avg := float64(i+1) + float64(j-i-1)/2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}
	return ranks
}
