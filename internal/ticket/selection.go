package ticket

import "github.com/tndhk/keiba-core/internal/domain"

// topNHorseNumbers returns the first n horse numbers from predictions,
// which the prediction service already orders by descending combined
// score, ties broken by higher ml_probability, then lower horse number.
func topNHorseNumbers(predictions []domain.PredictionResult, n int) []int {
	if n > len(predictions) {
		n = len(predictions)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = predictions[i].HorseNumber
	}
	return out
}

func samePair(a, b [2]int) bool {
	return (a[0] == b[0] && a[1] == b[1]) || (a[0] == b[1] && a[1] == b[0])
}

func sameTriple(a, b [3]int) bool {
	seen := map[int]bool{a[0]: true, a[1]: true, a[2]: true}
	return seen[b[0]] && seen[b[1]] && seen[b[2]]
}
