package internal

import (
	"slices"
	"strconv"
	"strings"
)

// DiceHistogram counts rolled dice tuples. The order of the dice within a
// tuple does not matter: [3,5] and [5,3] land on the same key.
type DiceHistogram map[string]int

// RollKey returns the canonical, order independent key of a dice tuple
func RollKey(values ...int) string {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	parts := make([]string, len(sorted))
	for idx, value := range sorted {
		parts[idx] = strconv.Itoa(value)
	}

	return strings.Join(parts, ",")
}

// Add records one occurrence of the tuple
func (h DiceHistogram) Add(values ...int) {
	h[RollKey(values...)]++
}

// Count returns how many times the tuple, in any order, was recorded
func (h DiceHistogram) Count(values ...int) int {
	return h[RollKey(values...)]
}

// Total returns the number of recorded tuples
func (h DiceHistogram) Total() int {
	total := 0
	for _, count := range h {
		total += count
	}

	return total
}

func mergeCounts[K comparable](dst map[K]int, src map[K]int) {
	for key, count := range src {
		dst[key] += count
	}
}

func sum(values []int) int {
	total := 0
	for _, value := range values {
		total += value
	}

	return total
}
