// Package grading computes averages and the pass/fail outcome of a student.
package grading

import (
	"math"
	"strconv"
)

// Average returns the arithmetic mean of scores. An empty slice yields NaN.
func Average(scores []float64) float64 {
	if len(scores) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// FormatOneDecimal rounds half away from zero and formats with one decimal digit.
func FormatOneDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

// FormatScore prints a raw score in its shortest form (10, 7.5, 6.25).
// Negative zero prints as 0.
func FormatScore(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
