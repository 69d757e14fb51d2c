package services

import (
	"math"
	"strings"
)

// BMI computes weight(kg) / (height(cm)/100)^2 rounded to one decimal.
// It reports false when either input is not positive.
func BMI(heightCM, weightKG float64) (float64, bool) {
	if heightCM <= 0 || weightKG <= 0 {
		return 0, false
	}
	m := heightCM / 100
	v := weightKG / (m * m)
	return math.Round(v*10) / 10, true
}

// BMICategoryPercent maps a BMI value onto the category progress bar shown
// next to the computed value. Purely presentational; never stored.
func BMICategoryPercent(bmi float64) int {
	switch {
	case bmi < 18.5:
		return 25
	case bmi < 25:
		return 50
	case bmi < 30:
		return 75
	default:
		return 100
	}
}

func trimmed(s string) string { return strings.TrimSpace(s) }
