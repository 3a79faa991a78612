package service

import "math"

// HoursFromMinutes converts minutes to hours rounded to one decimal place,
// halves away from zero.
func HoursFromMinutes(minutes int64) float64 {
	return math.Round(float64(minutes)/60.0*10) / 10
}
