package ui

import (
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/i474232898/weather-cities/internal/weather"
)

// hourlyEntries is how many forecast entries the detail view shows (24h).
const hourlyEntries = 8

var compass = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// roundHalfUp rounds like JavaScript's Math.round: halves go towards +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// cardImageURL returns a stable background picture for a city. The seed is
// the sum of the name's UTF-16 code units.
func cardImageURL(name string) string {
	seed := 0
	for _, u := range utf16.Encode([]rune(name)) {
		seed += int(u)
	}
	return fmt.Sprintf("https://picsum.photos/seed/%d/800/600", seed)
}

// compassDirection maps degrees to an 8-point compass name.
func compassDirection(deg float64) string {
	i := roundHalfUp(deg/45) % len(compass)
	if i < 0 {
		i += len(compass)
	}
	return compass[i]
}

// tempScale holds the rounded temperature bounds of a chart.
type tempScale struct {
	Min, Max, Range int
}

func newTempScale(entries []weather.Snapshot) tempScale {
	if len(entries) == 0 {
		return tempScale{Range: 1}
	}
	s := tempScale{Min: roundHalfUp(entries[0].Temperature), Max: roundHalfUp(entries[0].Temperature)}
	for _, e := range entries[1:] {
		t := roundHalfUp(e.Temperature)
		s.Min = min(s.Min, t)
		s.Max = max(s.Max, t)
	}
	s.Range = s.Max - s.Min
	if s.Range == 0 {
		s.Range = 1
	}
	return s
}

// barHeight is the bar height in percent, never below 10.
func (s tempScale) barHeight(temp int) float64 {
	h := float64(temp-s.Min) / float64(s.Range) * 100
	return math.Max(h, 10)
}

// windSpeed prints a speed with at most two decimals and no trailing zeros.
func windSpeed(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func percent(fraction float64) int {
	return roundHalfUp(fraction * 100)
}

// visibilityKm formats metres as kilometres with one decimal. Zero means
// unknown and yields "".
func visibilityKm(m float64) string {
	if m <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", m/1000)
}

func clockTime(t time.Time) string {
	return t.Local().Format("03:04 PM")
}

func shortDate(t time.Time) string {
	return t.Local().Format("Mon, Jan 2")
}

func firstN(entries []weather.Snapshot, n int) []weather.Snapshot {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
