// Package timeutil provides shared timing and duration formatting utilities.
package timeutil

import (
	"fmt"
	"time"
)

// now is replaced in tests.
var now = time.Now

// Measure runs fn and returns its result along with how long it took.
func Measure[T any](fn func() (T, error)) (T, time.Duration, error) {
	start := now()
	v, err := fn()
	return v, now().Sub(start), err
}

// FormatSeconds formats d as seconds with six decimal places,
// e.g. "0.000412".
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.6f", d.Seconds())
}

// FormatDuration formats a duration in a human-readable way, picking the
// largest unit that keeps the number readable.
//
// Examples:
//   - 850µs -> "850µs"
//   - 12.34ms -> "12.3ms"
//   - 1.5s -> "1.50s"
//   - 90s -> "1m30s"
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return d.Truncate(time.Second).String()
	}
}
