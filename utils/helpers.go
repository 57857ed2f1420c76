package utils

import "fmt"

func Ptr[T any](v T) *T {
	return &v
}

// FormatDuration renders milliseconds as m:ss, or h:mm:ss from an hour up.
func FormatDuration(ms int) string {
	seconds := ms / 1000
	minutes := seconds / 60
	seconds %= 60
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", minutes/60, minutes%60, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
