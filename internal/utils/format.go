package utils

import (
	"fmt"
	"math"
)

type Unit string

const (
	KB Unit = "KB"
	MB Unit = "MB"
	GB Unit = "GB"
)

const MiB int64 = 1 << 20

var autoLabels = []string{"B", "KB", "MB", "GB", "TB"}

// ToUnit renders bytes in the given unit with two decimals, e.g. "1.50MB".
// An unknown unit yields the plain byte count.
func ToUnit(bytes int64, unit Unit) string {
	var div float64
	switch unit {
	case KB:
		div = 1 << 10
	case MB:
		div = 1 << 20
	case GB:
		div = 1 << 30
	default:
		return fmt.Sprintf("%d", bytes)
	}
	v := math.Round(float64(bytes)/div*100) / 100
	return fmt.Sprintf("%.2f%s", v, unit)
}

// AutoFormat picks the largest unit that keeps the value at or above one,
// e.g. "0.00 B", "1023.00 B", "1.00 MB".
func AutoFormat(bytes int64) string {
	size := float64(bytes)
	n := 0
	for size >= 1024 && n < len(autoLabels)-1 {
		size /= 1024
		n++
	}
	return fmt.Sprintf("%.2f %s", size, autoLabels[n])
}

// BytesToMB floors a byte count to whole MiB.
func BytesToMB(bytes int64) int64 {
	return bytes / MiB
}
