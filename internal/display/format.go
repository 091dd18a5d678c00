package display

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatDuration renders d rounded for humans: "850ms", "12.3s", "4m05s", "1h02m".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		d = d.Round(time.Minute)
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FormatTileRange collapses sorted UDIM tile numbers into runs:
// [1001 1002 1003 1011] -> "1001-1003, 1011". Input must be sorted ascending.
func FormatTileRange(tiles []int) string {
	if len(tiles) == 0 {
		return ""
	}
	var parts []string
	start, prev := tiles[0], tiles[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, strconv.Itoa(start)+"-"+strconv.Itoa(prev))
		}
	}
	for _, t := range tiles[1:] {
		if t == prev+1 {
			prev = t
			continue
		}
		flush()
		start, prev = t, t
	}
	flush()
	return strings.Join(parts, ", ")
}

// Plural returns singular when n == 1, otherwise singular+"s".
func Plural(n int, singular string) string {
	if n == 1 {
		return singular
	}
	return singular + "s"
}
