package format

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	_  = iota // ignore first value
	KB = 1 << (10 * iota)
	MB
	GB
	TB
)

// FormatBytes formats a byte count into human-readable units, avoiding .00
// for whole numbers.
func FormatBytes(b int64) string {
	val := float64(b)
	var unit string

	switch {
	case b >= TB:
		val /= float64(TB)
		unit = "TB"
	case b >= GB:
		val /= float64(GB)
		unit = "GB"
	case b >= MB:
		val /= float64(MB)
		unit = "MB"
	case b >= KB:
		val /= float64(KB)
		unit = "KB"
	default:
		return fmt.Sprintf("%dB", b)
	}

	// Use %.0f for whole numbers, %.2f for numbers with decimals
	if val == float64(int(val)) {
		return fmt.Sprintf("%.0f%s", val, unit)
	}
	return fmt.Sprintf("%.2f%s", val, unit)
}

// ScaleBytes truncates b to whole megabytes, kilobytes or bytes, picking the
// largest unit that b reaches. The unit is returned as "M", "K" or "B".
func ScaleBytes(b uint64) (uint64, string) {
	switch {
	case b >= MB:
		return b / MB, "M"
	case b >= KB:
		return b / KB, "K"
	default:
		return b, "B"
	}
}

// ParseBytes parses sizes such as "512", "4K", "16MB", "16MiB" or "1GiB".
// Units are binary: K, KB and KiB all mean 1024 bytes.
func ParseBytes(s string) (uint64, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0, fmt.Errorf("empty size")
	}

	i := 0
	for i < len(str) && str[i] >= '0' && str[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	n, err := strconv.ParseUint(str[:i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	var mult uint64
	switch strings.ToUpper(strings.TrimSpace(str[i:])) {
	case "", "B":
		mult = 1
	case "K", "KB", "KIB":
		mult = KB
	case "M", "MB", "MIB":
		mult = MB
	case "G", "GB", "GIB":
		mult = GB
	case "T", "TB", "TIB":
		mult = TB
	default:
		return 0, fmt.Errorf("invalid size unit in %q", s)
	}

	if n != 0 && n > ^uint64(0)/mult {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return n * mult, nil
}
