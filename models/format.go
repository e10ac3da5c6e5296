package models

import "fmt"

// HumanKB formats a byte count as kilobytes with two decimals, or "-" for
// zero so placeholder table cells stay readable.
func HumanKB(size int64) string {
	if size == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}
