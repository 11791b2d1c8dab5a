package util

import (
	"fmt"
	"math"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders a byte count as a human readable string with two
// decimal places ("1.46 KB").
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}

	v := float64(n) / math.Pow(1024, float64(i))
	s := fmt.Sprintf("%.2f", v)

	// Trim trailing zeros the way parseFloat output looks
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}

	return s + " " + byteUnits[i]
}
