package player

import (
	"fmt"
	"strconv"
)

// FormatTimestamp renders position of the frame as MM:SS:mmm.
func FormatTimestamp(frame int, fps float64) string {
	if fps <= 0 {
		return "00:00:000"
	}

	seconds := float64(frame) / fps
	whole := int(seconds)

	return fmt.Sprintf("%02d:%02d:%03d",
		whole/60,
		whole%60,
		int((seconds-float64(whole))*1000),
	)
}

// FormatSpeed renders speed multiplier with one decimal place, e.g. 2.0.
func FormatSpeed(speed float64) string {
	return strconv.FormatFloat(speed, 'f', 1, 64)
}

func IsValidSpeed(speed float64) bool {
	for _, s := range ValidSpeeds {
		if s == speed {
			return true
		}
	}
	return false
}
