package progress

import (
	"fmt"
	"strings"
	"time"
)

// GetProgressBar renders "====>----" for a percentage; width 0 means 50.
func GetProgressBar(progress, width int) string {
	if width == 0 {
		width = 50
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	barLength := progress * width / 100
	progressBar := strings.Repeat("=", barLength)
	progressBar += ">"
	progressBar += strings.Repeat("-", width-barLength)
	return progressBar
}

// Percent of done over total, 100 for an empty total.
func Percent(done, total uint64) int {
	if total == 0 {
		return 100
	}
	if done > total {
		done = total
	}
	return int(done * 100 / total)
}

// Line is the status line shown while scanning.
func Line(done, total uint64, found int, elapsed time.Duration) string {
	percent := Percent(done, total)
	return fmt.Sprintf("[%s] %d%% (%d/%d) found=%d %s",
		GetProgressBar(percent, 30), percent, done, total, found, elapsed.Truncate(time.Second))
}
