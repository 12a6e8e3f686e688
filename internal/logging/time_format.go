package logging

import "time"

const consoleTimeLayout = "2006-01-02 15:04:05"

// formatTimestamp renders console timestamps in local time, which matches the
// clock used for recording file names.
func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(consoleTimeLayout)
}
