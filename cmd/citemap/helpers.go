package main

import "time"

func secondsDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// truncate shortens long paper titles for table display.
func truncate(value string, max int) string {
	if max <= 3 || len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
