package view

import (
	"fmt"
	"time"
)

// FormatActivityTime renders t relative to now for recent times and as a
// short date otherwise.
func FormatActivityTime(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := mins / 60
	days := hours / 24

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case hours < 24:
		return fmt.Sprintf("%d hr ago", hours)
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	}
	return t.In(now.Location()).Format("Jan 2, 3:04 PM")
}
