package numgen

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// TimestampLayout renders entry times as day.month.year, hour:minute:second
const TimestampLayout = "02.01.2006, 15:04:05"

// FormatEntry renders one history line, e.g. "42  [1 - 100]  17.10.2026, 14:03:05 (3 minutes ago)"
func FormatEntry(e HistoryEntry, now time.Time) string {
	return fmt.Sprintf("%d  [%d - %d]  %s (%s)",
		e.Number, e.Min, e.Max,
		e.Timestamp.Local().Format(TimestampLayout),
		humanize.RelTime(e.Timestamp, now, "ago", "from now"))
}
