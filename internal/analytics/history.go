package analytics

import (
	"time"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
)

// CostHistoryDays is the length of the trailing cost window, today included.
const CostHistoryDays = 14

// CostHistory buckets messages into the last CostHistoryDays calendar days in
// now's location, oldest first. Days without activity are zero-filled.
func CostHistory(messages []core.RawMessage, now time.Time) []core.CostHistoryEntry {
	loc := now.Location()
	y, mo, d := now.Date()

	out := make([]core.CostHistoryEntry, 0, CostHistoryDays)
	for i := CostHistoryDays - 1; i >= 0; i-- {
		start := time.Date(y, mo, d-i, 0, 0, 0, 0, loc)
		end := time.Date(y, mo, d-i+1, 0, 0, 0, 0, loc)
		startMs, endMs := start.UnixMilli(), end.UnixMilli()

		entry := core.CostHistoryEntry{
			Date:  start.Format("2006-01-02"),
			Label: start.Format("Jan 2"),
		}
		sessions := make(map[string]struct{})
		for _, m := range messages {
			if m.Time.Created < startMs || m.Time.Created >= endMs {
				continue
			}
			entry.Messages++
			entry.Cost += m.CostValue()
			sessions[m.SessionID] = struct{}{}
		}
		entry.Sessions = len(sessions)
		out = append(out, entry)
	}
	return out
}

// HourlyActivity counts messages per (weekday, hour) of their creation time in
// loc and always returns all 7x24 cells, Sunday first.
func HourlyActivity(messages []core.RawMessage, loc *time.Location) []core.HourlyActivity {
	if loc == nil {
		loc = time.Local
	}
	var grid [7][24]int
	for _, m := range messages {
		t := time.UnixMilli(m.Time.Created).In(loc)
		grid[t.Weekday()][t.Hour()]++
	}

	out := make([]core.HourlyActivity, 0, 7*24)
	for day := range 7 {
		for hour := range 24 {
			out = append(out, core.HourlyActivity{Day: day, Hour: hour, Count: grid[day][hour]})
		}
	}
	return out
}
