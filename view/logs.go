package view

import (
	"slices"

	"github.com/yenikoza/tablet-dashboard/api"
)

// FilterLogs returns the rows to display, newest first. With hideUnknown
// set, rows without a real store are dropped. Rows with equal timestamps
// keep their server order. The input is not modified.
func FilterLogs(rows []api.LogEntry, hideUnknown bool) []api.LogEntry {
	out := make([]api.LogEntry, 0, len(rows))
	for _, r := range rows {
		if hideUnknown && !r.HasStore() {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b api.LogEntry) int {
		return b.When().Compare(a.When().Time)
	})
	return out
}
