// Package derived holds the pure recompute rules for every cached field on a
// project or task. Nothing here touches the database: callers load the counts
// or rows, call into this package, and write the result back. Keeping the
// rules pure makes replayed events converge to the same stored value.
package derived

import (
	"fmt"
	"math"

	"studioboard/internal/model"
)

// TaskCounts is a project's task tally grouped by completion.
type TaskCounts struct {
	Total     int
	Completed int
}

// ChecklistCounts is a task's checklist tally.
type ChecklistCounts struct {
	Total int
	Done  int
}

// ProjectProgress returns the cached progress string for a project,
// e.g. "42%". A project with no tasks reports "0%".
func ProjectProgress(c TaskCounts) string {
	return formatPercent(c.Completed, c.Total)
}

// TaskProgress returns the cached progress string for a task based on its
// checklist. A task with no checklist reports "0%".
func TaskProgress(c ChecklistCounts) string {
	return formatPercent(c.Done, c.Total)
}

// TaskProgressWithStatus applies the status override on top of the checklist
// tally: a completed task always reads "100%", any other status re-derives
// from the checklist. Moving a task out of completed therefore drops the cap.
func TaskProgressWithStatus(status string, c ChecklistCounts) string {
	if status == model.StatusCompleted {
		return "100%"
	}
	return TaskProgress(c)
}

// Percent computes round(100 * part / whole), clamped to [0, 100].
// Returns 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(part) / float64(whole)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func formatPercent(part, whole int) string {
	return fmt.Sprintf("%d%%", Percent(part, whole))
}
