package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for sprint dates.
const DateLayout = "2006-01-02"

// DefaultSprintDays is the length of the window used when a sprint is
// created without explicit dates.
const DefaultSprintDays = 14

// Sprint is a time-boxed container of tasks within a project. Sprints are
// ended by flipping Status to false; they are never deleted.
type Sprint struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"project_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// Status is true while the sprint is active and false once it has
	// been ended.
	Status bool `json:"status"`
}

// Name returns the display name for the sprint.
func (s Sprint) Name() string {
	return fmt.Sprintf("Sprint %d", s.ID)
}

// Window returns the sprint's date range formatted for display, or an
// empty string when either date is missing.
func (s Sprint) Window() string {
	if s.StartDate == "" || s.EndDate == "" {
		return ""
	}
	return fmt.Sprintf("%s - %s", s.StartDate, s.EndDate)
}

// ParseDate parses a wire-format sprint date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DefaultSprintWindow returns start and end dates for a new sprint
// beginning at now and spanning the default window.
func DefaultSprintWindow(now time.Time) (start, end string) {
	return now.Format(DateLayout),
		now.AddDate(0, 0, DefaultSprintDays).Format(DateLayout)
}

// DedupeSprints collapses a sprint list by id, keeping first-seen order;
// the later entry for an id wins. Sprints without an id are dropped.
func DedupeSprints(sprints []Sprint) []Sprint {
	index := make(map[int]int, len(sprints))
	out := make([]Sprint, 0, len(sprints))
	for _, s := range sprints {
		if s.ID == 0 {
			continue
		}
		if i, ok := index[s.ID]; ok {
			out[i] = s
			continue
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}
