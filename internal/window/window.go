// internal/window/window.go
package window

import (
	"fmt"
	"time"

	"repo-tracker/internal/model"
)

const dateLayout = "2006-01-02"

// Window is an inclusive calendar-date range. Start and End carry only
// the date component (midnight UTC); time-of-day is ignored when
// testing membership.
type Window struct {
	Start time.Time
	End   time.Time
}

// Parse resolves the query-parameter forms into a single Window.
// The range form (startDate/endDate) is canonical; the legacy single
// "date" form yields the degenerate window [date, date]. With no
// parameters at all, the window defaults to the month ending today.
func Parse(startStr, endStr, dateStr string, now time.Time) (Window, error) {
	if dateStr != "" && startStr == "" && endStr == "" {
		d, err := parseDay(dateStr)
		if err != nil {
			return Window{}, err
		}
		return Window{Start: d, End: d}, nil
	}

	if startStr == "" && endStr == "" {
		today := truncateToDay(now)
		return Window{Start: today.AddDate(0, -1, 0), End: today}, nil
	}

	start, err := parseDay(startStr)
	if err != nil {
		return Window{}, err
	}
	end, err := parseDay(endStr)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether t falls inside the window. Only the calendar
// date of t participates in the comparison, so timestamps at 00:00:00
// of Start and 23:59:59 of End are both inside.
func (w Window) Contains(t time.Time) bool {
	day := truncateToDay(t)
	return !day.Before(w.Start) && !day.After(w.End)
}

// SinceInstant is the start-of-day instant of the window start, for
// upstream APIs that accept a "since" lower bound.
func (w Window) SinceInstant() time.Time {
	return w.Start
}

// UntilInstant is the end-of-day instant of the window end, for
// upstream APIs that accept an "until" upper bound.
func (w Window) UntilInstant() time.Time {
	return w.End.Add(24*time.Hour - time.Nanosecond)
}

// StartString returns the window start formatted as YYYY-MM-DD.
func (w Window) StartString() string {
	return w.Start.Format(dateLayout)
}

// EndString returns the window end formatted as YYYY-MM-DD.
func (w Window) EndString() string {
	return w.End.Format(dateLayout)
}

// FilterIssues returns the issues created inside the window, preserving
// input order.
func (w Window) FilterIssues(issues []model.Issue) []model.Issue {
	filtered := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if w.Contains(issue.CreatedAt) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// FilterPullRequests returns the pull requests created inside the
// window, preserving input order.
func (w Window) FilterPullRequests(prs []model.PullRequest) []model.PullRequest {
	filtered := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if w.Contains(pr.CreatedAt) {
			filtered = append(filtered, pr)
		}
	}
	return filtered
}

func parseDay(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
