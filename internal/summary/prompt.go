// internal/summary/prompt.go
package summary

import (
	"fmt"
	"strings"

	"repo-tracker/internal/model"
)

const unknownDate = "unknown date"

// Request is the ephemeral aggregate a summary is generated from. It is
// never persisted.
type Request struct {
	Commits      []model.Commit      `json:"commits"`
	Issues       []model.Issue       `json:"issues"`
	PullRequests []model.PullRequest `json:"pullRequests"`
	StartDate    string              `json:"startDate"`
	EndDate      string              `json:"endDate"`
}

const promptTemplate = `You are about to receive the latest activity of a GitHub open source project, consisting of:
  - **commits**: the most recent commit records.
  - **issues**: currently open or closed issues.
  - **pullRequests**: current pull requests (PRs).

Based on this data, write a detailed progress report containing:

1. **Project name and dates**: the title section of the report.
2. **New features**: list every new feature and module.
3. **Key improvements**: list every significant feature or code improvement.
4. **Fixed issues**: list fixed bugs and resolved technical problems.
5. **Feature impact**: describe how the new features and improvements affect the project, down to user experience, performance or other important aspects.
6. **Intent of changes**: analyse the purpose behind these changes, such as performance gains, better user experience or compatibility improvements.

Generate the report from the following data:

- **commits**: the latest commit records (%s).
- **issues**: all current project issues (%s), both open and closed.
- **pullRequests**: all current pull requests (%s).

### Report template:

# Project Name - Progress Report (%s to %s)

## New Features
- Feature name: short description
- Feature name: short description

## Key Improvements
- Improvement: short description
- Improvement: short description

## Fixed Issues
- Fixed issue: short note
- Fixed issue: short note

## Feature Impact
- Change: how the new features and improvements affect the project, possible performance gains, user experience gains or other characteristic changes.

## Intent of Changes
- Intent: the purpose behind the changes, whether to accommodate new dependencies, improve performance, fix existing problems or add functionality.
`

// BuildPrompt renders the deterministic report prompt for the given
// activity. Only commit messages and issue/PR titles make it into the
// prompt; authors, timestamps and links are display-only and dropped.
func BuildPrompt(req Request) string {
	startDate := req.StartDate
	if startDate == "" {
		startDate = unknownDate
	}
	endDate := req.EndDate
	if endDate == "" {
		endDate = unknownDate
	}

	commitMessages := make([]string, len(req.Commits))
	for i, c := range req.Commits {
		commitMessages[i] = c.Message
	}
	issueTitles := make([]string, len(req.Issues))
	for i, issue := range req.Issues {
		issueTitles[i] = issue.Title
	}
	prTitles := make([]string, len(req.PullRequests))
	for i, pr := range req.PullRequests {
		prTitles[i] = pr.Title
	}

	return fmt.Sprintf(promptTemplate,
		strings.Join(commitMessages, "\n"),
		strings.Join(issueTitles, "\n"),
		strings.Join(prTitles, "\n"),
		startDate,
		endDate,
	)
}
