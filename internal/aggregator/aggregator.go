// internal/aggregator/aggregator.go
package aggregator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	custom_errors "repo-tracker/internal/errors"
	"repo-tracker/internal/model"
	"repo-tracker/internal/window"
)

// Fetcher defines the behavior of the upstream source of repository activity.
type Fetcher interface {
	GetRepository(ctx context.Context, owner, name string) (*model.Repository, error)
	GetCommits(ctx context.Context, owner, name string, since, until time.Time) ([]model.Commit, error)
	GetIssues(ctx context.Context, owner, name string, since time.Time) ([]model.Issue, error)
	GetPullRequests(ctx context.Context, owner, name string) ([]model.PullRequest, error)
}

// Activity is the unified payload of one aggregation: repository
// display name plus the three activity feeds trimmed to the window.
type Activity struct {
	RepositoryName string              `json:"repositoryName"`
	Commits        []model.Commit      `json:"commits"`
	Issues         []model.Issue       `json:"issues"`
	PullRequests   []model.PullRequest `json:"pullRequests"`
}

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

// ParseRepoIdentifier splits an "owner/name" string.
func ParseRepoIdentifier(repo string) (RepoIdentifier, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoIdentifier{}, &custom_errors.ErrInvalidRepoFormat{Repo: repo}
	}
	return RepoIdentifier{Owner: parts[0], Name: parts[1]}, nil
}

// Aggregator combines repository metadata with the three activity feeds.
type Aggregator struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// New creates a new Aggregator instance.
func New(fetcher Fetcher, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Aggregate fetches metadata, commits, issues and pull requests for the
// repository concurrently and trims them to the window. All four
// fetches must succeed; one failure fails the whole aggregation.
//
// Commits are windowed server-side through since/until and are not
// re-filtered here. Issues support only a "since" lower bound and pull
// requests no date filtering at all, so both are filtered locally.
func (a *Aggregator) Aggregate(ctx context.Context, repo string, w window.Window) (*Activity, error) {
	id, err := ParseRepoIdentifier(repo)
	if err != nil {
		return nil, err
	}

	logger := a.logger.With("owner", id.Owner, "repo", id.Name)
	logger.Info("Aggregating repository activity", "start", w.StartString(), "end", w.EndString())

	var (
		repoInfo *model.Repository
		commits  []model.Commit
		issues   []model.Issue
		prs      []model.PullRequest
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		repoInfo, err = a.fetcher.GetRepository(gctx, id.Owner, id.Name)
		return err
	})

	g.Go(func() error {
		var err error
		commits, err = a.fetcher.GetCommits(gctx, id.Owner, id.Name, w.SinceInstant(), w.UntilInstant())
		return err
	})

	g.Go(func() error {
		var err error
		issues, err = a.fetcher.GetIssues(gctx, id.Owner, id.Name, w.SinceInstant())
		return err
	})

	g.Go(func() error {
		var err error
		prs, err = a.fetcher.GetPullRequests(gctx, id.Owner, id.Name)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Failed to fetch repository activity", "error", err)
		return nil, err
	}

	activity := &Activity{
		RepositoryName: repoInfo.Name,
		Commits:        commits,
		Issues:         w.FilterIssues(issues),
		PullRequests:   w.FilterPullRequests(prs),
	}
	if activity.Commits == nil {
		activity.Commits = []model.Commit{}
	}

	logger.Info("Aggregation finished",
		"commits", len(activity.Commits),
		"issues", len(activity.Issues),
		"pull_requests", len(activity.PullRequests))

	return activity, nil
}
