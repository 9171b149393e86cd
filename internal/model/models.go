// internal/model/models.go
package model

import (
	"time"
)

// Subscription is a user's subscription to a GitHub repository.
// A subscription is owned by exactly one user identity.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Repo      string    `json:"repo"` // "owner/name"
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository holds the metadata of a GitHub repository.
type Repository struct {
	GithubRepoID int64   `json:"github_repo_id"`
	Owner        string  `json:"owner"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	URL          string  `json:"url"`
}

// Commit is a single commit fetched from the GitHub API. Activity
// records are never persisted; they live for one request/response cycle.
type Commit struct {
	SHA         string    `json:"sha"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	Message     string    `json:"message"`
	URL         string    `json:"url"`
	CommitDate  time.Time `json:"commitDate"`
}

// Issue is a single issue fetched from the GitHub API. The GitHub
// issues endpoint also lists pull requests as issues; those records are
// passed through unchanged.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	State     string    `json:"state"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// PullRequest is a single pull request fetched from the GitHub API.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	State     string    `json:"state"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}
