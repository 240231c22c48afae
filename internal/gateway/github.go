// Package gateway provides a gateway to the GitHub REST API,
// abstracting away the underlying client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// perPage is the page size used for every paginated endpoint.
const perPage = 100

// PullRequest holds the fields of a search result item the collector needs.
// MergedAt is the zero time when the platform did not report a merge date.
type PullRequest struct {
	Title    string
	Number   int
	HTMLURL  string
	MergedAt time.Time
}

// RepoInfo is the repository metadata used to enrich a contribution.
type RepoInfo struct {
	Stars    int
	Language string
}

// OwnedRepo is one of the user's own repositories, as seen by the language
// aggregator.
type OwnedRepo struct {
	FullName string
	Fork     bool
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// FetchUserRepoNames returns the full names of every repository the user
	// owns or is a member of.
	FetchUserRepoNames(ctx context.Context, user string) (map[string]bool, error)
	// FetchMergedPRs returns merged pull requests authored by the user,
	// most recently updated first, stopping once maxRaw items are gathered.
	FetchMergedPRs(ctx context.Context, user string, maxRaw int) ([]PullRequest, error)
	// FetchRepoInfo returns metadata for a repository given its "owner/name".
	FetchRepoInfo(ctx context.Context, fullName string) (RepoInfo, error)
	// FetchOwnerRepos returns the user's own repositories, most recently
	// updated first, including forks.
	FetchOwnerRepos(ctx context.Context, user string) ([]OwnedRepo, error)
	// FetchLanguages returns the per-language byte counts for a repository.
	FetchLanguages(ctx context.Context, fullName string) (map[string]int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
//
// HTTP status errors from the API are never surfaced to callers: they are
// logged to errLog and the affected call yields an empty result, so a flaky
// endpoint degrades the output instead of aborting the run. Transport-level
// failures (DNS, cancellation) still return an error.
type GitHubGateway struct {
	client *github.Client
	logger *log.Logger
	errLog *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token yields an unauthenticated client, subject to the platform's
// lower anonymous rate limits.
func NewGitHubGateway(token string, logger, errLog *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	httpClient := &http.Client{Transport: rateLimitWaiter}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient.Transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		}
	}
	return &GitHubGateway{
		client: github.NewClient(httpClient),
		logger: logger,
		errLog: errLog,
	}, nil
}

func (g *GitHubGateway) FetchUserRepoNames(ctx context.Context, user string) (map[string]bool, error) {
	names := make(map[string]bool)
	opts := &github.RepositoryListByUserOptions{
		Type:        "all",
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}
	for {
		repos, _, err := g.client.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			if g.httpError(err) {
				break
			}
			return nil, fmt.Errorf("failed to list repositories for %s: %w", user, err)
		}
		for _, r := range repos {
			names[r.GetFullName()] = true
		}
		if len(repos) < perPage {
			break
		}
		opts.Page++
		g.logger.Println("  Fetching next page of user repositories...")
	}
	return names, nil
}

func (g *GitHubGateway) FetchMergedPRs(ctx context.Context, user string, maxRaw int) ([]PullRequest, error) {
	query := fmt.Sprintf("type:pr author:%s is:merged", user)
	opts := &github.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}
	var prs []PullRequest
	for len(prs) < maxRaw {
		result, _, err := g.client.Search.Issues(ctx, query, opts)
		if err != nil {
			if g.httpError(err) {
				break
			}
			return nil, fmt.Errorf("failed to search merged PRs for %s: %w", user, err)
		}
		items := result.Issues
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			prs = append(prs, PullRequest{
				Title:    item.GetTitle(),
				Number:   item.GetNumber(),
				HTMLURL:  item.GetHTMLURL(),
				MergedAt: item.GetPullRequestLinks().GetMergedAt().Time,
			})
		}
		if len(items) < perPage {
			break
		}
		opts.Page++
		g.logger.Println("  Fetching next page of merged pull requests...")
	}
	return prs, nil
}

func (g *GitHubGateway) FetchRepoInfo(ctx context.Context, fullName string) (RepoInfo, error) {
	owner, name, ok := splitFullName(fullName)
	if !ok {
		return RepoInfo{}, fmt.Errorf("invalid repository full name %q", fullName)
	}
	repo, _, err := g.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		if g.httpError(err) {
			return RepoInfo{}, nil
		}
		return RepoInfo{}, fmt.Errorf("failed to get repository %s: %w", fullName, err)
	}
	return RepoInfo{
		Stars:    repo.GetStargazersCount(),
		Language: repo.GetLanguage(),
	}, nil
}

func (g *GitHubGateway) FetchOwnerRepos(ctx context.Context, user string) ([]OwnedRepo, error) {
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}
	var repos []OwnedRepo
	for {
		page, _, err := g.client.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			if g.httpError(err) {
				break
			}
			return nil, fmt.Errorf("failed to list owned repositories for %s: %w", user, err)
		}
		for _, r := range page {
			repos = append(repos, OwnedRepo{
				FullName: r.GetFullName(),
				Fork:     r.GetFork(),
			})
		}
		if len(page) < perPage {
			break
		}
		opts.Page++
		g.logger.Println("  Fetching next page of owned repositories...")
	}
	return repos, nil
}

func (g *GitHubGateway) FetchLanguages(ctx context.Context, fullName string) (map[string]int, error) {
	owner, name, ok := splitFullName(fullName)
	if !ok {
		return map[string]int{}, nil
	}
	langs, _, err := g.client.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		if g.httpError(err) {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("failed to list languages for %s: %w", fullName, err)
	}
	return langs, nil
}

// httpError reports whether err is an HTTP status error from the API.
// If so it logs the status and URL so the caller can substitute an empty result.
func (g *GitHubGateway) httpError(err error) bool {
	var er *github.ErrorResponse
	if errors.As(err, &er) {
		g.logAPIError(er.Response)
		return true
	}
	var rl *github.RateLimitError
	if errors.As(err, &rl) {
		g.logAPIError(rl.Response)
		return true
	}
	var ab *github.AbuseRateLimitError
	if errors.As(err, &ab) {
		g.logAPIError(ab.Response)
		return true
	}
	return false
}

func (g *GitHubGateway) logAPIError(resp *http.Response) {
	if resp == nil {
		g.errLog.Println("API error: no response")
		return
	}
	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}
	g.errLog.Printf("API error %d: %s", resp.StatusCode, url)
}

func splitFullName(fullName string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}
