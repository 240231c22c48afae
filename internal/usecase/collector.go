package usecase

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/o1x3/o1x3/internal/domain"
	"github.com/o1x3/o1x3/internal/gateway"
)

const (
	// MaxContributions caps the number of contributions that are collected
	// and displayed.
	MaxContributions = 20

	// searchHeadroom multiplies the cap when paginating raw search results,
	// leaving room for items the exclusion filter drops.
	searchHeadroom = 3

	// unknownDate is shown when the platform did not report a merge date.
	unknownDate = "—"

	mergeDateLayout = "Jan 2006"
)

// monthOrder maps the short month names of mergeDateLayout to their ordinal,
// for the merge-date sort key.
var monthOrder = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// Collector is the use case for gathering a user's merged pull requests
// against repositories they do not own.
type Collector struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, logger *log.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Collect returns up to MaxContributions external contributions for the user,
// most recent merge month first. A contribution is external when its target
// repository is not among the user's owned or member repositories.
func (c *Collector) Collect(ctx context.Context, user string) ([]domain.Contribution, error) {
	c.logger.Printf("Fetching repos for %s...", user)
	owned, err := c.fetcher.FetchUserRepoNames(ctx, user)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("  %d owned/member repos", len(owned))

	c.logger.Printf("Searching merged PRs...")
	prs, err := c.fetcher.FetchMergedPRs(ctx, user, MaxContributions*searchHeadroom)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("  %d total merged PRs", len(prs))

	// One metadata fetch per distinct repository, misses included.
	repoCache := make(map[string]gateway.RepoInfo)
	external := make([]domain.Contribution, 0, MaxContributions)
	for _, pr := range prs {
		repo, ok := repoFromURL(pr.HTMLURL)
		if !ok || owned[repo] {
			continue
		}
		info, cached := repoCache[repo]
		if !cached {
			info, err = c.fetcher.FetchRepoInfo(ctx, repo)
			if err != nil {
				return nil, err
			}
			repoCache[repo] = info
		}
		mergedAt := unknownDate
		if !pr.MergedAt.IsZero() {
			mergedAt = pr.MergedAt.Format(mergeDateLayout)
		}
		external = append(external, domain.Contribution{
			Repo:     repo,
			Title:    pr.Title,
			Number:   pr.Number,
			URL:      pr.HTMLURL,
			MergedAt: mergedAt,
			Stars:    info.Stars,
			Language: info.Language,
		})
		if len(external) >= MaxContributions {
			break
		}
	}

	sortByMergeDate(external)
	c.logger.Printf("  %d external contributions", len(external))
	return external, nil
}

// repoFromURL derives "owner/name" from a pull request's web URL,
// e.g. https://github.com/owner/name/pull/42.
func repoFromURL(url string) (string, bool) {
	parts := strings.Split(url, "/")
	if len(parts) < 5 || parts[3] == "" || parts[4] == "" {
		return "", false
	}
	return parts[3] + "/" + parts[4], true
}

// sortByMergeDate orders contributions by (year, month) descending.
// Entries with an unknown or unparseable date key as (0, 0) and sort last.
func sortByMergeDate(contribs []domain.Contribution) {
	sort.SliceStable(contribs, func(i, j int) bool {
		yi, mi := mergeDateKey(contribs[i].MergedAt)
		yj, mj := mergeDateKey(contribs[j].MergedAt)
		if yi != yj {
			return yi > yj
		}
		return mi > mj
	})
}

func mergeDateKey(mergedAt string) (year, month int) {
	parts := strings.Fields(mergedAt)
	if len(parts) != 2 {
		return 0, 0
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0
	}
	return year, monthOrder[parts[0]]
}
