// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"
	"sort"

	"github.com/o1x3/o1x3/internal/domain"
	"github.com/o1x3/o1x3/internal/gateway"
)

// topLanguageCount is how many ranked languages are retained.
const topLanguageCount = 8

// LanguageAggregator is the use case for ranking the user's most-used
// languages by byte share across their owned, non-fork repositories.
type LanguageAggregator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewLanguageAggregator creates a new LanguageAggregator instance.
func NewLanguageAggregator(fetcher gateway.Fetcher, logger *log.Logger) *LanguageAggregator {
	return &LanguageAggregator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// TopLanguages sums per-language byte counts over the user's own non-fork
// repositories and returns the top languages by share of total bytes,
// descending.
func (a *LanguageAggregator) TopLanguages(ctx context.Context, user string) ([]domain.LanguageShare, error) {
	a.logger.Printf("Fetching languages...")

	repos, err := a.fetcher.FetchOwnerRepos(ctx, user)
	if err != nil {
		return nil, err
	}

	langBytes := make(map[string]int)
	for _, repo := range repos {
		if repo.Fork {
			continue
		}
		langs, err := a.fetcher.FetchLanguages(ctx, repo.FullName)
		if err != nil {
			return nil, err
		}
		for lang, count := range langs {
			langBytes[lang] += count
		}
	}

	total := 0
	for _, count := range langBytes {
		total += count
	}
	// Floor at 1 so an empty result does not divide by zero.
	if total < 1 {
		total = 1
	}

	type langCount struct {
		name  string
		count int
	}
	ranked := make([]langCount, 0, len(langBytes))
	for name, count := range langBytes {
		ranked = append(ranked, langCount{name: name, count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > topLanguageCount {
		ranked = ranked[:topLanguageCount]
	}

	shares := make([]domain.LanguageShare, 0, len(ranked))
	for _, lc := range ranked {
		shares = append(shares, domain.LanguageShare{
			Name:     lc.name,
			Fraction: float64(lc.count) / float64(total),
		})
	}

	a.logger.Printf("  %d languages found", len(shares))
	return shares, nil
}
