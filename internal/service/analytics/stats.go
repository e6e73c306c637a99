package analytics

import (
	"cmp"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/janisto/crisphub/internal/platform/timeutil"
	"github.com/janisto/crisphub/internal/service/github"
)

const (
	topTopicsLimit = 10
	topStarsLimit  = 5
)

// counter tallies keys while remembering the order each key was first seen.
type counter struct {
	index  map[string]int
	counts []Count
}

func newCounter() *counter {
	return &counter{index: map[string]int{}}
}

func (c *counter) add(key string) {
	if i, ok := c.index[key]; ok {
		c.counts[i].Count++
		return
	}
	c.index[key] = len(c.counts)
	c.counts = append(c.counts, Count{Key: key, Count: 1})
}

// ranked returns the counts by descending frequency, ties in first-seen order.
func (c *counter) ranked() []Count {
	out := slices.Clone(c.counts)
	slices.SortStableFunc(out, func(a, b Count) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if out == nil {
		return []Count{}
	}
	return out
}

// CommitFrequency counts commits per calendar day, keyed by the text before "T" in
// each author date. Keys appear in the order first seen. Commits without a date
// are skipped.
func CommitFrequency(commits []github.Commit) []Count {
	c := newCounter()
	for _, commit := range commits {
		day := timeutil.DatePrefix(commit.AuthorDate)
		if day == "" {
			continue
		}
		c.add(day)
	}
	if c.counts == nil {
		return []Count{}
	}
	return c.counts
}

// SortLanguages orders a language byte map by descending byte count, then by name.
func SortLanguages(languages map[string]int64) []Count {
	out := make([]Count, 0, len(languages))
	for name, bytes := range languages {
		out = append(out, Count{Key: name, Count: bytes})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// LanguageDistribution counts repositories per primary language, ignoring
// repositories without one.
func LanguageDistribution(repos []RepositorySummary) []Count {
	c := newCounter()
	for _, r := range repos {
		if r.Language == nil || *r.Language == "" {
			continue
		}
		c.add(*r.Language)
	}
	return c.ranked()
}

// TopTopics returns the limit most frequent topics across repos.
func TopTopics(repos []RepositorySummary, limit int) []Count {
	c := newCounter()
	for _, r := range repos {
		for _, topic := range r.Topics {
			c.add(topic)
		}
	}
	ranked := c.ranked()
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// BuildTimeline emits one point per repository in ascending creation order. Each
// point counts the repositories created on or before its UTC calendar date, so
// repositories sharing a day report the same total. Repositories without a creation
// timestamp sort first and share an empty date.
func BuildTimeline(repos []RepositorySummary) []TimelinePoint {
	dates := make([]string, len(repos))
	created := make([]RepositorySummary, len(repos))
	copy(created, repos)
	slices.SortStableFunc(created, func(a, b RepositorySummary) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	for i, r := range created {
		if !r.CreatedAt.IsZero() {
			dates[i] = timeutil.Date(r.CreatedAt)
		}
	}

	timeline := make([]TimelinePoint, len(dates))
	for i := 0; i < len(dates); {
		j := i
		for j+1 < len(dates) && dates[j+1] == dates[i] {
			j++
		}
		for k := i; k <= j; k++ {
			timeline[k] = TimelinePoint{Date: dates[k], Repos: j + 1}
		}
		i = j + 1
	}
	return timeline
}

// TopByStars returns up to limit repositories by descending stars. Ties keep the
// listing order.
func TopByStars(repos []RepositorySummary, limit int) []RepoStars {
	ranked := make([]RepoStars, len(repos))
	for i, r := range repos {
		ranked[i] = RepoStars{Name: r.Name, Stars: r.Stars}
	}
	slices.SortStableFunc(ranked, func(a, b RepoStars) int {
		return cmp.Compare(b.Stars, a.Stars)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// sumAndMean returns the total and average of values; both are zero for no values.
func sumAndMean(values []int) (int, float64, error) {
	if len(values) == 0 {
		return 0, 0, nil
	}
	data := stats.LoadRawData(values)
	sum, err := stats.Sum(data)
	if err != nil {
		return 0, 0, err
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return 0, 0, err
	}
	return int(sum), mean, nil
}
