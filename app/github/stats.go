package github

import (
	"cmp"
	"slices"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const DefaultTopLanguages = 5

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// Stats is recomputed from scratch on every fetch.
type Stats struct {
	Followers    int             `json:"followers"`
	Following    int             `json:"following"`
	PublicRepos  int             `json:"public_repos"`
	TotalStars   int             `json:"total_stars"`
	TotalForks   int             `json:"total_forks"`
	TopLanguages []LanguageCount `json:"top_languages"`
}

// ComputeStats reduces a user object and its raw repository list. Forks count towards
// the totals; non-object items are skipped.
func ComputeStats(user gjson.Result, repos []gjson.Result, topN int) Stats {
	if topN <= 0 {
		topN = DefaultTopLanguages
	}

	stats := Stats{
		Followers:   ClampCounter(user.Get("followers")),
		Following:   ClampCounter(user.Get("following")),
		PublicRepos: ClampCounter(user.Get("public_repos")),
	}

	counts := make(map[string]int)
	var order []string

	for _, repo := range repos {
		if !repo.IsObject() {
			continue
		}

		stats.TotalStars = addClamped(stats.TotalStars, ClampCounter(repo.Get("stargazers_count")))
		stats.TotalForks = addClamped(stats.TotalForks, ClampCounter(repo.Get("forks_count")))

		language := repo.Get("language")
		if language.Type != gjson.String {
			continue
		}
		name := angleStripper.Replace(language.Str)
		if n := utf8.RuneCountInString(name); n == 0 || n > MaxTopicLength {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	stats.TopLanguages = topLanguages(counts, order, topN)

	return stats
}

// topLanguages keeps the n most frequent languages. order holds first-seen order, which
// the stable sort preserves among equal counts.
func topLanguages(counts map[string]int, order []string, n int) []LanguageCount {
	languages := make([]LanguageCount, 0, len(order))
	for _, name := range order {
		languages = append(languages, LanguageCount{Language: name, Count: counts[name]})
	}

	slices.SortStableFunc(languages, func(a, b LanguageCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if len(languages) > n {
		languages = languages[:n]
	}
	return languages
}

func addClamped(a, b int) int {
	if a > maxCounter-b {
		return maxCounter
	}
	return a + b
}
