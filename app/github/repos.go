package github

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const (
	MaxTextLength   = 200
	MaxTopics       = 10
	MaxTopicLength  = 49
	DefaultFeatured = 6
	repoURLPrefix   = "https://github.com/"
	maxCounter      = math.MaxInt32
)

// Repo is a repository record that is safe to hand to a renderer: every string has been
// stripped of angle brackets and length-capped, every counter is non-negative.
type Repo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	HTMLURL     string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    string    `json:"language,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	Topics      []string  `json:"topics"`
}

var angleStripper = strings.NewReplacer("<", "", ">", "")

// NormalizeRepos turns a raw /repos payload into Repos. Items that are not objects, are
// forks, or lack a string name or a github.com html_url are dropped individually.
func NormalizeRepos(raw []gjson.Result) []Repo {
	repos := make([]Repo, 0, len(raw))
	for _, item := range raw {
		repo, ok := normalizeRepo(item)
		if !ok {
			continue
		}
		repos = append(repos, repo)
	}
	return repos
}

func normalizeRepo(item gjson.Result) (Repo, bool) {
	if !item.IsObject() {
		return Repo{}, false
	}
	if item.Get("fork").Type == gjson.True {
		return Repo{}, false
	}

	name := item.Get("name")
	htmlURL := item.Get("html_url")
	if name.Type != gjson.String || htmlURL.Type != gjson.String {
		return Repo{}, false
	}
	if !strings.HasPrefix(htmlURL.Str, repoURLPrefix) {
		return Repo{}, false
	}

	repo := Repo{
		Name:      SanitizeText(name.Str, MaxTextLength),
		HTMLURL:   htmlURL.Str,
		Stars:     ClampCounter(item.Get("stargazers_count")),
		Forks:     ClampCounter(item.Get("forks_count")),
		UpdatedAt: parseTimestamp(item.Get("updated_at")),
		Topics:    normalizeTopics(item.Get("topics")),
	}

	if id := item.Get("id"); id.Type == gjson.Number {
		repo.ID = id.Int()
	}
	if description := item.Get("description"); description.Type == gjson.String {
		repo.Description = SanitizeText(description.Str, MaxTextLength)
	}
	if language := item.Get("language"); language.Type == gjson.String {
		repo.Language = SanitizeText(language.Str, MaxTextLength)
	}

	return repo, true
}

func normalizeTopics(raw gjson.Result) []string {
	topics := []string{}
	if !raw.IsArray() {
		return topics
	}

	for _, topic := range raw.Array() {
		if len(topics) == MaxTopics {
			break
		}
		if topic.Type != gjson.String {
			continue
		}
		clean := angleStripper.Replace(topic.Str)
		if n := utf8.RuneCountInString(clean); n == 0 || n > MaxTopicLength {
			continue
		}
		topics = append(topics, clean)
	}

	return topics
}

// SanitizeText removes '<' and '>' and caps s at max runes.
func SanitizeText(s string, max int) string {
	s = angleStripper.Replace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// ClampCounter returns a non-negative integer for numeric values and 0 for anything else.
func ClampCounter(v gjson.Result) int {
	if v.Type != gjson.Number || math.IsNaN(v.Num) || v.Num <= 0 {
		return 0
	}
	if v.Num >= maxCounter {
		return maxCounter
	}
	return int(math.Floor(v.Num))
}

func parseTimestamp(v gjson.Result) time.Time {
	if v.Type != gjson.String {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v.Str)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// SelectFeatured orders repos by stars, then by most recent update, and keeps the first n.
// The input slice is left untouched.
func SelectFeatured(repos []Repo, n int) []Repo {
	if n <= 0 {
		n = DefaultFeatured
	}

	sorted := slices.Clone(repos)
	slices.SortStableFunc(sorted, func(a, b Repo) int {
		if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
			return c
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
