package content

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// FilterAll is the filter value that matches everything.
const FilterAll = "all"

type Store struct {
	portfolio Portfolio
}

func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Store, error) {
	var portfolio Portfolio
	if err := json.Unmarshal(data, &portfolio); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	// Newest first; ties keep file order.
	slices.SortStableFunc(portfolio.Blog, func(a, b Post) int {
		return b.Date.Compare(a.Date.Time)
	})

	return &Store{portfolio: portfolio}, nil
}

func (s *Store) Personal() Personal {
	return s.portfolio.Personal
}

func (s *Store) Projects() []Project {
	return slices.Clone(s.portfolio.Projects)
}

func (s *Store) FeaturedProjects() []Project {
	var featured []Project
	for _, project := range s.portfolio.Projects {
		if project.Featured {
			featured = append(featured, project)
		}
	}
	return featured
}

type ProjectQuery struct {
	Category string
	Status   string
}

func matches(filter, value string) bool {
	return filter == "" || filter == FilterAll || filter == value
}

// FilterProjects returns projects matching both the category and the status filter, in
// file order.
func (s *Store) FilterProjects(query ProjectQuery) []Project {
	projects := make([]Project, 0, len(s.portfolio.Projects))
	for _, project := range s.portfolio.Projects {
		if matches(query.Category, project.Category) && matches(query.Status, project.Status) {
			projects = append(projects, project)
		}
	}
	return projects
}

// Categories lists project categories in first-seen order.
func (s *Store) Categories() []string {
	return distinct(s.portfolio.Projects, func(p Project) string { return p.Category })
}

// Statuses lists project statuses in first-seen order.
func (s *Store) Statuses() []string {
	return distinct(s.portfolio.Projects, func(p Project) string { return p.Status })
}

func distinct(projects []Project, field func(Project) string) []string {
	values := []string{}
	for _, project := range projects {
		if v := field(project); v != "" && !slices.Contains(values, v) {
			values = append(values, v)
		}
	}
	return values
}

type PostQuery struct {
	Search string
	Tag    string
}

// Posts filters the blog by a case-insensitive search over title and excerpt and by
// tag. Results are newest first.
func (s *Store) Posts(query PostQuery) []Post {
	search := strings.ToLower(strings.TrimSpace(query.Search))
	tag := cmp.Or(query.Tag, FilterAll)

	posts := make([]Post, 0, len(s.portfolio.Blog))
	for _, post := range s.portfolio.Blog {
		if search != "" &&
			!strings.Contains(strings.ToLower(post.Title), search) &&
			!strings.Contains(strings.ToLower(post.Excerpt), search) {
			continue
		}
		if tag != FilterAll && !slices.Contains(post.Tags, tag) {
			continue
		}
		posts = append(posts, post)
	}
	return posts
}

// Tags lists every tag used by the blog in first-seen order.
func (s *Store) Tags() []string {
	var tags []string
	for _, post := range s.portfolio.Blog {
		for _, tag := range post.Tags {
			if !slices.Contains(tags, tag) {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
