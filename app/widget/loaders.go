package widget

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/folio/app/github"
	"github.com/lysyi3m/folio/app/panel"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

const reposPerPage = 100

// Fetcher is the subset of github.Client the loaders need.
type Fetcher interface {
	FetchUser(ctx context.Context, username string, timeout time.Duration) (gjson.Result, error)
	FetchRepos(ctx context.Context, username string, query github.RepoQuery, timeout time.Duration) ([]gjson.Result, error)
}

var _ Fetcher = (*github.Client)(nil)

func ReposLoader(fetcher Fetcher, config *Config) panel.LoadFunc[[]github.Repo] {
	username := config.Username
	timeout := config.Settings.GetTimeout()
	maxItems := config.Settings.MaxItems

	return func(ctx context.Context) ([]github.Repo, error) {
		raw, err := fetcher.FetchRepos(ctx, username, github.RepoQuery{Sort: "stars", PerPage: reposPerPage}, timeout)
		if err != nil {
			return nil, err
		}

		repos := github.SelectFeatured(github.NormalizeRepos(raw), maxItems)
		return repos, nil
	}
}

// StatsLoader fetches the profile and the repository list concurrently; each request
// runs under its own timeout and the first failure cancels the other.
func StatsLoader(fetcher Fetcher, config *Config) panel.LoadFunc[github.Stats] {
	username := config.Username
	timeout := config.Settings.GetTimeout()
	topLanguages := config.Settings.TopLanguages

	return func(ctx context.Context) (github.Stats, error) {
		if err := github.ValidateUsername(username); err != nil {
			return github.Stats{}, err
		}

		var user gjson.Result
		var repos []gjson.Result

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			user, err = fetcher.FetchUser(gctx, username, timeout)
			return err
		})
		g.Go(func() error {
			var err error
			repos, err = fetcher.FetchRepos(gctx, username, github.RepoQuery{Sort: "updated", PerPage: reposPerPage}, timeout)
			return err
		})

		if err := g.Wait(); err != nil {
			return github.Stats{}, err
		}

		return github.ComputeStats(user, repos, topLanguages), nil
	}
}

func newPanels(fetcher Fetcher, config *Config) (*Widget, error) {
	w := &Widget{Config: config}

	switch config.Kind {
	case KindRepos:
		w.Repos = panel.New(config.Name, ReposLoader(fetcher, config), panel.Options[[]github.Repo]{
			FailureMessage: "Failed to load repositories",
			IsEmpty:        func(repos []github.Repo) bool { return len(repos) == 0 },
		})
	case KindStats:
		w.Stats = panel.New(config.Name, StatsLoader(fetcher, config), panel.Options[github.Stats]{
			FailureMessage: "Failed to load GitHub data",
		})
	default:
		return nil, fmt.Errorf("unknown panel kind: %s", config.Kind)
	}

	return w, nil
}
