package view

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/lysyi3m/folio/app/github"
	"github.com/lysyi3m/folio/app/panel"
)

const (
	reposErrorPrefix  = "Failed to load repositories"
	noReposMessage    = "No repositories found"
	noDescription     = "No description available"
	reposPlaceholders = 3
)

func ReposPanel(name string, snap panel.Snapshot[[]github.Repo], now time.Time) templ.Component {
	switch snap.Status {
	case panel.StatusError:
		return ErrorView(name, reposErrorPrefix, snap.Message)
	case panel.StatusReady:
		return reposGrid(name, snap, now)
	default:
		return Loading(name, reposPlaceholders)
	}
}

func reposGrid(name string, snap panel.Snapshot[[]github.Repo], now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.open("div", "class", "panel panel-repos", "id", panelID(name))

		if snap.Empty || len(snap.Data) == 0 {
			w.element("p", noReposMessage, "class", "empty")
			w.close("div")
			return w.err
		}

		w.raw(`<div class="repo-grid">`)
		for _, repo := range snap.Data {
			w.component(ctx, RepoCard(repo, now))
		}
		w.raw(`</div></div>`)
		return w.err
	})
}

// RepoCard renders one featured repository. The title opens in a new tab without
// handing the opener to the destination.
func RepoCard(repo github.Repo, now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<article class="repo-card">`)

		w.raw(`<h3 class="repo-title">`)
		w.element("a", repo.Name,
			"href", string(templ.URL(repo.HTMLURL)),
			"target", "_blank",
			"rel", "noopener noreferrer")
		w.raw(`</h3>`)

		description := repo.Description
		if description == "" {
			description = noDescription
		}
		w.element("p", description, "class", "repo-description")

		w.raw(`<div class="repo-meta">`)
		if repo.Language != "" {
			w.raw(`<span class="repo-language">`)
			w.element("span", "", "class", "language-dot", "style", "background-color: "+github.LanguageColor(repo.Language))
			w.text(repo.Language)
			w.raw(`</span>`)
		}
		w.raw(`<span class="repo-stars" title="Stars">★ `)
		w.text(github.FormatCount(repo.Stars))
		w.raw(`</span><span class="repo-forks" title="Forks">⑂ `)
		w.text(github.FormatCount(repo.Forks))
		w.raw(`</span>`)
		if !repo.UpdatedAt.IsZero() {
			w.raw(`<span class="repo-updated">Updated `)
			w.text(github.RelativeTime(repo.UpdatedAt, now))
			w.raw(`</span>`)
		}
		w.raw(`</div>`)

		visible, hidden := github.SplitTopics(repo.Topics, github.DefaultVisibleTopics)
		if len(visible) > 0 {
			w.raw(`<ul class="repo-topics">`)
			for _, topic := range visible {
				w.element("li", topic, "class", "topic")
			}
			if hidden > 0 {
				w.element("li", "+"+strconv.Itoa(hidden), "class", "topic topic-more")
			}
			w.raw(`</ul>`)
		}

		w.raw(`</article>`)
		return w.err
	})
}
