package view

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/lysyi3m/folio/app/github"
	"github.com/lysyi3m/folio/app/panel"
)

const (
	statsErrorPrefix  = "Failed to load GitHub stats"
	statsPlaceholders = 4
)

func StatsPanel(name string, snap panel.Snapshot[github.Stats]) templ.Component {
	switch snap.Status {
	case panel.StatusError:
		return ErrorView(name, statsErrorPrefix, snap.Message)
	case panel.StatusReady:
		return statsCards(name, snap.Data)
	default:
		return Loading(name, statsPlaceholders)
	}
}

func statsCards(name string, stats github.Stats) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.open("div", "class", "panel panel-stats", "id", panelID(name))

		w.raw(`<div class="stat-grid">`)
		for _, card := range []struct {
			label string
			value int
		}{
			{"Repositories", stats.PublicRepos},
			{"Stars Earned", stats.TotalStars},
			{"Followers", stats.Followers},
			{"Following", stats.Following},
		} {
			w.raw(`<div class="stat-card">`)
			w.element("span", github.FormatCount(card.value), "class", "stat-value")
			w.element("span", card.label, "class", "stat-label")
			w.raw(`</div>`)
		}
		w.raw(`</div>`)

		if len(stats.TopLanguages) > 0 {
			w.raw(`<div class="top-languages"><h4>Top Languages</h4><ul>`)
			for _, lang := range stats.TopLanguages {
				w.raw(`<li>`)
				w.element("span", "", "class", "language-dot", "style", "background-color: "+github.LanguageColor(lang.Language))
				w.text(lang.Language + " (" + strconv.Itoa(lang.Count) + ")")
				w.raw(`</li>`)
			}
			w.raw(`</ul></div>`)
		}

		w.raw(`</div>`)
		return w.err
	})
}
