package view

import (
	"time"

	"github.com/a-h/templ"
	"github.com/lysyi3m/folio/app/widget"
)

// Widget renders whichever panel w wraps in its current state.
func Widget(w *widget.Widget, now time.Time) templ.Component {
	if w.Repos != nil {
		return ReposPanel(w.Name(), w.Repos.Snapshot(), now)
	}
	return StatsPanel(w.Name(), w.Stats.Snapshot())
}
