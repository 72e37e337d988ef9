// Package view renders panel state as HTML fragments. Every string that came from the
// remote API or the panel config is escaped on the way out. raw only ever sees constant
// markup; dynamic attribute values go through open, which escapes them.
package view

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// writer collects the first write error so components can emit markup without checking
// every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// open writes a start tag. attrs are name/value pairs; names must be constants, values
// are escaped.
func (w *writer) open(tag string, attrs ...string) {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		b.WriteString(" ")
		b.WriteString(attrs[i])
		b.WriteString(`="`)
		b.WriteString(templ.EscapeString(attrs[i+1]))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	w.raw(b.String())
}

func (w *writer) close(tag string) {
	w.raw("</" + tag + ">")
}

// element writes a start tag, the escaped text and the matching end tag.
func (w *writer) element(tag, text string, attrs ...string) {
	w.open(tag, attrs...)
	w.text(text)
	w.close(tag)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) component(ctx context.Context, c templ.Component) {
	if w.err != nil {
		return
	}
	w.err = c.Render(ctx, w.w)
}

func panelPath(name string) string {
	return "/panels/" + url.PathEscape(name)
}

// Loading renders skeleton placeholders that poll the panel until it settles.
func Loading(name string, placeholders int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.open("div",
			"class", "panel panel-loading",
			"id", panelID(name),
			"hx-get", panelPath(name),
			"hx-trigger", "load delay:1s",
			"hx-swap", "outerHTML",
			"aria-busy", "true")
		for range placeholders {
			w.raw(`<div class="skeleton-card"><div class="skeleton-line wide"></div><div class="skeleton-line"></div></div>`)
		}
		w.close("div")
		return w.err
	})
}

// ErrorView renders "{prefix}: {message}" with a retry control.
func ErrorView(name, prefix, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.open("div", "class", "panel panel-error", "id", panelID(name), "role", "alert")
		w.element("p", prefix+": "+message, "class", "error-message")
		w.element("button", "Retry",
			"type", "button",
			"class", "btn btn-retry",
			"hx-post", panelPath(name)+"/retry",
			"hx-target", "#"+panelID(name),
			"hx-swap", "outerHTML")
		w.close("div")
		return w.err
	})
}

func panelID(name string) string {
	var b strings.Builder
	b.WriteString("panel-")
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
