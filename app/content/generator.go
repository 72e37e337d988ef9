package content

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/folio/app/cfg"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders the blog as an RSS 2.0 document. baseURL is the public site root; the channel
// links to the blog page and the feed itself is advertised through atom:link.
func (g *Generator) Run(store *Store, baseURL string) (string, error) {
	var buf bytes.Buffer
	baseURL = strings.TrimSuffix(baseURL, "/")
	personal := store.Personal()
	posts := store.Posts(PostQuery{})

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	title := "Blog"
	if personal.Name != "" {
		title = fmt.Sprintf("Blog - %s", personal.Name)
	}
	g.writeElement(&buf, "title", title, 4)
	g.writeElement(&buf, "link", baseURL+"/blog", 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Articles and insights by %s", personal.Name), 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(baseURL+"/blog/rss.xml")))

	lastBuildDate := time.Now().In(time.Local)
	if len(posts) > 0 && !posts[0].Date.IsZero() {
		lastBuildDate = posts[0].Date.Time
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Folio/%s", cfg.Get().Version), 4)

	for _, post := range posts {
		g.writeItem(&buf, post, personal)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, post Post, personal Personal) {
	buf.WriteString("    <item>\n")

	guid := post.ExternalURL
	if guid == "" {
		guid = "post-" + strconv.Itoa(post.ID)
	}
	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(guid)))
	xml.EscapeText(buf, []byte(guid))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", post.Title, 6)
	g.writeElement(buf, "link", post.ExternalURL, 6)

	description := post.Excerpt
	if description == "" {
		description = "No description available"
	}
	g.writeElement(buf, "description", description, 6)

	if !post.Date.IsZero() {
		g.writeElement(buf, "pubDate", post.Date.Format(time.RFC1123Z), 6)
	}

	if personal.Email != "" {
		g.writeElement(buf, "author", fmt.Sprintf("%s (%s)", personal.Email, personal.Name), 6)
	}

	for _, tag := range post.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
