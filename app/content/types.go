package content

import (
	"fmt"
	"strings"
	"time"
)

type Personal struct {
	Name     string            `json:"name"`
	Title    string            `json:"title"`
	Bio      string            `json:"bio"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone,omitempty"`
	Location string            `json:"location,omitempty"`
	Avatar   string            `json:"avatar,omitempty"`
	Resume   string            `json:"resume,omitempty"`
	Social   map[string]string `json:"social,omitempty"`
}

type Project struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription,omitempty"`
	Image           string   `json:"image,omitempty"`
	Technologies    []string `json:"technologies"`
	Category        string   `json:"category,omitempty"`
	Status          string   `json:"status,omitempty"`
	LiveURL         string   `json:"liveUrl,omitempty"`
	GitHubURL       string   `json:"githubUrl,omitempty"`
	Featured        bool     `json:"featured"`
	Date            string   `json:"date,omitempty"`
}

type Post struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Date        Date     `json:"date"`
	ReadTime    string   `json:"readTime,omitempty"`
	Tags        []string `json:"tags"`
	ExternalURL string   `json:"externalUrl,omitempty"`
	Featured    bool     `json:"featured"`
}

type Portfolio struct {
	Personal Personal  `json:"personal"`
	Projects []Project `json:"projects"`
	Blog     []Post    `json:"blog"`
}

// Date accepts "2006-01-02" or RFC 3339 and marshals back to the short form.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}
