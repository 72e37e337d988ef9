package github

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultVisibleTopics = 3

var languageColors = map[string]string{
	"JavaScript": "#f1e05a",
	"TypeScript": "#2b7489",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"C++":        "#f34b7d",
	"C":          "#555555",
	"PHP":        "#4F5D95",
	"Ruby":       "#701516",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Swift":      "#ffac45",
	"Kotlin":     "#F18E33",
	"Dart":       "#00B4AB",
	"HTML":       "#e34c26",
	"CSS":        "#1572B6",
	"Vue":        "#2c3e50",
	"React":      "#61dafb",
}

const fallbackLanguageColor = "#8b949e"

func LanguageColor(lang string) string {
	if color, ok := languageColors[lang]; ok {
		return color
	}
	return fallbackLanguageColor
}

// RelativeTime labels t relative to now in whole days, rounding up.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}

	day := 24 * time.Hour
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}

	switch {
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", ceilDiv(days, 7))
	case days < 365:
		return fmt.Sprintf("%d months ago", ceilDiv(days, 30))
	default:
		return fmt.Sprintf("%d years ago", ceilDiv(days, 365))
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// SplitTopics returns the first visible topics and how many were left out.
func SplitTopics(topics []string, visible int) ([]string, int) {
	if visible <= 0 {
		visible = DefaultVisibleTopics
	}
	if len(topics) <= visible {
		return topics, 0
	}
	return topics[:visible], len(topics) - visible
}

var countPrinter = message.NewPrinter(language.English)

// FormatCount groups digits the way the English locale does ("12,345").
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
