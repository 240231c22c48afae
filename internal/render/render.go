// Package render formats collected contributions and ranked languages into
// Markdown fragments for the README.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/o1x3/o1x3/internal/domain"
)

// Style selects how the contributions fragment is laid out.
type Style string

// LanguageDisplay selects how the language fragment is laid out.
type LanguageDisplay string

const (
	// StyleFlat renders contributions as a bullet list.
	StyleFlat Style = "flat"
	// StyleTable renders a summary line followed by a Markdown table.
	StyleTable Style = "table"

	// LanguagesInline renders languages as bold tags joined by a separator.
	LanguagesInline LanguageDisplay = "inline"
	// LanguagesBars renders languages as a fixed-width bar chart.
	LanguagesBars LanguageDisplay = "bars"
)

const (
	// Inline tags show at most this many languages, each at >= 1% share.
	maxInlineTags  = 6
	inlineFloor    = 0.01
	barWidth       = 20
	nameColWidth   = 14
	noContribution = "*No external contributions yet.*"
)

// Config selects the renderer variant.
type Config struct {
	Style     Style
	Languages LanguageDisplay
}

// ParseConfig validates the style and language display names from the CLI.
func ParseConfig(style, languages string) (Config, error) {
	cfg := Config{Style: Style(style), Languages: LanguageDisplay(languages)}
	switch cfg.Style {
	case StyleFlat, StyleTable:
	default:
		return Config{}, fmt.Errorf("unknown style %q (want %q or %q)", style, StyleFlat, StyleTable)
	}
	switch cfg.Languages {
	case LanguagesInline, LanguagesBars:
	default:
		return Config{}, fmt.Errorf("unknown language display %q (want %q or %q)", languages, LanguagesInline, LanguagesBars)
	}
	return cfg, nil
}

// langEmoji keys a display glyph by language name. Unmapped languages fall
// back to a generic glyph.
var langEmoji = map[string]string{
	"Go":         "🐹",
	"Python":     "🐍",
	"JavaScript": "⚡",
	"TypeScript": "🔷",
	"Rust":       "🦀",
	"C":          "⚙️",
	"C++":        "⚙️",
	"C#":         "🎯",
	"Java":       "☕",
	"Kotlin":     "🟣",
	"Ruby":       "💎",
	"PHP":        "🐘",
	"Swift":      "🕊️",
	"Shell":      "🐚",
	"HTML":       "🌐",
	"CSS":        "🎨",
	"Lua":        "🌙",
	"Dockerfile": "🐳",
}

const defaultEmoji = "📦"

func emoji(language string) string {
	if e, ok := langEmoji[language]; ok {
		return e
	}
	return defaultEmoji
}

// Languages renders the ranked language shares in the requested display.
// An empty input renders an empty fragment.
func Languages(shares []domain.LanguageShare, display LanguageDisplay) string {
	if display == LanguagesBars {
		return barChart(shares)
	}
	return inlineTags(shares)
}

// inlineTags renders `**Name N%**` tags joined by a separator glyph, keeping
// only languages at or above the 1% floor, at most six.
func inlineTags(shares []domain.LanguageShare) string {
	var tags []string
	for _, s := range shares {
		if s.Fraction < inlineFloor {
			break
		}
		tags = append(tags, fmt.Sprintf("**%s %.0f%%**", s.Name, s.Fraction*100))
		if len(tags) >= maxInlineTags {
			break
		}
	}
	return strings.Join(tags, " · ")
}

// barChart renders one line per language: emoji, name padded to a fixed
// column, a 20-character bar, and the percentage to one decimal place.
// The chart is fenced so the columns stay aligned when rendered.
func barChart(shares []domain.LanguageShare) string {
	if len(shares) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("```text\n")
	for _, s := range shares {
		filled := int(math.Round(s.Fraction * barWidth))
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(&b, "%s %*s %s %.1f%%\n", emoji(s.Name), nameColWidth, s.Name, bar, s.Fraction*100)
	}
	b.WriteString("```")
	return b.String()
}

// Contributions renders the collected contributions in the requested style.
func Contributions(contribs []domain.Contribution, style Style) string {
	if len(contribs) == 0 {
		return noContribution
	}
	if style == StyleTable {
		return contributionTable(contribs)
	}
	return contributionList(contribs)
}

func contributionList(contribs []domain.Contribution) string {
	lines := make([]string, 0, len(contribs))
	for _, c := range contribs {
		lines = append(lines, fmt.Sprintf("- [%s#%d](%s) — %s · %s", c.Repo, c.Number, c.URL, c.Title, c.MergedAt))
	}
	return strings.Join(lines, "\n")
}

func contributionTable(contribs []domain.Contribution) string {
	repos := make(map[string]bool)
	starCounts := make([]float64, 0, len(contribs))
	perRepoStars := make(map[string]int)
	for _, c := range contribs {
		repos[c.Repo] = true
		perRepoStars[c.Repo] = c.Stars
	}
	for _, s := range perRepoStars {
		starCounts = append(starCounts, float64(s))
	}
	totalStars, _ := stats.Sum(starCounts)

	var b strings.Builder
	fmt.Fprintf(&b, "**%d** merged pull requests across **%d** repositories · ⭐ **%s** combined\n\n",
		len(contribs), len(repos), FormatStars(int(totalStars)))
	b.WriteString("| Repository | PR | Merged |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, c := range contribs {
		fmt.Fprintf(&b, "| %s [%s](https://github.com/%s) ⭐ %s | [%s](%s) | %s |\n",
			emoji(c.Language), c.Repo, c.Repo, FormatStars(c.Stars), escapeCell(c.Title), c.URL, c.MergedAt)
	}
	return strings.TrimRight(b.String(), "\n")
}

// escapeCell keeps PR titles from breaking table rows.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Section builds the combined fragment used with a single marker pair:
// language tags, a blank line, then the contributions fragment.
func Section(shares []domain.LanguageShare, contribs []domain.Contribution, cfg Config) string {
	var parts []string
	if langs := Languages(shares, cfg.Languages); langs != "" {
		parts = append(parts, langs, "")
	}
	parts = append(parts, Contributions(contribs, cfg.Style))
	return strings.Join(parts, "\n")
}

// FormatStars renders a star count, with a "k" suffix above 1000.
// 950 stays "950"; 2500 becomes "2.5k".
func FormatStars(stars int) string {
	if stars > 1000 {
		return fmt.Sprintf("%.1fk", float64(stars)/1000)
	}
	return fmt.Sprintf("%d", stars)
}
