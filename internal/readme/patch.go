// Package readme patches marker-bounded regions of the profile README.
package readme

import (
	"fmt"
	"os"
	"regexp"
	"time"
)

// Marker pairs delimiting the generated regions. Each pair must appear
// literally, exactly once, for its replacement to happen.
const (
	SectionStart = "<!-- OPEN_SOURCE_START -->"
	SectionEnd   = "<!-- OPEN_SOURCE_END -->"

	LanguagesStart = "<!-- LANGUAGES_START -->"
	LanguagesEnd   = "<!-- LANGUAGES_END -->"
)

const timestampLayout = "Jan 02, 2006"

var lastUpdatedPattern = regexp.MustCompile(`Last updated: .+?-->`)

// ReplaceSection swaps everything between the start and end markers
// (markers included) for the fragment, keeping the markers on their own
// lines. When the marker pair is absent the content passes through
// unchanged.
func ReplaceSection(content, start, end, fragment string) string {
	pattern := regexp.MustCompile(regexp.QuoteMeta(start) + `(?s:.*?)` + regexp.QuoteMeta(end))
	if !pattern.MatchString(content) {
		return content
	}
	return pattern.ReplaceAllLiteralString(content, start+"\n"+fragment+"\n"+end)
}

// UpdateTimestamp rewrites the first "Last updated: ...-->" comment to the
// given instant's UTC date. Absent the comment, the content is unchanged.
func UpdateTimestamp(content string, now time.Time) string {
	loc := lastUpdatedPattern.FindStringIndex(content)
	if loc == nil {
		return content
	}
	stamp := "Last updated: " + now.UTC().Format(timestampLayout) + " -->"
	return content[:loc[0]] + stamp + content[loc[1]:]
}

// Patch reads the document at path, applies the transformation, and writes
// the result back whole.
func Patch(path string, apply func(content string) string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(apply(string(data))), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
