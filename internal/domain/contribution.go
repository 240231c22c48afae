// Package domain contains the core data structures and domain logic for the application.
package domain

// Contribution is a merged pull request against a repository the user does
// not own. It is the core domain entity of this application.
type Contribution struct {
	// Repo is the target repository's "owner/name" full name.
	Repo   string `json:"repo"`
	Title  string `json:"title"`
	Number int    `json:"number"`
	URL    string `json:"url"`
	// MergedAt is the merge date formatted as "Jan 2006", or "—" when the
	// platform did not report one.
	MergedAt string `json:"merged_at"`
	// Stars and Language describe the target repository, not the PR.
	Stars    int    `json:"stars"`
	Language string `json:"language"`
}

// LanguageShare is one language's fraction of the total bytes across the
// user's owned, non-fork repositories.
type LanguageShare struct {
	Name     string  `json:"name"`
	Fraction float64 `json:"fraction"`
}
