// Package models defines the core data structures used throughout the application.
package models

import "time"

// RepoStat summarizes the commit activity of one local git repository.
// It is computed fresh on every run and discarded after the report is sent.
type RepoStat struct {
	Name            string
	CommitsLastDay  int
	CommitsLastWeek int
	// WeekLog is the raw one-line log of the last week, as printed by git.
	// The reporter includes it verbatim in the per-repo activity section.
	WeekLog        string
	CommitDates    []time.Time
	Contributors   []string
	LastCommitTime time.Time
	// LineCounts maps a language name to the total line count of its
	// tracked files, e.g. "Golang" -> 1204.
	LineCounts map[string]int
}

// TelemetrySample is a single host metric reading.
type TelemetrySample struct {
	Name      string
	Value     float64
	Unit      string
	Timestamp time.Time
}

// Section is one titled block of a rendered report.
type Section struct {
	Title string
	Body  string
}

// Report is an ordered sequence of sections plus the time it was built.
// It is consumed exactly once by the notifier.
type Report struct {
	GeneratedAt time.Time
	Sections    []Section
}

// EmailCredential authorizes the notifier to send mail. The app password
// is supplied via flag or environment and is never persisted.
type EmailCredential struct {
	Username    string
	AppPassword string
}

// Address returns the full mail address for the credential. A bare
// username is completed with the gmail domain, matching how the tool is
// normally configured.
func (c EmailCredential) Address() string {
	for _, r := range c.Username {
		if r == '@' {
			return c.Username
		}
	}
	return c.Username + "@gmail.com"
}

// RunRecord is one row of the run-history store: a completed report run
// and whether its mail was delivered.
type RunRecord struct {
	ID              int       `db:"id"`
	Kind            string    `db:"kind"`
	RunAt           time.Time `db:"run_at"`
	CommitsLastDay  int       `db:"commits_last_day"`
	CommitsLastWeek int       `db:"commits_last_week"`
	Delivered       bool      `db:"delivered"`
	CreatedAt       time.Time `db:"created_at"`
}

// Report kinds stored in the run history.
const (
	KindCommit = "commit"
	KindServer = "server"
)
