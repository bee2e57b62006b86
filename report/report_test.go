package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homereport/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildCommitReportRendering(t *testing.T) {
	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)

	// Deliberately out of alphabetical order.
	stats := []models.RepoStat{
		{
			Name:       "bravo",
			WeekLog:    "",
			LineCounts: map[string]int{"Golang": 100},
		},
		{
			Name:            "alpha",
			CommitsLastDay:  1,
			CommitsLastWeek: 3,
			WeekLog:         "abc123 third\ndef456 second\n789abc first\n",
			CommitDates:     []time.Time{day(2026, 8, 28), day(2026, 8, 27)},
			LineCounts:      map[string]int{"Python": 40},
		},
	}
	samples := []models.TelemetrySample{
		{Name: "disk_used", Value: 42, Unit: "%", Timestamp: now},
	}

	rendered := Render(BuildCommitReport(stats, samples, time.Time{}, now))

	expected := "=== Summary ===\n" +
		"Commits in the last 24 hours (across all repos): 1\n" +
		"Commits in the last week (across all repos): 3\n" +
		"Consecutive previous days with a commit: 2\n" +
		"\n" +
		"=== Activity from the last week in the alpha repo ===\n" +
		"abc123 third\n" +
		"def456 second\n" +
		"789abc first\n" +
		"\n" +
		"=== Activity from the last week in the bravo repo ===\n" +
		"No activity\n" +
		"\n" +
		"=== Total current lines (across all repos) ===\n" +
		"Golang: 100\n" +
		"Python: 40\n" +
		"\n" +
		"=== Telemetry ===\n" +
		"disk_used: 42.0%\n" +
		"\n"
	assert.Equal(t, expected, rendered)
}

func TestBuildCommitReportIsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	stats := []models.RepoStat{
		{
			Name:            "zulu",
			CommitsLastDay:  2,
			CommitsLastWeek: 5,
			WeekLog:         "1111111 fix\n2222222 feat\n",
			CommitDates:     []time.Time{day(2026, 8, 28)},
			LineCounts:      map[string]int{"C": 10, "Rust": 20, "Bash": 5},
		},
		{
			Name:       "mike",
			LineCounts: map[string]int{"C": 3},
		},
	}
	samples := []models.TelemetrySample{
		{Name: "disk_used", Value: 61.37, Unit: "%"},
		{Name: "uptime", Value: 86400, Unit: "seconds"},
	}

	first := Render(BuildCommitReport(stats, samples, now.AddDate(0, 0, -1), now))
	second := Render(BuildCommitReport(stats, samples, now.AddDate(0, 0, -1), now))
	assert.Equal(t, first, second, "identical input must render byte-identical output")

	// Input order must not leak into the output.
	reversed := []models.RepoStat{stats[1], stats[0]}
	third := Render(BuildCommitReport(reversed, samples, now.AddDate(0, 0, -1), now))
	assert.Equal(t, first, third)
}

func TestBuildCommitReportPreviousRunLine(t *testing.T) {
	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	lastRun := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)

	rendered := Render(BuildCommitReport([]models.RepoStat{{Name: "a"}}, nil, lastRun, now))
	assert.Contains(t, rendered, "Previous report: 2026-08-28 07:00:00\n")

	withoutHistory := Render(BuildCommitReport([]models.RepoStat{{Name: "a"}}, nil, time.Time{}, now))
	assert.NotContains(t, withoutHistory, "Previous report:")
}

func TestBuildServerReportRendering(t *testing.T) {
	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	samples := []models.TelemetrySample{
		{Name: "disk_used", Value: 42, Unit: "%"},
		{Name: "disk_free", Value: 5000000000, Unit: "bytes"},
		{Name: "memory_used", Value: 63.25, Unit: "%"},
		{Name: "uptime", Value: 86400, Unit: "seconds"},
		{Name: "load_1m", Value: 0.42, Unit: ""},
	}

	rendered := Render(BuildServerReport(samples, now))

	expected := "=== Telemetry ===\n" +
		"disk_used: 42.0%\n" +
		"disk_free: 5000000000 bytes\n" +
		"memory_used: 63.2%\n" +
		"uptime: 86400 seconds\n" +
		"load_1m: 0.42\n" +
		"\n"
	assert.Equal(t, expected, rendered)

	rep := BuildServerReport(samples, now)
	require.Len(t, rep.Sections, 1)
	assert.Equal(t, now, rep.GeneratedAt)
}

func TestStreak(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dates    []time.Time
		expected int
	}{
		{
			name:     "no commits",
			dates:    nil,
			expected: 0,
		},
		{
			name:     "commit today only does not count",
			dates:    []time.Time{day(2026, 8, 29)},
			expected: 0,
		},
		{
			name:     "three consecutive previous days",
			dates:    []time.Time{day(2026, 8, 28), day(2026, 8, 27), day(2026, 8, 26)},
			expected: 3,
		},
		{
			name:     "gap breaks the streak",
			dates:    []time.Time{day(2026, 8, 28), day(2026, 8, 26)},
			expected: 1,
		},
		{
			name:     "streak not starting yesterday counts zero",
			dates:    []time.Time{day(2026, 8, 27), day(2026, 8, 26)},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := []models.RepoStat{{Name: "repo", CommitDates: tt.dates}}
			assert.Equal(t, tt.expected, Streak(stats, now))
		})
	}
}

func TestStreakMergesRepositories(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	stats := []models.RepoStat{
		{Name: "a", CommitDates: []time.Time{day(2026, 8, 28)}},
		{Name: "b", CommitDates: []time.Time{day(2026, 8, 27)}},
	}
	assert.Equal(t, 2, Streak(stats, now))
}
