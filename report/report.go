// Package report turns collected facts into a rendered report. Every
// function here is a pure transformation: identical input sequences
// produce byte-identical output.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"homereport/models"
)

const timeLayout = "2006-01-02 15:04:05"

// CommitSubject returns the mail subject for a commit report.
func CommitSubject(now time.Time) string {
	return "Commit Report " + now.Format(timeLayout)
}

// ServerSubject returns the mail subject for a server report.
func ServerSubject(now time.Time) string {
	return "Server Report " + now.Format(timeLayout)
}

// BuildCommitReport assembles the commit activity report: a summary
// with totals and the commit streak, one activity section per
// repository in alphabetical order, cumulative line counts, and a
// trailing telemetry section when samples are provided.
func BuildCommitReport(stats []models.RepoStat, samples []models.TelemetrySample, lastRun, now time.Time) models.Report {
	sorted := make([]models.RepoStat, len(stats))
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	totalDay, totalWeek := 0, 0
	for _, stat := range sorted {
		totalDay += stat.CommitsLastDay
		totalWeek += stat.CommitsLastWeek
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Commits in the last 24 hours (across all repos): %d\n", totalDay)
	fmt.Fprintf(&summary, "Commits in the last week (across all repos): %d\n", totalWeek)
	fmt.Fprintf(&summary, "Consecutive previous days with a commit: %d\n", Streak(sorted, now))
	if !lastRun.IsZero() {
		fmt.Fprintf(&summary, "Previous report: %s\n", lastRun.Format(timeLayout))
	}

	sections := []models.Section{{Title: "Summary", Body: summary.String()}}

	for _, stat := range sorted {
		body := stat.WeekLog
		if strings.TrimSpace(body) == "" {
			body = "No activity\n"
		}
		sections = append(sections, models.Section{
			Title: fmt.Sprintf("Activity from the last week in the %s repo", stat.Name),
			Body:  body,
		})
	}

	sections = append(sections, models.Section{
		Title: "Total current lines (across all repos)",
		Body:  lineCountBody(sorted),
	})

	if len(samples) > 0 {
		sections = append(sections, telemetrySection(samples))
	}

	return models.Report{GeneratedAt: now, Sections: sections}
}

// BuildServerReport assembles the host telemetry report. Samples are
// rendered in the order the collector declares them.
func BuildServerReport(samples []models.TelemetrySample, now time.Time) models.Report {
	return models.Report{
		GeneratedAt: now,
		Sections:    []models.Section{telemetrySection(samples)},
	}
}

// Render flattens a report into the mail body. Sections appear in
// order, each under a "=== Title ===" header.
func Render(r models.Report) string {
	var b strings.Builder
	for _, section := range r.Sections {
		fmt.Fprintf(&b, "=== %s ===\n", section.Title)
		b.WriteString(section.Body)
		if !strings.HasSuffix(section.Body, "\n") {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Streak counts consecutive previous days with at least one commit in
// any repository, starting from the day before now. Commits made today
// do not extend the streak.
func Streak(stats []models.RepoStat, now time.Time) int {
	committed := map[time.Time]bool{}
	for _, stat := range stats {
		for _, date := range stat.CommitDates {
			day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
			committed[day] = true
		}
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	count := 0
	for committed[day] {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

// lineCountBody sums per-language line counts across repositories and
// renders them alphabetically by language.
func lineCountBody(stats []models.RepoStat) string {
	totals := map[string]int{}
	for _, stat := range stats {
		for lang, count := range stat.LineCounts {
			totals[lang] += count
		}
	}

	languages := make([]string, 0, len(totals))
	for lang := range totals {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	var b strings.Builder
	for _, lang := range languages {
		fmt.Fprintf(&b, "%s: %d\n", lang, totals[lang])
	}
	return b.String()
}

func telemetrySection(samples []models.TelemetrySample) models.Section {
	var b strings.Builder
	for _, sample := range samples {
		fmt.Fprintf(&b, "%s: %s\n", sample.Name, formatValue(sample))
	}
	return models.Section{Title: "Telemetry", Body: b.String()}
}

// formatValue picks a fixed precision per unit so renders stay
// byte-identical for identical readings.
func formatValue(sample models.TelemetrySample) string {
	switch sample.Unit {
	case "%":
		return fmt.Sprintf("%.1f%%", sample.Value)
	case "bytes", "seconds":
		return fmt.Sprintf("%.0f %s", sample.Value, sample.Unit)
	case "":
		return fmt.Sprintf("%.2f", sample.Value)
	default:
		return fmt.Sprintf("%.2f %s", sample.Value, sample.Unit)
	}
}
