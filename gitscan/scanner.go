// Package gitscan collects commit statistics from a directory of local
// git repositories by shelling out to the git CLI.
package gitscan

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"homereport/logger"
	"homereport/models"
)

// SupportedLanguages maps a language name to the file extensions counted
// for it in the line-count summary.
var SupportedLanguages = map[string][]string{
	"Python":   {".py"},
	"Golang":   {".go"},
	"Bash":     {".sh"},
	"C":        {".c"},
	"Rust":     {".rs"},
	"C++":      {".cc"},
	"Assembly": {".s", ".asm"},
}

const gitDateLayout = "2006-01-02"

// Scanner walks a directory of repositories and produces one RepoStat
// per valid repository.
type Scanner struct {
	runner Runner
}

// NewScanner creates a scanner backed by the given runner.
func NewScanner(runner Runner) *Scanner {
	return &Scanner{runner: runner}
}

// Scan inspects every subdirectory of reposDir. Subdirectories that are
// not git repositories, or whose history cannot be read, are skipped
// with a warning so one broken checkout never aborts the whole report.
func (s *Scanner) Scan(ctx context.Context, reposDir string) ([]models.RepoStat, error) {
	entries, err := os.ReadDir(reposDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read repos directory %s: %w", reposDir, err)
	}

	logger.Info("Scanning repositories",
		zap.String("repos_dir", reposDir),
		zap.Int("entries", len(entries)))

	var stats []models.RepoStat
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		repoDir := filepath.Join(reposDir, entry.Name())

		stat, err := s.scanRepo(ctx, repoDir, entry.Name())
		if err != nil {
			logger.Warn("Skipping repository",
				zap.String("repo", entry.Name()),
				zap.Error(err))
			continue
		}
		logger.Debug("Scanned repository",
			zap.String("repo", stat.Name),
			zap.Int("commits_last_day", stat.CommitsLastDay),
			zap.Int("commits_last_week", stat.CommitsLastWeek))
		stats = append(stats, stat)
	}

	logger.Info("Repository scan complete",
		zap.String("repos_dir", reposDir),
		zap.Int("repositories", len(stats)))
	return stats, nil
}

// scanRepo builds the RepoStat for a single repository directory.
func (s *Scanner) scanRepo(ctx context.Context, repoDir, name string) (models.RepoStat, error) {
	stat := models.RepoStat{Name: name, LineCounts: map[string]int{}}

	if _, err := s.runner.Run(ctx, repoDir, "rev-parse", "--git-dir"); err != nil {
		return stat, fmt.Errorf("not a git repository: %w", err)
	}

	// A freshly initialized repository has no HEAD yet; report it with
	// zero activity rather than skipping it.
	if _, err := s.runner.Run(ctx, repoDir, "rev-parse", "--verify", "HEAD"); err != nil {
		if err := s.countLines(ctx, repoDir, &stat); err != nil {
			return stat, err
		}
		return stat, nil
	}

	dayLog, err := s.runner.Run(ctx, repoDir, "log", "--oneline", "--since=1 day ago")
	if err != nil {
		return stat, fmt.Errorf("failed to read last-day log: %w", err)
	}
	stat.CommitsLastDay = strings.Count(dayLog, "\n")

	weekLog, err := s.runner.Run(ctx, repoDir, "log", "--oneline", "--since=7 days ago")
	if err != nil {
		return stat, fmt.Errorf("failed to read last-week log: %w", err)
	}
	stat.WeekLog = weekLog
	stat.CommitsLastWeek = strings.Count(weekLog, "\n")

	fullLog, err := s.runner.Run(ctx, repoDir, "log", "--date=short", "--pretty=%ad|%an")
	if err != nil {
		return stat, fmt.Errorf("failed to read commit history: %w", err)
	}
	stat.CommitDates, stat.Contributors = parseHistory(fullLog)

	last, err := s.runner.Run(ctx, repoDir, "log", "-1", "--pretty=%aI")
	if err != nil {
		return stat, fmt.Errorf("failed to read last commit time: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(last)); err == nil {
		stat.LastCommitTime = t
	}

	if err := s.countLines(ctx, repoDir, &stat); err != nil {
		return stat, err
	}
	return stat, nil
}

// countLines fills stat.LineCounts from the tracked files of the
// repository. Files that vanished from the worktree are ignored.
func (s *Scanner) countLines(ctx context.Context, repoDir string, stat *models.RepoStat) error {
	tracked, err := s.runner.Run(ctx, repoDir, "ls-files")
	if err != nil {
		return fmt.Errorf("failed to list tracked files: %w", err)
	}

	for lang := range SupportedLanguages {
		stat.LineCounts[lang] = 0
	}

	for _, file := range strings.Split(tracked, "\n") {
		if file == "" {
			continue
		}
		lang, ok := languageOf(file)
		if !ok {
			continue
		}
		lines, err := fileLines(filepath.Join(repoDir, file))
		if err != nil {
			logger.Debug("Unreadable tracked file",
				zap.String("file", file),
				zap.Error(err))
			continue
		}
		stat.LineCounts[lang] += lines
	}
	return nil
}

// parseHistory splits "%ad|%an" log lines into the ordered set of commit
// dates and the sorted set of contributor names.
func parseHistory(log string) ([]time.Time, []string) {
	dateSeen := map[time.Time]bool{}
	authorSeen := map[string]bool{}
	var dates []time.Time

	for _, line := range strings.Split(log, "\n") {
		date, author, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		if t, err := time.Parse(gitDateLayout, date); err == nil && !dateSeen[t] {
			dateSeen[t] = true
			dates = append(dates, t)
		}
		if author != "" && !authorSeen[author] {
			authorSeen[author] = true
		}
	}

	authors := make([]string, 0, len(authorSeen))
	for author := range authorSeen {
		authors = append(authors, author)
	}
	sort.Strings(authors)
	return dates, authors
}

func languageOf(file string) (string, bool) {
	for lang, extensions := range SupportedLanguages {
		for _, ext := range extensions {
			if strings.HasSuffix(file, ext) {
				return lang, true
			}
		}
	}
	return "", false
}

// fileLines counts newline characters, matching what wc -l reports.
func fileLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	buf := make([]byte, 64*1024)
	reader := bufio.NewReader(f)
	for {
		n, err := reader.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
	}
}
