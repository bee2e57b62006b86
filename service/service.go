package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"homereport/config"
	"homereport/gitscan"
	"homereport/history"
	"homereport/logger"
	"homereport/models"
	"homereport/notify"
	"homereport/report"
	"homereport/telemetry"
)

// RepoCollector abstracts the repository scanner (for testability).
type RepoCollector interface {
	Scan(ctx context.Context, reposDir string) ([]models.RepoStat, error)
}

// TelemetryCollector abstracts the host metric collector (for testability).
type TelemetryCollector interface {
	Collect(ctx context.Context) ([]models.TelemetrySample, error)
}

// MailSender abstracts the notifier (for testability).
type MailSender interface {
	Send(ctx context.Context, cred models.EmailCredential, subject, body string) error
}

// HistoryStore abstracts the run-history database (for testability).
type HistoryStore interface {
	InsertRun(ctx context.Context, run models.RunRecord) error
	LastRun(ctx context.Context, kind string) (*models.RunRecord, error)
	Close() error
}

// Service errors
var ErrServiceInit = fmt.Errorf("service initialization error")

// Service wires the collectors, the renderer, and the notifier into the
// single linear pipeline each invocation runs.
type Service struct {
	cfg       *config.Config
	repos     RepoCollector
	telemetry TelemetryCollector
	mailer    MailSender
	runs      HistoryStore
	out       io.Writer
	now       func() time.Time
}

// NewService assembles a service from configuration. A run-history
// store that fails to open is logged and left nil; reports still run
// without it.
func NewService(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is required", ErrServiceInit)
	}

	var runs HistoryStore
	if store, err := history.Open(cfg.HistoryPath); err != nil {
		logger.Warn("Run history unavailable",
			zap.String("path", cfg.HistoryPath),
			zap.Error(err))
	} else {
		runs = store
	}

	return &Service{
		cfg:       cfg,
		repos:     gitscan.NewScanner(gitscan.ExecRunner{}),
		telemetry: telemetry.NewCollector(telemetry.HostProbe{}, "/"),
		mailer:    notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.RecipientList()),
		runs:      runs,
		out:       os.Stdout,
		now:       time.Now,
	}, nil
}

// RunCommitReport runs the commit pipeline once: scan repositories,
// collect telemetry, render, deliver, record.
func (s *Service) RunCommitReport(ctx context.Context) error {
	if err := s.cfg.ValidateRepos(); err != nil {
		return err
	}
	if err := s.cfg.ValidateMail(); err != nil {
		return err
	}

	stats, err := s.repos.Scan(ctx, s.cfg.ReposDir)
	if err != nil {
		return fmt.Errorf("failed to scan repositories: %w", err)
	}
	if len(stats) == 0 {
		return fmt.Errorf("no repositories found in %s", s.cfg.ReposDir)
	}

	samples := s.collectTelemetry(ctx)
	now := s.now()

	rendered := report.Render(report.BuildCommitReport(stats, samples, s.lastRun(ctx, models.KindCommit), now))
	delivered, err := s.deliver(ctx, report.CommitSubject(now), rendered)
	if err != nil {
		return err
	}

	totalDay, totalWeek := 0, 0
	for _, stat := range stats {
		totalDay += stat.CommitsLastDay
		totalWeek += stat.CommitsLastWeek
	}
	s.recordRun(ctx, models.RunRecord{
		Kind:            models.KindCommit,
		RunAt:           now,
		CommitsLastDay:  totalDay,
		CommitsLastWeek: totalWeek,
		Delivered:       delivered,
	})

	logger.Info("Commit report complete",
		zap.Int("repositories", len(stats)),
		zap.Int("commits_last_day", totalDay),
		zap.Int("commits_last_week", totalWeek),
		zap.Bool("delivered", delivered))
	return nil
}

// RunServerReport runs the telemetry pipeline once.
func (s *Service) RunServerReport(ctx context.Context) error {
	if err := s.cfg.ValidateMail(); err != nil {
		return err
	}

	samples, err := s.telemetry.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect telemetry: %w", err)
	}
	now := s.now()

	rendered := report.Render(report.BuildServerReport(samples, now))
	delivered, err := s.deliver(ctx, report.ServerSubject(now), rendered)
	if err != nil {
		return err
	}

	s.recordRun(ctx, models.RunRecord{
		Kind:      models.KindServer,
		RunAt:     now,
		Delivered: delivered,
	})

	logger.Info("Server report complete",
		zap.Int("samples", len(samples)),
		zap.Bool("delivered", delivered))
	return nil
}

// Close releases the run-history store.
func (s *Service) Close() error {
	if s.runs == nil {
		return nil
	}
	return s.runs.Close()
}

// deliver mails the rendered report, or prints it in debug mode. The
// returned flag reports whether mail actually went out.
func (s *Service) deliver(ctx context.Context, subject, body string) (bool, error) {
	if s.cfg.Debug {
		logger.Debug("Debug mode, printing report instead of mailing",
			zap.String("subject", subject))
		fmt.Fprint(s.out, body)
		return false, nil
	}

	if err := s.mailer.Send(ctx, s.cfg.Credential(), subject, body); err != nil {
		return false, fmt.Errorf("failed to deliver report: %w", err)
	}
	return true, nil
}

// collectTelemetry is best-effort for the commit report: a telemetry
// failure costs its section, not the report.
func (s *Service) collectTelemetry(ctx context.Context) []models.TelemetrySample {
	samples, err := s.telemetry.Collect(ctx)
	if err != nil {
		logger.Warn("Telemetry collection failed", zap.Error(err))
		return nil
	}
	return samples
}

// lastRun returns the time of the previous run of the given kind, or
// zero when the history store is absent or has no rows.
func (s *Service) lastRun(ctx context.Context, kind string) time.Time {
	if s.runs == nil {
		return time.Time{}
	}
	run, err := s.runs.LastRun(ctx, kind)
	if err != nil {
		if !errors.Is(err, history.ErrNoRuns) {
			logger.Warn("Failed to read run history",
				zap.String("kind", kind),
				zap.Error(err))
		}
		return time.Time{}
	}
	return run.RunAt
}

func (s *Service) recordRun(ctx context.Context, run models.RunRecord) {
	if s.runs == nil {
		return
	}
	if err := s.runs.InsertRun(ctx, run); err != nil {
		logger.Warn("Failed to record run",
			zap.String("kind", run.Kind),
			zap.Error(err))
	}
}
