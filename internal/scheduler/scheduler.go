package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/utils"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single run of any job
const jobTimeout = 5 * time.Minute

type PassExpirer interface {
	ExpireLapsed(ctx context.Context, today time.Time) (int64, error)
}

type OverdueReporter interface {
	OverdueLoans(ctx context.Context, today time.Time) ([]*domain.LoanView, error)
}

// Scheduler runs the daily housekeeping jobs: expiring lapsed library passes
// and reporting overdue loans. Overdue status itself is never written.
type Scheduler struct {
	cron   *cron.Cron
	passes PassExpirer
	loans  OverdueReporter
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg *config.Config, passes PassExpirer, loans OverdueReporter, logger *slog.Logger) (*Scheduler, error) {
	loc := cfg.GetSchedulerLocation()
	cronLog := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		passes: passes,
		loans:  loans,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.Scheduler.PassExpirySpec, s.ExpirePasses); err != nil {
		return nil, fmt.Errorf("scheduling pass expiry job: %w", err)
	}
	if _, err := s.cron.AddFunc(cfg.Scheduler.OverdueSpec, s.ReportOverdue); err != nil {
		return nil, fmt.Errorf("scheduling overdue report job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries is the number of scheduled jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) today() time.Time {
	return s.now().In(s.loc)
}

// ExpirePasses marks every active pass past its expiry date as expired
func (s *Scheduler) ExpirePasses() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.passes.ExpireLapsed(ctx, s.today())
	if err != nil {
		s.logger.ErrorContext(ctx, "pass expiry job failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "pass expiry job finished", "expired", n, "duration", time.Since(start))
}

// ReportOverdue logs every open loan past its due date
func (s *Scheduler) ReportOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	today := s.today()
	loans, err := s.loans.OverdueLoans(ctx, today)
	if err != nil {
		s.logger.ErrorContext(ctx, "overdue report job failed", "error", err)
		return
	}

	for _, l := range loans {
		s.logger.WarnContext(ctx, "loan overdue",
			"loan_id", l.ID,
			"customer_code", l.CustomerCode,
			"isbn", l.ISBN,
			"due_date", l.DueDate.Format(time.DateOnly),
			"days_overdue", utils.DaysOverdue(l.DueDate, today),
		)
	}
	s.logger.InfoContext(ctx, "overdue report job finished", "overdue", len(loans), "date", today.Format(time.DateOnly))
}

// cronLogger adapts slog to the cron.Logger interface
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
