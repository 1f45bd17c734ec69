package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	today time.Time
	n     int64
	err   error
}

func (f *fakeExpirer) ExpireLapsed(_ context.Context, today time.Time) (int64, error) {
	f.today = today
	return f.n, f.err
}

type fakeReporter struct {
	loans []*domain.LoanView
	err   error
}

func (f *fakeReporter) OverdueLoans(context.Context, time.Time) ([]*domain.LoanView, error) {
	return f.loans, f.err
}

func testConfig(passSpec, overdueSpec string) *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			Timezone:       "Asia/Jakarta",
			PassExpirySpec: passSpec,
			OverdueSpec:    overdueSpec,
		},
	}
}

func TestNew_RegistersJobs(t *testing.T) {
	s, err := New(testConfig("0 5 0 * * *", "0 0 7 * * *"), &fakeExpirer{}, &fakeReporter{}, slog.New(slog.DiscardHandler))

	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())
}

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New(testConfig("5 0 * * *", "0 0 7 * * *"), &fakeExpirer{}, &fakeReporter{}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)

	_, err = New(testConfig("0 5 0 * * *", "every day"), &fakeExpirer{}, &fakeReporter{}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestExpirePasses_UsesSchedulerTimezone(t *testing.T) {
	expirer := &fakeExpirer{n: 4}
	var buf bytes.Buffer
	s, err := New(testConfig("0 5 0 * * *", "0 0 7 * * *"), expirer, &fakeReporter{}, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)

	// 20:00 UTC on the 19th is already the 20th in Jakarta
	s.now = func() time.Time { return time.Date(2024, 1, 19, 20, 0, 0, 0, time.UTC) }
	s.ExpirePasses()

	y, m, d := expirer.today.Date()
	assert.Equal(t, []int{2024, 1, 20}, []int{y, int(m), d})
	assert.Contains(t, buf.String(), "expired=4")
}

func TestExpirePasses_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(testConfig("0 5 0 * * *", "0 0 7 * * *"), &fakeExpirer{err: errors.New("db down")}, &fakeReporter{},
		slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)

	s.ExpirePasses()

	assert.Contains(t, buf.String(), "pass expiry job failed")
	assert.Contains(t, buf.String(), "db down")
}

func TestReportOverdue(t *testing.T) {
	loan := &domain.LoanView{
		Loan:         domain.Loan{ID: 55, DueDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		CustomerCode: "CUST20240001",
		ISBN:         "978-0441172719",
	}
	var buf bytes.Buffer
	s, err := New(testConfig("0 5 0 * * *", "0 0 7 * * *"), &fakeExpirer{}, &fakeReporter{loans: []*domain.LoanView{loan}},
		slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 1, 20, 0, 30, 0, 0, time.UTC) }

	s.ReportOverdue()

	out := buf.String()
	assert.Contains(t, out, "loan_id=55")
	assert.Contains(t, out, "days_overdue=5")
	assert.Contains(t, out, "overdue=1")
}
