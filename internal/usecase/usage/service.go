package usage

import (
	"context"
	"time"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

// Period selects the budget window of a report.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts "day" and "month". An empty string selects the month.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay:
		return PeriodDay, nil
	case PeriodMonth, "":
		return PeriodMonth, nil
	default:
		return "", domain.Validationf("period must be %q or %q, got %q", PeriodDay, PeriodMonth, s)
	}
}

// Report is the provider token budget for one window.
// Remaining is -1 and Limit is 0 when the window is unlimited.
type Report struct {
	Period    Period
	Start     time.Time
	End       time.Time
	Limit     int64
	Used      int64
	Remaining int64
	Exhausted bool
}

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: func() time.Time { return time.Now().UTC() }}
}

// Report builds a usage report for the given period.
func (s *Service) Report(_ context.Context, period Period) Report {
	now := s.now()
	r := Report{Period: period, Remaining: -1}

	switch period {
	case PeriodDay:
		r.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.End = r.Start.Add(24 * time.Hour)
		if s.br != nil {
			r.Limit, r.Used, r.Remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
		}
	default:
		r.Period = PeriodMonth
		r.Start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.End = r.Start.AddDate(0, 1, 0)
		if s.br != nil {
			r.Limit, r.Used, r.Remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	}

	r.Exhausted = r.Limit > 0 && r.Remaining <= 0
	return r
}
