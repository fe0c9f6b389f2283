package view

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	CustomerErrorMessage = "Müşteri analitik verileri yüklenirken hata oluştu."
	CustomerLogCategory  = "CUSTOMER_CREATE"
)

// DailyStat is one calendar day of customer registrations.
type DailyStat struct {
	Day       time.Time
	Customers int
	Success   int
	Errors    int
}

// Label is the day in Turkish short form, 04.05.2026.
func (d DailyStat) Label() string {
	return d.Day.Format("02.01.2006")
}

// CustomerTotals roll the per-store statistics up to the summary cards.
type CustomerTotals struct {
	TotalAttempts           int
	SuccessfulRegistrations int
	FailedRegistrations     int
	GlobalSuccessRate       int
}

type CustomerView struct {
	StoreStats       []api.CustomerStoreStat
	RejectionReasons []api.RejectionReason
	DailyStats       []DailyStat
	Totals           CustomerTotals
}

type CustomerAnalytics struct {
	*Cycle[Scope, CustomerView]
	api *api.LoggingAPI
}

func NewCustomerAnalytics(l *api.LoggingAPI, cfg CycleConfig) *CustomerAnalytics {
	cfg.Name = SectionCustomers
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = CustomerErrorMessage
	}
	c := &CustomerAnalytics{api: l}
	c.Cycle = NewCycle(cfg, ScopeDaily, CustomerView{}, c.fetch)
	return c
}

func (c *CustomerAnalytics) SetScope(ctx context.Context, s Scope) error {
	return c.SetParams(ctx, s)
}

func (c *CustomerAnalytics) fetch(ctx context.Context, scope Scope, _ CustomerView, _ Mode) (CustomerView, error) {
	logger := log.With().Str("section", SectionCustomers).Logger()

	var (
		reasons   []api.RejectionReason
		analytics *api.CustomerAnalytics
		logs      *api.LogsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	withFallback(gctx, g, logger, "rejection-reasons", &reasons, []api.RejectionReason{}, func(ctx context.Context) ([]api.RejectionReason, error) {
		return c.api.RejectionReasons(ctx, scope.String())
	})
	withFallback(gctx, g, logger, "customer-analytics", &analytics, &api.CustomerAnalytics{}, func(ctx context.Context) (*api.CustomerAnalytics, error) {
		return c.api.CustomerAnalytics(ctx, scope.String())
	})
	withFallback(gctx, g, logger, "logs", &logs, &api.LogsResponse{}, func(ctx context.Context) (*api.LogsResponse, error) {
		return c.api.Logs(ctx, api.LogFilter{Category: CustomerLogCategory, Scope: scope.String()})
	})
	if err := g.Wait(); err != nil {
		return CustomerView{}, err
	}

	stats := utils.ValueOr(analytics, api.CustomerAnalytics{}).StoreStats
	if stats == nil {
		stats = []api.CustomerStoreStat{}
	}
	rows := utils.Value(logs).Logs
	if reasons == nil {
		reasons = []api.RejectionReason{}
	}
	return CustomerView{
		StoreStats:       stats,
		RejectionReasons: reasons,
		DailyStats:       GenerateDailyStats(rows),
		Totals:           SumCustomerStats(stats),
	}, nil
}

// GenerateDailyStats buckets registration logs by local calendar day, oldest
// first. Every row counts as a customer; ERROR and SUCCESS rows also count as
// errors and successes. Rows without a timestamp are skipped.
func GenerateDailyStats(rows []api.LogEntry) []DailyStat {
	byDay := make(map[time.Time]*DailyStat)
	for _, r := range rows {
		ts := r.When()
		if ts.IsZero() {
			continue
		}
		t := ts.Local()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		d, ok := byDay[day]
		if !ok {
			d = &DailyStat{Day: day}
			byDay[day] = d
		}
		d.Customers++
		switch r.Level {
		case "ERROR":
			d.Errors++
		case "SUCCESS":
			d.Success++
		}
	}

	out := make([]DailyStat, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

func SumCustomerStats(stats []api.CustomerStoreStat) CustomerTotals {
	var t CustomerTotals
	for _, s := range stats {
		t.TotalAttempts += s.TotalAttempts
		t.SuccessfulRegistrations += s.SuccessfulRegistrations
		t.FailedRegistrations += s.FailedRegistrations
	}
	if t.TotalAttempts > 0 {
		t.GlobalSuccessRate = int(math.Round(float64(t.SuccessfulRegistrations) / float64(t.TotalAttempts) * 100))
	}
	return t
}
