package view

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
	"golang.org/x/sync/errgroup"
)

const OverviewErrorMessage = "Dashboard verileri yüklenirken hata oluştu. Lütfen sayfayı yenileyin."

// OverviewMetrics are the headline cards.
type OverviewMetrics struct {
	ActiveTablets int
	TotalLogs     int
	SuccessCount  int
	SuccessRate   int
	ActiveStores  int
	ErrorCount    int
}

// Trends are day-over-day changes from the last two points of the trend
// series. SuccessRateChange is in percentage points, the others in percent.
type Trends struct {
	ActiveTabletsChange float64
	TotalLogsChange     float64
	SuccessRateChange   float64
}

type OverviewView struct {
	Metrics     OverviewMetrics
	StoreStatus []api.OverviewStore
	Alerts      []api.Alert
	Activities  []api.Activity
	Trends      Trends
}

type Overview struct {
	*Cycle[Scope, OverviewView]
	api *api.DashboardAPI
}

func NewOverview(d *api.DashboardAPI, cfg CycleConfig) *Overview {
	cfg.Name = SectionOverview
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = OverviewErrorMessage
	}
	o := &Overview{api: d}
	o.Cycle = NewCycle(cfg, ScopeDaily, OverviewView{}, o.fetch)
	return o
}

func (o *Overview) SetScope(ctx context.Context, s Scope) error {
	return o.SetParams(ctx, s)
}

// fetch is the same for initial and silent loads: three calls in parallel,
// each replaced by an empty value when it fails.
func (o *Overview) fetch(ctx context.Context, scope Scope, _ OverviewView, _ Mode) (OverviewView, error) {
	code := scope.DashboardCode()
	logger := log.With().Str("section", SectionOverview).Logger()

	var (
		data       *api.OverviewData
		alerts     []api.Alert
		activities []api.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	withFallback(gctx, g, logger, "overview", &data, &api.OverviewData{}, func(ctx context.Context) (*api.OverviewData, error) {
		return o.api.Overview(ctx, code)
	})
	withFallback(gctx, g, logger, "alerts", &alerts, []api.Alert{}, func(ctx context.Context) ([]api.Alert, error) {
		return o.api.Alerts(ctx, code)
	})
	withFallback(gctx, g, logger, "activities", &activities, []api.Activity{}, func(ctx context.Context) ([]api.Activity, error) {
		return o.api.Activities(ctx, code)
	})
	if err := g.Wait(); err != nil {
		return OverviewView{}, err
	}
	if data == nil {
		data = &api.OverviewData{}
	}

	stores := data.Stores
	if stores == nil {
		stores = []api.OverviewStore{}
	}
	return OverviewView{
		Metrics:     ComputeMetrics(data.Overview, stores),
		StoreStatus: stores,
		Alerts:      alerts,
		Activities:  activities,
		Trends:      ComputeTrends(data.Trends),
	}, nil
}

// MarkAlertRead acknowledges an alert and drops it from the list. A failure
// leaves the list untouched and is only logged.
func (o *Overview) MarkAlertRead(ctx context.Context, id string) error {
	if err := o.api.MarkAlertRead(ctx, id); err != nil {
		log.Err(err).Str("alert", id).Msg("[Overview.MarkAlertRead] failed")
		return err
	}
	o.Update(func(v *OverviewView) {
		kept := make([]api.Alert, 0, len(v.Alerts))
		for _, a := range v.Alerts {
			if a.ID.String() != id {
				kept = append(kept, a)
			}
		}
		v.Alerts = kept
	})
	return nil
}

func ComputeMetrics(c api.OverviewCounters, stores []api.OverviewStore) OverviewMetrics {
	return OverviewMetrics{
		ActiveTablets: c.ActiveTablets,
		TotalLogs:     c.TotalLogs,
		SuccessCount:  c.SuccessCount,
		SuccessRate:   int(math.Round(c.SuccessRate)),
		ActiveStores:  CountActiveStores(stores),
		ErrorCount:    c.ErrorCount,
	}
}

// CountActiveStores counts active stores that have a real code and name.
func CountActiveStores(stores []api.OverviewStore) int {
	n := 0
	for _, s := range stores {
		if s.Status != "active" || s.StoreCode == "" || s.StoreName == "" {
			continue
		}
		if s.StoreCode == api.UnknownStore || s.StoreName == api.UnknownStore {
			continue
		}
		n++
	}
	return n
}

// ComputeTrends compares the last point of the series with the one before
// it. A series shorter than two points gives zero trends.
func ComputeTrends(series api.TrendSeries) Trends {
	if len(series) < 2 {
		return Trends{}
	}
	today, yesterday := series[len(series)-1], series[len(series)-2]
	return Trends{
		ActiveTabletsChange: percentChange(today.ActiveTablets, yesterday.ActiveTablets),
		TotalLogsChange:     percentChange(today.Total, yesterday.Total),
		SuccessRateChange:   successRate(today) - successRate(yesterday),
	}
}

func percentChange(now, before int) float64 {
	if before == 0 {
		if now > 0 {
			return 100
		}
		return 0
	}
	return float64(now-before) / float64(before) * 100
}

func successRate(p api.TrendPoint) float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Success) / float64(p.Total) * 100
}

// FormatTrend renders a change as "+12.5%" or "12.5%". The card shows the
// direction with an arrow, so negative values carry no sign.
func FormatTrend(change float64) string {
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return "0%"
	}
	sign := ""
	if change > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, math.Abs(change))
}
