package view

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"golang.org/x/sync/errgroup"
)

const (
	AnalyticsErrorMessage = "Analytics verileri yüklenirken hata oluştu. Lütfen sayfayı yenileyin."
	DefaultTrendDays      = 7
)

type AnalyticsView struct {
	DailyTrend      []api.TrendDay
	Performance     api.Performance
	StoreAnalytics  []api.StoreShare
	EfficiencyScore float64
	SystemMetrics   map[string]any
}

type Analytics struct {
	*Cycle[int, AnalyticsView]
	api *api.AnalyticsAPI
}

// NewAnalytics builds the analytics section. Its parameter is the number of
// trend days. It has no silent refresh.
func NewAnalytics(a *api.AnalyticsAPI, cfg CycleConfig) *Analytics {
	cfg.Name = SectionAnalytics
	cfg.Interval = 0
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = AnalyticsErrorMessage
	}
	c := &Analytics{api: a}
	c.Cycle = NewCycle(cfg, DefaultTrendDays, AnalyticsView{}, c.fetch)
	return c
}

func (c *Analytics) SetDays(ctx context.Context, days int) error {
	if days <= 0 {
		days = DefaultTrendDays
	}
	return c.SetParams(ctx, days)
}

func (c *Analytics) fetch(ctx context.Context, days int, _ AnalyticsView, _ Mode) (AnalyticsView, error) {
	logger := log.With().Str("section", SectionAnalytics).Logger()

	var (
		trend      []api.TrendDay
		perf       *api.Performance
		stores     []api.StoreShare
		efficiency float64
		system     map[string]any
	)
	g, gctx := errgroup.WithContext(ctx)
	withFallback(gctx, g, logger, "daily-trend", &trend, []api.TrendDay{}, func(ctx context.Context) ([]api.TrendDay, error) {
		return c.api.DailyTrend(ctx, days)
	})
	withFallback(gctx, g, logger, "performance", &perf, &api.Performance{}, c.api.Performance)
	withFallback(gctx, g, logger, "stores", &stores, []api.StoreShare{}, c.api.Stores)
	withFallback(gctx, g, logger, "efficiency", &efficiency, 0, c.api.Efficiency)
	withFallback(gctx, g, logger, "system", &system, map[string]any{}, c.api.System)
	if err := g.Wait(); err != nil {
		return AnalyticsView{}, err
	}

	v := AnalyticsView{
		DailyTrend:      trend,
		StoreAnalytics:  stores,
		EfficiencyScore: efficiency,
		SystemMetrics:   system,
	}
	if perf != nil {
		v.Performance = *perf
	}
	if v.SystemMetrics == nil {
		v.SystemMetrics = map[string]any{}
	}
	return v, nil
}

func (c *Analytics) ExportFilename() string {
	return "analytics_" + c.Clock().Now().UTC().Format("2006-01-02") + ".csv"
}

// Export streams the analytics CSV into w.
func (c *Analytics) Export(ctx context.Context, w io.Writer) (int64, error) {
	n, err := c.api.Export(ctx, "csv", w)
	if err != nil {
		return n, errors.Wrapf(err, ExportFailedMessage)
	}
	return n, nil
}
