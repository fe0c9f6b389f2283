package view

import (
	"context"
	"io"

	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	ErrorLogsErrorMessage    = "Veriler yüklenirken hata oluştu. Lütfen sayfayı yenileyin."
	ErrorLogsRefilterMessage = "Loglar yüklenirken hata oluştu."
	ExportFailedMessage      = "Dışa aktarma sırasında hata oluştu."

	// FilterAll is the level and category value that disables that filter.
	FilterAll = "all"
)

// LogQuery is the error log section's filter state.
type LogQuery struct {
	Scope       Scope
	Level       string
	Category    string
	Search      string
	HideUnknown bool
}

func DefaultLogQuery() LogQuery {
	return LogQuery{Scope: ScopeDaily, Level: FilterAll, Category: FilterAll, HideUnknown: true}
}

// Filter is the query sent to the backend. HideUnknown is applied locally.
func (q LogQuery) Filter() api.LogFilter {
	f := api.LogFilter{Search: q.Search, Scope: q.Scope.String()}
	if q.Level != FilterAll {
		f.Level = q.Level
	}
	if q.Category != FilterAll {
		f.Category = q.Category
	}
	return f
}

type ErrorLogsView struct {
	// Logs is what the table shows: filtered and newest first.
	Logs       []api.LogEntry
	RawLogs    []api.LogEntry
	Stats      api.LogStats
	Categories []string
	Overview   *api.OverviewData
}

type ErrorLogs struct {
	*Cycle[LogQuery, ErrorLogsView]
	logs      *api.LoggingAPI
	dashboard *api.DashboardAPI
}

func NewErrorLogs(l *api.LoggingAPI, d *api.DashboardAPI, cfg CycleConfig) *ErrorLogs {
	cfg.Name = SectionErrorLogs
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = ErrorLogsErrorMessage
	}
	if cfg.RefilterErrorMessage == "" {
		cfg.RefilterErrorMessage = ErrorLogsRefilterMessage
	}
	e := &ErrorLogs{logs: l, dashboard: d}
	e.Cycle = NewCycle(cfg, DefaultLogQuery(), ErrorLogsView{Categories: []string{}}, e.fetch)
	return e
}

// SetScope reloads everything and restarts the refresh timer.
func (e *ErrorLogs) SetScope(ctx context.Context, s Scope) error {
	q := e.Params()
	q.Scope = s
	return e.SetParams(ctx, q)
}

func (e *ErrorLogs) SetLevel(ctx context.Context, level string) error {
	return e.Refilter(ctx, func(q *LogQuery) { q.Level = level })
}

func (e *ErrorLogs) SetCategory(ctx context.Context, category string) error {
	return e.Refilter(ctx, func(q *LogQuery) { q.Category = category })
}

func (e *ErrorLogs) SetSearch(ctx context.Context, search string) error {
	return e.Refilter(ctx, func(q *LogQuery) { q.Search = search })
}

func (e *ErrorLogs) SetHideUnknown(ctx context.Context, hide bool) error {
	return e.Refilter(ctx, func(q *LogQuery) { q.HideUnknown = hide })
}

// fetch loads all four sources on an initial load, logs and stats on a
// silent tick, and only logs after a filter change. Every call is required.
func (e *ErrorLogs) fetch(ctx context.Context, q LogQuery, prev ErrorLogsView, mode Mode) (ErrorLogsView, error) {
	next := prev
	var (
		logs       *api.LogsResponse
		stats      *api.LogStats
		categories []string
		overview   *api.OverviewData
	)

	g, gctx := errgroup.WithContext(ctx)
	required(gctx, g, &logs, func(ctx context.Context) (*api.LogsResponse, error) {
		return e.logs.Logs(ctx, q.Filter())
	})
	if mode != ModeRefilter {
		required(gctx, g, &stats, func(ctx context.Context) (*api.LogStats, error) {
			return e.logs.Stats(ctx, q.Scope.String())
		})
	}
	if mode == ModeInitial {
		required(gctx, g, &categories, e.logs.Categories)
		required(gctx, g, &overview, func(ctx context.Context) (*api.OverviewData, error) {
			return e.dashboard.Overview(ctx, q.Scope.DashboardCode())
		})
	}
	if err := g.Wait(); err != nil {
		return prev, errors.Wrapf(err, "[ErrorLogs.fetch] %s load", mode)
	}

	next.RawLogs = nil
	if logs != nil {
		next.RawLogs = logs.Logs
	}
	next.Logs = FilterLogs(next.RawLogs, q.HideUnknown)
	next.Stats = utils.ValueOr(stats, prev.Stats)
	if mode == ModeInitial {
		next.Categories = categories
		if next.Categories == nil {
			next.Categories = []string{}
		}
		next.Overview = overview
	}
	return next, nil
}

// ExportFilename is the name the CSV export is saved under.
func (e *ErrorLogs) ExportFilename() string {
	return "error_logs_" + e.Clock().Now().UTC().Format("2006-01-02") + ".csv"
}

// Export streams the CSV for the current filters into w. A failure does not
// touch the section error.
func (e *ErrorLogs) Export(ctx context.Context, w io.Writer) (int64, error) {
	n, err := e.logs.Export(ctx, e.Params().Filter(), w)
	if err != nil {
		return n, errors.Wrapf(err, ExportFailedMessage)
	}
	return n, nil
}
