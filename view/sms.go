package view

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
	"golang.org/x/sync/errgroup"
)

const SMSErrorMessage = "SMS verileri yüklenirken hata oluştu. Lütfen sayfayı yenileyin."

// SMSStats are the delivery counters in the section's own vocabulary.
type SMSStats struct {
	TotalSent int
	Approved  int
	Pending   int
	Rejected  int
}

// SuccessRate is approved over sent, as a percentage.
func (s SMSStats) SuccessRate() float64 {
	if s.TotalSent <= 0 {
		return 0
	}
	return float64(s.Approved) / float64(s.TotalSent) * 100
}

// NormalizeSMSStats maps backend totals: pending is whatever was sent and
// neither succeeded nor failed, never negative.
func NormalizeSMSStats(t api.SMSTotals) SMSStats {
	return SMSStats{
		TotalSent: t.TotalSent,
		Approved:  t.TotalSuccess,
		Rejected:  t.TotalFailed,
		Pending:   max(0, t.TotalSent-t.TotalSuccess-t.TotalFailed),
	}
}

type SMSView struct {
	Stats              SMSStats
	Logs               []api.LogEntry
	HourlyDistribution []api.HourlyBucket
	ApprovalTypes      []api.ApprovalType
	ErrorAnalysis      []api.SMSIssue
	SystemStatus       api.SystemStatus
}

type SMS struct {
	*Cycle[Scope, SMSView]
	api *api.SMSAPI
}

// NewSMS builds the SMS section. It has no silent refresh; cfg.Interval is
// ignored.
func NewSMS(s *api.SMSAPI, cfg CycleConfig) *SMS {
	cfg.Name = SectionSMS
	cfg.Interval = 0
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = SMSErrorMessage
	}
	c := &SMS{api: s}
	c.Cycle = NewCycle(cfg, ScopeDaily, SMSView{}, c.fetch)
	return c
}

func (c *SMS) SetScope(ctx context.Context, s Scope) error {
	return c.SetParams(ctx, s)
}

func (c *SMS) fetch(ctx context.Context, scope Scope, _ SMSView, _ Mode) (SMSView, error) {
	logger := log.With().Str("section", SectionSMS).Logger()
	sc := scope.String()
	unavailable := &api.SystemStatus{Status: "inactive", Uptime: "Veri yok", LastCheck: api.Time{Time: c.Clock().Now()}}

	var (
		detailed *api.SMSDetailed
		hourly   []api.HourlyBucket
		approval []api.ApprovalType
		issues   []api.SMSIssue
		status   *api.SystemStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	withFallback(gctx, g, logger, "detailed", &detailed, &api.SMSDetailed{}, func(ctx context.Context) (*api.SMSDetailed, error) {
		return c.api.Detailed(ctx, sc)
	})
	withFallback(gctx, g, logger, "hourly-distribution", &hourly, []api.HourlyBucket{}, func(ctx context.Context) ([]api.HourlyBucket, error) {
		return c.api.HourlyDistribution(ctx, sc)
	})
	withFallback(gctx, g, logger, "approval-types", &approval, []api.ApprovalType{}, func(ctx context.Context) ([]api.ApprovalType, error) {
		return c.api.ApprovalTypes(ctx, sc)
	})
	withFallback(gctx, g, logger, "error-analysis", &issues, []api.SMSIssue{}, func(ctx context.Context) ([]api.SMSIssue, error) {
		return c.api.ErrorAnalysis(ctx, sc)
	})
	withFallback(gctx, g, logger, "system-status", &status, unavailable, c.api.SystemStatus)
	if err := g.Wait(); err != nil {
		return SMSView{}, err
	}

	d := utils.Value(detailed)
	return SMSView{
		Stats:              NormalizeSMSStats(d.Stats),
		Logs:               d.Logs,
		HourlyDistribution: hourly,
		ApprovalTypes:      approval,
		ErrorAnalysis:      issues,
		SystemStatus:       utils.ValueOr(status, *unavailable),
	}, nil
}
