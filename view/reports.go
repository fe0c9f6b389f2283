package view

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"golang.org/x/sync/errgroup"
)

const (
	ReportTypesFailedMessage   = "Rapor türleri yüklenemedi"
	RecentReportsFailedMessage = "Son raporlar yüklenemedi"
	GenerateFailedMessage      = "Rapor oluşturulamadı"
	NoReportMessage            = "Önce rapor oluşturmalısınız"
	ViewReportFailedMessage    = "Rapor görüntülenemedi"
	DownloadFailedMessage      = "Rapor indirilemedi"
	InvalidRangeMessage        = "Geçersiz tarih aralığı"

	DefaultReportType = "overview"
	dateLayout        = "2006-01-02"
)

// ReportSelection is what the next Generate will ask for.
type ReportSelection struct {
	ReportType string
	Period     string
	DateRange  api.DateRange
}

type ReportsView struct {
	Types     []api.ReportType
	Recent    []api.Report
	Generated *api.Report
	Selection ReportSelection
	// Warnings name the parts of the page that could not be loaded.
	Warnings []string
}

type Reports struct {
	*Cycle[struct{}, ReportsView]
	api *api.ReportsAPI
}

// NewReports builds the reports section. It loads once on mount and has no
// silent refresh.
func NewReports(r *api.ReportsAPI, cfg CycleConfig) *Reports {
	cfg.Name = SectionReports
	cfg.Interval = 0
	c := &Reports{api: r}
	today := cfg.clock().Now().UTC().Format(dateLayout)
	initial := ReportsView{
		Types:  []api.ReportType{},
		Recent: []api.Report{},
		Selection: ReportSelection{
			ReportType: DefaultReportType,
			Period:     api.PeriodDaily,
			DateRange:  api.DateRange{Start: today, End: today},
		},
	}
	c.Cycle = NewCycle(cfg, struct{}{}, initial, c.fetch)
	return c
}

func (c *Reports) fetch(ctx context.Context, _ struct{}, prev ReportsView, _ Mode) (ReportsView, error) {
	logger := log.With().Str("section", SectionReports).Logger()

	var typesFailed, recentFailed bool
	next := prev
	g, gctx := errgroup.WithContext(ctx)
	tryLoad(gctx, g, logger, "types", &typesFailed, &next.Types, prev.Types, c.api.Types)
	tryLoad(gctx, g, logger, "recent", &recentFailed, &next.Recent, prev.Recent, c.api.Recent)
	if err := g.Wait(); err != nil {
		return prev, err
	}

	next.Warnings = nil
	if typesFailed {
		next.Warnings = append(next.Warnings, ReportTypesFailedMessage)
	}
	if recentFailed {
		next.Warnings = append(next.Warnings, RecentReportsFailedMessage)
	}
	if next.Types == nil {
		next.Types = []api.ReportType{}
	}
	if next.Recent == nil {
		next.Recent = []api.Report{}
	}
	return next, nil
}

func (c *Reports) Select(reportType string) {
	c.Update(func(v *ReportsView) { v.Selection.ReportType = reportType })
}

func (c *Reports) SetPeriod(period string) {
	c.Update(func(v *ReportsView) { v.Selection.Period = period })
}

func (c *Reports) SetDateRange(r api.DateRange) {
	c.Update(func(v *ReportsView) { v.Selection.DateRange = r })
}

// Generate builds a report for the current selection. The date range is only
// sent for custom periods, and must then be a valid start <= end pair.
func (c *Reports) Generate(ctx context.Context) (*api.Report, error) {
	c.ClearError()
	sel := c.Snapshot().Selection
	req := api.GenerateRequest{ReportType: sel.ReportType, Period: sel.Period}
	if sel.Period == api.PeriodCustom {
		if err := ValidateDateRange(sel.DateRange); err != nil {
			return nil, c.Fail(InvalidRangeMessage, err, nil)
		}
		r := sel.DateRange
		req.DateRange = &r
	}

	report, err := c.api.Generate(ctx, req)
	if err == nil && report == nil {
		err = errors.Wrapf(errors.ErrNotFound, "[Reports.Generate] backend declined %s", sel.ReportType)
	}
	if err != nil {
		return nil, c.Fail(GenerateFailedMessage, err, func(ctx context.Context) error {
			_, err := c.Generate(ctx)
			return err
		})
	}
	c.Update(func(v *ReportsView) { v.Generated = report })
	return report, nil
}

// ViewReport loads a stored report into the preview.
func (c *Reports) ViewReport(ctx context.Context, id string) (*api.Report, error) {
	c.ClearError()
	report, err := c.api.Report(ctx, id)
	if err == nil && report == nil {
		err = errors.Wrapf(errors.ErrNotFound, "[Reports.ViewReport] report %s", id)
	}
	if err != nil {
		return nil, c.Fail(ViewReportFailedMessage, err, func(ctx context.Context) error {
			_, err := c.ViewReport(ctx, id)
			return err
		})
	}
	c.Update(func(v *ReportsView) { v.Generated = report })
	return report, nil
}

// Export downloads the generated report in format into w and returns the
// file name it should be saved under.
func (c *Reports) Export(ctx context.Context, format string, w io.Writer) (string, error) {
	generated := c.Snapshot().Generated
	if generated == nil {
		return "", c.Fail(NoReportMessage, errors.ErrNoReport, nil)
	}
	id := generated.ID.String()
	if id == "" {
		id = "temp"
	}
	if _, err := c.api.Download(ctx, id, format, w); err != nil {
		return "", c.Fail(fmt.Sprintf("%s export başarısız", formatLabel(format)), err, nil)
	}
	return api.DownloadFilename(id, format), nil
}

// Download fetches a stored report from the recent list.
func (c *Reports) Download(ctx context.Context, id, format string, w io.Writer) (string, error) {
	if _, err := c.api.Download(ctx, id, format, w); err != nil {
		return "", c.Fail(DownloadFailedMessage, err, nil)
	}
	return api.DownloadFilename(id, format), nil
}

func ValidateDateRange(r api.DateRange) error {
	start, err := time.Parse(dateLayout, r.Start)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidDateRange, "[ValidateDateRange] start %q", r.Start)
	}
	end, err := time.Parse(dateLayout, r.End)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidDateRange, "[ValidateDateRange] end %q", r.End)
	}
	if end.Before(start) {
		return errors.Wrapf(errors.ErrInvalidDateRange, "[ValidateDateRange] %s is before %s", r.End, r.Start)
	}
	return nil
}

func formatLabel(format string) string {
	if format == api.FormatExcel {
		return "Excel"
	}
	return "PDF"
}
