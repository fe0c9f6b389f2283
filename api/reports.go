package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/yenikoza/tablet-dashboard/internal/utils"
)

// Report periods.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
	PeriodCustom  = "custom"
)

// Download formats.
const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
)

type ReportType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// DateRange bounds a custom report, as YYYY-MM-DD dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Report struct {
	ID          utils.FlexString `json:"id"`
	Name        string           `json:"name,omitempty"`
	Type        string           `json:"type,omitempty"`
	ReportType  string           `json:"reportType,omitempty"`
	Period      string           `json:"period,omitempty"`
	DateRange   *DateRange       `json:"dateRange,omitempty"`
	GeneratedAt Time             `json:"generatedAt"`
	ReportData  json.RawMessage  `json:"reportData,omitempty"`
}

type GenerateRequest struct {
	ReportType string     `json:"reportType"`
	Period     string     `json:"period"`
	DateRange  *DateRange `json:"dateRange,omitempty"`
}

type ReportsAPI struct {
	c *Client
}

func NewReportsAPI(c *Client) *ReportsAPI {
	return &ReportsAPI{c: c}
}

func (r *ReportsAPI) Client() *Client {
	return r.c
}

func (r *ReportsAPI) Types(ctx context.Context) ([]ReportType, error) {
	types, _, err := getData[[]ReportType](ctx, r.c, "/reports/types", nil)
	return types, err
}

func (r *ReportsAPI) Recent(ctx context.Context) ([]Report, error) {
	reports, _, err := getData[[]Report](ctx, r.c, "/reports/recent", nil)
	return reports, err
}

// Report returns nil when the backend reports no such report.
func (r *ReportsAPI) Report(ctx context.Context, id string) (*Report, error) {
	report, ok, err := getData[*Report](ctx, r.c, "/reports/"+url.PathEscape(id), nil)
	if err != nil || !ok {
		return nil, err
	}
	return report, nil
}

// Generate returns nil when the backend declined to build the report.
func (r *ReportsAPI) Generate(ctx context.Context, req GenerateRequest) (*Report, error) {
	env, err := sendData[*Report](ctx, r.c, http.MethodPost, "/reports/generate", req)
	if err != nil || !env.Success {
		return nil, err
	}
	return env.Data, nil
}

// Download streams the rendered report into w. format is FormatPDF or FormatExcel.
func (r *ReportsAPI) Download(ctx context.Context, id, format string, w io.Writer) (int64, error) {
	return r.c.download(ctx, "/reports/"+url.PathEscape(id)+"/download", params("format", format), w)
}

// DownloadFilename is the name the dashboard saves a report download under.
func DownloadFilename(id, format string) string {
	if format == FormatExcel {
		return "report-" + id + ".xlsx"
	}
	return "report-" + id + ".pdf"
}
