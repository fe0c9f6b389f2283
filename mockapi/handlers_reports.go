package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
)

// latestReportID is what the dashboard downloads when it exports a report
// it generated but has no id for.
const latestReportID = "temp"

var reportPeriods = []string{api.PeriodDaily, api.PeriodWeekly, api.PeriodMonthly, api.PeriodYearly, api.PeriodCustom}

func (s *Server) ReportTypesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, s.data.reportTypes)
	}
}

func (s *Server) RecentReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, s.data.reports)
	}
}

func (s *Server) GenerateReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.GenerateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Geçersiz istek")
			return
		}
		if !slices.Contains(reportPeriods, req.Period) {
			writeError(w, http.StatusBadRequest, "Geçersiz dönem")
			return
		}
		if req.Period == api.PeriodCustom && (req.DateRange == nil || req.DateRange.Start == "" || req.DateRange.End == "") {
			writeError(w, http.StatusBadRequest, "Tarih aralığı gerekli")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		i := slices.IndexFunc(s.data.reportTypes, func(t api.ReportType) bool { return t.ID == req.ReportType })
		if i < 0 {
			writeError(w, http.StatusBadRequest, "Bilinmeyen rapor türü")
			return
		}

		logs := s.inScope(req.Period)
		summary, _ := json.Marshal(map[string]any{"totalLogs": len(logs), "stores": len(s.data.stores)})
		report := api.Report{
			ID:          utils.FlexString(strconv.Itoa(s.data.nextReportID)),
			Name:        s.data.reportTypes[i].Name,
			ReportType:  req.ReportType,
			Period:      req.Period,
			DateRange:   req.DateRange,
			GeneratedAt: api.Time{Time: s.now()},
			ReportData:  summary,
		}
		s.data.nextReportID++
		s.data.reports = append([]api.Report{report}, s.data.reports...)
		writeData(w, report)
	}
}

func (s *Server) findReport(id string) (api.Report, bool) {
	if id == latestReportID && len(s.data.reports) > 0 {
		return s.data.reports[0], true
	}
	i := slices.IndexFunc(s.data.reports, func(r api.Report) bool { return r.ID.String() == id })
	if i < 0 {
		return api.Report{}, false
	}
	return s.data.reports[i], true
}

func (s *Server) ReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		report, ok := s.findReport(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "Rapor bulunamadı")
			return
		}
		writeData(w, report)
	}
}

func (s *Server) ReportDownloadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		report, ok := s.findReport(r.PathValue("id"))
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "Rapor bulunamadı")
			return
		}

		format := r.URL.Query().Get("format")
		switch format {
		case api.FormatExcel:
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		case api.FormatPDF, "":
			format = api.FormatPDF
			w.Header().Set("Content-Type", "application/pdf")
		default:
			writeError(w, http.StatusBadRequest, "Desteklenmeyen format")
			return
		}
		filename := api.DownloadFilename(report.ID.String(), format)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		fmt.Fprintf(w, "%s\n%s %s %s\n", report.Name, report.ReportType, report.Period, report.GeneratedAt.Format("2006-01-02 15:04:05"))
		if len(report.ReportData) > 0 {
			w.Write(report.ReportData)
		}
	}
}
