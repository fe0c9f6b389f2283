package view_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/config"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/view"
)

// backend answers each "METHOD /path" with a fixed body, or 500 when the
// route is marked failing. Query strings are recorded per path.
type backend struct {
	mu      sync.Mutex
	routes  map[string]any
	failing map[string]bool
	queries map[string][]string
}

func newBackend(t *testing.T, routes map[string]any) (*backend, *api.Client) {
	t.Helper()
	b := &backend{routes: routes, failing: map[string]bool{}, queries: map[string][]string{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	c, err := api.NewClient("test", srv.URL+"/api")
	require.NoError(t, err)
	return b, c
}

func (b *backend) fail(route string, failing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[route] = failing
}

func (b *backend) query(path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries[path]...)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.queries[r.URL.Path] = append(b.queries[r.URL.Path], r.URL.RawQuery)
	body, ok := b.routes[route]
	failing := b.failing[route]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case failing:
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	case !ok:
		w.WriteHeader(http.StatusNotFound)
	default:
		if s, isString := body.(string); isString {
			w.Write([]byte(s))
			return
		}
		json.NewEncoder(w).Encode(body)
	}
}

func overviewRoutes() map[string]any {
	return map[string]any{
		"GET /api/dashboard/data": map[string]any{
			"overview": map[string]any{"activeTablets": 5, "totalLogs": 200, "successCount": 180, "successRate": 90.4, "errorCount": 6},
			"stores": []map[string]any{
				{"storeCode": "E014", "storeName": "Enderpark Adana", "status": "active"},
				{"storeCode": "UNKNOWN", "storeName": "UNKNOWN", "status": "active"},
			},
			"trends": []map[string]any{
				{"date": "2026-05-03", "activeTablets": 4, "total": 100, "success": 80},
				{"date": "2026-05-04", "activeTablets": 5, "total": 150, "success": 135},
			},
		},
		"GET /api/dashboard/alerts": []map[string]any{
			{"id": 1, "type": "critical", "title": "Y342 offline"},
			{"id": 2, "type": "warning", "title": "SMS yavaş"},
		},
		"GET /api/dashboard/activities":      []map[string]any{{"id": 1, "title": "Yeni müşteri"}},
		"PATCH /api/dashboard/alerts/1/read": map[string]any{"success": true},
	}
}

func TestOverviewFallsBackPerCall(t *testing.T) {
	b, c := newBackend(t, overviewRoutes())
	b.fail("GET /api/dashboard/alerts", true)
	o := view.NewOverview(api.NewDashboardAPI(c), view.CycleConfig{Clock: clockwork.NewFakeClock(), Interval: 30 * time.Second})

	require.NoError(t, o.Mount(context.Background()))
	defer o.Unmount()

	st := o.Status()
	require.Nil(t, st.Err)
	require.False(t, st.Loading)

	v := o.Snapshot()
	require.NotNil(t, v.Alerts)
	require.Empty(t, v.Alerts)
	require.Len(t, v.Activities, 1)
	require.Equal(t, 1, v.Metrics.ActiveStores)
	require.Equal(t, 90, v.Metrics.SuccessRate)
	require.InDelta(t, 25, v.Trends.ActiveTabletsChange, 1e-9)
	require.InDelta(t, 50, v.Trends.TotalLogsChange, 1e-9)
	require.InDelta(t, 10, v.Trends.SuccessRateChange, 1e-9)
	require.Equal(t, []string{"scope=gunluk"}, b.query("/api/dashboard/data"))
}

func TestOverviewEverythingFailingStillRenders(t *testing.T) {
	b, c := newBackend(t, overviewRoutes())
	for _, r := range []string{"GET /api/dashboard/data", "GET /api/dashboard/alerts", "GET /api/dashboard/activities"} {
		b.fail(r, true)
	}
	o := view.NewOverview(api.NewDashboardAPI(c), view.CycleConfig{Clock: clockwork.NewFakeClock()})

	require.NoError(t, o.Mount(context.Background()))
	defer o.Unmount()
	require.Nil(t, o.Status().Err)
	require.Equal(t, view.OverviewMetrics{}, o.Snapshot().Metrics)
	require.NotNil(t, o.Snapshot().StoreStatus)
}

func TestOverviewScopeAndAlerts(t *testing.T) {
	b, c := newBackend(t, overviewRoutes())
	o := view.NewOverview(api.NewDashboardAPI(c), view.CycleConfig{Clock: clockwork.NewFakeClock(), Interval: 30 * time.Second})
	ctx := context.Background()
	require.NoError(t, o.Mount(ctx))
	defer o.Unmount()

	require.NoError(t, o.SetScope(ctx, view.ScopeYearly))
	require.Equal(t, "scope=yillik", b.query("/api/dashboard/alerts")[1])
	require.Equal(t, 1, o.ArmedTimers())

	require.NoError(t, o.MarkAlertRead(ctx, "1"))
	alerts := o.Snapshot().Alerts
	require.Len(t, alerts, 1)
	require.Equal(t, "2", alerts[0].ID.String())

	require.Error(t, o.MarkAlertRead(ctx, "2"))
	require.Len(t, o.Snapshot().Alerts, 1)
	require.Nil(t, o.Status().Err)
}

func errorLogRoutes() map[string]any {
	return map[string]any{
		"GET /api/logs": map[string]any{"logs": []map[string]any{
			{"id": 1, "timestamp": "2026-05-04 09:00:00", "level": "ERROR", "storeCode": "E014", "storeName": "Enderpark Adana"},
			{"id": 2, "timestamp": "2026-05-04 10:00:00", "level": "ERROR", "storeCode": "UNKNOWN", "storeName": "UNKNOWN"},
			{"id": 3, "timestamp": "2026-05-04 11:00:00", "level": "WARNING", "storeCode": "Y013", "storeName": "Yenişehir"},
		}},
		"GET /api/logs/stats":      map[string]any{"total": 3, "error": 2, "warning": 1},
		"GET /api/logs/categories": []string{"CUSTOMER_CREATE", "SMS"},
		"GET /api/dashboard/data":  map[string]any{"overview": map[string]any{}},
		"GET /api/logs/export":     "id,level\n1,ERROR\n",
	}
}

func TestErrorLogsLoadsAndRefilters(t *testing.T) {
	b, c := newBackend(t, errorLogRoutes())
	fc := clockwork.NewFakeClockAt(time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC))
	e := view.NewErrorLogs(api.NewLoggingAPI(c), api.NewDashboardAPI(c), view.CycleConfig{Clock: fc, Interval: 45 * time.Second})
	ctx := context.Background()

	require.NoError(t, e.Mount(ctx))
	defer e.Unmount()

	v := e.Snapshot()
	require.Len(t, v.RawLogs, 3)
	require.Len(t, v.Logs, 2)
	require.Equal(t, "3", v.Logs[0].ID.String())
	require.Equal(t, 2, v.Stats.Error)
	require.Equal(t, []string{"CUSTOMER_CREATE", "SMS"}, v.Categories)
	require.Equal(t, []string{"scope=daily"}, b.query("/api/logs"))
	require.Equal(t, []string{"scope=gunluk"}, b.query("/api/dashboard/data"))

	require.NoError(t, e.SetLevel(ctx, "ERROR"))
	require.Equal(t, "level=ERROR&scope=daily", b.query("/api/logs")[1])
	require.Len(t, b.query("/api/logs/stats"), 1, "filter changes only re-query logs")

	require.NoError(t, e.SetHideUnknown(ctx, false))
	require.Len(t, e.Snapshot().Logs, 3)
	require.Equal(t, 1, e.ArmedTimers())

	b.fail("GET /api/logs", true)
	require.Error(t, e.SetCategory(ctx, "SMS"))
	require.Equal(t, view.ErrorLogsRefilterMessage, e.Status().Err.Message)
	require.Len(t, e.Snapshot().Logs, 3)

	b.fail("GET /api/logs", false)
	require.NoError(t, e.Retry(ctx))
	require.Nil(t, e.Status().Err)
	require.Equal(t, "category=SMS&level=ERROR&scope=daily", b.query("/api/logs")[4])

	var buf bytes.Buffer
	_, err := e.Export(ctx, &buf)
	require.NoError(t, err)
	require.Equal(t, "id,level\n1,ERROR\n", buf.String())
	require.Equal(t, "error_logs_2026-05-04.csv", e.ExportFilename())
}

func TestErrorLogsInitialLoadNeedsEverySource(t *testing.T) {
	b, c := newBackend(t, errorLogRoutes())
	b.fail("GET /api/logs/categories", true)
	e := view.NewErrorLogs(api.NewLoggingAPI(c), api.NewDashboardAPI(c), view.CycleConfig{Clock: clockwork.NewFakeClock()})

	require.Error(t, e.Mount(context.Background()))
	defer e.Unmount()
	require.Equal(t, view.ErrorLogsErrorMessage, e.Status().Err.Message)
	require.Empty(t, e.Snapshot().Logs)

	b.fail("GET /api/logs/export", true)
	_, err := e.Export(context.Background(), &bytes.Buffer{})
	require.ErrorContains(t, err, view.ExportFailedMessage)
}

func TestStoresLastSeen(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.Local)
	_, c := newBackend(t, map[string]any{
		"GET /api/stores": []map[string]any{{"id": 1, "code": "E014", "name": "Enderpark Adana", "status": "active"}},
		"GET /api/stores/status": []map[string]any{
			{"storeCode": "E014", "lastActivity": now.Add(-135 * time.Minute).Format(time.RFC3339)},
		},
		"GET /api/stores/summary":    map[string]any{"total": 1, "active": 1},
		"PATCH /api/stores/1/status": map[string]any{"success": true},
	})
	s := view.NewStores(api.NewStoresAPI(c), view.CycleConfig{Clock: clockwork.NewFakeClockAt(now), Interval: time.Minute})
	ctx := context.Background()

	require.NoError(t, s.Mount(ctx))
	defer s.Unmount()

	require.Equal(t, "2 saat 15 dakika önce", s.LastSeen("E014"))
	require.Equal(t, "Bilinmiyor", s.LastSeen("Y999"))
	require.Equal(t, 1, s.Snapshot().Summary.Active)

	require.NoError(t, s.UpdateStatus(ctx, "1", "warning"))
	require.Equal(t, "warning", s.Snapshot().Stores[0].Status)
}

func TestReportsActions(t *testing.T) {
	_, c := newBackend(t, map[string]any{
		"GET /api/reports/types":       map[string]any{"success": true, "data": []map[string]any{{"id": "overview", "name": "Genel Bakış"}}},
		"GET /api/reports/recent":      "not json",
		"POST /api/reports/generate":   map[string]any{"success": true, "data": map[string]any{"id": 42, "reportType": "overview"}},
		"GET /api/reports/42/download": "%PDF-1.4",
	})
	fc := clockwork.NewFakeClockAt(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	r := view.NewReports(api.NewReportsAPI(c), view.CycleConfig{Clock: fc})
	ctx := context.Background()

	require.NoError(t, r.Mount(ctx))
	defer r.Unmount()

	v := r.Snapshot()
	require.Len(t, v.Types, 1)
	require.Equal(t, []string{view.RecentReportsFailedMessage}, v.Warnings)
	require.Equal(t, api.DateRange{Start: "2026-05-04", End: "2026-05-04"}, v.Selection.DateRange)

	_, err := r.Export(ctx, api.FormatPDF, &bytes.Buffer{})
	require.ErrorIs(t, err, errors.ErrNoReport)
	require.Equal(t, view.NoReportMessage, r.Status().Err.Message)

	r.SetPeriod(api.PeriodCustom)
	r.SetDateRange(api.DateRange{Start: "2026-05-04", End: "2026-05-01"})
	_, err = r.Generate(ctx)
	require.ErrorIs(t, err, errors.ErrInvalidDateRange)

	r.SetDateRange(api.DateRange{Start: "2026-05-01", End: "2026-05-04"})
	report, err := r.Generate(ctx)
	require.NoError(t, err)
	require.Equal(t, "42", report.ID.String())
	require.Nil(t, r.Status().Err)

	var buf bytes.Buffer
	name, err := r.Export(ctx, api.FormatPDF, &buf)
	require.NoError(t, err)
	require.Equal(t, "report-42.pdf", name)
	require.Equal(t, "%PDF-1.4", buf.String())

	_, err = r.Download(ctx, "7", api.FormatExcel, &bytes.Buffer{})
	require.Error(t, err)
	require.Equal(t, view.DownloadFailedMessage, r.Status().Err.Message)
}

func TestSettingsPanelsLoadIndependently(t *testing.T) {
	b, c := newBackend(t, map[string]any{
		"GET /api/settings/notifications":  map[string]any{"success": true, "data": map[string]any{"smsNotifications": true}},
		"GET /api/settings/dashboard":      map[string]any{"success": true, "data": map[string]any{"defaultView": "errors", "refreshInterval": 60}},
		"GET /api/settings/api-keys":       map[string]any{"success": true, "data": []map[string]any{{"id": "k1", "name": "CI"}}},
		"PUT /api/settings/profile":        map[string]any{"success": true},
		"POST /api/settings/api-keys":      map[string]any{"success": true, "data": map[string]any{"id": "k2", "name": "Tablet"}},
		"DELETE /api/settings/api-keys/k1": map[string]any{"success": true, "message": "Silindi"},
	})
	b.fail("GET /api/settings/profile", true)
	s := view.NewSettings(api.NewSettingsAPI(c), view.CycleConfig{Clock: clockwork.NewFakeClock()})
	ctx := context.Background()

	require.NoError(t, s.Mount(ctx))
	defer s.Unmount()

	v := s.Snapshot()
	require.Equal(t, []string{view.ProfileLoadFailedMessage}, v.Warnings)
	require.Equal(t, "👤", v.Profile.Avatar)
	require.True(t, v.Notifications.SMSNotifications)
	require.Equal(t, "errors", v.Dashboard.DefaultView)
	require.Len(t, v.APIKeys, 1)

	msg, err := s.UpdateProfile(ctx, api.Profile{Name: "Ümit"})
	require.NoError(t, err)
	require.Equal(t, view.ProfileSavedMessage, msg)
	require.Equal(t, "Ümit", s.Snapshot().Profile.Name)

	_, err = s.CreateAPIKey(ctx, "   ")
	require.ErrorIs(t, err, errors.ErrNameRequired)
	require.Equal(t, view.APIKeyNameRequiredMessage, s.Status().Err.Message)

	key, err := s.CreateAPIKey(ctx, "Tablet")
	require.NoError(t, err)
	require.Equal(t, "k2", key.ID.String())
	require.Nil(t, s.Status().Err)
	require.Len(t, s.Snapshot().APIKeys, 2)

	msg, err = s.DeleteAPIKey(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, "Silindi", msg)
	require.Len(t, s.Snapshot().APIKeys, 1)

	_, err = s.UpdateDashboard(ctx, api.DefaultDashboardSettings())
	require.Error(t, err)
	require.Equal(t, view.DashboardSaveFailedMessage, s.Status().Err.Message)
}

func TestSMSFallbacks(t *testing.T) {
	_, c := newBackend(t, map[string]any{
		"GET /api/sms/detailed": map[string]any{"stats": map[string]any{"totalSent": 10, "totalSuccess": 7, "totalFailed": 1}},
	})
	fc := clockwork.NewFakeClock()
	s := view.NewSMS(api.NewSMSAPI(c), view.CycleConfig{Clock: fc, Interval: time.Minute})

	require.NoError(t, s.Mount(context.Background()))
	defer s.Unmount()

	v := s.Snapshot()
	require.Equal(t, view.SMSStats{TotalSent: 10, Approved: 7, Rejected: 1, Pending: 2}, v.Stats)
	require.Equal(t, "inactive", v.SystemStatus.Status)
	require.Equal(t, "Veri yok", v.SystemStatus.Uptime)
	require.NotNil(t, v.ApprovalTypes)
	require.Zero(t, s.ArmedTimers())
}

func TestFactory(t *testing.T) {
	_, c := newBackend(t, map[string]any{})
	f := view.NewFactory(view.NewAPIs(c, c), config.Refresh{}, view.WithClock(clockwork.NewFakeClock()))

	intervals := map[string]time.Duration{
		view.SectionOverview:  30 * time.Second,
		view.SectionErrorLogs: 45 * time.Second,
		view.SectionStores:    60 * time.Second,
		view.SectionCustomers: 90 * time.Second,
		view.SectionSMS:       0,
		view.SectionAnalytics: 0,
		view.SectionReports:   0,
		view.SectionSettings:  0,
	}
	for name, interval := range intervals {
		ctrl, ok := f.New(name)
		require.True(t, ok, name)
		require.Equal(t, name, ctrl.Name())
		require.Equal(t, interval, ctrl.Interval(), name)
	}
	_, ok := f.New("nope")
	require.False(t, ok)
}
