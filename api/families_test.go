package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yenikoza/tablet-dashboard/api"
)

func TestOverviewNormalisesLooseShapes(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/data":
			require.Equal(t, "aylik", r.URL.Query().Get("scope"))
			w.Write([]byte(`{"overview":{"activeTablets":12,"totalLogs":40,"successCount":30,"successRate":75.4,"errorCount":3},
				"stores":[{"id":1,"storeCode":"E014","storeName":"Enderpark Adana","status":"active","lastActivity":"2026-05-04 09:58:00"}],
				"trends":{}}`))
		case "/api/dashboard/alerts":
			w.Write([]byte(`{"alerts":[{"id":1,"type":"critical","title":"Y342 Mağazası Offline","isRead":false}]}`))
		case "/api/dashboard/activities":
			w.Write([]byte(`[{"id":"a1","description":"Yeni müşteri","timestamp":"2026-05-04T09:00:00Z"}]`))
		}
	}))
	d := api.NewDashboardAPI(c)
	ctx := context.Background()

	data, err := d.Overview(ctx, "aylik")
	require.NoError(t, err)
	require.Equal(t, 12, data.Overview.ActiveTablets)
	require.Empty(t, data.Trends)
	require.Len(t, data.Stores, 1)
	require.Equal(t, "1", data.Stores[0].ID.String())
	require.Equal(t, 9, data.Stores[0].LastActivity.Hour())

	alerts, err := d.Alerts(ctx, "aylik")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, "critical", alerts[0].Type)

	activities, err := d.Activities(ctx, "aylik")
	require.NoError(t, err)
	require.Equal(t, "Yeni müşteri", activities[0].Label())
}

func TestLogsResponseAcceptsArrayOrObject(t *testing.T) {
	var wrapped api.LogsResponse
	require.NoError(t, json.Unmarshal([]byte(`{"logs":[{"id":1,"level":"ERROR"}],"total":50}`), &wrapped))
	require.Len(t, wrapped.Logs, 1)
	require.Equal(t, 50, wrapped.Total)

	var bare api.LogsResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1},{"id":"2"}]`), &bare))
	require.Len(t, bare.Logs, 2)
	require.Equal(t, 2, bare.Total)
	require.Equal(t, "2", bare.Logs[1].ID.String())

	var junk api.LogsResponse
	require.NoError(t, json.Unmarshal([]byte(`"nope"`), &junk))
	require.Empty(t, junk.Logs)
}

func TestLogEntryHelpers(t *testing.T) {
	created, _ := api.ParseTime("2026-05-04 08:00:00")
	e := api.LogEntry{CreatedAt: created, StoreCode: "E014", StoreName: "UNKNOWN"}
	require.Equal(t, created, e.When())
	require.False(t, e.HasStore())

	e.StoreName = "Enderpark Adana"
	require.True(t, e.HasStore())
}

func TestTimeLayouts(t *testing.T) {
	for _, raw := range []string{`"2026-05-04 10:00:00"`, `"2026-05-04T10:00:00Z"`, `"2026-05-04"`, `1777888800000`} {
		var ts api.Time
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		require.False(t, ts.IsZero(), raw)
	}

	var ts api.Time
	require.NoError(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	require.True(t, ts.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	require.True(t, ts.IsZero())

	out, err := json.Marshal(api.Time{Time: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Equal(t, `"2026-05-04T10:00:00Z"`, string(out))
}

func TestEfficiencyScoreShapes(t *testing.T) {
	var e api.EfficiencyScore
	require.NoError(t, json.Unmarshal([]byte(`87.5`), &e))
	require.Equal(t, api.EfficiencyScore(87.5), e)
	require.NoError(t, json.Unmarshal([]byte(`{"score":64}`), &e))
	require.Equal(t, api.EfficiencyScore(64), e)
}

func TestReportsEnvelope(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reports/types":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]any{{"id": "overview", "name": "Genel Bakış"}}})
		case "/api/reports/recent":
			writeJSON(w, http.StatusOK, map[string]any{"success": false})
		case "/api/reports/generate":
			var req api.GenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, api.PeriodCustom, req.Period)
			require.NotNil(t, req.DateRange)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": 9, "reportType": req.ReportType, "period": req.Period}})
		}
	}))
	r := api.NewReportsAPI(c)
	ctx := context.Background()

	types, err := r.Types(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)

	recent, err := r.Recent(ctx)
	require.NoError(t, err)
	require.Empty(t, recent)

	report, err := r.Generate(ctx, api.GenerateRequest{ReportType: "overview", Period: api.PeriodCustom, DateRange: &api.DateRange{Start: "2026-05-01", End: "2026-05-04"}})
	require.NoError(t, err)
	require.Equal(t, "9", report.ID.String())

	require.Equal(t, "report-9.xlsx", api.DownloadFilename("9", api.FormatExcel))
	require.Equal(t, "report-9.pdf", api.DownloadFilename("9", api.FormatPDF))
}

func TestSettingsMessages(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/settings/profile":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Profil güncellendi"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/settings/profile":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"name": "Admin", "role": "Administrator"}})
		case r.Method == http.MethodDelete:
			require.Equal(t, "/api/settings/api-keys/k1", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "silindi"})
		}
	}))
	s := api.NewSettingsAPI(c)
	ctx := context.Background()

	p, err := s.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "Admin", p.Name)

	msg, err := s.UpdateProfile(ctx, *p)
	require.NoError(t, err)
	require.Equal(t, "Profil güncellendi", msg)

	msg, err = s.DeleteAPIKey(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, "silindi", msg)
}
