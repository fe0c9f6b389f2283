package view_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/view"
)

func at(s string) api.Time {
	t, ok := api.ParseTime(s)
	if !ok {
		panic(s)
	}
	return t
}

func TestFilterLogsHidesUnknownAndSortsNewestFirst(t *testing.T) {
	rows := []api.LogEntry{
		{ID: "1", Timestamp: at("2026-05-04 09:00:00"), StoreCode: "E014", StoreName: "Enderpark Adana"},
		{ID: "2", Timestamp: at("2026-05-04 11:00:00"), StoreCode: "UNKNOWN", StoreName: "UNKNOWN"},
		{ID: "3", Timestamp: at("2026-05-04 10:00:00"), StoreCode: "Y013", StoreName: "Yenişehir"},
		{ID: "4", CreatedAt: at("2026-05-04 10:00:00"), StoreCode: "Y261", StoreName: "Kartaltepe"},
		{ID: "5", Timestamp: at("2026-05-04 12:00:00"), StoreCode: "", StoreName: "Boş"},
	}

	ids := func(rows []api.LogEntry) []string {
		var out []string
		for _, r := range rows {
			out = append(out, r.ID.String())
		}
		return out
	}

	require.Equal(t, []string{"3", "4", "1"}, ids(view.FilterLogs(rows, true)))
	require.Equal(t, []string{"5", "2", "3", "4", "1"}, ids(view.FilterLogs(rows, false)))
	require.Equal(t, "1", rows[0].ID.String(), "input must not be reordered")
	require.Empty(t, view.FilterLogs(nil, true))
}

func TestComputeTrends(t *testing.T) {
	tests := []struct {
		name   string
		series api.TrendSeries
		want   view.Trends
	}{
		{name: "empty", series: nil, want: view.Trends{}},
		{name: "single point", series: api.TrendSeries{{Total: 10}}, want: view.Trends{}},
		{
			name: "growth",
			series: api.TrendSeries{
				{ActiveTablets: 99, Total: 1},
				{ActiveTablets: 4, Total: 50, Success: 40},
				{ActiveTablets: 5, Total: 100, Success: 90},
			},
			want: view.Trends{ActiveTabletsChange: 25, TotalLogsChange: 100, SuccessRateChange: 10},
		},
		{
			name:   "from zero",
			series: api.TrendSeries{{ActiveTablets: 0, Total: 0}, {ActiveTablets: 3, Total: 0}},
			want:   view.Trends{ActiveTabletsChange: 100, TotalLogsChange: 0, SuccessRateChange: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := view.ComputeTrends(tt.series)
			require.InDelta(t, tt.want.ActiveTabletsChange, got.ActiveTabletsChange, 1e-9)
			require.InDelta(t, tt.want.TotalLogsChange, got.TotalLogsChange, 1e-9)
			require.InDelta(t, tt.want.SuccessRateChange, got.SuccessRateChange, 1e-9)
		})
	}
}

func TestComputeMetrics(t *testing.T) {
	stores := []api.OverviewStore{
		{StoreCode: "E014", StoreName: "Enderpark Adana", Status: "active"},
		{StoreCode: "UNKNOWN", StoreName: "UNKNOWN", Status: "active"},
		{StoreCode: "Y342", StoreName: "Forum Mersin", Status: "error"},
		{StoreCode: "Y013", StoreName: "", Status: "active"},
	}
	m := view.ComputeMetrics(api.OverviewCounters{ActiveTablets: 8, TotalLogs: 120, SuccessCount: 100, SuccessRate: 83.5, ErrorCount: 4}, stores)
	require.Equal(t, view.OverviewMetrics{ActiveTablets: 8, TotalLogs: 120, SuccessCount: 100, SuccessRate: 84, ActiveStores: 1, ErrorCount: 4}, m)
}

func TestFormatTrend(t *testing.T) {
	require.Equal(t, "+12.5%", view.FormatTrend(12.5))
	require.Equal(t, "3.0%", view.FormatTrend(-3))
	require.Equal(t, "0.0%", view.FormatTrend(0))
	require.Equal(t, "0%", view.FormatTrend(math.NaN()))
}

func TestGenerateDailyStats(t *testing.T) {
	rows := []api.LogEntry{
		{Timestamp: at("2026-05-04 09:00:00"), Level: "SUCCESS"},
		{Timestamp: at("2026-05-03 23:59:00"), Level: "ERROR"},
		{Timestamp: at("2026-05-04 18:30:00"), Level: "ERROR"},
		{Timestamp: at("2026-05-04 10:00:00"), Level: "INFO"},
		{Level: "SUCCESS"},
	}
	stats := view.GenerateDailyStats(rows)
	require.Len(t, stats, 2)
	require.Equal(t, "03.05.2026", stats[0].Label())
	require.Equal(t, view.DailyStat{Day: stats[0].Day, Customers: 1, Errors: 1}, stats[0])
	require.Equal(t, "04.05.2026", stats[1].Label())
	require.Equal(t, 3, stats[1].Customers)
	require.Equal(t, 1, stats[1].Success)
	require.Equal(t, 1, stats[1].Errors)
}

func TestSumCustomerStats(t *testing.T) {
	totals := view.SumCustomerStats([]api.CustomerStoreStat{
		{TotalAttempts: 10, SuccessfulRegistrations: 7, FailedRegistrations: 3},
		{TotalAttempts: 5, SuccessfulRegistrations: 5},
	})
	require.Equal(t, view.CustomerTotals{TotalAttempts: 15, SuccessfulRegistrations: 12, FailedRegistrations: 3, GlobalSuccessRate: 80}, totals)
	require.Zero(t, view.SumCustomerStats(nil).GlobalSuccessRate)
}

func TestFormatLastSeen(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "Bilinmiyor"},
		{-5, "Bilinmiyor"},
		{0.5, "Az önce"},
		{1, "1 dakika önce"},
		{45, "45 dakika önce"},
		{60, "1 saat önce"},
		{135, "2 saat 15 dakika önce"},
		{24 * 60, "1 gün önce"},
		{27 * 60, "1 gün 3 saat önce"},
		{7 * 24 * 60, "1 hafta önce"},
		{10 * 24 * 60, "1 hafta 3 gün önce"},
		{28 * 24 * 60, "1 ay önce"},
		{42 * 24 * 60, "1 ay 2 hafta önce"},
		{48 * 7 * 24 * 60, "1 yıl önce"},
		{56 * 7 * 24 * 60, "1 yıl 2 ay önce"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, view.FormatLastSeen(tt.minutes), "%v minutes", tt.minutes)
	}
}

func TestMinutesSince(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	require.Equal(t, 2.0, view.MinutesSince(now.Add(-150*time.Second), now))
	require.Zero(t, view.MinutesSince(time.Time{}, now))
}

func TestNormalizeSMSStats(t *testing.T) {
	s := view.NormalizeSMSStats(api.SMSTotals{TotalSent: 156, TotalSuccess: 153, TotalFailed: 3})
	require.Equal(t, view.SMSStats{TotalSent: 156, Approved: 153, Rejected: 3}, s)
	require.InDelta(t, 98.08, s.SuccessRate(), 0.01)

	over := view.NormalizeSMSStats(api.SMSTotals{TotalSent: 5, TotalSuccess: 4, TotalFailed: 3})
	require.Zero(t, over.Pending)
	require.Equal(t, 2, view.NormalizeSMSStats(api.SMSTotals{TotalSent: 5, TotalSuccess: 3}).Pending)
	require.Zero(t, view.SMSStats{}.SuccessRate())
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]view.Scope{"daily": view.ScopeDaily, "aylik": view.ScopeMonthly, " Yearly ": view.ScopeYearly} {
		got, err := view.ParseScope(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := view.ParseScope("weekly")
	require.ErrorIs(t, err, errors.ErrUnsupported)

	require.Equal(t, "gunluk", view.ScopeDaily.DashboardCode())
	require.Equal(t, "aylik", view.ScopeMonthly.DashboardCode())
	require.Equal(t, "yillik", view.ScopeYearly.DashboardCode())
}

func TestValidateDateRange(t *testing.T) {
	require.NoError(t, view.ValidateDateRange(api.DateRange{Start: "2026-05-01", End: "2026-05-01"}))
	require.ErrorIs(t, view.ValidateDateRange(api.DateRange{Start: "2026-05-04", End: "2026-05-01"}), errors.ErrInvalidDateRange)
	require.ErrorIs(t, view.ValidateDateRange(api.DateRange{Start: "", End: "2026-05-01"}), errors.ErrInvalidDateRange)
}
