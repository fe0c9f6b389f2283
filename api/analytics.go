package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
)

type TrendDay struct {
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	Customers int     `json:"customers"`
	Success   int     `json:"success"`
	Errors    int     `json:"errors"`
	CPU       float64 `json:"cpu"`
	Memory    float64 `json:"memory"`
	Disk      float64 `json:"disk"`
}

type Performance struct {
	CPUUsage        float64 `json:"cpuUsage"`
	MemoryUsage     float64 `json:"memoryUsage"`
	DiskUsage       float64 `json:"diskUsage"`
	NetworkUsage    float64 `json:"networkUsage"`
	APIResponseTime float64 `json:"apiResponseTime,omitempty"`
	ErrorRate       float64 `json:"errorRate,omitempty"`
	Uptime          float64 `json:"uptime,omitempty"`
}

// StoreShare is one slice of the per-store distribution chart.
type StoreShare struct {
	Name      string  `json:"name"`
	StoreCode string  `json:"storeCode,omitempty"`
	Value     float64 `json:"value"`
}

// EfficiencyScore accepts a bare number or {score: n}.
type EfficiencyScore float64

func (e *EfficiencyScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if f, err := strconv.ParseFloat(string(data), 64); err == nil {
		*e = EfficiencyScore(f)
		return nil
	}
	var obj struct {
		Score      *float64 `json:"score"`
		Efficiency *float64 `json:"efficiency"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		switch {
		case obj.Score != nil:
			*e = EfficiencyScore(*obj.Score)
		case obj.Efficiency != nil:
			*e = EfficiencyScore(*obj.Efficiency)
		}
	}
	return nil
}

type trendDayList []TrendDay

func (l *trendDayList) UnmarshalJSON(data []byte) error {
	*l = decodeList[TrendDay](data, "trend")
	return nil
}

type storeShareList []StoreShare

func (l *storeShareList) UnmarshalJSON(data []byte) error {
	*l = decodeList[StoreShare](data, "stores")
	return nil
}

type AnalyticsAPI struct {
	c *Client
}

func NewAnalyticsAPI(c *Client) *AnalyticsAPI {
	return &AnalyticsAPI{c: c}
}

func (a *AnalyticsAPI) Client() *Client {
	return a.c
}

// DailyTrend returns the last days of activity. days <= 0 uses the backend default.
func (a *AnalyticsAPI) DailyTrend(ctx context.Context, days int) ([]TrendDay, error) {
	var q []string
	if days > 0 {
		q = []string{"days", strconv.Itoa(days)}
	}
	var out trendDayList
	if err := a.c.getJSON(ctx, "/analytics/daily-trend", params(q...), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *AnalyticsAPI) Performance(ctx context.Context) (*Performance, error) {
	var out Performance
	if err := a.c.getJSON(ctx, "/analytics/performance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AnalyticsAPI) System(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := a.c.getJSON(ctx, "/analytics/system", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *AnalyticsAPI) Efficiency(ctx context.Context) (float64, error) {
	var out EfficiencyScore
	if err := a.c.getJSON(ctx, "/analytics/efficiency", nil, &out); err != nil {
		return 0, err
	}
	return float64(out), nil
}

func (a *AnalyticsAPI) Stores(ctx context.Context) ([]StoreShare, error) {
	var out storeShareList
	if err := a.c.getJSON(ctx, "/analytics/stores", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export streams the analytics export in format (csv by default) into w.
func (a *AnalyticsAPI) Export(ctx context.Context, format string, w io.Writer) (int64, error) {
	if format == "" {
		format = "csv"
	}
	return a.c.download(ctx, "/analytics/export", params("format", format), w)
}
