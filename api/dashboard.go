package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/yenikoza/tablet-dashboard/internal/utils"
)

// OverviewCounters are the headline numbers for one scope.
type OverviewCounters struct {
	ActiveTablets  int     `json:"activeTablets"`
	TodayCustomers int     `json:"todayCustomers"`
	TodayLogs      int     `json:"todayLogs"`
	TotalLogs      int     `json:"totalLogs"`
	SuccessCount   int     `json:"successCount"`
	SuccessRate    float64 `json:"successRate"`
	ErrorCount     int     `json:"errorCount"`
}

// TrendPoint is one day of the overview trend series.
type TrendPoint struct {
	Date          string `json:"date"`
	ActiveTablets int    `json:"activeTablets"`
	Total         int    `json:"total"`
	Success       int    `json:"success"`
	Errors        int    `json:"errors"`
}

// TrendSeries tolerates the backend sending an object (or nothing) where a
// series is expected.
type TrendSeries []TrendPoint

func (s *TrendSeries) UnmarshalJSON(data []byte) error {
	*s = decodeList[TrendPoint](data, "points")
	return nil
}

// Tablet is one device in a store's detail view.
type Tablet struct {
	DeviceID        string  `json:"deviceId"`
	CurrentStore    string  `json:"currentStore"`
	IsOnline        bool    `json:"isOnline"`
	IsMultiStore    bool    `json:"isMultiStore"`
	IsUnknownDevice bool    `json:"isUnknownDevice"`
	LastSeenMinutes float64 `json:"lastSeenMinutes"`
	LogCount        int     `json:"logCount"`
	TotalLogCount   int     `json:"totalLogCount"`
	StatusText      string  `json:"statusText"`
}

// OverviewStore is a store row in the overview payload.
type OverviewStore struct {
	ID            utils.FlexString `json:"id"`
	StoreCode     string           `json:"storeCode"`
	StoreName     string           `json:"storeName"`
	Status        string           `json:"status"`
	OnlineTablets int              `json:"onlineTablets"`
	TotalTablets  int              `json:"totalTablets"`
	TotalLogs     int              `json:"totalLogs"`
	ErrorCount    int              `json:"errorCount"`
	LastActivity  Time             `json:"lastActivity"`
	TabletDetails []Tablet         `json:"tabletDetails"`
}

type OverviewData struct {
	Overview OverviewCounters `json:"overview"`
	Stores   []OverviewStore  `json:"stores"`
	Trends   TrendSeries      `json:"trends"`
}

type Alert struct {
	ID        utils.FlexString `json:"id"`
	Type      string           `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp Time             `json:"timestamp"`
	IsRead    bool             `json:"isRead"`
}

type Activity struct {
	ID          utils.FlexString `json:"id"`
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Details     string           `json:"details"`
	Timestamp   Time             `json:"timestamp"`
}

// Label is what the activity feed shows as its heading.
func (a Activity) Label() string {
	if a.Title != "" {
		return a.Title
	}
	return a.Description
}

type alertList []Alert

func (l *alertList) UnmarshalJSON(data []byte) error {
	*l = decodeList[Alert](data, "alerts")
	return nil
}

type activityList []Activity

func (l *activityList) UnmarshalJSON(data []byte) error {
	*l = decodeList[Activity](data, "activities")
	return nil
}

// DashboardAPI is the overview family. Scope arguments are the backend's
// Turkish codes (gunluk, aylik, yillik).
type DashboardAPI struct {
	c *Client
}

func NewDashboardAPI(c *Client) *DashboardAPI {
	return &DashboardAPI{c: c}
}

func (d *DashboardAPI) Client() *Client {
	return d.c
}

func (d *DashboardAPI) Overview(ctx context.Context, scope string) (*OverviewData, error) {
	var out OverviewData
	if err := d.c.getJSON(ctx, "/dashboard/data", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DashboardAPI) Alerts(ctx context.Context, scope string) ([]Alert, error) {
	var out alertList
	if err := d.c.getJSON(ctx, "/dashboard/alerts", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DashboardAPI) Activities(ctx context.Context, scope string) ([]Activity, error) {
	var out activityList
	if err := d.c.getJSON(ctx, "/dashboard/activities", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DashboardAPI) StoreStatus(ctx context.Context, scope string) ([]OverviewStore, error) {
	var raw json.RawMessage
	if err := d.c.getJSON(ctx, "/dashboard/store-status", params("scope", scope), &raw); err != nil {
		return nil, err
	}
	return decodeList[OverviewStore](raw, "stores"), nil
}

func (d *DashboardAPI) Metrics(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := d.c.getJSON(ctx, "/dashboard/metrics", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DashboardAPI) MarkAlertRead(ctx context.Context, id string) error {
	return d.c.sendJSON(ctx, http.MethodPatch, "/dashboard/alerts/"+url.PathEscape(id)+"/read", nil, nil)
}
