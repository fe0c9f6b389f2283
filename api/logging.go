package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"

	"github.com/yenikoza/tablet-dashboard/internal/utils"
)

// UnknownStore marks a log row captured with no store context.
const UnknownStore = "UNKNOWN"

type LogEntry struct {
	ID        utils.FlexString `json:"id"`
	Timestamp Time             `json:"timestamp"`
	CreatedAt Time             `json:"createdAt"`
	Level     string           `json:"level"`
	Category  string           `json:"category"`
	StoreCode string           `json:"storeCode"`
	StoreName string           `json:"storeName"`
	Message   string           `json:"message"`
	Data      json.RawMessage  `json:"data,omitempty"`
}

// When is the row's timestamp, falling back to its creation time.
func (l LogEntry) When() Time {
	if !l.Timestamp.IsZero() {
		return l.Timestamp
	}
	return l.CreatedAt
}

// HasStore reports whether the row carries a real store code and name.
func (l LogEntry) HasStore() bool {
	return l.StoreCode != "" && l.StoreName != "" && l.StoreCode != UnknownStore && l.StoreName != UnknownStore
}

// LogsResponse accepts {logs:[...]} or a bare array.
type LogsResponse struct {
	Logs  []LogEntry
	Total int
}

func (r *LogsResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	r.Logs = decodeList[LogEntry](data, "logs")
	if len(data) > 0 && data[0] == '{' {
		var meta struct {
			Total int `json:"total"`
		}
		if err := json.Unmarshal(data, &meta); err == nil {
			r.Total = meta.Total
		}
	}
	if r.Total == 0 {
		r.Total = len(r.Logs)
	}
	return nil
}

// LogFilter is the query for /logs. Empty fields are omitted. "all" is not a
// valid level or category; callers clear the field instead.
type LogFilter struct {
	Level    string
	Category string
	Search   string
	Scope    string
}

func (f LogFilter) Values() url.Values {
	return params("level", f.Level, "category", f.Category, "search", f.Search, "scope", f.Scope)
}

type LogStats struct {
	Total   int `json:"total"`
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
	Success int `json:"success"`
}

type RejectionReason struct {
	RejectionCode string `json:"rejectionCode"`
	ReasonMapping string `json:"reasonMapping"`
	Details       string `json:"details"`
	Count         int    `json:"count"`
}

type CustomerStoreStat struct {
	StoreCode               string  `json:"storeCode"`
	StoreName               string  `json:"storeName"`
	TotalAttempts           int     `json:"totalAttempts"`
	SuccessfulRegistrations int     `json:"successfulRegistrations"`
	FailedRegistrations     int     `json:"failedRegistrations"`
	SuccessRate             float64 `json:"successRate"`
}

type CustomerAnalytics struct {
	StoreStats []CustomerStoreStat `json:"storeStats"`
}

type rejectionList []RejectionReason

func (l *rejectionList) UnmarshalJSON(data []byte) error {
	*l = decodeList[RejectionReason](data, "reasons")
	return nil
}

type categoryList []string

func (l *categoryList) UnmarshalJSON(data []byte) error {
	*l = decodeList[string](data, "categories")
	return nil
}

// LoggingAPI is the tablet log family, including the customer analytics views
// that are derived from the same log store.
type LoggingAPI struct {
	c *Client
}

func NewLoggingAPI(c *Client) *LoggingAPI {
	return &LoggingAPI{c: c}
}

func (l *LoggingAPI) Client() *Client {
	return l.c
}

func (l *LoggingAPI) Logs(ctx context.Context, f LogFilter) (*LogsResponse, error) {
	var out LogsResponse
	if err := l.c.getJSON(ctx, "/logs", f.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *LoggingAPI) Log(ctx context.Context, id string) (*LogEntry, error) {
	var out LogEntry
	if err := l.c.getJSON(ctx, "/logs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *LoggingAPI) Stats(ctx context.Context, scope string) (*LogStats, error) {
	var out LogStats
	if err := l.c.getJSON(ctx, "/logs/stats", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *LoggingAPI) Categories(ctx context.Context) ([]string, error) {
	var out categoryList
	if err := l.c.getJSON(ctx, "/logs/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export streams the CSV export for f into w.
func (l *LoggingAPI) Export(ctx context.Context, f LogFilter, w io.Writer) (int64, error) {
	return l.c.download(ctx, "/logs/export", f.Values(), w)
}

func (l *LoggingAPI) RejectionReasons(ctx context.Context, scope string) ([]RejectionReason, error) {
	var out rejectionList
	if err := l.c.getJSON(ctx, "/customer/rejection-reasons", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *LoggingAPI) CustomerAnalytics(ctx context.Context, scope string) (*CustomerAnalytics, error) {
	var out CustomerAnalytics
	if err := l.c.getJSON(ctx, "/customer/analytics", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
