package config

import "time"

// RefreshConfig holds the silent refresh cadence of each dashboard section.
// A zero interval means the section only loads on mount and on explicit refresh.
type RefreshConfig interface {
	GetOverviewRefreshInterval() time.Duration
	GetErrorLogsRefreshInterval() time.Duration
	GetStoresRefreshInterval() time.Duration
	GetCustomerAnalyticsRefreshInterval() time.Duration
	GetHTTPTimeout() time.Duration
}

type Refresh struct{}

var _ RefreshConfig = Refresh{}

func (Refresh) GetOverviewRefreshInterval() time.Duration {
	return 30 * time.Second
}

func (Refresh) GetErrorLogsRefreshInterval() time.Duration {
	return 45 * time.Second
}

func (Refresh) GetStoresRefreshInterval() time.Duration {
	return 60 * time.Second
}

func (Refresh) GetCustomerAnalyticsRefreshInterval() time.Duration {
	return 90 * time.Second
}

func (Refresh) GetHTTPTimeout() time.Duration {
	return 10 * time.Second
}
