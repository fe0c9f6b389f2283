// Package view holds one controller per dashboard section. Each controller
// owns its section's data, loading and error state, and refresh timer.
package view

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/config"
)

// Section names, as they appear in the location fragment.
const (
	SectionOverview  = "overview"
	SectionErrorLogs = "errors"
	SectionCustomers = "customer-analytics"
	SectionSMS       = "sms"
	SectionStores    = "stores"
	SectionAnalytics = "analytics"
	SectionReports   = "reports"
	SectionSettings  = "settings"
)

// Controller is what the shell needs from a section.
type Controller interface {
	Name() string
	Mount(ctx context.Context) error
	Unmount()
	Refresh(ctx context.Context) error
	Retry(ctx context.Context) error
	Status() Status
	Interval() time.Duration
	ArmedTimers() int
}

var (
	_ Controller = (*Overview)(nil)
	_ Controller = (*ErrorLogs)(nil)
	_ Controller = (*CustomerAnalytics)(nil)
	_ Controller = (*SMS)(nil)
	_ Controller = (*Stores)(nil)
	_ Controller = (*Analytics)(nil)
	_ Controller = (*Reports)(nil)
	_ Controller = (*Settings)(nil)
)

// APIs bundles the endpoint families the sections read from.
type APIs struct {
	Dashboard *api.DashboardAPI
	Logging   *api.LoggingAPI
	SMS       *api.SMSAPI
	Stores    *api.StoresAPI
	Analytics *api.AnalyticsAPI
	Reports   *api.ReportsAPI
	Settings  *api.SettingsAPI
}

// NewAPIs builds every family. Overview, analytics and settings live on the
// dashboard backend; logs, sms, stores and reports on the main one.
func NewAPIs(main, dashboard *api.Client) APIs {
	return APIs{
		Dashboard: api.NewDashboardAPI(dashboard),
		Logging:   api.NewLoggingAPI(main),
		SMS:       api.NewSMSAPI(main),
		Stores:    api.NewStoresAPI(main),
		Analytics: api.NewAnalyticsAPI(dashboard),
		Reports:   api.NewReportsAPI(main),
		Settings:  api.NewSettingsAPI(dashboard),
	}
}

// Factory builds a fresh controller for a section name, so that every
// navigation starts from clean state.
type Factory struct {
	apis     APIs
	clock    clockwork.Clock
	refresh  config.RefreshConfig
	onChange func(string, Status)
}

type FactoryOption func(*Factory)

func WithClock(c clockwork.Clock) FactoryOption {
	return func(f *Factory) { f.clock = c }
}

// WithObserver is called on every status change of every section the
// factory builds.
func WithObserver(fn func(section string, st Status)) FactoryOption {
	return func(f *Factory) { f.onChange = fn }
}

func NewFactory(apis APIs, refresh config.RefreshConfig, opts ...FactoryOption) *Factory {
	f := &Factory{apis: apis, refresh: refresh, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) cfg(interval time.Duration) CycleConfig {
	return CycleConfig{Interval: interval, Clock: f.clock, OnChange: f.onChange}
}

// New returns the controller for name, or false for an unknown section.
func (f *Factory) New(name string) (Controller, bool) {
	switch name {
	case SectionOverview:
		return NewOverview(f.apis.Dashboard, f.cfg(f.refresh.GetOverviewRefreshInterval())), true
	case SectionErrorLogs:
		return NewErrorLogs(f.apis.Logging, f.apis.Dashboard, f.cfg(f.refresh.GetErrorLogsRefreshInterval())), true
	case SectionCustomers:
		return NewCustomerAnalytics(f.apis.Logging, f.cfg(f.refresh.GetCustomerAnalyticsRefreshInterval())), true
	case SectionSMS:
		return NewSMS(f.apis.SMS, f.cfg(0)), true
	case SectionStores:
		return NewStores(f.apis.Stores, f.cfg(f.refresh.GetStoresRefreshInterval())), true
	case SectionAnalytics:
		return NewAnalytics(f.apis.Analytics, f.cfg(0)), true
	case SectionReports:
		return NewReports(f.apis.Reports, f.cfg(0)), true
	case SectionSettings:
		return NewSettings(f.apis.Settings, f.cfg(0)), true
	}
	return nil, false
}
