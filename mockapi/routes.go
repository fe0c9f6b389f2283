package mockapi

import "time"

const apiPrefix = "/api"

func (s *Server) initRoutes() {
	public := s.PublicMiddleware()
	private := s.APIMiddleware()

	s.RegisterRouteFunc("OPTIONS "+apiPrefix+"/", ChainMiddleware(s.PreflightHandler(), public...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/health", ChainMiddleware(s.HealthHandler(), public...))

	// AUTH
	s.RegisterRouteFunc("POST "+apiPrefix+"/auth/login", ChainMiddleware(s.LoginHandler(), public...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/auth/me", ChainMiddleware(s.MeHandler(), private...))
	s.RegisterRouteFunc("POST "+apiPrefix+"/auth/logout", ChainMiddleware(s.LogoutHandler(), private...))

	// DASHBOARD
	s.RegisterRouteFunc("GET "+apiPrefix+"/dashboard/data", ChainMiddleware(s.DashboardDataHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/dashboard/alerts", ChainMiddleware(s.AlertsHandler(), private...))
	s.RegisterRouteFunc("PATCH "+apiPrefix+"/dashboard/alerts/{id}/read", ChainMiddleware(s.AlertReadHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/dashboard/activities", ChainMiddleware(s.ActivitiesHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/dashboard/store-status", ChainMiddleware(s.DashboardStoreStatusHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/dashboard/metrics", ChainMiddleware(s.MetricsHandler(), private...))

	// LOGS
	s.RegisterRouteFunc("GET "+apiPrefix+"/logs", ChainMiddleware(s.LogsHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/logs/stats", ChainMiddleware(s.LogStatsHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/logs/categories", ChainMiddleware(s.LogCategoriesHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/logs/export", ChainMiddleware(s.LogExportHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/logs/{id}", ChainMiddleware(s.LogHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/customer/rejection-reasons", ChainMiddleware(s.RejectionReasonsHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/customer/analytics", ChainMiddleware(s.CustomerAnalyticsHandler(), private...))

	// STORES
	s.RegisterRouteFunc("GET "+apiPrefix+"/stores", ChainMiddleware(s.StoresHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/stores/status", ChainMiddleware(s.StoreStatusesHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/stores/summary", ChainMiddleware(s.StoreSummaryHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/stores/{id}", ChainMiddleware(s.StoreHandler(), private...))
	s.RegisterRouteFunc("PATCH "+apiPrefix+"/stores/{id}/status", ChainMiddleware(s.StoreUpdateStatusHandler(), private...))

	// SMS
	s.RegisterRouteFunc("GET "+apiPrefix+"/sms/analytics", ChainMiddleware(s.SMSAnalyticsHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/sms/stats", ChainMiddleware(s.SMSAnalyticsHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/sms/detailed", ChainMiddleware(s.SMSDetailedHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/sms/hourly-distribution", ChainMiddleware(s.SMSHourlyHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/sms/approval-types", ChainMiddleware(s.SMSApprovalTypesHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/sms/error-analysis", ChainMiddleware(s.SMSErrorAnalysisHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/sms/system-status", ChainMiddleware(s.SMSSystemStatusHandler(), private...))

	// ANALYTICS
	s.RegisterRouteFunc("GET "+apiPrefix+"/analytics/daily-trend", ChainMiddleware(s.DailyTrendHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/analytics/performance", ChainMiddleware(s.PerformanceHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/analytics/system", ChainMiddleware(s.SystemHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/analytics/efficiency", ChainMiddleware(s.EfficiencyHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/analytics/stores", ChainMiddleware(s.StoreSharesHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/analytics/export", ChainMiddleware(s.AnalyticsExportHandler(), private...))

	// REPORTS
	s.RegisterRouteFunc("GET "+apiPrefix+"/reports/types", ChainMiddleware(s.ReportTypesHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/reports/recent", ChainMiddleware(s.RecentReportsHandler(), private...))
	s.RegisterRouteFunc("POST "+apiPrefix+"/reports/generate", ChainMiddleware(s.GenerateReportHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/reports/{id}", ChainMiddleware(s.ReportHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/reports/{id}/download", ChainMiddleware(s.ReportDownloadHandler(), private...))

	// SETTINGS
	s.RegisterRouteFunc("GET "+apiPrefix+"/settings/profile", ChainMiddleware(s.ProfileHandler(), private...))
	s.RegisterRouteFunc("PUT "+apiPrefix+"/settings/profile", ChainMiddleware(s.UpdateProfileHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/settings/notifications", ChainMiddleware(s.NotificationsHandler(), private...))
	s.RegisterRouteFunc("PUT "+apiPrefix+"/settings/notifications", ChainMiddleware(s.UpdateNotificationsHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/settings/dashboard", ChainMiddleware(s.DashboardSettingsHandler(), private...))
	s.RegisterRouteFunc("PUT "+apiPrefix+"/settings/dashboard", ChainMiddleware(s.UpdateDashboardSettingsHandler(), private...))
	s.RegisterRouteFunc("GET "+apiPrefix+"/settings/api-keys", ChainMiddleware(s.APIKeysHandler(), private...))
	s.RegisterRouteFunc("POST "+apiPrefix+"/settings/api-keys", ChainMiddleware(s.CreateAPIKeyHandler(), private...))
	s.RegisterRouteFunc("DELETE "+apiPrefix+"/settings/api-keys/{id}", ChainMiddleware(s.DeleteAPIKeyHandler(), private...))
	s.RegisterRouteFunc("PUT "+apiPrefix+"/settings/change-password", ChainMiddleware(s.ChangePasswordHandler(), private...))
}

// scopeWindow maps a scope query value, English or the backend's Turkish
// code, to how far back it reaches.
func scopeWindow(scope string) time.Duration {
	switch scope {
	case "monthly", "aylik":
		return 30 * 24 * time.Hour
	case "yearly", "yillik":
		return 365 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
