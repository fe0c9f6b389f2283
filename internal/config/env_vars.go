package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar         = "PORT"
	appNameVar         = "APP_NAME"
	folderEnvVar       = "FOLDER"
	apiURLVar          = "API_URL"
	dashboardAPIURLVar = "DASHBOARD_API_URL"
)

// The identity, logging, sms, stores and reports families are served by one
// backend; dashboard, analytics and settings by another. API_URL overrides both.
const (
	defaultAPIURL          = "http://localhost:3001/api"
	defaultDashboardAPIURL = "http://localhost:3002/api"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3001")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "YeniKoza")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetAPIURL returns the base URL of the primary backend (e.g. "http://localhost:3001/api").
func (EnvVars) GetAPIURL() string {
	return strings.TrimRight(GetEnv(apiURLVar, defaultAPIURL), "/")
}

// GetDashboardAPIURL returns the base URL used by the dashboard, analytics and settings families.
func (e EnvVars) GetDashboardAPIURL() string {
	if v := os.Getenv(dashboardAPIURLVar); v != "" {
		return strings.TrimRight(v, "/")
	}
	if v := os.Getenv(apiURLVar); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultDashboardAPIURL
}

func (EnvVars) GetUsername() string {
	return GetEnv("DASHBOARD_USERNAME", "")
}

func (EnvVars) GetPassword() string {
	return GetEnv("DASHBOARD_PASSWORD", "")
}

// GetStartSection is the location fragment the monitor starts on.
func (EnvVars) GetStartSection() string {
	return GetEnv("DASHBOARD_SECTION", "overview")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
