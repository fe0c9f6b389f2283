package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yenikoza/tablet-dashboard/internal/utils"
)

type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar"`
}

type NotificationSettings struct {
	EmailNotifications bool `json:"emailNotifications"`
	SMSNotifications   bool `json:"smsNotifications"`
	ErrorAlerts        bool `json:"errorAlerts"`
	PerformanceAlerts  bool `json:"performanceAlerts"`
	DailyReports       bool `json:"dailyReports"`
	WeeklyReports      bool `json:"weeklyReports"`
}

type DashboardSettings struct {
	DefaultView     string `json:"defaultView"`
	AutoRefresh     bool   `json:"autoRefresh"`
	RefreshInterval int    `json:"refreshInterval"`
	ShowTrends      bool   `json:"showTrends"`
	CompactMode     bool   `json:"compactMode"`
	DarkMode        bool   `json:"darkMode"`
}

type APIKey struct {
	ID       utils.FlexString `json:"id"`
	Name     string           `json:"name"`
	Key      string           `json:"key"`
	Created  Time             `json:"created"`
	LastUsed Time             `json:"lastUsed"`
}

// Defaults shown before the backend answers.
func DefaultProfile() Profile {
	return Profile{Avatar: "👤"}
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{EmailNotifications: true, ErrorAlerts: true, PerformanceAlerts: true, WeeklyReports: true}
}

func DefaultDashboardSettings() DashboardSettings {
	return DashboardSettings{DefaultView: "overview", AutoRefresh: true, RefreshInterval: 30, ShowTrends: true}
}

type SettingsAPI struct {
	c *Client
}

func NewSettingsAPI(c *Client) *SettingsAPI {
	return &SettingsAPI{c: c}
}

func (s *SettingsAPI) Client() *Client {
	return s.c
}

// Profile returns nil when the backend has no profile for the caller.
func (s *SettingsAPI) Profile(ctx context.Context) (*Profile, error) {
	p, ok, err := getData[*Profile](ctx, s.c, "/settings/profile", nil)
	if err != nil || !ok {
		return nil, err
	}
	return p, nil
}

func (s *SettingsAPI) UpdateProfile(ctx context.Context, p Profile) (string, error) {
	return s.put(ctx, "/settings/profile", p)
}

func (s *SettingsAPI) Notifications(ctx context.Context) (*NotificationSettings, error) {
	n, ok, err := getData[*NotificationSettings](ctx, s.c, "/settings/notifications", nil)
	if err != nil || !ok {
		return nil, err
	}
	return n, nil
}

func (s *SettingsAPI) UpdateNotifications(ctx context.Context, n NotificationSettings) (string, error) {
	return s.put(ctx, "/settings/notifications", n)
}

func (s *SettingsAPI) Dashboard(ctx context.Context) (*DashboardSettings, error) {
	d, ok, err := getData[*DashboardSettings](ctx, s.c, "/settings/dashboard", nil)
	if err != nil || !ok {
		return nil, err
	}
	return d, nil
}

func (s *SettingsAPI) UpdateDashboard(ctx context.Context, d DashboardSettings) (string, error) {
	return s.put(ctx, "/settings/dashboard", d)
}

func (s *SettingsAPI) APIKeys(ctx context.Context) ([]APIKey, error) {
	keys, _, err := getData[[]APIKey](ctx, s.c, "/settings/api-keys", nil)
	return keys, err
}

func (s *SettingsAPI) CreateAPIKey(ctx context.Context, name string) (*APIKey, error) {
	env, err := sendData[*APIKey](ctx, s.c, http.MethodPost, "/settings/api-keys", map[string]string{"name": name})
	if err != nil || !env.Success {
		return nil, err
	}
	return env.Data, nil
}

func (s *SettingsAPI) DeleteAPIKey(ctx context.Context, id string) (string, error) {
	env, err := sendData[any](ctx, s.c, http.MethodDelete, "/settings/api-keys/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (s *SettingsAPI) ChangePassword(ctx context.Context, current, next string) (string, error) {
	return s.put(ctx, "/settings/change-password", map[string]string{"currentPassword": current, "newPassword": next})
}

// put sends an update and returns the backend's confirmation message, empty
// when the envelope was not successful.
func (s *SettingsAPI) put(ctx context.Context, path string, body any) (string, error) {
	env, err := sendData[any](ctx, s.c, http.MethodPut, path, body)
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", nil
	}
	return env.Message, nil
}
