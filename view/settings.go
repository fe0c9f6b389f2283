package view

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	ProfileLoadFailedMessage       = "Profil bilgileri yüklenemedi"
	NotificationsLoadFailedMessage = "Bildirim ayarları yüklenemedi"
	DashboardLoadFailedMessage     = "Dashboard ayarları yüklenemedi"
	APIKeysLoadFailedMessage       = "API anahtarları yüklenemedi"

	ProfileSavedMessage         = "Profil başarıyla güncellendi"
	ProfileSaveFailedMessage    = "Profil güncellenemedi"
	NotificationsSavedMessage   = "Bildirim ayarları güncellendi"
	NotificationsFailedMessage  = "Bildirim ayarları güncellenemedi"
	DashboardSavedMessage       = "Dashboard ayarları güncellendi"
	DashboardSaveFailedMessage  = "Dashboard ayarları güncellenemedi"
	APIKeyNameRequiredMessage   = "API anahtarı adı gerekli"
	APIKeyCreatedMessage        = "API anahtarı oluşturuldu"
	APIKeyCreateFailedMessage   = "API anahtarı oluşturulamadı"
	APIKeyDeletedMessage        = "API anahtarı silindi"
	APIKeyDeleteFailedMessage   = "API anahtarı silinemedi"
	PasswordChangedMessage      = "Şifre başarıyla değiştirildi"
	PasswordChangeFailedMessage = "Şifre değiştirilemedi"
)

type SettingsView struct {
	Profile       api.Profile
	Notifications api.NotificationSettings
	Dashboard     api.DashboardSettings
	APIKeys       []api.APIKey
	// Warnings name the panels that could not be loaded.
	Warnings []string
	// Success is the confirmation of the last successful save.
	Success string
}

type Settings struct {
	*Cycle[struct{}, SettingsView]
	api *api.SettingsAPI
}

// NewSettings builds the settings section. Each panel loads independently
// and keeps its defaults when its call fails.
func NewSettings(s *api.SettingsAPI, cfg CycleConfig) *Settings {
	cfg.Name = SectionSettings
	cfg.Interval = 0
	c := &Settings{api: s}
	initial := SettingsView{
		Profile:       api.DefaultProfile(),
		Notifications: api.DefaultNotificationSettings(),
		Dashboard:     api.DefaultDashboardSettings(),
		APIKeys:       []api.APIKey{},
	}
	c.Cycle = NewCycle(cfg, struct{}{}, initial, c.fetch)
	return c
}

func (c *Settings) fetch(ctx context.Context, _ struct{}, prev SettingsView, _ Mode) (SettingsView, error) {
	logger := log.With().Str("section", SectionSettings).Logger()

	var (
		profile       *api.Profile
		notifications *api.NotificationSettings
		dashboard     *api.DashboardSettings
		keys          []api.APIKey

		profileFailed, notificationsFailed, dashboardFailed, keysFailed bool
	)
	g, gctx := errgroup.WithContext(ctx)
	tryLoad(gctx, g, logger, "profile", &profileFailed, &profile, nil, c.api.Profile)
	tryLoad(gctx, g, logger, "notifications", &notificationsFailed, &notifications, nil, c.api.Notifications)
	tryLoad(gctx, g, logger, "dashboard", &dashboardFailed, &dashboard, nil, c.api.Dashboard)
	tryLoad(gctx, g, logger, "api-keys", &keysFailed, &keys, prev.APIKeys, c.api.APIKeys)
	if err := g.Wait(); err != nil {
		return prev, err
	}

	next := prev
	next.Profile = utils.ValueOr(profile, prev.Profile)
	next.Notifications = utils.ValueOr(notifications, prev.Notifications)
	next.Dashboard = utils.ValueOr(dashboard, prev.Dashboard)
	next.APIKeys = keys
	if next.APIKeys == nil {
		next.APIKeys = []api.APIKey{}
	}
	next.Warnings = nil
	for _, w := range []struct {
		failed  bool
		message string
	}{
		{profileFailed, ProfileLoadFailedMessage},
		{notificationsFailed, NotificationsLoadFailedMessage},
		{dashboardFailed, DashboardLoadFailedMessage},
		{keysFailed, APIKeysLoadFailedMessage},
	} {
		if w.failed {
			next.Warnings = append(next.Warnings, w.message)
		}
	}
	return next, nil
}

// save runs one settings update and reports the backend message, or
// fallback when it sent none.
func (c *Settings) save(ctx context.Context, call func(context.Context) (string, error), saved, failed string, apply func(*SettingsView)) (string, error) {
	c.ClearError()
	c.Update(func(v *SettingsView) { v.Success = "" })
	msg, err := call(ctx)
	if err != nil {
		return "", c.Fail(failed, err, func(ctx context.Context) error {
			_, err := c.save(ctx, call, saved, failed, apply)
			return err
		})
	}
	if msg == "" {
		msg = saved
	}
	c.Update(func(v *SettingsView) {
		if apply != nil {
			apply(v)
		}
		v.Success = msg
	})
	return msg, nil
}

func (c *Settings) UpdateProfile(ctx context.Context, p api.Profile) (string, error) {
	return c.save(ctx, func(ctx context.Context) (string, error) {
		return c.api.UpdateProfile(ctx, p)
	}, ProfileSavedMessage, ProfileSaveFailedMessage, func(v *SettingsView) { v.Profile = p })
}

func (c *Settings) UpdateNotifications(ctx context.Context, n api.NotificationSettings) (string, error) {
	return c.save(ctx, func(ctx context.Context) (string, error) {
		return c.api.UpdateNotifications(ctx, n)
	}, NotificationsSavedMessage, NotificationsFailedMessage, func(v *SettingsView) { v.Notifications = n })
}

func (c *Settings) UpdateDashboard(ctx context.Context, d api.DashboardSettings) (string, error) {
	return c.save(ctx, func(ctx context.Context) (string, error) {
		return c.api.UpdateDashboard(ctx, d)
	}, DashboardSavedMessage, DashboardSaveFailedMessage, func(v *SettingsView) { v.Dashboard = d })
}

func (c *Settings) ChangePassword(ctx context.Context, current, next string) (string, error) {
	return c.save(ctx, func(ctx context.Context) (string, error) {
		return c.api.ChangePassword(ctx, current, next)
	}, PasswordChangedMessage, PasswordChangeFailedMessage, nil)
}

// CreateAPIKey requires a non-blank name. The new key is appended locally.
func (c *Settings) CreateAPIKey(ctx context.Context, name string) (*api.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, c.Fail(APIKeyNameRequiredMessage, errors.ErrNameRequired, nil)
	}
	c.ClearError()
	key, err := c.api.CreateAPIKey(ctx, name)
	if err != nil {
		return nil, c.Fail(APIKeyCreateFailedMessage, err, func(ctx context.Context) error {
			_, err := c.CreateAPIKey(ctx, name)
			return err
		})
	}
	if key == nil {
		return nil, nil
	}
	c.Update(func(v *SettingsView) {
		keys := make([]api.APIKey, 0, len(v.APIKeys)+1)
		v.APIKeys = append(append(keys, v.APIKeys...), *key)
		v.Success = APIKeyCreatedMessage
	})
	return key, nil
}

func (c *Settings) DeleteAPIKey(ctx context.Context, id string) (string, error) {
	return c.save(ctx, func(ctx context.Context) (string, error) {
		return c.api.DeleteAPIKey(ctx, id)
	}, APIKeyDeletedMessage, APIKeyDeleteFailedMessage, func(v *SettingsView) {
		kept := make([]api.APIKey, 0, len(v.APIKeys))
		for _, k := range v.APIKeys {
			if k.ID.String() != id {
				kept = append(kept, k)
			}
		}
		v.APIKeys = kept
	})
}
