package view

import (
	"context"

	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
	"golang.org/x/sync/errgroup"
)

const StoresErrorMessage = "Mağaza verileri yüklenirken hata oluştu. Lütfen sayfayı yenileyin."

type StoresView struct {
	Stores   []api.Store
	Statuses []api.StoreStatus
	Summary  api.StoreSummary
}

// StatusFor finds the live status record for a store code.
func (v StoresView) StatusFor(code string) (api.StoreStatus, bool) {
	for _, s := range v.Statuses {
		if s.StoreCode == code {
			return s, true
		}
	}
	return api.StoreStatus{}, false
}

type Stores struct {
	*Cycle[struct{}, StoresView]
	api *api.StoresAPI
}

func NewStores(s *api.StoresAPI, cfg CycleConfig) *Stores {
	cfg.Name = SectionStores
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = StoresErrorMessage
	}
	c := &Stores{api: s}
	c.Cycle = NewCycle(cfg, struct{}{}, StoresView{}, c.fetch)
	return c
}

// fetch needs all three calls; any failure fails the load.
func (c *Stores) fetch(ctx context.Context, _ struct{}, prev StoresView, mode Mode) (StoresView, error) {
	var (
		stores   []api.Store
		statuses []api.StoreStatus
		summary  *api.StoreSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	required(gctx, g, &stores, c.api.Stores)
	required(gctx, g, &statuses, c.api.Statuses)
	required(gctx, g, &summary, c.api.Summary)
	if err := g.Wait(); err != nil {
		return prev, errors.Wrapf(err, "[Stores.fetch] %s load", mode)
	}

	if stores == nil {
		stores = []api.Store{}
	}
	if statuses == nil {
		statuses = []api.StoreStatus{}
	}
	return StoresView{
		Stores:   stores,
		Statuses: statuses,
		Summary:  utils.ValueOr(summary, prev.Summary),
	}, nil
}

// LastSeen is how long ago the store was last active, in Turkish.
func (c *Stores) LastSeen(code string) string {
	st, ok := c.Snapshot().StatusFor(code)
	if !ok {
		return FormatLastSeen(0)
	}
	return FormatLastSeen(MinutesSince(st.LastActivity.Time, c.Clock().Now()))
}

// UpdateStatus changes a store's status on the backend and mirrors it locally.
func (c *Stores) UpdateStatus(ctx context.Context, id, status string) error {
	if err := c.api.UpdateStatus(ctx, id, status); err != nil {
		return errors.Wrapf(err, "[Stores.UpdateStatus] store %s", id)
	}
	c.Update(func(v *StoresView) {
		stores := make([]api.Store, len(v.Stores))
		copy(stores, v.Stores)
		for i := range stores {
			if stores[i].ID.String() == id {
				stores[i].Status = status
			}
		}
		v.Stores = stores
	})
	return nil
}
