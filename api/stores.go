package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/yenikoza/tablet-dashboard/internal/utils"
)

type Store struct {
	ID      utils.FlexString `json:"id"`
	Code    string           `json:"code"`
	Name    string           `json:"name"`
	Address string           `json:"address"`
	Status  string           `json:"status"`
}

// StoreStatus is the live state of one store, keyed by store code.
type StoreStatus struct {
	StoreCode      string `json:"storeCode"`
	StoreName      string `json:"storeName"`
	IsActive       bool   `json:"isActive"`
	TodayCustomers int    `json:"todayCustomers"`
	ErrorCount     int    `json:"errorCount"`
	LastActivity   Time   `json:"lastActivity"`
	Status         string `json:"status"`
}

type StoreSummary struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Offline int `json:"offline"`
	Warning int `json:"warning"`
}

type StoresAPI struct {
	c *Client
}

func NewStoresAPI(c *Client) *StoresAPI {
	return &StoresAPI{c: c}
}

func (s *StoresAPI) Client() *Client {
	return s.c
}

func (s *StoresAPI) Stores(ctx context.Context) ([]Store, error) {
	var raw json.RawMessage
	if err := s.c.getJSON(ctx, "/stores", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Store](raw, "stores"), nil
}

func (s *StoresAPI) Statuses(ctx context.Context) ([]StoreStatus, error) {
	var raw json.RawMessage
	if err := s.c.getJSON(ctx, "/stores/status", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[StoreStatus](raw, "stores"), nil
}

func (s *StoresAPI) Store(ctx context.Context, id string) (*Store, error) {
	var out Store
	if err := s.c.getJSON(ctx, "/stores/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *StoresAPI) Summary(ctx context.Context) (*StoreSummary, error) {
	var out StoreSummary
	if err := s.c.getJSON(ctx, "/stores/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *StoresAPI) UpdateStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return s.c.sendJSON(ctx, http.MethodPatch, "/stores/"+url.PathEscape(id)+"/status", body, nil)
}
