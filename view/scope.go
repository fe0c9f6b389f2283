package view

import (
	"strings"

	"github.com/yenikoza/tablet-dashboard/internal/errors"
)

// Scope is the time window a section aggregates over.
type Scope string

const (
	ScopeDaily   Scope = "daily"
	ScopeMonthly Scope = "monthly"
	ScopeYearly  Scope = "yearly"
)

// ParseScope accepts the English names and the dashboard's Turkish codes.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "gunluk":
		return ScopeDaily, nil
	case "monthly", "aylik":
		return ScopeMonthly, nil
	case "yearly", "yillik":
		return ScopeYearly, nil
	}
	return "", errors.Wrapf(errors.ErrUnsupported, "[ParseScope] unknown scope %q", s)
}

// DashboardCode is the scope as the overview endpoints expect it.
func (s Scope) DashboardCode() string {
	switch s {
	case ScopeMonthly:
		return "aylik"
	case ScopeYearly:
		return "yillik"
	}
	return "gunluk"
}

func (s Scope) String() string {
	if s == "" {
		return string(ScopeDaily)
	}
	return string(s)
}
