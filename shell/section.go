package shell

import (
	"strings"

	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/view"
)

// Section is a routable dashboard page, named as in the location fragment.
type Section string

const (
	Overview          Section = view.SectionOverview
	CustomerAnalytics Section = view.SectionCustomers
	SMS               Section = view.SectionSMS
	ErrorLogs         Section = view.SectionErrorLogs
	Reports           Section = view.SectionReports
	Settings          Section = view.SectionSettings
	Stores            Section = view.SectionStores
	Analytics         Section = view.SectionAnalytics
)

// Sections in menu order. Stores and Analytics are not in the menu but are
// reachable through the fragment.
var Sections = []Section{Overview, CustomerAnalytics, SMS, ErrorLogs, Reports, Settings, Stores, Analytics}

var labels = map[Section]string{
	Overview:          "Genel Bakış",
	CustomerAnalytics: "Müşteri Analitik",
	SMS:               "SMS Takip",
	ErrorLogs:         "Hata Logları",
	Reports:           "Raporlar",
	Settings:          "Ayarlar",
	Stores:            "Mağazalar",
	Analytics:         "Analitik",
}

func (s Section) Label() string {
	return labels[s]
}

func (s Section) String() string {
	return string(s)
}

// ParseSection accepts a section name with or without a leading '#'.
func ParseSection(raw string) (Section, bool) {
	s := Section(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if _, ok := labels[s]; ok {
		return s, true
	}
	return "", false
}

// SectionOrDefault is ParseSection falling back to Overview.
func SectionOrDefault(raw string) Section {
	if s, ok := ParseSection(raw); ok {
		return s
	}
	return Overview
}

func mustSection(raw string) (Section, error) {
	s, ok := ParseSection(raw)
	if !ok {
		return "", errors.Wrapf(errors.ErrInvalidSection, "[ParseSection] %q", raw)
	}
	return s, nil
}
