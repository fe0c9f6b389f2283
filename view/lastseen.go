package view

import (
	"fmt"
	"math"
	"time"
)

// MinutesSince is the whole minutes elapsed from t to now. A zero t gives 0.
func MinutesSince(t, now time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return math.Floor(float64(now.Sub(t)) / float64(time.Minute))
}

// FormatLastSeen renders an elapsed minute count as Turkish relative time,
// using the two largest units.
func FormatLastSeen(minutes float64) string {
	if minutes == 0 || math.IsNaN(minutes) || minutes < 0 {
		return "Bilinmiyor"
	}
	if minutes < 1 {
		return "Az önce"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d dakika önce", int(math.Round(minutes)))
	}

	hours := math.Floor(minutes / 60)
	if hours < 24 {
		rest := int(math.Round(math.Mod(minutes, 60)))
		return pair(int(hours), "saat", rest, "dakika")
	}

	days := math.Floor(hours / 24)
	if days < 7 {
		return pair(int(days), "gün", int(math.Mod(hours, 24)), "saat")
	}

	weeks := math.Floor(days / 7)
	if weeks < 4 {
		return pair(int(weeks), "hafta", int(math.Mod(days, 7)), "gün")
	}

	months := math.Floor(weeks / 4)
	if months < 12 {
		return pair(int(months), "ay", int(math.Mod(weeks, 4)), "hafta")
	}

	years := math.Floor(months / 12)
	return pair(int(years), "yıl", int(math.Mod(months, 12)), "ay")
}

func pair(major int, majorUnit string, minor int, minorUnit string) string {
	if minor == 0 {
		return fmt.Sprintf("%d %s önce", major, majorUnit)
	}
	return fmt.Sprintf("%d %s %d %s önce", major, majorUnit, minor, minorUnit)
}
