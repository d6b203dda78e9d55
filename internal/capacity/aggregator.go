package capacity

import (
	"math"
	"strings"

	"seatkeep/internal/floorplans"
)

// Utilization buckets of capacity against expected attendance
const (
	UtilizationLow    = "LOW"
	UtilizationMedium = "MEDIUM"
	UtilizationHigh   = "HIGH"
	UtilizationFull   = "FULL"
)

// GenderUnspecified collects seats of objects without a gender tag
const GenderUnspecified = "UNSPECIFIED"

// Report summarizes what a layout can seat and earn
type Report struct {
	EventID            string             `json:"event_id,omitempty"`
	TotalCapacity      int                `json:"total_capacity"`
	ByTier             map[string]int     `json:"by_tier"`
	ByGender           map[string]int     `json:"by_gender"`
	BySection          map[string]int     `json:"by_section"`
	RevenuePotential   float64            `json:"revenue_potential"`
	RevenueByTier      map[string]float64 `json:"revenue_by_tier"`
	ExpectedAttendance int                `json:"expected_attendance"`
	UtilizationPercent *float64           `json:"utilization_percent,omitempty"`
	Utilization        string             `json:"utilization,omitempty"`
	ObjectCount        int                `json:"object_count"`
}

// Aggregate folds a layout into a capacity report. Revenue is summed per
// object so differently priced objects of one tier add up correctly.
func Aggregate(objects []floorplans.FloorPlanObject, expectedAttendance int) Report {
	report := Report{
		ByTier:             make(map[string]int),
		ByGender:           make(map[string]int),
		BySection:          make(map[string]int),
		RevenueByTier:      make(map[string]float64),
		ExpectedAttendance: expectedAttendance,
		ObjectCount:        len(objects),
	}

	for _, obj := range objects {
		seats := obj.SeatCount()
		if seats <= 0 {
			continue
		}
		tier := string(obj.Tier)
		gender := strings.ToUpper(strings.TrimSpace(obj.GenderTag))
		if gender == "" {
			gender = GenderUnspecified
		}

		report.TotalCapacity += seats
		report.ByTier[tier] += seats
		report.ByGender[gender] += seats
		report.BySection[obj.EffectiveSection()] += seats

		revenue := float64(seats) * obj.Price
		report.RevenueByTier[tier] += revenue
		report.RevenuePotential += revenue
	}

	report.RevenuePotential = roundCents(report.RevenuePotential)
	for tier, v := range report.RevenueByTier {
		report.RevenueByTier[tier] = roundCents(v)
	}

	if expectedAttendance > 0 {
		pct := roundCents(float64(report.TotalCapacity) / float64(expectedAttendance) * 100)
		report.UtilizationPercent = &pct
		report.Utilization = Bucket(pct)
	}

	return report
}

// Bucket classifies a utilization percentage
func Bucket(pct float64) string {
	switch {
	case pct < 50:
		return UtilizationLow
	case pct < 80:
		return UtilizationMedium
	case pct < 100:
		return UtilizationHigh
	default:
		return UtilizationFull
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
