// Package analytics turns a car's raw fuel log entries into a chartable
// time series and aggregate consumption figures. It is pure: no I/O, fully
// deterministic over its input slice.
package analytics

import (
	"math"
	"sort"

	"github.com/dkoren/drivenet/internal/models"
)

// Point is one time-series entry: one per log, in date order. PerCondition
// holds, for every known driving condition, the log's own consumption when
// its condition matches that key and null otherwise, so a chart can draw
// one line per condition with gaps instead of interpolating across
// conditions.
type Point struct {
	ID           string                        `json:"id,omitempty"`
	Date         string                        `json:"date"`
	PerCondition map[models.Condition]*float64 `json:"perCondition"`
}

// Report is the aggregate output over one car's logs. Averages are in
// liters per 100 km.
type Report struct {
	Overall      float64                      `json:"overall"`
	PerCondition map[models.Condition]float64 `json:"perCondition"`
	TotalLiters  float64                      `json:"totalLiters"`
	TotalKm      float64                      `json:"totalKm"`
	Series       []Point                      `json:"series"`
}

// Consumption returns a log's instantaneous consumption, (liters/km)*100,
// or nil when liters or km is non-positive or non-finite. Such a log is
// structurally valid but analytically inert: stored and displayed, excluded
// from every sum.
func Consumption(l models.FuelLog) *float64 {
	liters := l.Liters.Float64()
	km := l.Km.Float64()
	if !valid(liters) || !valid(km) {
		return nil
	}
	c := liters / km * 100
	return &c
}

// Compute derives the full report. Logs are stable-sorted ascending by date
// (ISO dates order lexicographically; ties keep their original relative
// order). Averages are weighted over distance — (Σliters/Σkm)*100 — not the
// arithmetic mean of per-log values, so splitting one trip into several
// logs never changes the result. A condition with zero accumulated distance
// reports 0, never NaN.
func Compute(logs []models.FuelLog) Report {
	sorted := make([]models.FuelLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	report := Report{
		PerCondition: make(map[models.Condition]float64, len(models.Conditions())),
		Series:       make([]Point, 0, len(sorted)),
	}

	litersByCondition := make(map[models.Condition]float64)
	kmByCondition := make(map[models.Condition]float64)

	for _, l := range sorted {
		c := Consumption(l)

		point := Point{
			ID:           l.ID,
			Date:         l.Date,
			PerCondition: make(map[models.Condition]*float64, len(models.Conditions())),
		}
		for _, cond := range models.Conditions() {
			if c != nil && l.Condition == cond {
				v := *c
				point.PerCondition[cond] = &v
			} else {
				point.PerCondition[cond] = nil
			}
		}
		report.Series = append(report.Series, point)

		if c == nil {
			continue
		}
		liters := l.Liters.Float64()
		km := l.Km.Float64()
		report.TotalLiters += liters
		report.TotalKm += km
		if l.Condition.Known() {
			litersByCondition[l.Condition] += liters
			kmByCondition[l.Condition] += km
		}
	}

	report.Overall = weighted(report.TotalLiters, report.TotalKm)
	for _, cond := range models.Conditions() {
		report.PerCondition[cond] = weighted(litersByCondition[cond], kmByCondition[cond])
	}

	return report
}

func weighted(liters, km float64) float64 {
	if km <= 0 {
		return 0
	}
	return liters / km * 100
}

func valid(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
