// Package series turns raw sensor readings into chart-ready point
// sequences: normalization, per-chart filtering, and axis auto-scaling.
package series

import (
	"biodash/internal/models"
)

const labelLayout = "02.01.2006, 15:04:05"

// Normalize projects one reading onto a ChartPoint. Absent channels stay
// absent: they get no entry in Values, never a zero, so a reading of 0
// remains distinguishable from no data. A zero timestamp yields an
// "invalid date" label instead of failing.
func Normalize(r models.SensorReading) models.ChartPoint {
	label := "invalid date"
	dateKey := ""
	if !r.Timestamp.IsZero() {
		label = r.Timestamp.Format(labelLayout)
		dateKey = r.Timestamp.Format("2006-01-02")
	}
	values := make(map[string]float64)
	for _, key := range models.ChannelKeys {
		if v := r.Channel(key); v != nil {
			values[key] = *v
		}
	}
	return models.ChartPoint{Label: label, DateKey: dateKey, Values: values}
}

// NormalizeAll normalizes a chronological reading slice in order.
func NormalizeAll(rows []models.SensorReading) []models.ChartPoint {
	points := make([]models.ChartPoint, len(rows))
	for i, r := range rows {
		points[i] = Normalize(r)
	}
	return points
}

// Chronological reverses a newest-first query result into oldest-first
// order without touching the input slice.
func Chronological(rows []models.SensorReading) []models.SensorReading {
	out := make([]models.SensorReading, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}

// Filter keeps the points carrying at least one of the requested channel
// keys, preserving order. Points with none of the keys are dropped
// entirely; an empty row conveys no positional information for a chart.
func Filter(points []models.ChartPoint, keys []string) []models.ChartPoint {
	var out []models.ChartPoint
	for _, p := range points {
		for _, key := range keys {
			if _, ok := p.Values[key]; ok {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Domain is an axis value range.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AutoScale computes an axis domain from all present values of the
// requested channels, padded by 10% of the value range on both sides.
// It reports false when no value is present so the renderer's default
// domain applies. All-equal values produce a zero-width domain; that is
// accepted as-is.
func AutoScale(points []models.ChartPoint, keys []string) (Domain, bool) {
	var min, max float64
	seen := false
	for _, p := range points {
		for _, key := range keys {
			v, ok := p.Values[key]
			if !ok {
				continue
			}
			if !seen {
				min, max = v, v
				seen = true
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if !seen {
		return Domain{}, false
	}
	padding := (max - min) * 0.1
	return Domain{Min: min - padding, Max: max + padding}, true
}
