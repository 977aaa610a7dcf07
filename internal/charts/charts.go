// Package charts composes normalization, filtering, auto-scaling, and
// alarm zones into renderer-ready bundles, one per chart definition.
package charts

import (
	"errors"

	"biodash/internal/models"
	"biodash/internal/series"
	"biodash/internal/zones"
)

// ErrNoData signals that no point in the history carries any of a chart's
// channels. Consumers render a placeholder instead of an empty plot area.
var ErrNoData = errors.New("no data points for chart")

// ChannelStyle is the display label and line color for one channel.
type ChannelStyle struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Definition is the static configuration of one chart. Built once at
// startup, immutable afterwards.
type Definition struct {
	Name         string
	Title        string
	Description  string
	ChannelKeys  []string
	Channels     map[string]ChannelStyle
	Domain       *series.Domain // fixed axis domain, wins over AutoScale
	AutoScale    bool
	ZoneQuantity string
}

// Bundle is the outbound rendering contract for one chart.
type Bundle struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Points      []models.ChartPoint     `json:"points"`
	ChannelKeys []string                `json:"channel_keys"`
	PerChannel  map[string]ChannelStyle `json:"per_channel"`
	AxisDomain  *series.Domain          `json:"axis_domain,omitempty"`
	AlarmZones  []zones.Zone            `json:"alarm_zones,omitempty"`
	PointCount  int                     `json:"point_count"`
}

// Build assembles the bundle for one definition from the already
// normalized, chronological point sequence. It returns ErrNoData instead
// of an empty bundle when nothing survives the filter.
func Build(def Definition, points []models.ChartPoint) (*Bundle, error) {
	filtered := series.Filter(points, def.ChannelKeys)
	if len(filtered) == 0 {
		return nil, ErrNoData
	}

	var domain *series.Domain
	switch {
	case def.Domain != nil:
		domain = def.Domain
	case def.AutoScale:
		if d, ok := series.AutoScale(filtered, def.ChannelKeys); ok {
			domain = &d
		}
	}

	var bands []zones.Zone
	if def.ZoneQuantity != "" {
		bands, _ = zones.For(def.ZoneQuantity)
	}

	return &Bundle{
		Title:       def.Title,
		Description: def.Description,
		Points:      filtered,
		ChannelKeys: def.ChannelKeys,
		PerChannel:  def.Channels,
		AxisDomain:  domain,
		AlarmZones:  bands,
		PointCount:  len(filtered),
	}, nil
}

// Result pairs a definition name with its bundle, or marks it as having
// no data.
type Result struct {
	Name   string  `json:"name"`
	NoData bool    `json:"no_data,omitempty"`
	Bundle *Bundle `json:"bundle,omitempty"`
}

// BuildAll normalizes the full chronological history once and builds every
// definition against the shared point sequence.
func BuildAll(defs []Definition, rows []models.SensorReading) []Result {
	points := series.NormalizeAll(rows)
	results := make([]Result, 0, len(defs))
	for _, def := range defs {
		b, err := Build(def, points)
		if errors.Is(err, ErrNoData) {
			results = append(results, Result{Name: def.Name, NoData: true})
			continue
		}
		results = append(results, Result{Name: def.Name, Bundle: b})
	}
	return results
}
