package charts

import (
	"biodash/internal/models"
	"biodash/internal/series"
	"biodash/internal/zones"
)

// Defaults is the fixed chart lineup of the dashboard.
var Defaults = []Definition{
	{
		Name:        "ph",
		Title:       "pH",
		Description: "Slurry acidity with probe voltage",
		ChannelKeys: []string{models.KeyPh, models.KeyPhVoltage},
		Channels: map[string]ChannelStyle{
			models.KeyPh:        {Label: "pH", Color: "#2563eb"},
			models.KeyPhVoltage: {Label: "Probe voltage (V)", Color: "#9ca3af"},
		},
		Domain:       &series.Domain{Min: 0, Max: 14},
		ZoneQuantity: zones.QuantityPh,
	},
	{
		Name:        "tank-temperature",
		Title:       "Tank temperature",
		Description: "Both slurry probes",
		ChannelKeys: []string{models.KeyTemp1, models.KeyTemp2},
		Channels: map[string]ChannelStyle{
			models.KeyTemp1: {Label: "Probe 1 (°C)", Color: "#dc2626"},
			models.KeyTemp2: {Label: "Probe 2 (°C)", Color: "#f97316"},
		},
		Domain:       &series.Domain{Min: 0, Max: 60},
		ZoneQuantity: zones.QuantityTankTemperature,
	},
	{
		Name:        "ambient",
		Title:       "Ambient climate",
		Description: "BME680 temperature and humidity",
		ChannelKeys: []string{models.KeyBmeTemperature, models.KeyBmeHumidity},
		Channels: map[string]ChannelStyle{
			models.KeyBmeTemperature: {Label: "Air temperature (°C)", Color: "#0ea5e9"},
			models.KeyBmeHumidity:    {Label: "Humidity (%)", Color: "#14b8a6"},
		},
		AutoScale: true,
	},
	{
		Name:        "pressure",
		Title:       "Air pressure",
		Description: "BME680 barometric pressure",
		ChannelKeys: []string{models.KeyBmePressure},
		Channels: map[string]ChannelStyle{
			models.KeyBmePressure: {Label: "Pressure (hPa)", Color: "#8b5cf6"},
		},
		AutoScale: true,
	},
	{
		Name:        "gas-resistance",
		Title:       "Gas resistance",
		Description: "BME680 VOC proxy",
		ChannelKeys: []string{models.KeyBmeGasResistance},
		Channels: map[string]ChannelStyle{
			models.KeyBmeGasResistance: {Label: "Resistance (Ω)", Color: "#64748b"},
		},
		AutoScale: true,
	},
	{
		Name:        "methane",
		Title:       "Methane",
		Description: "INIR2 concentration",
		ChannelKeys: []string{models.KeyMethanePercent},
		Channels: map[string]ChannelStyle{
			models.KeyMethanePercent: {Label: "CH₄ (% vol)", Color: "#16a34a"},
		},
		Domain:       &series.Domain{Min: 0, Max: 100},
		ZoneQuantity: zones.QuantityMethanePercent,
	},
	{
		Name:        "methane-detail",
		Title:       "Methane sensor detail",
		Description: "Raw ppm and sensor temperature",
		ChannelKeys: []string{models.KeyMethanePPM, models.KeyMethaneTemperature},
		Channels: map[string]ChannelStyle{
			models.KeyMethanePPM:         {Label: "CH₄ (ppm)", Color: "#15803d"},
			models.KeyMethaneTemperature: {Label: "Sensor temperature (°C)", Color: "#d946ef"},
		},
		AutoScale: true,
	},
}
