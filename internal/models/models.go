package models

import "time"

// Channel keys shared by readings, chart points and chart definitions.
// The names match the gateway payload fields, including the firmware's
// "methan_raw" spelling.
const (
	KeyPh                 = "ph"
	KeyPhVoltage          = "ph_voltage"
	KeyTemp1              = "temp1"
	KeyTemp2              = "temp2"
	KeyBmeTemperature     = "bme_temperature"
	KeyBmeHumidity        = "bme_humidity"
	KeyBmePressure        = "bme_pressure"
	KeyBmeGasResistance   = "bme_gas_resistance"
	KeyMethanePPM         = "methane_ppm"
	KeyMethanePercent     = "methane_percent"
	KeyMethaneTemperature = "methane_temperature"
)

// ChannelKeys lists every numeric channel a reading can carry, in the
// order the gateway reports them.
var ChannelKeys = []string{
	KeyPh,
	KeyPhVoltage,
	KeyTemp1,
	KeyTemp2,
	KeyBmeTemperature,
	KeyBmeHumidity,
	KeyBmePressure,
	KeyBmeGasResistance,
	KeyMethanePPM,
	KeyMethanePercent,
	KeyMethaneTemperature,
}

// SensorReading is one timestamped snapshot from the digester feed. Any
// channel may be absent (nil); the timestamp is always present.
type SensorReading struct {
	ID                 string    `json:"id,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	Ph                 *float64  `json:"ph"`
	PhVoltage          *float64  `json:"ph_voltage"`
	Temp1              *float64  `json:"temp1"`
	Temp2              *float64  `json:"temp2"`
	BmeTemperature     *float64  `json:"bme_temperature"`
	BmeHumidity        *float64  `json:"bme_humidity"`
	BmePressure        *float64  `json:"bme_pressure"`
	BmeGasResistance   *float64  `json:"bme_gas_resistance"`
	MethanePPM         *float64  `json:"methane_ppm"`
	MethanePercent     *float64  `json:"methane_percent"`
	MethaneTemperature *float64  `json:"methane_temperature"`
	MethaneRaw         []string  `json:"methan_raw,omitempty"`
	MethaneFaults      []string  `json:"methane_faults,omitempty"`
}

// Channel returns the value of one numeric channel by key, or nil when the
// key is unknown or the channel is absent.
func (r *SensorReading) Channel(key string) *float64 {
	switch key {
	case KeyPh:
		return r.Ph
	case KeyPhVoltage:
		return r.PhVoltage
	case KeyTemp1:
		return r.Temp1
	case KeyTemp2:
		return r.Temp2
	case KeyBmeTemperature:
		return r.BmeTemperature
	case KeyBmeHumidity:
		return r.BmeHumidity
	case KeyBmePressure:
		return r.BmePressure
	case KeyBmeGasResistance:
		return r.BmeGasResistance
	case KeyMethanePPM:
		return r.MethanePPM
	case KeyMethanePercent:
		return r.MethanePercent
	case KeyMethaneTemperature:
		return r.MethaneTemperature
	}
	return nil
}

// ChartPoint is a render-ready projection of one reading. A channel that
// was absent on the reading has no entry in Values, so renderers can break
// line segments instead of drawing zeros.
type ChartPoint struct {
	Label   string             `json:"label"`
	DateKey string             `json:"date_key"`
	Values  map[string]float64 `json:"values"`
}

// Value reports one channel value and whether it is present.
func (p ChartPoint) Value(key string) (float64, bool) {
	v, ok := p.Values[key]
	return v, ok
}
