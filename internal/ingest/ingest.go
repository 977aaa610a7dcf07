// Package ingest receives the ESP32 gateway payload, filters implausible
// probe values, decodes the methane frame, and turns the result into one
// stored SensorReading.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"biodash/internal/methane"
	"biodash/internal/models"
)

// Slurry probes outside this window are treated as sensor glitches and
// recorded as absent.
const (
	minPlausibleTempC = 15.0
	maxPlausibleTempC = 50.0
)

const methaneFrameWords = 7

// Payload mirrors the gateway JSON, field names included ("methan_raw" is
// the firmware's spelling).
type Payload struct {
	Ph               *float64 `json:"ph"`
	PhVoltage        *float64 `json:"ph_voltage"`
	Temp1            *float64 `json:"temp1"`
	Temp2            *float64 `json:"temp2"`
	BmeTemperature   *float64 `json:"bme_temperature"`
	BmeHumidity      *float64 `json:"bme_humidity"`
	BmePressure      *float64 `json:"bme_pressure"`
	BmeGasResistance *float64 `json:"bme_gas_resistance"`
	MethaneRaw       []string `json:"methan_raw"`
}

// ToReading builds a SensorReading from one payload. The methane frame is
// decoded when present; a decode failure is recorded as the fault list
// rather than rejecting the whole reading.
func ToReading(p Payload, now time.Time) (models.SensorReading, error) {
	r := models.SensorReading{
		ID:               uuid.NewString(),
		Timestamp:        now.UTC(),
		Ph:               p.Ph,
		PhVoltage:        p.PhVoltage,
		Temp1:            filterTemperature(p.Temp1),
		Temp2:            filterTemperature(p.Temp2),
		BmeTemperature:   p.BmeTemperature,
		BmeHumidity:      p.BmeHumidity,
		BmePressure:      p.BmePressure,
		BmeGasResistance: p.BmeGasResistance,
		MethaneRaw:       p.MethaneRaw,
	}

	if len(p.MethaneRaw) != methaneFrameWords {
		r.MethaneFaults = []string{errMethaneMissing.Error()}
		return r, errMethaneMissing
	}
	frame, err := methane.ParseFrame(p.MethaneRaw)
	if err != nil {
		r.MethaneFaults = []string{err.Error()}
		return r, err
	}
	ppm := float64(frame.ConcentrationPPM)
	pct := round5(frame.ConcentrationPercent())
	temp := round2(frame.TemperatureC())
	r.MethanePPM = &ppm
	r.MethanePercent = &pct
	r.MethaneTemperature = &temp
	r.MethaneFaults = frame.FaultMessages()
	return r, nil
}

var errMethaneMissing = &payloadError{"methane raw payload missing or invalid format"}

type payloadError struct{ msg string }

func (e *payloadError) Error() string { return e.msg }

func filterTemperature(v *float64) *float64 {
	if v == nil || *v < minPlausibleTempC || *v > maxPlausibleTempC {
		return nil
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round5(v float64) float64 { return math.Round(v*100000) / 100000 }

// Store persists readings.
type Store interface {
	InsertReading(ctx context.Context, r *models.SensorReading) error
}

// Publisher forwards stored readings to the push channel.
type Publisher interface {
	Publish(r models.SensorReading) error
}

// Handler is the POST /data endpoint.
type Handler struct {
	store Store
	pub   Publisher
	log   *slog.Logger
	now   func() time.Time
}

func NewHandler(store Store, pub Publisher, logger *slog.Logger) *Handler {
	return &Handler{store: store, pub: pub, log: logger, now: time.Now}
}

type response struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Reading *models.SensorReading `json:"reading,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var p Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	reading, methaneErr := ToReading(p, h.now())
	if err := h.store.InsertReading(r.Context(), &reading); err != nil {
		h.log.Error("insert reading", "err", err)
		http.Error(w, "store failed", http.StatusInternalServerError)
		return
	}
	h.log.Info("reading ingested", "id", reading.ID, "ts", reading.Timestamp)

	if h.pub != nil {
		if err := h.pub.Publish(reading); err != nil {
			// Poll fallback recovers dropped notifications.
			h.log.Warn("publish reading", "err", err)
		}
	}

	resp := response{Status: "ok", Message: "Valid data.", Reading: &reading}
	if methaneErr != nil {
		resp.Status = "warning"
		resp.Message = methaneErr.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
