// Package web exposes the dashboard's JSON API: chart bundles, the live
// reading, an SSE stream, and the gateway ingest endpoint.
package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"biodash/internal/charts"
	"biodash/internal/db"
	"biodash/internal/live"
	"biodash/internal/models"
	"biodash/internal/series"
	"biodash/internal/zones"
)

type Server struct {
	repo         *db.Repository
	live         *live.Controller
	ingest       http.Handler
	defs         []charts.Definition
	historyLimit int
	log          *slog.Logger
}

func NewServer(repo *db.Repository, ctrl *live.Controller, ingest http.Handler, defs []charts.Definition, historyLimit int, logger *slog.Logger) *Server {
	return &Server{
		repo:         repo,
		live:         ctrl,
		ingest:       ingest,
		defs:         defs,
		historyLimit: historyLimit,
		log:          logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/charts", s.handleCharts).Methods(http.MethodGet)
	r.HandleFunc("/api/charts/{name}", s.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/api/latest", s.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/live", s.handleLive).Methods(http.MethodGet)
	r.Handle("/data", s.ingest).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return logMiddleware(handlers.RecoveryHandler()(cors(r)), s.log)
}

// handleCharts runs the full chart pipeline: fetch the history
// newest-first, reverse to chronological order, normalize once, and build
// every definition. Charts without data carry an explicit no_data flag.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.repo.History(r.Context(), s.historyLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	results := charts.BuildAll(s.defs, series.Chronological(rows))
	writeJSON(w, results)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var def *charts.Definition
	for i := range s.defs {
		if s.defs[i].Name == name {
			def = &s.defs[i]
			break
		}
	}
	if def == nil {
		http.NotFound(w, r)
		return
	}
	rows, err := s.repo.History(r.Context(), s.historyLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	points := series.NormalizeAll(series.Chronological(rows))
	bundle, err := charts.Build(*def, points)
	if err == charts.ErrNoData {
		writeJSON(w, charts.Result{Name: def.Name, NoData: true})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, charts.Result{Name: def.Name, Bundle: bundle})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.live.Snapshot())
}

type channelStatus struct {
	Channel string     `json:"channel"`
	Value   float64    `json:"value"`
	Zone    zones.Zone `json:"zone"`
}

type statusResponse struct {
	Loading  bool            `json:"loading"`
	NoData   bool            `json:"no_data,omitempty"`
	Statuses []channelStatus `json:"statuses,omitempty"`
}

var statusQuantities = []struct {
	key      string
	quantity string
}{
	{models.KeyPh, zones.QuantityPh},
	{models.KeyTemp1, zones.QuantityTankTemperature},
	{models.KeyTemp2, zones.QuantityTankTemperature},
	{models.KeyMethanePercent, zones.QuantityMethanePercent},
}

// handleStatus classifies the current reading's channels into their alarm
// zones for a compact traffic-light view.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state := s.live.Snapshot()
	resp := statusResponse{Loading: state.Loading}
	if state.Reading == nil {
		resp.NoData = true
		writeJSON(w, resp)
		return
	}
	for _, m := range statusQuantities {
		v := state.Reading.Channel(m.key)
		if v == nil {
			continue
		}
		if z, ok := zones.Classify(m.quantity, *v); ok {
			resp.Statuses = append(resp.Statuses, channelStatus{Channel: m.key, Value: *v, Zone: z})
		}
	}
	writeJSON(w, resp)
}

// handleLive streams live-view states as server-sent events, starting with
// the current snapshot.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	updates, cancel := s.live.Updates()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent(w, s.live.Snapshot())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case state := <-updates:
			writeEvent(w, state)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, state live.State) {
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DB().PingContext(r.Context()); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
