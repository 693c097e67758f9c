package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/d2r2/go-logger"
	"periph.io/x/conn/v3/physic"

	"ltcgauge/internal/ltc2942"
)

var lg = logger.NewPackageLogger("server", logger.InfoLevel)

type GaugeClient interface {
	Snapshot() ltc2942.Snapshot
	ResetCharge() error
	Ping() (bool, error)
}

type GaugeResponse struct {
	RawCharge     uint16 `json:"charge_raw"`
	ChargeMicroAh uint32 `json:"charge_uah"`
	ChargeMilliC  uint32 `json:"charge_mc"`
	RemainingUAh  uint32 `json:"remaining_uah"`
	VoltageMilliV uint16 `json:"voltage_mv"`
	Voltage       string `json:"voltage"`
	TempCentiC    int16  `json:"temperature_cc"`
	Temperature   string `json:"temperature"`
	Prescaler     uint16 `json:"prescaler"`
	OK            bool   `json:"ok"`
	Error         string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serialises every gauge operation; the driver itself does no
// locking.
type Server struct {
	mu    sync.Mutex
	gauge GaugeClient
}

func Run(port int, gauge GaugeClient) error {
	s := &Server{gauge: gauge}

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Infof("Listening on %s", addr)
	return srv.ListenAndServe()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.rootHandler)
	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.HandleFunc("POST /charge/reset", s.resetHandler)
	return mux
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.gauge.Snapshot()
	s.mu.Unlock()

	resp := GaugeResponse{
		RawCharge:     snap.RawCharge,
		ChargeMicroAh: snap.ChargeMicroAh,
		ChargeMilliC:  snap.ChargeMilliC,
		RemainingUAh:  snap.RemainingMicroAh,
		VoltageMilliV: snap.VoltageMilliV,
		TempCentiC:    snap.TemperatureCentiC,
		Prescaler:     1 << snap.Prescaler,
		OK:            snap.Err == nil,
	}
	if snap.Err != nil {
		lg.Errorf("Error reading LTC2942: %v", snap.Err)
		resp.Error = snap.Err.Error()
	}

	// Sentinels are never rendered as physical values.
	if snap.VoltageMilliV != ltc2942.InvalidVoltage {
		resp.Voltage = (physic.ElectricPotential(snap.VoltageMilliV) * physic.MilliVolt).String()
	}
	if snap.TemperatureCentiC != ltc2942.InvalidTemperature {
		t := physic.Temperature(snap.TemperatureCentiC)*10*physic.MilliCelsius + physic.ZeroCelsius
		resp.Temperature = t.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok, err := s.gauge.Ping()
	s.mu.Unlock()

	switch {
	case err != nil:
		lg.Errorf("Ping failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case !ok:
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "unexpected device id"})
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.gauge.ResetCharge()
	s.mu.Unlock()

	if err != nil {
		lg.Errorf("Charge reset failed, device state unknown: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	lg.Infof("Accumulated charge reset")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		lg.Errorf("Failed to encode response: %v", err)
	}
}
