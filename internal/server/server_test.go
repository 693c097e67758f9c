package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ltcgauge/internal/ltc2942"
)

type MockGauge struct {
	Snap     ltc2942.Snapshot
	ResetErr error
	PingOK   bool
	PingErr  error
	Resets   int
}

func (m *MockGauge) Snapshot() ltc2942.Snapshot { return m.Snap }

func (m *MockGauge) ResetCharge() error {
	m.Resets++
	return m.ResetErr
}

func (m *MockGauge) Ping() (bool, error) { return m.PingOK, m.PingErr }

func TestRootHandler(t *testing.T) {
	tests := []struct {
		name            string
		snap            ltc2942.Snapshot
		expectedOK      bool
		expectedVoltage string
		expectedTemp    string
		expectedCharge  uint32
		expectedM       uint16
	}{
		{
			name: "All channels read",
			snap: ltc2942.Snapshot{
				RawCharge:         0xFFFF,
				ChargeMicroAh:     5570475,
				ChargeMilliC:      20053710,
				RemainingMicroAh:  2000050,
				VoltageMilliV:     3750,
				TemperatureCentiC: 2685,
				Prescaler:         7,
			},
			expectedOK:      true,
			expectedVoltage: "3.750V",
			expectedTemp:    "26.850°C",
			expectedCharge:  5570475,
			expectedM:       128,
		},
		{
			name: "Voltage read failed",
			snap: ltc2942.Snapshot{
				RawCharge:         0x8000,
				ChargeMicroAh:     2785280,
				VoltageMilliV:     ltc2942.InvalidVoltage,
				TemperatureCentiC: 2685,
				Prescaler:         5,
				Err:               errors.New("voltage: nack"),
			},
			expectedOK:      false,
			expectedVoltage: "",
			expectedTemp:    "26.850°C",
			expectedCharge:  2785280,
			expectedM:       32,
		},
		{
			name: "Gauge unreachable",
			snap: ltc2942.Snapshot{
				RawCharge:         ltc2942.InvalidCode,
				ChargeMicroAh:     ltc2942.InvalidCharge,
				ChargeMilliC:      ltc2942.InvalidCharge,
				RemainingMicroAh:  ltc2942.InvalidCharge,
				VoltageMilliV:     ltc2942.InvalidVoltage,
				TemperatureCentiC: ltc2942.InvalidTemperature,
				Err:               errors.New("bus down"),
			},
			expectedOK:      false,
			expectedVoltage: "",
			expectedTemp:    "",
			expectedCharge:  ltc2942.InvalidCharge,
			expectedM:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{gauge: &MockGauge{Snap: tt.snap}}

			req := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()

			s.routes().ServeHTTP(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("Expected status 200, got %d", resp.StatusCode)
			}

			var gr GaugeResponse
			if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if gr.OK != tt.expectedOK {
				t.Errorf("Expected OK %v, got %v", tt.expectedOK, gr.OK)
			}
			if !gr.OK && gr.Error == "" {
				t.Errorf("Expected an error message")
			}
			if gr.Voltage != tt.expectedVoltage {
				t.Errorf("Expected Voltage %q, got %q", tt.expectedVoltage, gr.Voltage)
			}
			if gr.Temperature != tt.expectedTemp {
				t.Errorf("Expected Temperature %q, got %q", tt.expectedTemp, gr.Temperature)
			}
			if gr.ChargeMicroAh != tt.expectedCharge {
				t.Errorf("Expected ChargeMicroAh %d, got %d", tt.expectedCharge, gr.ChargeMicroAh)
			}
			if gr.Prescaler != tt.expectedM {
				t.Errorf("Expected Prescaler %d, got %d", tt.expectedM, gr.Prescaler)
			}
		})
	}
}

func TestResetHandler(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "Reset ok", expectedStatus: http.StatusNoContent},
		{name: "Reset failed", err: errors.New("restore control: nack"), expectedStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &MockGauge{ResetErr: tt.err}
			s := &Server{gauge: g}

			req := httptest.NewRequest("POST", "/charge/reset", nil)
			w := httptest.NewRecorder()
			s.routes().ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if g.Resets != 1 {
				t.Errorf("Expected one reset, got %d", g.Resets)
			}
		})
	}
}

func TestResetRequiresPost(t *testing.T) {
	g := &MockGauge{}
	s := &Server{gauge: g}

	req := httptest.NewRequest("GET", "/charge/reset", nil)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)

	if g.Resets != 0 {
		t.Errorf("Expected no reset on GET, got %d", g.Resets)
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		ok             bool
		err            error
		expectedStatus int
	}{
		{name: "Present", ok: true, expectedStatus: http.StatusOK},
		{name: "Wrong id", ok: false, expectedStatus: http.StatusServiceUnavailable},
		{name: "Bus error", err: errors.New("nack"), expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{gauge: &MockGauge{PingOK: tt.ok, PingErr: tt.err}}

			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			s.routes().ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
