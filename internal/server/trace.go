package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/signal"
)

// TraceHandler serves synthesized signal traces for waveform previews.
type TraceHandler struct {
	synth *signal.Synthesizer
}

// NewTraceHandler creates a new TraceHandler.
func NewTraceHandler() *TraceHandler {
	return &TraceHandler{synth: signal.NewSynthesizer()}
}

// ServeHTTP handles GET /api/trace. Query parameters mirror a session
// request: exercise (required), duration_sec, sample_rate_hz, noise_level
// and seed, with the session defaults applied when omitted.
func (h *TraceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	name := query.Get("exercise")
	if name == "" {
		writeTraceError(w, http.StatusBadRequest, "Exercise is required")
		return
	}
	ex, err := exercise.Parse(name)
	if err != nil {
		writeTraceError(w, http.StatusBadRequest, err.Error())
		return
	}

	durationSec := signal.MinDurationSec
	if v := query.Get("duration_sec"); v != "" {
		durationSec, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeTraceError(w, http.StatusBadRequest, "Invalid duration_sec")
			return
		}
	}

	sampleRateHz := float64(session.DefaultSampleRateHz)
	if v := query.Get("sample_rate_hz"); v != "" {
		sampleRateHz, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeTraceError(w, http.StatusBadRequest, "Invalid sample_rate_hz")
			return
		}
	}

	var noiseLevel float64
	if v := query.Get("noise_level"); v != "" {
		noiseLevel, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeTraceError(w, http.StatusBadRequest, "Invalid noise_level")
			return
		}
	}

	seed := time.Now().UnixNano()
	if v := query.Get("seed"); v != "" {
		seed, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeTraceError(w, http.StatusBadRequest, "Invalid seed")
			return
		}
	}

	trace, err := h.synth.Generate(ex, durationSec, sampleRateHz, noiseLevel, seed)
	if err != nil {
		var validationErr *signal.ValidationError
		if errors.As(err, &validationErr) {
			writeTraceError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeTraceError(w, http.StatusInternalServerError, "Failed to generate trace")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(trace)
}

func writeTraceError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
