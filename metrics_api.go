package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/flowstate-bci/eegstream/eeg"
)

// writeJSON serializes a response body with the standard headers.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// channelFromPath resolves the channel ID suffix of an API path, e.g.
// /api/metrics/{id}.
func (cm *ChannelManager) channelFromPath(w http.ResponseWriter, r *http.Request, prefix string) (*Channel, bool) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "channel id required")
		return nil, false
	}
	ch, ok := cm.GetChannel(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown channel")
		return nil, false
	}
	return ch, true
}

// handleChannels serves GET /api/channels (list) and POST /api/channels
// (create).
func (cm *ChannelManager) handleChannels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, cm.ListChannels())
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			req.Name = "channel"
		}
		ch, err := cm.CreateChannel(req.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, ch.Info())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleChannelByID serves DELETE /api/channels/{id}.
func (cm *ChannelManager) handleChannelByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/channels/")
	if !cm.RemoveChannel(id) {
		writeError(w, http.StatusNotFound, "unknown channel")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// handleMetrics serves GET /api/metrics/{id}: the latest analysis result.
func (cm *ChannelManager) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ch, ok := cm.channelFromPath(w, r, "/api/metrics/")
	if !ok {
		return
	}
	m, ok := ch.LatestMetrics()
	if !ok {
		writeError(w, http.StatusNotFound, "no analysis available yet")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleQuality serves GET /api/quality/{id}: the latest signal quality only.
func (cm *ChannelManager) handleQuality(w http.ResponseWriter, r *http.Request) {
	ch, ok := cm.channelFromPath(w, r, "/api/quality/")
	if !ok {
		return
	}
	m, ok := ch.LatestMetrics()
	if !ok {
		writeError(w, http.StatusNotFound, "no analysis available yet")
		return
	}
	writeJSON(w, http.StatusOK, m.SignalQuality)
}

// handleBaseline serves GET /api/baseline/{id} (current profile) and
// POST /api/baseline/{id} (install a profile directly, e.g. restored from a
// previous session).
func (cm *ChannelManager) handleBaseline(w http.ResponseWriter, r *http.Request) {
	ch, ok := cm.channelFromPath(w, r, "/api/baseline/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		profile, ok := ch.Baseline()
		if !ok {
			writeError(w, http.StatusNotFound, "no baseline calibrated")
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case http.MethodPost:
		var profile eeg.BaselineProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			writeError(w, http.StatusBadRequest, "invalid baseline profile")
			return
		}
		if err := ch.SetBaseline(profile); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, profile)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCalibration serves POST /api/calibration/{id}/start and
// POST /api/calibration/{id}/finish.
func (cm *ChannelManager) handleCalibration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/calibration/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		writeError(w, http.StatusBadRequest, "expected /api/calibration/{id}/{start|finish}")
		return
	}
	ch, ok := cm.GetChannel(parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown channel")
		return
	}
	switch parts[1] {
	case "start":
		ch.StartCalibration()
		writeJSON(w, http.StatusOK, map[string]string{"status": "calibrating"})
	case "finish":
		profile, err := ch.FinishCalibration()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, profile)
	default:
		writeError(w, http.StatusBadRequest, "expected start or finish")
	}
}

// corsMiddleware adds permissive CORS headers when enabled in config.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
