package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/flowstate-bci/eegstream/eeg/baseline"
)

// MetricsMessage is the wire format streamed to feedback clients on every
// analysis pass.
type MetricsMessage struct {
	Type             string        `json:"type"`
	Timestamp        int64         `json:"timestamp"`
	ThetaPower       float64       `json:"theta_power"`
	AlphaPower       float64       `json:"alpha_power"`
	BetaPower        float64       `json:"beta_power"`
	ZScore           float64       `json:"z_score"`
	ThetaState       baseline.Zone `json:"theta_state"`
	ExceedsTarget    bool          `json:"exceeds_target"`
	WithinHysteresis bool          `json:"within_hysteresis"`
	SignalQuality    float64       `json:"signal_quality"`
}

// ControlMessage is a client command received on the metrics socket. The only
// command is set_state, honored when the synthetic source is running.
type ControlMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// handleMetricsWS streams analysis results for one channel to a feedback
// client. Clients may send set_state commands to steer the simulator.
func (cm *ChannelManager) handleMetricsWS(sim *Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID := r.URL.Query().Get("channel")
		ch, ok := cm.GetChannel(channelID)
		if !ok {
			http.Error(w, "unknown channel", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Metrics WebSocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		sub := ch.Subscribe()
		defer ch.Unsubscribe(sub)

		log.Printf("Metrics stream opened for channel %s from %s", ch.ID, r.RemoteAddr)

		// Reader goroutine: control commands and connection liveness.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				var msg ControlMessage
				if err := conn.ReadJSON(&msg); err != nil {
					return
				}
				if msg.Type == "set_state" {
					if sim == nil {
						log.Printf("Metrics stream: set_state ignored, simulator not running")
						continue
					}
					if err := sim.SetState(msg.State); err != nil {
						log.Printf("Metrics stream: %v", err)
					}
				}
			}
		}()

		pingTicker := time.NewTicker(30 * time.Second)
		defer pingTicker.Stop()

		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case m, open := <-sub:
				if !open {
					return
				}
				msg := MetricsMessage{
					Type:             "metrics",
					Timestamp:        m.Timestamp,
					ThetaPower:       m.ThetaPower,
					AlphaPower:       m.AlphaPower,
					BetaPower:        m.BetaPower,
					ZScore:           m.ZScore,
					ThetaState:       m.ThetaState,
					ExceedsTarget:    m.Threshold.ExceedsThreshold,
					WithinHysteresis: m.Threshold.WithinHysteresis,
					SignalQuality:    m.SignalQuality.Score,
				}
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("Metrics stream for channel %s closed: %v", ch.ID, err)
					return
				}
			}
		}
	}
}
