package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/flowstate-bci/eegstream/eeg"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now (configure CORS properly in production)
		return true
	},
}

// handleIngestWS accepts a device connection streaming sample packets as JSON
// frames. A device either attaches to an existing channel (?channel=<id>) or
// creates one (?name=<label>).
func (cm *ChannelManager) handleIngestWS(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channel")
	name := r.URL.Query().Get("name")

	var ch *Channel
	var created bool
	if channelID != "" {
		var ok bool
		ch, ok = cm.GetChannel(channelID)
		if !ok {
			http.Error(w, "unknown channel", http.StatusNotFound)
			return
		}
	} else {
		if name == "" {
			name = "device"
		}
		var err error
		ch, err = cm.CreateChannel(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		created = true
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Ingest WebSocket upgrade failed: %v", err)
		if created {
			cm.RemoveChannel(ch.ID)
		}
		return
	}
	defer conn.Close()

	// A reconnecting device starts from a clean window; stale samples from the
	// previous connection would otherwise skew the first analyses.
	if !created {
		ch.mu.Lock()
		ch.pipe.Reset()
		ch.mu.Unlock()
	}

	// Tell the device which channel it landed on.
	if err := conn.WriteJSON(map[string]string{"type": "attached", "channel_id": ch.ID}); err != nil {
		log.Printf("Ingest WebSocket handshake write failed: %v", err)
		return
	}

	log.Printf("Ingest stream connected for channel %s from %s", ch.ID, r.RemoteAddr)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var pkt eeg.Packet
		if err := conn.ReadJSON(&pkt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Ingest stream for channel %s closed: %v", ch.ID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if len(pkt.Samples) == 0 {
			continue
		}
		ch.Ingest(pkt)
	}
}
