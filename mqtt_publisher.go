package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/flowstate-bci/eegstream/eeg/pipeline"
)

// MQTTPublisher manages MQTT publishing of per-channel analysis metrics
type MQTTPublisher struct {
	client mqtt.Client
	config *MQTTConfig

	mu     sync.Mutex
	latest map[string]pipeline.Metrics
}

// generateClientID creates a random client ID for the MQTT connection
func generateClientID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "eegstream_" + hex.EncodeToString(bytes)
}

// NewMQTTPublisher connects to the broker and returns a publisher
func NewMQTTPublisher(config *MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(generateClientID())

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Println("MQTT: Connected to broker")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("MQTT: Connection lost: %v", err)
	})
	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		log.Println("MQTT: Attempting to reconnect...")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Printf("MQTT: Successfully connected to broker: %s", config.Broker)

	return &MQTTPublisher{
		client: client,
		config: config,
		latest: make(map[string]pipeline.Metrics),
	}, nil
}

// Offer records the latest analysis result for a channel. The publish ticker
// picks it up on the next interval, so Offer never blocks the analysis loop.
func (mp *MQTTPublisher) Offer(channelID string, m pipeline.Metrics) {
	mp.mu.Lock()
	mp.latest[channelID] = m
	mp.mu.Unlock()
}

// StartPublisher runs the periodic publish loop until the context is cancelled
func (mp *MQTTPublisher) StartPublisher(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Duration(mp.config.PublishInterval) * time.Second)
		defer ticker.Stop()

		log.Printf("MQTT: Metrics publisher started with %d second interval", mp.config.PublishInterval)

		for {
			select {
			case <-ctx.Done():
				log.Println("MQTT: Metrics publisher stopped")
				return
			case <-ticker.C:
				mp.publishAll()
			}
		}
	}()
}

// publishAll sends the most recent metrics for every channel, one message per
// channel on {prefix}/{channel_id}
func (mp *MQTTPublisher) publishAll() {
	mp.mu.Lock()
	snapshot := make(map[string]pipeline.Metrics, len(mp.latest))
	for id, m := range mp.latest {
		snapshot[id] = m
	}
	mp.mu.Unlock()

	for id, m := range snapshot {
		topic := fmt.Sprintf("%s/%s", mp.config.TopicPrefix, id)
		data, err := json.Marshal(m)
		if err != nil {
			log.Printf("MQTT ERROR: Failed to marshal metrics for channel %s: %v", id, err)
			continue
		}

		// Publish asynchronously - don't wait for completion (prevents blocking)
		token := mp.client.Publish(topic, 0, false, data)
		go func(topic string) {
			if token.Wait() && token.Error() != nil {
				log.Printf("MQTT ERROR: Failed to publish to %s: %v", topic, token.Error())
			}
		}(topic)
	}
}

// Forget drops a removed channel from the publish set
func (mp *MQTTPublisher) Forget(channelID string) {
	mp.mu.Lock()
	delete(mp.latest, channelID)
	mp.mu.Unlock()
}

// Disconnect gracefully disconnects from the MQTT broker
func (mp *MQTTPublisher) Disconnect() {
	if mp.client != nil && mp.client.IsConnected() {
		mp.client.Disconnect(250)
		log.Println("MQTT: Disconnected from broker")
	}
}
