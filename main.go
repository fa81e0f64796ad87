package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global debug flag
var DebugMode bool

// Global start time for process uptime tracking
var StartTime time.Time

func main() {
	StartTime = time.Now()

	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Environment variable takes precedence over the CLI flag
	DebugMode = *debug
	if debugEnv := os.Getenv("DEBUG"); debugEnv != "" {
		DebugMode = debugEnv == "true" || debugEnv == "1" || debugEnv == "yes"
	}
	if DebugMode {
		log.Println("Debug mode enabled")
	}

	config, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	manager, err := NewChannelManager(config)
	if err != nil {
		log.Fatalf("Failed to initialize channel manager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.MQTT.Enabled {
		publisher, err := NewMQTTPublisher(&config.MQTT)
		if err != nil {
			log.Fatalf("Failed to connect MQTT publisher: %v", err)
		}
		manager.SetMQTTPublisher(publisher)
		publisher.StartPublisher(ctx)
		defer publisher.Disconnect()
	}

	var sim *Simulator
	if config.Simulator.Enabled {
		sim = NewSimulator(&config.Simulator, &config.Stream, manager)
		go func() {
			if err := sim.Run(ctx); err != nil {
				log.Printf("Simulator error: %v", err)
			}
		}()
	}

	stop := make(chan struct{})
	go manager.Run(stop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/ingest", manager.handleIngestWS)
	mux.HandleFunc("/ws/metrics", manager.handleMetricsWS(sim))
	mux.HandleFunc("/api/channels", manager.handleChannels)
	mux.HandleFunc("/api/channels/", manager.handleChannelByID)
	mux.HandleFunc("/api/metrics/", manager.handleMetrics)
	mux.HandleFunc("/api/quality/", manager.handleQuality)
	mux.HandleFunc("/api/baseline/", manager.handleBaseline)
	mux.HandleFunc("/api/calibration/", manager.handleCalibration)
	mux.HandleFunc("/health", handleHealth)
	if config.Prometheus.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	var handler http.Handler = mux
	if config.Server.EnableCORS {
		handler = corsMiddleware(mux)
	}

	server := &http.Server{
		Addr:    config.Server.Listen,
		Handler: handler,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		cancel()
		close(stop)

		if err := server.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("EEG stream server listening on %s", config.Server.Listen)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": time.Since(StartTime).Seconds(),
	})
}
