// Rackview Core - Data-Center Inventory Service
//
// This is the main entry point for the Rackview Core application.
// Rackview tracks racks and the devices mounted in them, records every
// inventory write in an append-only operation log, and pushes live
// updates to connected clients over WebSocket. An optional MQTT mirror
// republishes events for machine consumers, and optional InfluxDB
// telemetry records write latency.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/nerrad567/rackview-core/migrations"

	"github.com/nerrad567/rackview-core/internal/api"
	"github.com/nerrad567/rackview-core/internal/audit"
	"github.com/nerrad567/rackview-core/internal/infrastructure/config"
	"github.com/nerrad567/rackview-core/internal/infrastructure/database"
	"github.com/nerrad567/rackview-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/rackview-core/internal/infrastructure/logging"
	"github.com/nerrad567/rackview-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/rackview-core/internal/inventory"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// A .env file is optional; environment overrides still apply without one.
	//nolint:errcheck // Missing .env is the normal case outside docker-compose
	godotenv.Load()

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Rackview Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	inventoryRepo := inventory.NewSQLiteRepository(db.DB)
	auditRepo := audit.NewRepository(db.DB)

	// WebSocket hub - created before the service so committed writes
	// have somewhere to fan out from the first request onward.
	hub := api.NewHub(cfg.WebSocket, log)

	// Connect to MQTT broker (optional event mirror)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT mirror disabled")
	}

	// Connect to InfluxDB (optional write-latency telemetry)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Inventory service: hub plus optional MQTT mirror behind one publisher.
	publisher := &eventFanout{hub: hub, mqtt: mqttClient, log: log}
	var latency inventory.LatencyRecorder
	if influxClient != nil {
		latency = influxClient
	}
	service := inventory.NewService(db.DB, inventoryRepo, auditRepo, publisher, latency, log)

	// API server
	server, err := api.New(api.Deps{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Inventory: inventoryRepo,
		Service:   service,
		Audit:     auditRepo,
		Hub:       hub,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains in-flight requests, disconnects WS clients)
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Rackview Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RACKVIEW_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RACKVIEW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// eventFanout delivers committed inventory events to the WebSocket hub
// and, when configured, mirrors them to MQTT. The hub delivery is the
// primary channel; a mirror failure is logged but never surfaces to
// the write path.
type eventFanout struct {
	hub  *api.Hub
	mqtt *mqtt.Client
	log  *logging.Logger
}

// Publish implements the inventory publisher contract.
func (f *eventFanout) Publish(eventType string, payload any) {
	f.hub.Publish(eventType, payload)

	if f.mqtt == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		f.log.Error("failed to marshal event for MQTT mirror", "type", eventType, "error", err)
		return
	}
	if err := f.mqtt.PublishEvent(eventType, data); err != nil {
		f.log.Warn("MQTT mirror publish failed", "type", eventType, "error", err)
	}
}
