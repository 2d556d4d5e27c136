// Gray Logic Wevolor - Wevolor shade controller bridge
//
// This is the main entry point for the Wevolor bridge service. It hosts
// the setup wizard and config entries for Wevolor controllers, exposes
// each configured channel to Home Assistant over MQTT discovery and
// accepts commands over MQTT and the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-wevolor/migrations"

	"github.com/nerrad567/gray-logic-wevolor/internal/api"
	"github.com/nerrad567/gray-logic-wevolor/internal/bridges/wevolor"
	"github.com/nerrad567/gray-logic-wevolor/internal/configentry"
	"github.com/nerrad567/gray-logic-wevolor/internal/flow"
	"github.com/nerrad567/gray-logic-wevolor/internal/hass"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
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
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Wevolor",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	defer log.Close() //nolint:errcheck // Best-effort close of the log file
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
		"output", cfg.Logging.Output,
	)

	db, err := database.Open(ctx, database.Config{
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

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	influxClient, err := connectInfluxDB(cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
	}

	// Home Assistant exporter: the entity platform for every entry.
	exporter := hass.NewExporter(mqttClient, cfg.Wevolor.DiscoveryPrefix, wevolor.Domain)
	exporter.SetLogger(log.With("component", "hass"))
	if influxClient != nil {
		exporter.SetRecorder(influxClient)
	}
	if startErr := exporter.Start(); startErr != nil {
		return fmt.Errorf("starting Home Assistant exporter: %w", startErr)
	}
	defer func() {
		if stopErr := exporter.Stop(); stopErr != nil {
			log.Warn("error stopping Home Assistant exporter", "error", stopErr)
		}
	}()

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected, republishing discovery")
		if pubErr := exporter.Republish(); pubErr != nil {
			log.Warn("republishing discovery configs", "error", pubErr)
		}
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	fleet := newSimulatorFleet(cfg.Wevolor.Simulator)
	log.Info("simulated Wevolor controllers ready", "devices", len(cfg.Wevolor.Simulator.Devices))

	integration := wevolor.NewIntegration(fleet.Client, wevolor.NewClientRegistry(), exporter)
	integration.SetLogger(log.With("component", "wevolor"))

	entries := configentry.NewManager(configentry.NewSQLiteRepository(db.DB))
	entries.SetLogger(log.With("component", "configentry"))
	entries.Register(integration)
	if loadErr := entries.LoadAll(ctx); loadErr != nil {
		return fmt.Errorf("loading config entries: %w", loadErr)
	}
	defer entries.UnloadAll(context.Background())

	flows := flow.NewManager(entries)
	flows.SetLogger(log.With("component", "flow"))
	flows.Register(wevolor.Domain, integration.FlowFactory(entries))

	checks := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}
	if influxClient != nil {
		checks["influxdb"] = influxClient
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log,
		Entries:  entries,
		Flows:    flows,
		Commands: exporter,
		Checks:   checks,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	// Deferred calls run in reverse: API, entries, exporter, InfluxDB,
	// MQTT, database, log file.
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// connectInfluxDB returns nil without error when telemetry is disabled.
func connectInfluxDB(cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, error) {
	if !cfg.Enabled {
		log.Info("InfluxDB disabled, command telemetry off")
		return nil, nil
	}

	client, err := influxdb.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.URL,
		"org", cfg.Org,
		"bucket", cfg.Bucket,
	)
	return client, nil
}

// newSimulatorFleet builds the simulated controllers listed in config.
func newSimulatorFleet(cfg config.SimulatorConfig) *wevolor.SimulatorFleet {
	statuses := make(map[string]wevolor.Status, len(cfg.Devices))
	for _, d := range cfg.Devices {
		statuses[d.Host] = wevolor.Status{UID: d.UID, RemoteName: d.Remote}
	}
	return wevolor.NewSimulatorFleet(statuses)
}

// healthCheck runs every check in checks and returns the first failure.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for _, name := range []string{"database", "mqtt", "influxdb"} {
		check, ok := checks[name]
		if !ok {
			continue
		}
		if err := check.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
