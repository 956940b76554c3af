// Gift Relay Core - Live-Event Relay Controller
//
// This is the main entry point for the Gift Relay Core application.
// It discovers an ESP32 relay controller on the local network, connects
// to an upstream live-event feed via MQTT, and relays classified gift
// events to the controller as timed actuation commands.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/nerrad567/gift-relay-core/migrations"

	"github.com/nerrad567/gift-relay-core/internal/actuator"
	"github.com/nerrad567/gift-relay-core/internal/api"
	"github.com/nerrad567/gift-relay-core/internal/dispatch"
	"github.com/nerrad567/gift-relay-core/internal/history"
	"github.com/nerrad567/gift-relay-core/internal/infrastructure/config"
	"github.com/nerrad567/gift-relay-core/internal/infrastructure/database"
	"github.com/nerrad567/gift-relay-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/gift-relay-core/internal/infrastructure/logging"
	"github.com/nerrad567/gift-relay-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/gift-relay-core/internal/scanner"
	"github.com/nerrad567/gift-relay-core/internal/stats"
	"github.com/nerrad567/gift-relay-core/internal/stream"
	"github.com/nerrad567/gift-relay-core/internal/supervisor"
	"github.com/nerrad567/gift-relay-core/internal/telemetry"
	"github.com/nerrad567/gift-relay-core/internal/weights"
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

const usage = `usage: giftrelay <username> [device-ip]

  username   target live-stream account to relay gifts from (required)
  device-ip  relay controller address; omit to scan the local subnet`

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments (without the program name)
//   - in: Interactive input for device selection (stdin in production)
//   - out: Interactive output for the selection menu
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	if len(args) < 1 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("missing target username\n\n%s", usage)
	}
	username := strings.TrimSpace(args[0])

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gift Relay Core",
		"version", version,
		"commit", commit,
		"build_date", date,
		"target_user", username,
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

	// Load the gift weight table. Absence is startup-fatal: without
	// weights no event can be scored.
	table, err := weights.Load(cfg.Weights.Path)
	if err != nil {
		return fmt.Errorf("loading weight table from %s: %w\n\n"+
			"expected a YAML file mapping category names to positive integer weights, e.g.\n\n"+
			"  Rose: 1\n"+
			"  Galaxy: 200\n", cfg.Weights.Path, err)
	}
	log.Info("weight table loaded", "path", cfg.Weights.Path, "categories", table.Len())

	// Resolve the relay controller address: explicit argument, handoff
	// file from a previous selection, or an interactive subnet scan.
	deviceAddr, err := resolveDeviceAddress(ctx, cfg, args, log, in, out)
	if err != nil {
		return fmt.Errorf("resolving device address: %w", err)
	}
	log.Info("relay controller selected", "address", deviceAddr)

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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	// Session statistics and the durable command log share a session ID.
	session := stats.NewSession()
	store := history.NewStore(db.DB, session.ID(), log)
	log.Info("session started", "session_id", session.ID())

	// Connect to the MQTT broker. The upstream gift feed rides on MQTT,
	// so unlike the other integrations it is not optional.
	if !cfg.MQTT.Enabled {
		return fmt.Errorf("mqtt is disabled in config but carries the gift event stream; enable it")
	}
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
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})

	// Connect to InfluxDB (optional)
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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the command sender and probe the controller. An unreachable
	// controller is worth a warning but never blocks startup: delivery is
	// attempted per command regardless.
	sender := actuator.New(deviceAddr, session,
		actuator.WithTimeout(cfg.GetSendTimeout()),
		actuator.WithLogger(log),
	)
	if !sender.Reachable(ctx) {
		log.Warn("relay controller not reachable, commands will be attempted anyway",
			"address", deviceAddr,
		)
	}

	// Side channels for dispatched commands: durable history, the MQTT
	// command mirror, and optional InfluxDB telemetry.
	topics := mqtt.Topics{}
	qos := byte(cfg.MQTT.QoS)
	observers := []dispatch.Observer{
		store.Recorder(),
		telemetry.NewCommandPublisher(mqttClient, topics.CommandSent(), qos, log),
	}
	if influxClient != nil {
		observers = append(observers, telemetry.NewMetricsObserver(influxClient))
	}

	dispatcher := dispatch.New(table, session, sender, log, observers...)

	// The connector builds a fresh MQTT-backed source per (re)connection
	// attempt, with handlers wired before Run.
	connector := func(connCtx context.Context) (stream.Source, error) {
		src := stream.NewMQTTSource(mqttClient, topics.EventGift(username), topics.EventConnect(username), qos)
		src.OnConnect(dispatcher.HandleConnect)
		src.OnGift(func(ev stream.Event) {
			dispatcher.HandleGift(connCtx, dispatch.Event{
				Category:  ev.Category,
				Magnitude: ev.Magnitude,
				Actor:     ev.Actor,
			})
		})
		return src, nil
	}

	sup := supervisor.New(supervisor.Config{
		MaxRetries:    cfg.Stream.MaxRetries,
		RetryDelay:    cfg.GetRetryDelay(),
		RateLimitWait: cfg.GetRateLimitWait(),
	}, connector, session, log)
	sup.SetOnExit(func(snap stats.Snapshot) {
		reportSession(log, snap)
		persistSession(store, influxClient, snap, log)
	})

	// Start the status API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:      cfg.API,
			Logger:      log,
			Session:     session,
			History:     store,
			StreamState: func() string { return string(sup.State()) },
			Version:     version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("status API disabled")
	}

	log.Info("initialisation complete, consuming gift events",
		"target_user", username,
		"gift_topic", topics.EventGift(username),
	)

	if err := sup.Run(ctx); err != nil {
		return fmt.Errorf("stream supervisor: %w", err)
	}

	log.Info("Gift Relay Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GIFTRELAY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GIFTRELAY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// resolveDeviceAddress determines the relay controller address.
//
// Precedence: explicit CLI argument, then the handoff file left by a
// previous selection (consumed on read), then an interactive subnet scan.
func resolveDeviceAddress(ctx context.Context, cfg *config.Config, args []string, log *logging.Logger, in io.Reader, out io.Writer) (string, error) {
	if len(args) > 1 {
		addr := strings.TrimSpace(args[1])
		if net.ParseIP(addr) == nil {
			return "", fmt.Errorf("invalid device IP %q", addr)
		}
		return addr, nil
	}

	if addr, err := scanner.ConsumeHandoff(cfg.Scanner.HandoffFile); err == nil && addr != "" {
		log.Info("using device from previous selection", "address", addr, "handoff_file", cfg.Scanner.HandoffFile)
		return addr, nil
	}

	return scanAndSelect(ctx, cfg, log, in, out)
}

// scanAndSelect probes the local /24 subnet and lets the operator choose
// a device from the results. The choice is persisted to the handoff file
// for the next non-interactive start.
func scanAndSelect(ctx context.Context, cfg *config.Config, log *logging.Logger, in io.Reader, out io.Writer) (string, error) {
	localIP, prefix, err := scanner.LocalSubnet()
	if err != nil {
		return "", fmt.Errorf("determining local subnet: %w", err)
	}
	log.Info("scanning local subnet", "local_ip", localIP, "subnet", prefix+".0/24")

	s := scanner.New(
		scanner.WithConcurrency(cfg.Scanner.Concurrency),
		scanner.WithProbeTimeout(cfg.GetProbeTimeout()),
		scanner.WithPlaceholderName(cfg.Scanner.PlaceholderName),
		scanner.WithLogger(log),
		scanner.WithProgress(func(done, total int) {
			if done%64 == 0 || done == total {
				fmt.Fprintf(out, "\rScanning... %d/%d", done, total)
			}
		}),
	)

	result, err := s.Scan(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("scanning subnet: %w", err)
	}
	fmt.Fprintln(out)

	if result.Empty() {
		fmt.Fprintln(out, "No devices responded on the subnet.")
		return promptManualIP(in, out)
	}

	selected, err := scanner.Select(in, out, result)
	if errors.Is(err, scanner.ErrManualEntry) {
		return promptManualIP(in, out)
	}
	if err != nil {
		return "", err
	}

	if writeErr := scanner.WriteHandoff(cfg.Scanner.HandoffFile, selected.IP); writeErr != nil {
		log.Warn("failed to persist device selection", "error", writeErr)
	}
	return selected.IP, nil
}

// promptManualIP reads a device address typed by the operator.
func promptManualIP(in io.Reader, out io.Writer) (string, error) {
	scan := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Enter device IP: ")
		if !scan.Scan() {
			return "", fmt.Errorf("no device address entered")
		}
		addr := strings.TrimSpace(scan.Text())
		if net.ParseIP(addr) != nil {
			return addr, nil
		}
		fmt.Fprintf(out, "Invalid IP %q\n", addr)
	}
}

// reportSession logs the final session statistics snapshot.
func reportSession(log *logging.Logger, snap stats.Snapshot) {
	log.Info("session summary",
		"session_id", snap.ID,
		"duration", snap.Duration(time.Now().UTC()).Round(time.Second).String(),
		"total_units", snap.TotalUnits,
		"total_score", snap.TotalScore,
		"commands_attempted", snap.CommandsAttempted,
		"commands_succeeded", snap.CommandsSucceeded,
		"unique_actors", len(snap.UniqueActors),
	)
	for category, units := range snap.UnitsByCategory {
		log.Info("session category", "category", category, "units", units)
	}
}

// persistSession writes the final snapshot to the history store and,
// when enabled, to InfluxDB. Failures are logged; at this point there is
// nothing left to abort.
func persistSession(store *history.Store, influxClient *influxdb.Client, snap stats.Snapshot, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.SaveSessionSummary(ctx, snap); err != nil {
		log.Error("failed to save session summary", "error", err)
	}
	if influxClient != nil {
		influxClient.WriteSessionMetric(snap.ID, snap.TotalUnits, snap.CommandsAttempted, snap.CommandsSucceeded)
		influxClient.Flush()
	}
}
