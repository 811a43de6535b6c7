package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldrover/scanlink/internal/capture"
	"github.com/fieldrover/scanlink/internal/config"
	"github.com/fieldrover/scanlink/internal/db"
	"github.com/fieldrover/scanlink/internal/monitor"
	"github.com/fieldrover/scanlink/internal/rplidar"
	"github.com/fieldrover/scanlink/internal/scan"
	"github.com/fieldrover/scanlink/internal/version"
)

var (
	device      = flag.String("device", config.DefaultDevice, "Serial device the sensor is attached to")
	baudRate    = flag.Int("baud", config.DefaultBaudRate, "Serial baud rate")
	motorPWM    = flag.Int("motor-pwm", config.DefaultMotorPWM, "Motor PWM duty cycle (0-1023)")
	upstream    = flag.String("upstream", config.DefaultEndpoint, "TCP endpoint packed frames are pushed to")
	listen      = flag.String("listen", config.DefaultListenAddr, "HTTP listen address for the monitor (empty to disable)")
	dbFile      = flag.String("db", config.DefaultDBPath, "Path to the SQLite database file")
	noDB        = flag.Bool("no-db", false, "Disable session and revolution archiving")
	recordFile  = flag.String("record", "", "Append every outgoing frame to this recording file")
	configFile  = flag.String("config", "", "Path to a JSON config file (explicit flags win)")
	synthetic   = flag.Bool("synthetic", false, "Use a synthetic sensor instead of hardware")
	logInterval = flag.Duration("log-interval", config.DefaultLogInterval, "Statistics logging interval")
	devMode     = flag.Bool("dev", false, "Dev mode: load migrations from the source tree")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// applyConfig fills in every flag the user did not set explicitly from the
// config file, so the precedence is flags > file > shipped defaults.
func applyConfig(cfg *config.CaptureConfig) {
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	if !setFlags["device"] {
		*device = cfg.GetDevice()
	}
	if !setFlags["baud"] {
		*baudRate = cfg.GetBaudRate()
	}
	if !setFlags["motor-pwm"] {
		*motorPWM = int(cfg.GetMotorPWM())
	}
	if !setFlags["upstream"] {
		*upstream = cfg.GetEndpoint()
	}
	if !setFlags["listen"] {
		*listen = cfg.GetListenAddr()
	}
	if !setFlags["db"] {
		*dbFile = cfg.GetDBPath()
	}
	if !setFlags["no-db"] {
		*noDB = cfg.GetDisableDB()
	}
	if !setFlags["record"] {
		*recordFile = cfg.GetRecordPath()
	}
	if !setFlags["log-interval"] {
		*logInterval = cfg.GetLogInterval()
	}
}

// Main
func main() {
	// The migrate subcommand manages the database schema and exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		migrateFlags := flag.NewFlagSet("migrate", flag.ExitOnError)
		migratePath := migrateFlags.String("db", config.DefaultDBPath, "Path to database file")
		migrateFlags.Parse(os.Args[2:])
		db.RunMigrateCommand(migrateFlags.Args(), *migratePath)
		return
	}

	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *configFile != "" {
		cfg, err := config.LoadCaptureConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
		applyConfig(cfg)
	}

	if *motorPWM < 0 || *motorPWM > int(rplidar.MaxMotorPWM) {
		log.Fatalf("Motor PWM %d out of range (0-%d)", *motorPWM, rplidar.MaxMotorPWM)
	}
	if *upstream == "" {
		log.Fatal("Upstream endpoint is required")
	}

	db.DevMode = *devMode

	// Open the sensor. Failures here are fatal: there is nothing running
	// yet that would need unwinding.
	var sensor capture.Sensor
	if *synthetic {
		sensor = scan.NewSyntheticSensor()
		log.Println("Using synthetic sensor (no hardware attached)")
	} else {
		dev, err := rplidar.Open(*device, rplidar.PortOptions{BaudRate: *baudRate})
		if err != nil {
			log.Fatalf("Failed to open sensor device: %v", err)
		}
		sensor = dev
	}

	capturer := capture.New(sensor, capture.Config{
		MotorPWM: uint16(*motorPWM),
		Endpoint: *upstream,
	})
	stats := capturer.Stats()

	// Session archiving
	var database *db.DB
	var session *db.Session
	if !*noDB {
		var err error
		database, err = db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		session = &db.Session{
			Device:   *device,
			Endpoint: *upstream,
			MotorPWM: *motorPWM,
		}
		if err := database.CreateSession(session); err != nil {
			log.Fatalf("Failed to create capture session: %v", err)
		}
		log.Printf("Capture session %s (db %s)", session.ID, *dbFile)

		capturer.AddHook(db.NewRevolutionArchiver(database, session.ID))
	}

	// Frame recording
	if *recordFile != "" {
		recorder, err := scan.NewRecorder(*recordFile)
		if err != nil {
			log.Fatalf("Failed to open recording file: %v", err)
		}
		defer recorder.Close()
		log.Printf("Recording frames to %s", *recordFile)

		capturer.AddHook(capture.RecorderHook{Recorder: recorder})
	}

	// Create a wait group for the capture loop, HTTP server, and stats routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Monitoring web server
	if *listen != "" {
		server := monitor.NewWebServer(monitor.WebServerConfig{
			Address:  *listen,
			Stats:    stats,
			Device:   *device,
			Endpoint: *upstream,
			MotorPWM: uint16(*motorPWM),
			DB:       database,
		})
		capturer.AddHook(server)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Start(ctx); err != nil {
				log.Printf("Web server error: %v", err)
			}
		}()
	}

	// Periodic statistics logging
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(*logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats.LogStats()
			}
		}
	}()

	// Capture loop. When it returns, for whatever reason, the daemon is done:
	// cancel the context so the other routines unwind too.
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := capturer.Run(ctx)

		if database != nil && session != nil {
			reason := "shutdown"
			if err != nil && !errors.Is(err, context.Canceled) {
				reason = err.Error()
			}
			if endErr := database.EndSession(session.ID, reason, stats.TotalFrames(), stats.TotalSamples()); endErr != nil {
				log.Printf("Failed to close capture session: %v", endErr)
			}
		}

		stop()
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
