// followspotd is the process entrypoint: it wires the tuning config,
// fixture registry, UDP fixture sender, sensor ingress websocket
// server, debounce loop, an optional one-shot Navigator calibration run
// for a single channel, the aiming HTTP handler, and the telemetry gRPC
// server, then runs until a signal.
// Grounded on the teacher's root main.go wait-group + signal.NotifyContext
// shutdown pattern.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/followspot/followspot/internal/aiming"
	"github.com/followspot/followspot/internal/config"
	"github.com/followspot/followspot/internal/debounce"
	"github.com/followspot/followspot/internal/fixture"
	"github.com/followspot/followspot/internal/fsutil"
	"github.com/followspot/followspot/internal/ingress"
	"github.com/followspot/followspot/internal/navigator"
	"github.com/followspot/followspot/internal/predictor"
	"github.com/followspot/followspot/internal/registry"
	"github.com/followspot/followspot/internal/sensorstate"
	"github.com/followspot/followspot/internal/timeutil"
	"github.com/followspot/followspot/internal/version"

	"github.com/followspot/followspot/api/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to a tuning config JSON file (optional; defaults apply to anything omitted)")
	fixturesPath := flag.String("fixtures", ".fixtures.json", "Path to the fixture descriptor table")
	sensorsPath := flag.String("sensors", ".sensors.json", "Path to the sensor anchor table")
	sensorIDs := flag.String("sensor-ids", "1,2,3,4", "Comma-separated list of valid sensor ids")
	aimListen := flag.String("aim-listen", ":8090", "Listen address for the aiming HTTP API")
	telemetryListen := flag.String("telemetry-listen", ":8091", "Listen address for the telemetry gRPC service")
	calibrateChannel := flag.String("calibrate", "", "If set, run a Navigator calibration pass for this channel on startup")
	showVersion := flag.Bool("version", false, "Print the build version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("followspotd %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		os.Exit(0)
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("followspotd: loading config: %v", err)
		}
		cfg = loaded
	}

	fs := fsutil.OSFileSystem{}
	reg, err := registry.Open(fs, *fixturesPath, *sensorsPath)
	if err != nil {
		log.Fatalf("followspotd: opening registry: %v", err)
	}

	sender, err := fixture.NewUDPSender(cfg.GetFixtureIP(), cfg.GetFixturePort())
	if err != nil {
		log.Fatalf("followspotd: opening fixture transport: %v", err)
	}
	defer sender.Close()

	validSensors := strings.Split(*sensorIDs, ",")
	store := sensorstate.New(validSensors, cfg.GetMaxBufferSamples())

	telemetryServer := telemetry.NewServer()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sensor ingress: websocket server accepting per-sample frames.
	ingressSrv := ingress.New(store)
	httpIngress := &http.Server{Addr: cfg.GetIngressListenAddr(), Handler: ingressSrv}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("followspotd: sensor ingress listening on %s", httpIngress.Addr)
		if err := httpIngress.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("followspotd: ingress server error: %v", err)
		}
	}()

	// Debouncer: periodically replaces each sensor's published intensity
	// with the mean of its buffered samples.
	wg.Add(1)
	go func() {
		defer wg.Done()
		debounce.Run(ctx, store, timeutil.RealClock{}, cfg.GetDebounceInterval())
		log.Print("followspotd: debounce loop terminated")
	}()

	// Aiming HTTP API.
	predictorCfg := predictor.Config{
		Tolerance:   cfg.GetSolverTolerance(),
		MaxIters:    cfg.GetSolverMaxIters(),
		HeightGuess: cfg.GetSolverHeightGuess(),
	}
	aimSvc := aiming.New(reg, sender, predictorCfg)
	aimHandler := aiming.NewHandler(aimSvc)
	aimMux := http.NewServeMux()
	aimHandler.RegisterRoutes(aimMux)
	aimServer := &http.Server{Addr: *aimListen, Handler: aimMux}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("followspotd: aiming API listening on %s", aimServer.Addr)
		if err := aimServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("followspotd: aiming server error: %v", err)
		}
	}()

	// Telemetry gRPC service.
	grpcListener, err := net.Listen("tcp", *telemetryListen)
	if err != nil {
		log.Fatalf("followspotd: listening for telemetry: %v", err)
	}
	grpcServer := grpc.NewServer()
	telemetry.RegisterService(grpcServer, telemetryServer)
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("followspotd: telemetry gRPC listening on %s", *telemetryListen)
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Printf("followspotd: telemetry server error: %v", err)
		}
	}()

	// Optional one-shot calibration run for a single channel, ticked to
	// completion before the daemon settles into steady-state serving.
	if *calibrateChannel != "" {
		navCfg := navigator.Config{
			PanStep:         cfg.GetPanStep(),
			TiltStep:        cfg.GetTiltStep(),
			Dwell:           cfg.GetDwellDuration(),
			MaxScanTilt:     cfg.GetMaxScanTilt(),
			SetupSettleTime: cfg.GetSetupSettleTime(),
			OvershootK1:     cfg.GetOvershootK1(),
			OvershootK2:     cfg.GetOvershootK2(),
			OvershootK3:     cfg.GetOvershootK3(),
		}
		nav := navigator.New(*calibrateChannel, sender, reg, store, timeutil.RealClock{}, fs, navCfg)
		nav.SetTelemetry(telemetry.NavigatorAdapter{Server: telemetryServer})
		for !nav.Phase().Terminal() {
			if _, err := nav.Tick(); err != nil {
				log.Printf("followspotd: calibration run %s failed: %v", nav.RunID, err)
				break
			}
		}
		log.Printf("followspotd: calibration run %s finished in phase %s", nav.RunID, nav.Phase())
	}

	<-ctx.Done()
	log.Print("followspotd: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpIngress.Shutdown(shutdownCtx); err != nil {
		log.Printf("followspotd: ingress shutdown error: %v", err)
	}
	if err := aimServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("followspotd: aiming server shutdown error: %v", err)
	}
	grpcServer.GracefulStop()

	wg.Wait()
	log.Print("followspotd: graceful shutdown complete")
}
