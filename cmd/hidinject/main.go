package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airgapwing/hidinject/internal/adapters/devices"
	"github.com/airgapwing/hidinject/internal/adapters/radio"
	"github.com/airgapwing/hidinject/internal/adapters/storage"
	"github.com/airgapwing/hidinject/internal/adapters/timer"
	"github.com/airgapwing/hidinject/internal/adapters/unifying"
	"github.com/airgapwing/hidinject/internal/config"
	"github.com/airgapwing/hidinject/internal/core/domain"
	"github.com/airgapwing/hidinject/internal/core/ports"
	"github.com/airgapwing/hidinject/internal/lifecycle"
	"github.com/airgapwing/hidinject/internal/monitor"
	"github.com/airgapwing/hidinject/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("hidinject starting")

	cfg := config.Load()
	if cfg.Debug {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if cfg.TargetAddress == "" {
		log.Fatalf("no target address configured; pass -target or set HIDINJECT_TARGET")
	}
	target, err := domain.ParseRFAddress(cfg.TargetAddress)
	if err != nil {
		log.Fatalf("invalid target address %q: %v", cfg.TargetAddress, err)
	}

	telemetry.InitMetrics()
	shutdownTracer, err := telemetry.InitTracer()
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Printf("tracer shutdown error: %v", err)
		}
	}()

	var radioDriver ports.RadioDriver
	if cfg.Mock {
		slog.Info("running against an in-memory radio (mock mode)")
		radioDriver = radio.NewMockRadio()
	} else {
		sr, err := radio.Open(cfg.SerialPort)
		if err != nil {
			log.Fatalf("failed to open serial radio bridge %s: %v", cfg.SerialPort, err)
		}
		defer sr.Close()
		radioDriver = sr
	}

	inventory := devices.NewInMemoryInventory()

	auditStore, err := storage.NewSQLiteAuditStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open audit database %s: %v", cfg.DBPath, err)
	}

	var handle *lifecycle.Handle
	osTimer := timer.New(func() {
		if handle != nil {
			handle.Engine().OnTimer()
		}
	})

	handle, err = lifecycle.New(target, radioDriver, osTimer, inventory, unifying.Checksum{}, auditStore)
	if err != nil {
		log.Fatalf("failed to construct injection engine handle: %v", err)
	}
	if err := handle.Init(); err != nil {
		log.Fatalf("failed to initialize radio: %v", err)
	}
	defer func() {
		if err := handle.Deinit(); err != nil {
			log.Printf("deinit error: %v", err)
		}
	}()

	slog.Info("injection engine ready", "target", target.String(), "mock", cfg.Mock)

	srv := monitor.NewServer(cfg.MonitorAddr, handle)
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(ctx); err != nil {
			errChan <- err
		}
	}()

	slog.Info("monitor listening", "addr", cfg.MonitorAddr)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errChan:
		slog.Error("monitor server failed", "error", err)
		cancel()
	}

	slog.Info("shutting down")
}
