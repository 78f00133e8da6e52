// Package config loads process configuration from environment variables
// and command-line flags, flags taking precedence.
package config

import (
	"flag"
	"os"
	"strconv"
)

// Config holds the settings the composition root needs to wire a radio,
// a timer and the monitor HTTP/WS server around one InjectionEngine.
type Config struct {
	// SerialPort is the TTY path of the companion MCU bridging this
	// process to the physical ESB radio. Ignored in Mock mode.
	SerialPort string
	// TargetAddress is the 5-byte ESB address of the receiver dongle,
	// hex-encoded ("aa:bb:cc:dd:ee").
	TargetAddress string
	// MonitorAddr is the HTTP listen address for the monitor server
	// (state-transition WebSocket stream + Prometheus metrics).
	MonitorAddr string
	// DBPath is the SQLite file the audit trail is written to.
	DBPath string
	// Mock runs the engine against an in-memory radio instead of a real
	// serial-attached one, for development and the end-to-end tests.
	Mock bool
	// Debug enables verbose logging.
	Debug bool
}

// Load parses command-line flags and environment variables into a
// Config. Flags override environment variables; environment variables
// override the built-in defaults.
func Load() *Config {
	cfg := &Config{}

	serialPort := getEnv("HIDINJECT_SERIAL", "/dev/ttyACM0")
	targetAddress := getEnv("HIDINJECT_TARGET", "")
	monitorAddr := getEnv("HIDINJECT_ADDR", ":8090")
	dbPath := getEnv("HIDINJECT_DB", "hidinject.db")
	mock := getEnvBool("HIDINJECT_MOCK", false)
	debug := getEnvBool("HIDINJECT_DEBUG", false)

	flag.StringVar(&cfg.SerialPort, "serial", serialPort, "TTY path of the ESB radio bridge")
	flag.StringVar(&cfg.TargetAddress, "target", targetAddress, "target ESB address, e.g. aa:bb:cc:dd:ee")
	flag.StringVar(&cfg.MonitorAddr, "addr", monitorAddr, "monitor HTTP/WS listen address")
	flag.StringVar(&cfg.DBPath, "db", dbPath, "path to the SQLite audit database")
	flag.BoolVar(&cfg.Mock, "mock", mock, "run against an in-memory radio instead of a serial bridge")
	flag.BoolVar(&cfg.Debug, "debug", debug, "enable verbose logging")

	flag.Parse()
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
