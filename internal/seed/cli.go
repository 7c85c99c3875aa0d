package seed

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/bidhub/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log records to stdout and, when logFile is not "-",
// to a file as well. An empty logFile gets a timestamped name.
func SetupLogging(logFile, format string, verbose bool) (io.Closer, error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "-" {
		if logFile == "" {
			logFile = "seed_log_" + time.Now().Format("20060102_150405") + ".log"
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out, closer = io.MultiWriter(os.Stdout, f), f
	}

	if err := logger.Init(logger.WithFormat(format), logger.WithWriter(out)); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

// ShowHelp prints usage information for the seeder.
func ShowHelp() {
	os.Stdout.WriteString(`bidhub seeder
=============

Fills a running bidhub instance with admins, freelancers, jobs,
applications and bids through the HTTP API, accepts and completes part
of the work and checks the leaderboard against what it completed.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string          Base URL of the service (default "http://localhost:4000")
  -admins int          Admin accounts to register (default 5)
  -freelancers int     Freelancer accounts to register (default 20)
  -jobs int            Jobs to post (default 30)
  -apps int            Applications per job (default 3)
  -bids int            Bids per application (default 2)
  -complete float      Share of accepted work to complete (default 0.6)
  -workers int         Concurrent requests (default 8)
  -timeout duration    HTTP request timeout (default 10s)
  -seed uint           Random seed for prices and skills (default 1)
  -log string          Log file, "-" for stdout only (default seed_log_TIMESTAMP.log)
  -log-format string   text or json (default "text")
  -verbose             Log individual failures and the top of the leaderboard
  -help                Show this help message

Examples:
  go run ./cmd/seed -freelancers 200 -jobs 500 -workers 32
  go run ./cmd/seed -url http://localhost:8080 -log - -verbose
`)
}
