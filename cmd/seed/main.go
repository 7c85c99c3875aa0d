package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/bidhub/internal/seed"
	"github.com/okian/bidhub/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	def := seed.DefaultConfig()
	var (
		baseURL     = flag.String("url", def.BaseURL, "Base URL of the service")
		admins      = flag.Int("admins", def.Admins, "Admin accounts to register")
		freelancers = flag.Int("freelancers", def.Freelancers, "Freelancer accounts to register")
		jobs        = flag.Int("jobs", def.Jobs, "Jobs to post")
		apps        = flag.Int("apps", def.ApplicationsPerJob, "Applications per job")
		bids        = flag.Int("bids", def.BidsPerApplication, "Bids per application")
		complete    = flag.Float64("complete", def.CompleteRatio, "Share of accepted work to complete")
		workers     = flag.Int("workers", def.Workers, "Concurrent requests")
		timeout     = flag.Duration("timeout", def.Timeout, "HTTP request timeout")
		randSeed    = flag.Uint64("seed", def.RandSeed, "Random seed for prices and skills")
		logFile     = flag.String("log", "", `Log file, "-" for stdout only`)
		logFormat   = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	closer, err := seed.SetupLogging(*logFile, *logFormat, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close() //nolint:errcheck // best effort on exit

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:            *baseURL,
		Admins:             *admins,
		Freelancers:        *freelancers,
		Jobs:               *jobs,
		ApplicationsPerJob: *apps,
		BidsPerApplication: *bids,
		CompleteRatio:      *complete,
		Workers:            *workers,
		Timeout:            *timeout,
		RandSeed:           *randSeed,
		Verbose:            *verbose,
	}

	if _, err := seed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seed failed", logger.Error(err))
		os.Exit(1)
	}
}
