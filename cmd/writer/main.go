package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/andeanstats/gdprev/pkg/queue/nats"
	"github.com/andeanstats/gdprev/pkg/store/duckdb"
)

// Config holds writer worker configuration
type Config struct {
	NATSUrl    string
	DuckDBPath string
}

func main() {
	cfg := parseFlags()

	log.Println("Starting Writer Worker...")
	log.Printf("NATS: %s, DuckDB: %s", cfg.NATSUrl, cfg.DuckDBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize DuckDB
	log.Println("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()

	// Initialize schema
	if err := duckdb.InitializeSchema(ctx, duckClient); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("DuckDB schema initialized")

	// Initialize repos
	releaseRepo := duckdb.NewReleaseRepo(duckClient)
	benchmarkRepo := duckdb.NewBenchmarkRepo(duckClient)

	// Initialize NATS
	log.Println("Connecting to NATS...")
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATSUrl
	natsClient, err := nats.NewClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()

	// Create stream
	subjects := []string{nats.SubjectReleaseWrite, nats.SubjectBenchmarkWrite}
	if err := natsClient.CreateStream(ctx, subjects); err != nil {
		log.Fatalf("Failed to create stream: %v", err)
	}
	log.Println("NATS stream ready")

	// Subscribe to release writes
	releaseConsumer, err := natsClient.Subscribe(ctx, nats.SubjectReleaseWrite, "release-writer", func(msg jetstream.Msg) error {
		batch, err := nats.DecodeReleaseBatch(msg.Data())
		if err != nil {
			log.Printf("Failed to decode release batch: %v", err)
			return err
		}

		if len(batch.Releases) == 0 {
			return nil
		}

		if err := releaseRepo.InsertBatch(ctx, batch.Releases); err != nil {
			log.Printf("Failed to insert releases: %v", err)
			return err
		}

		log.Printf("Inserted %d releases", len(batch.Releases))
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to release writes: %v", err)
	}
	defer releaseConsumer.Stop()

	// Subscribe to benchmark indicator writes
	benchmarkConsumer, err := natsClient.Subscribe(ctx, nats.SubjectBenchmarkWrite, "benchmark-writer", func(msg jetstream.Msg) error {
		batch, err := nats.DecodeBenchmarkBatch(msg.Data())
		if err != nil {
			log.Printf("Failed to decode benchmark batch: %v", err)
			return err
		}

		if len(batch.Flags) == 0 {
			return nil
		}

		if err := benchmarkRepo.InsertBatch(ctx, batch.Flags); err != nil {
			log.Printf("Failed to insert benchmark flags: %v", err)
			return err
		}

		log.Printf("Inserted %d benchmark flags", len(batch.Flags))
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to benchmark writes: %v", err)
	}
	defer benchmarkConsumer.Stop()

	log.Println("Writer Worker started, waiting for messages...")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down Writer Worker...")
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.NATSUrl, "nats", "nats://localhost:4222", "NATS server URL")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "gdprev.duckdb", "DuckDB file path")

	flag.Parse()

	if cfg.DuckDBPath == "" {
		fmt.Println("Usage: writer [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	return cfg
}
