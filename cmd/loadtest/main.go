// Sharkdb loadtest drives concurrent load against a sharkdb server and prints
// ops/sec and latency percentiles.
//
// Usage:
//
//	go run ./cmd/loadtest -addr http://127.0.0.1:8090 -duration 10s -workers 50
//	go run ./cmd/loadtest -addr http://127.0.0.1:8090 -workload put -duration 5s
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BibekPathak/shark-db/internal/loadtest"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8090", "sharkdb server base URL")
	table := flag.String("table", "loadtest", "target table (created if absent)")
	duration := flag.Duration("duration", 10*time.Second, "load test duration")
	workers := flag.Int("workers", 50, "number of concurrent workers")
	keyspace := flag.Int("keys", 10000, "key space size (distinct keys)")
	valuesize := flag.Int("value-size", 64, "value size in bytes")
	workload := flag.String("workload", "mixed", "workload: put, get, scan, or mixed")
	flag.Parse()

	var w loadtest.Workload
	switch *workload {
	case "put":
		w = loadtest.WorkloadPut
	case "get":
		w = loadtest.WorkloadGet
	case "scan":
		w = loadtest.WorkloadScan
	case "mixed":
		w = loadtest.WorkloadMixed
	default:
		fmt.Fprintln(os.Stderr, "workload must be put, get, scan, or mixed")
		os.Exit(1)
	}

	cfg := loadtest.DefaultConfig(*addr)
	cfg.Table = *table
	cfg.Duration = *duration
	cfg.Workers = *workers
	cfg.KeySpace = *keyspace
	cfg.ValueSize = *valuesize
	cfg.Workload = w

	fmt.Printf("sharkdb load test: addr=%s table=%s duration=%v workers=%d keys=%d value-size=%d workload=%s\n",
		*addr, *table, *duration, *workers, *keyspace, *valuesize, *workload)

	report, err := loadtest.Run(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load test: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("--- results ---")
	fmt.Printf("total_ops=%d errors=%d duration=%v\n", report.TotalOps, report.Errors, report.Duration)
	fmt.Printf("ops_per_sec=%.2f\n", report.OpsPerSec)
	fmt.Printf("latency_p50=%v latency_p95=%v latency_p99=%v\n",
		report.P50Latency, report.P95Latency, report.P99Latency)
}
