package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/BibekPathak/shark-db/pkg/client"
)

// Workload is the operation mix: put-only, get-only, scan-heavy, or mixed.
type Workload string

const (
	WorkloadPut   Workload = "put"
	WorkloadGet   Workload = "get"
	WorkloadScan  Workload = "scan"
	WorkloadMixed Workload = "mixed"
)

// Config configures a load test run.
type Config struct {
	BaseURL   string        // sharkdb server base URL (e.g. "http://127.0.0.1:8090")
	Table     string        // table the workers operate on (created if absent)
	Duration  time.Duration // how long to run
	Workers   int           // concurrent workers in the pool
	KeySpace  int           // number of distinct keys (0 = 10000)
	ValueSize int           // value size in bytes (0 = 64)
	Workload  Workload
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		Table:     "loadtest",
		Duration:  10 * time.Second,
		Workers:   50,
		KeySpace:  10000,
		ValueSize: 64,
		Workload:  WorkloadMixed,
	}
}

// Run creates the target table if needed, drives Workers goroutines from a
// shared pool for Duration, and returns the aggregated report.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.KeySpace <= 0 {
		cfg.KeySpace = 10000
	}
	if cfg.ValueSize <= 0 {
		cfg.ValueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Table == "" {
		cfg.Table = "loadtest"
	}

	c := client.New(cfg.BaseURL)
	if err := c.CreateTable(ctx, cfg.Table); err != nil && !errors.Is(err, client.ErrConflict) {
		return nil, fmt.Errorf("loadtest: create table: %w", err)
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("loadtest: pool: %w", err)
	}
	defer pool.Release()

	stats := NewStats()
	value := make([]byte, cfg.ValueSize)
	rand.Read(value)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		workerID := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			runWorker(ctx, cfg, workerID, value, stats, start)
		}); err != nil {
			wg.Done()
			stats.Record(0, err)
		}
	}
	wg.Wait()
	elapsed := time.Since(start)
	report := stats.Report(elapsed)
	return &report, nil
}

func runWorker(ctx context.Context, cfg Config, workerID int, value []byte, stats *Stats, start time.Time) {
	c := client.New(cfg.BaseURL)
	rng := rand.New(rand.NewSource(int64(workerID)))
	end := start.Add(cfg.Duration)

	for time.Now().Before(end) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		key := fmt.Sprintf("k%06d", rng.Intn(cfg.KeySpace))
		opStart := time.Now()
		err := runOp(ctx, c, cfg, rng, key, value)
		stats.Record(time.Since(opStart), err)
	}
}

func runOp(ctx context.Context, c *client.Client, cfg Config, rng *rand.Rand, key string, value []byte) error {
	op := cfg.Workload
	if op == WorkloadMixed {
		switch rng.Intn(10) {
		case 0:
			op = WorkloadScan
		case 1, 2, 3, 4:
			op = WorkloadPut
		default:
			op = WorkloadGet
		}
	}
	switch op {
	case WorkloadPut:
		_, err := c.Put(ctx, cfg.Table, key, value)
		return err
	case WorkloadGet:
		_, err := c.Get(ctx, cfg.Table, key)
		if errors.Is(err, client.ErrNotFound) {
			return nil
		}
		return err
	case WorkloadScan:
		_, err := c.Scan(ctx, cfg.Table, key, 100)
		return err
	}
	_, err := c.Put(ctx, cfg.Table, key, value)
	return err
}
