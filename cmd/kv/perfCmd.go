package kv

import (
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/riakpbc/cmd/util"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for PBC servers",
		Long:    "Runs every benchmark with one connection per worker and reports latency percentiles per operation.",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfBucket           = "__perf"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfDuration         = 5 * time.Second
	perfSkip             = make([]string, 0)
)

// perfTest is one benchmark. op runs a single operation with the client of a worker.
type perfTest struct {
	name  string
	setup func(c riak.IClient) error
	op    func(c riak.IClient, i int) error
}

// perfResult holds the timer of a finished benchmark
type perfResult struct {
	name    string
	skipped bool
	errors  int64
	elapsed time.Duration
	timer   metrics.Timer
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of workers, each with its own connection"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "duration"
	perfTestCmd.Flags().Duration(key, 5*time.Second, util.WrapString("How long every benchmark runs"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfDuration = viper.GetDuration("duration")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for PBC servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d, Duration: %s\n", perfNumThreads, perfDuration)
	fmt.Println()

	fmt.Println("starting tests...")

	largeValue := make([]byte, perfLargeValueSizeKB*1024)
	fill := func(c riak.IClient) error {
		for i := 0; i < perfKeySpread; i++ {
			if _, err := c.Store(riak.NewObject(perfBucket, perfKey(i), []byte("test")), riak.StoreParams{}); err != nil {
				return err
			}
		}
		return nil
	}

	tests := []perfTest{
		{
			name: "ping",
			op:   func(c riak.IClient, _ int) error { return c.Ping() },
		},
		{
			name: "put",
			op: func(c riak.IClient, i int) error {
				_, err := c.Store(riak.NewObject(perfBucket, perfKey(i), []byte("test")), riak.StoreParams{})
				return err
			},
		},
		{
			name: "put-large",
			op: func(c riak.IClient, i int) error {
				_, err := c.Store(riak.NewObject(perfBucket, perfKey(i), largeValue), riak.StoreParams{})
				return err
			},
		},
		{
			name:  "get",
			setup: fill,
			op: func(c riak.IClient, i int) error {
				_, err := c.Fetch(perfBucket, perfKey(i), 0, 0)
				return err
			},
		},
		{
			name:  "get-missing",
			setup: cleanup,
			op: func(c riak.IClient, i int) error {
				_, err := c.Fetch(perfBucket, perfKey(i), 0, 0)
				return err
			},
		},
		{
			name:  "list-keys",
			setup: fill,
			op: func(c riak.IClient, _ int) error {
				_, err := c.ListKeys(perfBucket)
				return err
			},
		},
		{
			name:  "mixed",
			setup: fill,
			op: func(c riak.IClient, i int) error {
				var err error
				switch i % 3 {
				case 0:
					_, err = c.Store(riak.NewObject(perfBucket, perfKey(i), []byte("test")), riak.StoreParams{})
				case 1:
					_, err = c.Fetch(perfBucket, perfKey(i), 0, 0)
				case 2:
					err = c.Ping()
				}
				return err
			},
		},
	}

	registry := metrics.NewRegistry()
	results := make([]perfResult, 0, len(tests))
	for _, test := range tests {
		res, err := runPerfTest(registry, test)
		if err != nil {
			return err
		}
		results = append(results, res)
		printResult(res)
	}

	// remove the test keys
	if err := cleanup(rpcClient); err != nil {
		log.Printf("error removing test keys: %v\n", err)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runPerfTest runs one benchmark with perfNumThreads workers for perfDuration
func runPerfTest(registry metrics.Registry, test perfTest) (perfResult, error) {
	res := perfResult{name: test.name}
	if slices.Contains(perfSkip, test.name) {
		res.skipped = true
		return res, nil
	}

	if test.setup != nil {
		if err := test.setup(rpcClient); err != nil {
			return res, fmt.Errorf("(%s) - setup failed: %w", test.name, err)
		}
	}

	// one connection per worker, a connection serves one request at a time
	clients := make([]riak.IClient, perfNumThreads)
	for i := range clients {
		c, err := util.NewClient()
		if err != nil {
			for _, open := range clients[:i] {
				_ = open.Close()
			}
			return res, fmt.Errorf("(%s) - failed to connect worker %d: %w", test.name, i, err)
		}
		clients[i] = c
	}
	defer func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}()

	res.timer = metrics.GetOrRegisterTimer(test.name, registry)
	errCounter := metrics.GetOrRegisterCounter(test.name+".errors", registry)

	var wg sync.WaitGroup
	start := time.Now()
	deadline := start.Add(perfDuration)
	for w, c := range clients {
		wg.Add(1)
		go func(worker int, c riak.IClient) {
			defer wg.Done()
			for i := worker; time.Now().Before(deadline); i += perfNumThreads {
				opStart := time.Now()
				if err := test.op(c, i); err != nil {
					errCounter.Inc(1)
					log.Printf("(%s) - error: %v\n", test.name, err)
					continue
				}
				res.timer.UpdateSince(opStart)
			}
		}(w, c)
	}
	wg.Wait()

	res.elapsed = time.Since(start)
	res.errors = errCounter.Count()
	return res, nil
}

// cleanup deletes all test keys that exist
func cleanup(c riak.IClient) error {
	keys, err := c.ListKeys(perfBucket)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := c.Delete(perfBucket, k, 0); err != nil {
			return err
		}
	}
	return nil
}

func perfKey(i int) string {
	return "key-" + strconv.Itoa(i%perfKeySpread)
}

// opsPerSec returns the throughput of a finished benchmark
func (r perfResult) opsPerSec() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.timer.Count()) / r.elapsed.Seconds()
}

// printResult prints the result of a benchmark in a formatted way
func printResult(r perfResult) {
	if r.skipped {
		fmt.Printf("%-14sskipped\n", r.name)
		return
	}
	t := r.timer.Snapshot()
	ps := t.Percentiles([]float64{0.5, 0.99})
	fmt.Printf("%-14s%8d ops\tmean %s\tp50 %s\tp99 %s\t%.0f ops/sec\terrors %d\n",
		r.name, t.Count(),
		time.Duration(t.Mean()), time.Duration(ps[0]), time.Duration(ps[1]),
		r.opsPerSec(), r.errors)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	config := util.GetClientConfig()

	// Write header
	header := []string{
		"Test", "Ops", "MeanNs", "P50Ns", "P99Ns", "MaxNs", "OpsPerSec", "Errors", "Skipped",
		"Endpoint", "Transport", "TimeoutSec", "Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, r := range results {
		row := []string{r.name}
		if r.skipped {
			row = append(row, "0", "0", "0", "0", "0", "0", "0", "true")
		} else {
			t := r.timer.Snapshot()
			ps := t.Percentiles([]float64{0.5, 0.99})
			row = append(row,
				strconv.FormatInt(t.Count(), 10),
				fmt.Sprintf("%.0f", t.Mean()),
				fmt.Sprintf("%.0f", ps[0]),
				fmt.Sprintf("%.0f", ps[1]),
				strconv.FormatInt(t.Max(), 10),
				fmt.Sprintf("%.0f", r.opsPerSec()),
				strconv.FormatInt(r.errors, 10),
				"false",
			)
		}
		row = append(row,
			config.Transport.Endpoint,
			viper.GetString("transport"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", r.name, err)
		}
	}

	return nil
}
