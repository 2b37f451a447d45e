package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/voltaicdb/tscore/internal/config"
	"github.com/voltaicdb/tscore/internal/decomposer"
	"github.com/voltaicdb/tscore/internal/engine"
	"github.com/voltaicdb/tscore/internal/logging"
	"github.com/voltaicdb/tscore/internal/statsreporter"
	"github.com/voltaicdb/tscore/internal/tstypes"
	"github.com/voltaicdb/tscore/internal/wire"
)

func main() {
	configPath := flag.String("config", "", "path to engine config file (optional; defaults are used if absent)")
	sourcesFlag := flag.String("sources", "cpu.load,mem.used,disk.iops", "comma-separated source names to request")
	windowSeconds := flag.Int64("window", 60, "time window in seconds, ending now")
	statsSchedule := flag.String("stats-schedule", "", "cron schedule for periodic stats logging (empty disables it)")
	flag.Parse()

	cfg := config.DefaultEngineConfig()
	if *configPath != "" {
		loaded, err := config.LoadEngineConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	} else if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error validating default config: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	defer logCloser.Close()

	sources := splitCSV(*sourcesFlag)
	dialer := &wire.MemoryDialer{Respond: demoResponder}
	source := wire.NewStreamSource(dialer, logger)

	eng := engine.New(source, logger)
	if err := eng.ApplyConfig(cfg.ToExternal()); err != nil {
		logger.Error("applying config", "error", err)
		os.Exit(1)
	}

	var reporter *statsreporter.Reporter
	if *statsSchedule != "" {
		var err error
		reporter, err = statsreporter.New(eng, *statsSchedule, logger)
		if err != nil {
			logger.Error("building stats reporter", "error", err)
			os.Exit(1)
		}
		reporter.Start()
		defer reporter.Stop()
	}

	now := time.Now().UnixNano()
	req := engine.Request{
		RequestID: "demo-1",
		Sources:   sources,
		TimeRange: tstypes.NewTimeInterval(now-*windowSeconds*1e9, now),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	agg, err := eng.ProcessRequest(ctx, req)
	if err != nil {
		logger.Error("processing request failed", "error", err)
		os.Exit(1)
	}

	printAggregate(agg)
}

// demoResponder stands in for a real server: it reports 10 uniformly
// spaced points across each sub-request's time range (period = range
// duration / 10) for every requested source, exercising the Disjoint
// sampled-block path end to end.
func demoResponder(sub decomposer.Request) ([]tstypes.ResponseMessage, error) {
	const count = 10
	key := tstypes.NewClockKey(sub.TimeRange.Start, sub.TimeRange.DurationNanos()/count, count)
	cols := make([]tstypes.DataColumn, len(sub.Sources))
	for i, name := range sub.Sources {
		values := make([]any, count)
		for j := range values {
			values[j] = float64(i*100 + j)
		}
		cols[i] = tstypes.DataColumn{SourceName: name, Type: tstypes.TypeFloat64, Values: values}
	}
	return []tstypes.ResponseMessage{tstypes.NewMessage(key, cols, 0)}, nil
}

func printAggregate(agg *tstypes.SampledAggregate) {
	fmt.Printf("request %s: %d blocks, %d samples, sources: %v\n",
		agg.RequestID, len(agg.Blocks()), agg.TotalSampleCount(), agg.SourceNames())
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
