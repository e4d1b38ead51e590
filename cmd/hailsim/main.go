// Command hailsim runs the taxi-hailing market simulation and reports
// ride throughput per driver strategy.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/akamensky/argparse"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/talgya/hailsim/internal/api"
	"github.com/talgya/hailsim/internal/config"
	"github.com/talgya/hailsim/internal/engine"
	"github.com/talgya/hailsim/internal/entropy"
	"github.com/talgya/hailsim/internal/persistence"
)

type options struct {
	configPath *string
	strategy   *string
	seed       *int
	cars       *int
	riders     *int
	rides      *int
	hail       *float64
	compare    *bool
	dbPath     *string
	serve      *int
	verbose    *bool
}

func main() {
	parser := argparse.NewParser("hailsim", "Grid taxi-hailing market simulation")
	opts := options{
		configPath: parser.String("c", "config", &argparse.Options{Help: "JSON config file (fields override defaults)"}),
		strategy: parser.Selector("s", "strategy", strategyNames(),
			&argparse.Options{Help: "Driver strategy for idle cars"}),
		seed:    parser.Int("S", "seed", &argparse.Options{Help: "Random seed (0 = fresh)"}),
		cars:    parser.Int("n", "cars", &argparse.Options{Help: "Fleet size"}),
		riders:  parser.Int("r", "riders", &argparse.Options{Help: "Rider population"}),
		rides:   parser.Int("m", "rides", &argparse.Options{Help: "Rides to complete before stopping"}),
		hail:    parser.Float("H", "hail", &argparse.Options{Help: "Hail distance"}),
		compare: parser.Flag("C", "compare", &argparse.Options{Help: "Run every strategy with the same seed"}),
		dbPath:  parser.String("d", "db", &argparse.Options{Help: "SQLite file to store results in"}),
		serve:   parser.Int("p", "serve", &argparse.Options{Help: "Serve the HTTP API on this port instead of running"}),
		verbose: parser.Flag("v", "verbose", &argparse.Options{Help: "Debug logging"}),
	}
	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	setupLogging(*opts.verbose)

	if err := run(opts, os.Stdout); err != nil {
		slog.Error("hailsim failed", "error", err)
		os.Exit(1)
	}
}

func strategyNames() []string {
	return lo.Map(config.Strategies, func(s config.Strategy, _ int) string { return string(s) })
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// errUnfinished reports a single run that stopped at the tick cap.
var errUnfinished = errors.New("run did not reach max_rides")

func run(opts options, out io.Writer) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	var db *persistence.DB
	if *opts.dbPath != "" {
		db, err = persistence.Open(*opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", *opts.dbPath)
	}

	if *opts.serve > 0 {
		if db == nil {
			return errors.New("--serve needs --db")
		}
		return serve(db, *opts.serve)
	}

	strategies := []config.Strategy{cfg.DriverStrategy}
	if *opts.compare {
		strategies = config.Strategies
		// Same seed for every strategy so they face the same city.
		if cfg.Seed == 0 {
			cfg.Seed = entropy.Seed()
		}
	}

	results, err := runStrategies(cfg, strategies, db)
	if err != nil {
		return err
	}
	printReport(out, results)

	if !*opts.compare && !results[0].Finished {
		return fmt.Errorf("%w: %d of %d rides after %d ticks",
			errUnfinished, results[0].TotalRides, cfg.MaxRides, results[0].Ticks)
	}
	return nil
}

// runStrategies runs cfg once per strategy. A run stopped by the tick cap is
// kept in the results, marked unfinished, and is not stored.
func runStrategies(cfg config.Config, strategies []config.Strategy, db *persistence.DB) ([]engine.Result, error) {
	results := make([]engine.Result, 0, len(strategies))
	for _, s := range strategies {
		runCfg := cfg
		runCfg.DriverStrategy = s

		res, err := engine.Run(runCfg)
		if errors.Is(err, engine.ErrTickLimit) {
			results = append(results, res)
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, res)

		if db != nil {
			if err := db.SaveRun(res, runCfg); err != nil {
				return nil, err
			}
			if err := db.SaveMeta("last_run_id", res.RunID); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// buildConfig layers the config file and flags over the defaults.
func buildConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if *opts.configPath != "" {
		loaded, err := config.Load(*opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if *opts.strategy != "" {
		cfg.DriverStrategy = config.Strategy(*opts.strategy)
	}
	if *opts.seed != 0 {
		cfg.Seed = int64(*opts.seed)
	}
	if *opts.cars != 0 {
		cfg.NumCars = *opts.cars
	}
	if *opts.riders != 0 {
		cfg.NumRiders = *opts.riders
	}
	if *opts.rides != 0 {
		cfg.MaxRides = *opts.rides
	}
	if *opts.hail != 0 {
		cfg.HailDistance = *opts.hail
	}
	return cfg, cfg.Validate()
}

func serve(db *persistence.DB, port int) error {
	adminKey := os.Getenv("HAILSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("HAILSIM_ADMIN_KEY not set, POST /api/v1/runs disabled")
	}

	srv := &api.Server{DB: db, Port: port, AdminKey: adminKey}
	srv.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	return nil
}

func printReport(w io.Writer, results []engine.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tSTATUS\tRIDES\tTICKS\tRIDES/KTICK\tPER-CAR MEAN\tPER-CAR SD\tSEED\tRUN")
	for _, res := range results {
		tallies := lo.Map(res.PerCar, func(n int, _ int) float64 { return float64(n) })
		mean, sd := stat.MeanStdDev(tallies, nil)
		throughput := 0.0
		if res.Ticks > 0 {
			throughput = float64(res.TotalRides) * 1000 / float64(res.Ticks)
		}
		status := "done"
		if !res.Finished {
			status = "tick limit"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%d\t%s\n",
			res.Strategy,
			status,
			humanize.Comma(int64(res.TotalRides)),
			humanize.Comma(int64(res.Ticks)),
			throughput, mean, sd, res.Seed, res.RunID,
		)
	}
	tw.Flush()

	if len(results) == 1 {
		fmt.Fprintf(w, "\nper-car rides: %v\n", results[0].PerCar)
	}
}
