package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"factorstd/internal/config"
	"factorstd/internal/files"
	"factorstd/internal/infrastructure"
	"factorstd/internal/services"
	"factorstd/internal/standardize"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags holds the command line overrides. Only flags that were set on
// the command line replace configured values.
type cliFlags struct {
	configPath  string
	input       string
	output      string
	method      string
	columns     string
	columnsFile string
	workers     int
	sheet       string
	logLevel    string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("standardize", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f cliFlags
	fs.StringVar(&f.configPath, "config", "", "path to a YAML config file (defaults to $FACTORSTD_CONFIG or ./factorstd.yaml)")
	fs.StringVar(&f.input, "in", "", "input table (.csv or .xlsx) or a directory of tables")
	fs.StringVar(&f.output, "out", "", "output table, or output directory when -in is a directory; defaults to <in>_std<ext>")
	fs.StringVar(&f.method, "method", "", "normalization method: "+methodNames())
	fs.StringVar(&f.columns, "columns", "", "comma separated feature columns")
	fs.StringVar(&f.columnsFile, "columns-file", "", "file listing one feature column per line, overrides -columns")
	fs.IntVar(&f.workers, "workers", 0, "partitions processed in parallel (0 = GOMAXPROCS)")
	fs.StringVar(&f.sheet, "sheet", "", "worksheet name for Excel input and output (default: first sheet on read, \"factors\" on write)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "standardize: %v\n", err)
		return exitError
	}

	applyFlags(fs, &f, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "standardize: %v\n", err)
		return exitUsage
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "standardize: %v\n", err)
		return exitError
	}
	defer closer.Close()

	if err := standardizeInput(ctx, cfg, logger, stdout, stderr); err != nil {
		logger.ErrorContext(ctx, "standardization failed", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "standardize: %v\n", err)
		return exitError
	}

	return exitOK
}

// applyFlags copies the flags that were set on the command line into cfg
func applyFlags(fs *flag.FlagSet, f *cliFlags, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "in":
			cfg.Standardize.Input = f.input
		case "out":
			cfg.Standardize.Output = f.output
		case "method":
			cfg.Standardize.Method = f.method
		case "columns":
			cfg.Standardize.Columns = strings.Split(f.columns, ",")
			cfg.Standardize.ColumnsFile = ""
		case "columns-file":
			cfg.Standardize.ColumnsFile = f.columnsFile
		case "workers":
			cfg.Standardize.Workers = f.workers
		case "sheet":
			cfg.Standardize.Sheet = f.sheet
		case "log-level":
			cfg.Logging.Level = f.logLevel
		}
	})

	// columns-file wins when both are given
	if f.columnsFile != "" {
		cfg.Standardize.ColumnsFile = f.columnsFile
	}
}

// standardizeInput standardizes one table, or every table of a directory
func standardizeInput(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, traceOut io.Writer) error {
	sc := cfg.Standardize
	if sc.Input == "" {
		return fmt.Errorf("no input table, use -in or standardize.input")
	}
	method, err := sc.ResolveMethod()
	if err != nil {
		return err
	}
	columns, err := sc.ResolveColumns()
	if err != nil {
		return err
	}

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, traceOut, logger)
	if err != nil {
		return err
	}
	tel.SetGlobal()
	defer tel.Shutdown(context.Background())

	svc := services.NewStandardizeService(sc.Workers, logger,
		standardize.WithMeterProvider(tel.MeterProvider),
		standardize.WithTracerProvider(tel.TracerProvider),
	)

	if files.NewDiscovery("").IsDir(sc.Input) {
		results, err := svc.StandardizeDir(ctx, services.DirJob{
			InputDir:  sc.Input,
			OutputDir: sc.Output,
			Sheet:     sc.Sheet,
			Method:    method,
			Columns:   columns,
		})
		for _, r := range results {
			if r.Err == nil {
				printSummary(stdout, r.Output, r.Report)
			}
		}
		return err
	}

	if sc.Output == "" {
		sc.Output = defaultOutput(sc.Input)
	}

	report, err := svc.StandardizeFile(ctx, services.FileJob{
		Input:   sc.Input,
		Output:  sc.Output,
		Sheet:   sc.Sheet,
		Method:  method,
		Columns: columns,
	})
	if err != nil {
		return err
	}

	printSummary(stdout, sc.Output, report)
	return nil
}

// defaultOutput puts the result next to the input: factors.csv → factors_std.csv
func defaultOutput(input string) string {
	return filepath.Join(filepath.Dir(input), files.OutputName(filepath.Base(input)))
}

func methodNames() string {
	methods := standardize.Methods()
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

func printSummary(w io.Writer, output string, report *standardize.Report) {
	fmt.Fprintf(w, "wrote %s\n", output)
	fmt.Fprintf(w, "method=%s columns=%d rows=%d partitions=%d degenerate=%d duration=%s\n",
		report.Method, len(report.Columns), report.Rows, report.Partitions,
		len(report.Degenerate), report.Duration)

	for _, d := range report.Degenerate {
		fmt.Fprintf(w, "  %s %s: %s\n", d.Date, d.Column, d.Reason)
	}
}
