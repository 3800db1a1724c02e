package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/curetrace/engine/applications/runner"
	"github.com/curetrace/engine/domain/specmodel"
	"github.com/curetrace/engine/infrastructure/adapters/csvsource"
	"github.com/curetrace/engine/infrastructure/config"
	"github.com/curetrace/engine/infrastructure/logging"
	"github.com/curetrace/engine/internal/version"
)

func main() {
	code, err := run(context.Background(), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}

// run dispatches the command and returns the process exit code alongside
// any error. A zero code with a non-nil error means "use the default exit
// code 1"; a run subcommand failure instead carries its classified code
// per spec.md §6.4 via runner.ExitCode.
func run(ctx context.Context, args []string) (int, error) {
	defaultConfigRoot := getenv("CURETRACE_CONFIG_ROOT", "./config")

	root := flag.NewFlagSet("curectl", flag.ContinueOnError)
	root.SetOutput(io.Discard)
	configRoot := root.String("config", defaultConfigRoot, "Config root directory holding templates/, specifications/, startup_config.yaml (env CURETRACE_CONFIG_ROOT)")
	showVersion := root.Bool("version", false, "Print curectl build information and exit")
	if err := root.Parse(args); err != nil {
		return 0, usageError(err)
	}

	remaining := root.Args()
	if *showVersion {
		fmt.Println(version.FullVersion())
		return 0, nil
	}
	if len(remaining) == 0 {
		return 0, usageError(errors.New("no command specified"))
	}

	cfg, err := config.LoadStartupConfig(*configRoot)
	if err != nil {
		return 0, err
	}
	logger := logging.New("curectl", cfg.LogLevel, cfg.LogFormat)

	switch remaining[0] {
	case "run":
		return handleRun(ctx, cfg, logger, remaining[1:])
	case "templates":
		return 0, handleTemplates(cfg, remaining[1:])
	case "specs":
		return 0, handleSpecs(cfg, remaining[1:])
	case "cache":
		return 0, handleCache(cfg, remaining[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return 0, nil
	default:
		return 0, usageError(fmt.Errorf("unknown command %q", remaining[0]))
	}
}

func usageError(err error) error {
	printRootUsage()
	return err
}

func printRootUsage() {
	fmt.Println(`curetrace CLI (curectl)

Usage:
  curectl [global flags] <command> [subcommand] [flags]

Global Flags:
  --config     Config root directory (env CURETRACE_CONFIG_ROOT, default ./config)
  --version    Print CLI build information and exit

Commands:
  run              Execute a workflow against a sensor CSV and print the formatted report
  templates list   List registered calculation/rule/stage templates
  specs list       List registered specification ids
  cache stats      Show the workflow plan cache's configured max size`)
}

// ---------------------------------------------------------------------
// run

func handleRun(ctx context.Context, cfg config.StartupConfig, logger *logging.Logger, args []string) (int, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var specID, csvPath, groupingPath, timestampColumn, processID, seriesID, calculationDate string
	var samplingInterval float64
	fs.StringVar(&specID, "spec", "", "Specification ID (required)")
	fs.StringVar(&csvPath, "csv", "", "Path to the sensor data CSV file (required)")
	fs.StringVar(&groupingPath, "grouping", "", "Path to a JSON sensor-grouping file: {group: [channel, ...]} (required)")
	fs.StringVar(&timestampColumn, "timestamp-column", "timestamp", "Name of the CSV column holding unix-second timestamps")
	fs.StringVar(&processID, "process-id", "", "Process ID substituted into sink path templates")
	fs.StringVar(&seriesID, "series-id", "", "Series ID substituted into sink path templates")
	fs.StringVar(&calculationDate, "calculation-date", "", "Calculation date substituted into sink path templates")
	fs.Float64Var(&samplingInterval, "sampling-interval", 1.0, "Minutes per sample, used for stage-duration features")
	if err := fs.Parse(args); err != nil {
		return 0, usageError(err)
	}
	if specID == "" || csvPath == "" || groupingPath == "" {
		return 0, usageError(errors.New("--spec, --csv, and --grouping are required"))
	}

	grouping, err := loadSensorGrouping(groupingPath)
	if err != nil {
		return 0, fmt.Errorf("load grouping: %w", err)
	}

	source := csvsource.New(csvPath, timestampColumn)
	readResult, err := source.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("read csv: %w", err)
	}
	raw := rawDataFromChannels(readResult.Data, timestampColumn)

	r, err := runner.New(cfg, logger)
	if err != nil {
		return 0, fmt.Errorf("initialize runner: %w", err)
	}

	resp := r.Run(ctx, runner.Request{
		WorkflowID:       specID,
		SpecificationID:  specID,
		SensorGrouping:   grouping,
		ProcessID:        processID,
		SeriesID:         seriesID,
		CalculationDate:  calculationDate,
		RawData:          raw,
		SamplingInterval: samplingInterval,
	})

	if resp.Preview != nil {
		prettyPrint(resp.Preview)
	}
	code := runner.ExitCode(resp)
	if resp.Status != "completed" {
		return code, errors.New(resp.Error)
	}
	return code, nil
}

func loadSensorGrouping(path string) (specmodel.SensorGrouping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var grouping specmodel.SensorGrouping
	if err := json.Unmarshal(data, &grouping); err != nil {
		return nil, err
	}
	return grouping, nil
}

// rawDataFromChannels converts an adapter's flat channel map into the
// ordered RawData shape the engine operates on, deriving the integer
// timestamp series from the timestamp column's float samples.
func rawDataFromChannels(data map[string][]float64, timestampColumn string) *specmodel.RawData {
	tsSamples := data[timestampColumn]
	timestamps := make([]int64, len(tsSamples))
	for i, v := range tsSamples {
		timestamps[i] = int64(v)
	}
	return &specmodel.RawData{
		Channels:         data,
		TimestampChannel: timestampColumn,
		Timestamps:       timestamps,
		Length:           len(tsSamples),
	}
}

func prettyPrint(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(data))
}

// ---------------------------------------------------------------------
// templates / specs / cache

func handleTemplates(cfg config.StartupConfig, args []string) error {
	if len(args) == 0 || args[0] != "list" {
		fmt.Println(`Usage:
  curectl templates list`)
		if len(args) == 0 {
			return nil
		}
		return fmt.Errorf("unknown templates subcommand %q", args[0])
	}
	templates := config.NewTemplateRegistry(cfg.TemplatesRoot)
	if err := templates.Load(); err != nil {
		return err
	}
	fmt.Println("Families:", templates.Families())
	fmt.Println("Calculation templates:", templates.ListTemplates(specmodel.KindCalculation))
	fmt.Println("Rule templates:", templates.ListTemplates(specmodel.KindRule))
	fmt.Println("Stage templates:", templates.ListTemplates(specmodel.KindStage))
	return nil
}

func handleSpecs(cfg config.StartupConfig, args []string) error {
	if len(args) == 0 || args[0] != "list" {
		fmt.Println(`Usage:
  curectl specs list`)
		if len(args) == 0 {
			return nil
		}
		return fmt.Errorf("unknown specs subcommand %q", args[0])
	}
	specs := config.NewSpecificationRegistry(cfg.SpecificationsRoot)
	if err := specs.Load(); err != nil {
		return err
	}
	ids, err := specs.ListSpecifications()
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func handleCache(cfg config.StartupConfig, args []string) error {
	if len(args) == 0 || args[0] != "stats" {
		fmt.Println(`Usage:
  curectl cache stats`)
		if len(args) == 0 {
			return nil
		}
		return fmt.Errorf("unknown cache subcommand %q", args[0])
	}
	fmt.Printf("configured max size: %d (a fresh CLI process starts with an empty cache; stats are process-scoped)\n", cfg.WorkflowCacheSize)
	return nil
}

// ---------------------------------------------------------------------

func getenv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
