package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/sjogrenm/ZFLStats/internal"
	"github.com/sjogrenm/ZFLStats/internal/config"
	"github.com/sjogrenm/ZFLStats/internal/log"
	flag "github.com/spf13/pflag"
)

func usage() {
	fmt.Printf("Usage: zflstats [OPTION]... [FILE_OR_DIR]\n\n")
	fmt.Printf("Decodes the Blood Bowl 3 replay FILE_OR_DIR (.bbr), or every replay in the\n")
	fmt.Printf("directory FILE_OR_DIR, and derives per player statistics which are printed to\n")
	fmt.Printf("the console and optionally written as csv or json.\n")

	fmt.Printf("\n")
	flag.PrintDefaults()
	fmt.Printf("\n")
}

func main() {
	// selection flags
	coach := flag.StringP("coach", "c", "", "Only collect replays where a coach name matches\nthis case-insensitive regular expression.")
	team := flag.StringP("team", "t", "", "Only collect replays where a team name matches\nthis case-insensitive regular expression.")
	pattern := flag.String("pattern", internal.DefaultPattern, "Glob matched against file names when FILE_OR_DIR\nis a directory.")
	workers := flag.IntP("workers", "w", 4, "Number of replays decoded in parallel.")

	// output flags
	output := flag.StringP("output", "o", "", "Write the statistics of every replay to this file.")
	auto := flag.Bool("auto", false, "Write the statistics of each replay beside it, as\n'<replay>.csv' or '<replay>.json'.")
	silent := flag.Bool("silent", false, "Do not print the console report.")
	format := flag.StringP("format", "f", config.FormatCSV, "Output format, one of:\n csv  = ';' separated player rows\n json = one document per replay")
	dumpXML := flag.Bool("dump-xml", false, "Write the decoded replay markup to '<replay>.xml'.")

	// ambient flags
	configPath := flag.String("config", "", "Path of a TOML configuration file. Flags that are\nset explicitly take precedence over it.")
	logLevel := flag.String("log-level", "info", "Log level: trace, debug, info, warn or error.")
	logFile := flag.String("log-file", "", "Also write the log to this file.")
	writeConfigPath := flag.String("write-config", "", "Write the effective configuration to this TOML file\nand exit.")

	flag.CommandLine.SortFlags = false
	flag.ErrHelp = fmt.Errorf("version: %s", internal.Version)
	flag.Usage = usage
	flag.Parse()

	cfg := config.DefaultConfig()

	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(2)
		}

		cfg = loaded
	}

	overrideString(&cfg.Input.Coach, "coach", *coach)
	overrideString(&cfg.Input.Team, "team", *team)
	overrideString(&cfg.Input.Pattern, "pattern", *pattern)
	overrideInt(&cfg.Input.Workers, "workers", *workers)
	overrideString(&cfg.Output.File, "output", *output)
	overrideBool(&cfg.Output.Auto, "auto", *auto)
	overrideBool(&cfg.Output.Silent, "silent", *silent)
	overrideString(&cfg.Output.Format, "format", *format)
	overrideBool(&cfg.Output.DumpDecoded, "dump-xml", *dumpXML)
	overrideString(&cfg.Log.Level, "log-level", *logLevel)
	overrideString(&cfg.Log.File, "log-file", *logFile)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}

	closer := log.MustCreateLogger(os.Stderr, cfg.Log.File, level, internal.Version)
	defer closer()

	if *writeConfigPath != "" {
		if errWrite := writeConfig(cfg, *writeConfigPath); errWrite != nil {
			slog.Error("Failed to write configuration", log.ErrAttr(errWrite))
			closer()
			os.Exit(1)
		}

		return
	}

	// process the file argument
	if len(flag.Args()) != 1 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if errRun := run(ctx, flag.Args()[0], cfg); errRun != nil {
		slog.Error("Failed to collect replays", log.ErrAttr(errRun))
		closer()
		os.Exit(1)
	}
}

func overrideString(dst *string, name, value string) {
	if flag.CommandLine.Changed(name) {
		*dst = value
	}
}

func overrideInt(dst *int, name string, value int) {
	if flag.CommandLine.Changed(name) {
		*dst = value
	}
}

func overrideBool(dst *bool, name string, value bool) {
	if flag.CommandLine.Changed(name) {
		*dst = value
	}
}

var errReplaysFailed = errors.New("some replays could not be collected")

func run(ctx context.Context, path string, cfg *config.Config) error {
	filter, err := internal.NewFilter(cfg.Input.Coach, cfg.Input.Team)
	if err != nil {
		return err
	}

	var bar *pb.ProgressBar

	opts := internal.CollectOptions{
		Filter:      filter,
		Workers:     cfg.Input.Workers,
		DumpDecoded: cfg.Output.DumpDecoded,
		Done: func(string) {
			if bar != nil {
				bar.Increment()
			}
		},
	}

	batch, err := internal.Discover(ctx, path, cfg.Input.Pattern, opts)
	if err != nil {
		return err
	}

	var outFile *os.File
	if cfg.Output.File != "" {
		if outFile, err = os.Create(cfg.Output.File); err != nil {
			return err
		}
		defer log.Closer(outFile)
	}

	var console io.Writer = os.Stdout
	if cfg.Output.Silent {
		console = io.Discard
	}

	if !batch.Single && !cfg.Output.Silent {
		tmpl := `{{ green "Progress:" }} {{ bar . "[" "#" "#" "." "]"}} {{counters .}} {{percent .}}`
		bar = pb.ProgressBarTemplate(tmpl).Start64(int64(len(batch.Files)))
		defer bar.Finish()
	}

	slog.Debug("Collecting replays", slog.String("path", path), slog.Int("files", len(batch.Files)))

	collected, failed := 0, 0

	for result := range batch.Results {
		if result.Err != nil {
			failed++

			slog.Error("Failed to collect replay", slog.String("file", result.Path), log.ErrAttr(result.Err))

			continue
		}

		collected++

		if errWrite := internal.WriteReport(console, result.Stats); errWrite != nil {
			return errWrite
		}

		if outFile != nil {
			if errWrite := writeStats(outFile, result.Stats, cfg.Output.Format); errWrite != nil {
				return errWrite
			}
		}

		if cfg.Output.Auto {
			if errWrite := writeAuto(result.Path, result.Stats, cfg.Output.Format); errWrite != nil {
				return errWrite
			}
		}
	}

	slog.Info("Collected replays", slog.Int("collected", collected), slog.Int("failed", failed),
		slog.Int("skipped", len(batch.Files)-collected-failed))

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errReplaysFailed, failed, len(batch.Files))
	}

	return nil
}

func writeStats(w io.Writer, stats *internal.MatchStats, format string) error {
	if format == config.FormatJSON {
		return internal.WriteJSON(w, stats)
	}

	return internal.WriteCSV(w, stats)
}

// writeAuto writes the statistics of a replay beside it, replacing the
// replay extension with the format
func writeAuto(replayPath string, stats *internal.MatchStats, format string) error {
	outputPath := strings.TrimSuffix(replayPath, filepath.Ext(replayPath)) + "." + format

	autoFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer log.Closer(autoFile)

	slog.Debug("Writing statistics", slog.String("file", outputPath))

	return writeStats(autoFile, stats, format)
}

// writeConfig saves the effective configuration, so a run can be repeated
// with '--config'
func writeConfig(cfg *config.Config, path string) error {
	if err := cfg.Save(path); err != nil {
		return err
	}

	slog.Info("Wrote configuration", slog.String("file", path))

	return nil
}
