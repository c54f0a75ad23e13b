/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ecopia-map/pointcloud_core/internal/config"
	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/ecopia-map/pointcloud_core/pkg"
	"github.com/ecopia-map/pointcloud_core/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/pointcloud_core/pkg/classification"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
	"github.com/ecopia-map/pointcloud_core/tools"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const VERSION = "0.4.0"

const logo = `
             _       _       _                 _
 _ __   ___ (_)_ __ | |_ ___| | ___  _   _  __| |
| '_ \ / _ \| | '_ \| __/ __| |/ _ \| | | |/ _  |
| |_) | (_) | | | | | || (__| | (_) | |_| | (_| |
| .__/ \___/|_|_| |_|\__\___|_|\___/ \__,_|\__,_|
|_|  Classified point cloud loader written in golang
     Copyright YYYY - Ecopia Map
`

func main() {
	flagsGlobal := tools.ParseFlagsGlobal()
	defer glog.Flush()

	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 || *flagsGlobal.Help {
		showHelp()
		if len(args) == 0 && !*flagsGlobal.Help {
			glog.Exit("Please specify a subcommand [load|summary|watch|gradients|classes].")
		}
		return
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandLoad:
		mainCommandLoad(args)
	case tools.CommandSummary:
		mainCommandSummary(args)
	case tools.CommandWatch:
		mainCommandWatch(args)
	case tools.CommandGradients:
		mainCommandGradients(args)
	case tools.CommandClasses:
		mainCommandClasses()
	default:
		glog.Exitf("Unrecognized command [%q]. Command must be one of [load|summary|watch|gradients|classes]", cmd)
	}
}

func mainCommandLoad(args []string) {
	flags := tools.ParseFlagsForCommandLoad(args)
	if *flags.Help {
		showHelp()
		return
	}
	setupLogger(flags.IngestFlags)

	cfg, opts := loadOptions(flags.IngestFlags)
	if msg, res := validateInput(opts, false); !res {
		glog.Exit("Error parsing input parameters: " + msg)
	}
	colorMode := model.ParseColorMode(*flags.ColorMode)
	if *flags.ColorMode != "" && colorMode == "" {
		glog.Exit("Error parsing input parameters: color-mode should be one of FLAT, RGB or GRADIENT")
	}

	ingestor := newIngestor(cfg, opts)
	defer ingestor.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer timeTrack(time.Now(), "load")
	session := pkg.NewSession()
	res, err := session.LoadFile(ctx, ingestor, opts.Input)
	if err != nil {
		glog.Exit("Error while loading: ", err)
	}
	if colorMode != "" {
		if err := res.Model.SetColorMode(colorMode); err != nil {
			glog.Exit(err)
		}
	}

	report := struct {
		Summary model.Summary `json:"summary"`
		Stats   pkg.Stats     `json:"stats"`
	}{session.Current().Summary(), res.Stats}
	if err := writeOutput(*flags.Output, tools.FmtIndentedJSONString(report)); err != nil {
		glog.Exit(err)
	}
	tools.LogOutput("Load Completed")
}

func mainCommandSummary(args []string) {
	flags := tools.ParseFlagsForCommandSummary(args)
	if *flags.Help {
		showHelp()
		return
	}
	setupLogger(flags.IngestFlags)

	cfg, opts := loadOptions(flags.IngestFlags)
	opts.FolderProcessing = *flags.FolderProcessing
	if flags.IsSet("recursive", "r") {
		opts.Recursive = *flags.RecursiveFolderProcessing
	}
	if msg, res := validateInput(opts, opts.FolderProcessing); !res {
		glog.Exit("Error parsing input parameters: " + msg)
	}
	workers := cfg.Summary.Workers
	if flags.IsSet("workers", "w") {
		workers = *flags.Workers
	}

	ingestor := newIngestor(cfg, opts)
	defer ingestor.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer timeTrack(time.Now(), "summary")
	reports, err := pkg.NewSummarizer(tools.NewStandardFileFinder(), ingestor, workers).RunSummary(ctx, opts)
	if err != nil {
		glog.Exit("Error while summarizing: ", err)
	}
	fmt.Println(tools.FmtIndentedJSONString(reports))

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
		}
	}
	tools.LogOutput(fmt.Sprintf("Summary Completed, %d of %d files failed", failed, len(reports)))
}

func mainCommandWatch(args []string) {
	flags := tools.ParseFlagsForCommandWatch(args)
	if *flags.Help {
		showHelp()
		return
	}
	setupLogger(flags.IngestFlags)

	cfg, opts := loadOptions(flags.IngestFlags)
	if msg, res := validateInput(opts, false); !res {
		glog.Exit("Error parsing input parameters: " + msg)
	}
	delay := cfg.Watch.Debounce
	if flags.IsSet("debounce", "d") {
		delay = *flags.Debounce
	}

	ingestor := newIngestor(cfg, opts)
	defer ingestor.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := pkg.NewSession()
	defer session.Close()
	watcher := pkg.NewWatcher(session, ingestor, opts.Input, delay)
	watcher.OnLoad = func(res *pkg.Result, err error) {
		if err == nil {
			fmt.Println(tools.FmtJSONString(res.Model.Summary()))
		}
	}

	tools.LogOutput("Watching", opts.Input)
	if err := watcher.Run(ctx); err != nil {
		glog.Exit("Error while watching: ", err)
	}
}

func mainCommandGradients(args []string) {
	flagCommand := flag.NewFlagSet("command-gradients", flag.ExitOnError)
	configPath := flagCommand.String("config", "", "Path of the YAML configuration file.")
	_ = flagCommand.Parse(args)

	cfg, err := config.Load(*configPath, tools.GetRootFolder())
	if err != nil {
		glog.Exit(err)
	}
	registry, err := cfg.Registry()
	if err != nil {
		glog.Exit(err)
	}

	for _, name := range registry.Names() {
		ramp, _ := registry.Lookup(name)
		stops := make([]string, 0, ramp.Len())
		for _, stop := range ramp.Stops() {
			stops = append(stops, fmt.Sprintf("%.3f:%s", stop.Boundary, stop.Color.HexString()))
		}
		fmt.Printf("%-14s %s\n", name, strings.Join(stops, " "))
	}
}

func mainCommandClasses() {
	for _, class := range classification.All() {
		fmt.Printf("%d %-12s %-22s %s %.2f\n", class.Code, class.Key, class.Name, class.BaseColor.HexString(), class.PointSize)
	}
}

// loadOptions merges the defaults, the configuration file and the flags given on the command line
func loadOptions(flags tools.IngestFlags) (*config.Config, *ingest.Options) {
	cfg, err := config.Load(*flags.Config, tools.GetRootFolder())
	if err != nil {
		glog.Exit(err)
	}
	applyLogging(cfg.Logging)

	opts, err := cfg.Options()
	if err != nil {
		glog.Exit("Error parsing configuration: ", err)
	}
	opts.Input = *flags.Input
	if flags.IsSet("srid", "e") {
		opts.SourceSrid = *flags.Srid
	}
	if flags.IsSet("target-srid") {
		opts.TargetSrid = *flags.TargetSrid
	}
	if flags.IsSet("zoffset", "z") {
		opts.ZOffset = *flags.ZOffset
	}
	if flags.IsSet("color-depth", "b") {
		if opts.ColorDepth = ingest.ParseColorDepth(*flags.ColorDepth); opts.ColorDepth == "" {
			glog.Exit("Error parsing input parameters: color-depth should be one of AUTO, 8 or 16")
		}
	}
	if flags.IsSet("gradient", "g") {
		opts.Gradient = *flags.Gradient
	}
	if flags.IsSet("gradient-source") {
		if opts.GradientSource = model.ParseGradientSource(*flags.GradientSource); opts.GradientSource == "" {
			glog.Exit("Error parsing input parameters: gradient-source should be HEIGHT or INTENSITY")
		}
	}
	if flags.IsSet("max-reported") {
		opts.MaxReportedMalformed = *flags.MaxReportedMalformed
	}

	glog.V(1).Infoln("options", tools.FmtJSONString(opts))
	return cfg, opts
}

func newIngestor(cfg *config.Config, opts *ingest.Options) *pkg.Ingestor {
	registry, err := cfg.Registry()
	if err != nil {
		glog.Exit("Error parsing configuration: ", err)
	}
	if _, err := registry.Lookup(opts.Gradient); err != nil {
		glog.Exitf("Error parsing input parameters: %v, available gradients are %s", err, strings.Join(registry.Names(), ", "))
	}
	algorithmManager, err := std_algorithm_manager.NewAlgorithmManager(opts, registry)
	if err != nil {
		glog.Exit("Error parsing input parameters: ", err)
	}
	return pkg.NewIngestor(opts, algorithmManager)
}

// applyLogging forwards the logging section to the glog flags not given on the command line
func applyLogging(lc config.LoggingConfig) {
	visited := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	if !visited["v"] && lc.Verbosity > 0 {
		_ = flag.Set("v", strconv.Itoa(lc.Verbosity))
	}
	if !visited["logtostderr"] && lc.ToStderr {
		_ = flag.Set("logtostderr", "true")
	}
}

func setupLogger(flags tools.IngestFlags) {
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}
}

// Validates the input options provided to the command line tool checking
// that the input file or folder exists
func validateInput(opts *ingest.Options, folder bool) (string, bool) {
	if opts.Input == "" {
		return "Input file/folder not specified", false
	}
	info, err := os.Stat(opts.Input)
	if os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	if err != nil {
		return err.Error(), false
	}
	if folder != info.IsDir() {
		if folder {
			return "Input must be a folder when folder processing is enabled", false
		}
		return "Input must be a file", false
	}
	return "", true
}

func writeOutput(path string, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	return errors.Wrapf(os.WriteFile(path, []byte(content+"\n"), 0644), "writing %s", path)
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("pointcloud loads classified point clouds from LAS or text files into centered, per class render buffers")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Commands: load, summary, watch, gradients, classes. Use <command> -help for the command flags.")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
