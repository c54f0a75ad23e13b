package tools

import (
	"flag"
	"time"

	"github.com/golang/glog"
)

const (
	CommandLoad      = "load"
	CommandSummary   = "summary"
	CommandWatch     = "watch"
	CommandGradients = "gradients"
	CommandClasses   = "classes"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

// IngestFlags are shared by every command that ingests point files
type IngestFlags struct {
	Input                *string  `json:"input"`
	Config               *string  `json:"config"`
	Srid                 *int     `json:"srid"`
	TargetSrid           *int     `json:"target_srid"`
	ZOffset              *float64 `json:"zoffset"`
	ColorDepth           *string  `json:"color_depth"`
	Gradient             *string  `json:"gradient"`
	GradientSource       *string  `json:"gradient_source"`
	MaxReportedMalformed *int     `json:"max_reported_malformed"`
	Silent               *bool    `json:"silent"`
	LogTimestamp         *bool    `json:"timestamp"`
	Help                 *bool    `json:"help"`

	visited map[string]bool
}

// IsSet reports whether any of the given flag names appeared on the command line
func (f IngestFlags) IsSet(names ...string) bool {
	for _, name := range names {
		if f.visited[name] {
			return true
		}
	}
	return false
}

type FlagsForCommandLoad struct {
	IngestFlags
	ColorMode *string `json:"color_mode"`
	Output    *string `json:"output"`
}

type FlagsForCommandSummary struct {
	IngestFlags
	FolderProcessing          *bool `json:"folder"`
	RecursiveFolderProcessing *bool `json:"recursive"`
	Workers                   *int  `json:"workers"`
}

type FlagsForCommandWatch struct {
	IngestFlags
	Debounce *time.Duration `json:"debounce"`
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of the point cloud tool.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineIngestFlags(flagCommand *flag.FlagSet) IngestFlags {
	return IngestFlags{
		Input:                defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input point file (.las, or text records)."),
		Config:               defineStringFlagCommand(flagCommand, "config", "c", "", "Path of the YAML configuration file. Defaults to pointcloud.yaml in the working or executable folder."),
		Srid:                 defineIntFlagCommand(flagCommand, "srid", "e", 4326, "EPSG srid code of input points."),
		TargetSrid:           defineIntFlagCommand(flagCommand, "target-srid", "", 0, "EPSG srid code to reproject points to. 0 keeps the input reference system."),
		ZOffset:              defineFloat64FlagCommand(flagCommand, "zoffset", "z", 0, "Vertical offset to apply to points, in meters."),
		ColorDepth:           defineStringFlagCommand(flagCommand, "color-depth", "b", "AUTO", "Color depth of LAS colors: 'AUTO', '8' or '16'. AUTO assumes 8 bit colors when no channel exceeds 255."),
		Gradient:             defineStringFlagCommand(flagCommand, "gradient", "g", "RAINBOW", "Name of the gradient selected on the loaded model."),
		GradientSource:       defineStringFlagCommand(flagCommand, "gradient-source", "", "HEIGHT", "Value mapped through the gradient, 'HEIGHT' or 'INTENSITY'."),
		MaxReportedMalformed: defineIntFlagCommand(flagCommand, "max-reported", "", 10, "Number of malformed records reported individually. Further ones are only counted."),
		Silent:               defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages."),
		LogTimestamp:         defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages."),
		Help:                 defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help."),
	}
}

func parseCommand(flagCommand *flag.FlagSet, args []string, flags *IngestFlags) {
	glog.V(2).Infoln(flagCommand.Name(), FmtJSONString(args))

	// ExitOnError flag sets never return an error
	_ = flagCommand.Parse(args)

	flags.visited = make(map[string]bool)
	flagCommand.Visit(func(f *flag.Flag) {
		flags.visited[f.Name] = true
	})
}

func ParseFlagsForCommandLoad(args []string) FlagsForCommandLoad {
	flagCommand := flag.NewFlagSet("command-load", flag.ExitOnError)

	flags := FlagsForCommandLoad{
		IngestFlags: defineIngestFlags(flagCommand),
		ColorMode:   defineStringFlagCommand(flagCommand, "color-mode", "m", "", "Color mode to switch to after loading: 'FLAT', 'RGB' or 'GRADIENT'. Empty keeps the default mode."),
		Output:      defineStringFlagCommand(flagCommand, "output", "o", "", "Writes the model summary to this file instead of the standard output."),
	}
	parseCommand(flagCommand, args, &flags.IngestFlags)
	return flags
}

func ParseFlagsForCommandSummary(args []string) FlagsForCommandSummary {
	flagCommand := flag.NewFlagSet("command-summary", flag.ExitOnError)

	flags := FlagsForCommandSummary{
		IngestFlags:               defineIngestFlags(flagCommand),
		FolderProcessing:          defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all point files from input folder. Input must be a folder if specified"),
		RecursiveFolderProcessing: defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all point files inside the subfolders"),
		Workers:                   defineIntFlagCommand(flagCommand, "workers", "w", 0, "Number of files ingested concurrently. 0 uses one worker per CPU."),
	}
	parseCommand(flagCommand, args, &flags.IngestFlags)
	return flags
}

func ParseFlagsForCommandWatch(args []string) FlagsForCommandWatch {
	flagCommand := flag.NewFlagSet("command-watch", flag.ExitOnError)

	flags := FlagsForCommandWatch{
		IngestFlags: defineIngestFlags(flagCommand),
		Debounce:    defineDurationFlagCommand(flagCommand, "debounce", "d", 500*time.Millisecond, "Changes closer than this trigger a single reload."),
	}
	parseCommand(flagCommand, args, &flags.IngestFlags)
	return flags
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineDurationFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue time.Duration, usage string) *time.Duration {
	var output time.Duration
	flagCommand.DurationVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.DurationVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
