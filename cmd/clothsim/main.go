package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/scene"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string

	// shared simulation overrides
	preset     string
	frames     int
	sampleRate int
	gridSize   int
	solverName string
	iterations int
	subSteps   int
	release    string

	logger   = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, TimeFormat: time.Kitchen, Prefix: "clothsim"})
	registry = scene.NewRegistry()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clothsim",
		Short:         "interactive mass-spring cloth simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(".env"); err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				dataDir = config.Env(config.EnvData, dataDir)
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = config.Env(config.EnvLogLevel, logLevel)
			}
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(menuEntries(), openEntry, viz.Options{})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or gcfg)")

	runCmd := &cobra.Command{
		Use:   "run [demo]",
		Short: "run a demo headless and store the sampled frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&sampleRate, "sample", 10, "store every n-th frame")

	liveCmd := &cobra.Command{
		Use:   "live [demo]",
		Short: "run a demo in the terminal with mouse interaction",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().StringVar(&gifPath, "gif", "clothsim.gif", "GIF recording output")

	serveCmd := &cobra.Command{
		Use:   "serve [demo]",
		Short: "stream a demo over websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "replay a scripted interaction scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().BoolVar(&saveRun, "save", false, "store the scenario's frames")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a particle's coordinates over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", -1, "particle index (default: grid centre)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis and phase portrait of a particle",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&particle, "particle", -1, "particle index (default: grid centre)")
	analyzeCmd.Flags().IntVar(&axis, "axis", 2, "coordinate axis (0=x, 1=y, 2=z)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a particle trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().IntVar(&particle, "particle", -1, "particle index (default: grid centre)")
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run with all frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a stored frame or trajectory to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&frameIndex, "frame", -1, "sample index (default: last)")
	svgCmd.Flags().IntVar(&particle, "trajectory", -1, "plot this particle's x/z path instead of the mesh")
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [demo]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			demos := registry.List()
			if len(args) == 1 {
				demos = args
			}
			for _, d := range demos {
				names := config.ListPresets(d)
				if len(names) == 0 {
					fmt.Printf("no presets for demo: %s\n", d)
					continue
				}
				fmt.Printf("%s: %s\n", d, strings.Join(names, ", "))
			}
			return nil
		},
	}

	demosCmd := &cobra.Command{
		Use:   "demos",
		Short: "list demos",
		Run: func(cmd *cobra.Command, args []string) {
			for _, d := range registry.List() {
				fmt.Println(d)
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [demo]",
		Short: "solver throughput, convergence and a stiffness sweep",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchDemo,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().StringVar(&sweepSpec, "sweep", "10,40,160,640", "comma separated stiffness values")

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, scriptCmd, listCmd, plotCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, svgCmd, presetsCmd, demosCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	cmd.Flags().IntVar(&gridSize, "n", 0, "grid size (odd, overrides config)")
	cmd.Flags().StringVar(&solverName, "solver", "", "solver (jacobi, chebyshev, direct)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "solver sweeps per step")
	cmd.Flags().IntVar(&subSteps, "substeps", 0, "solver steps per frame")
	cmd.Flags().StringVar(&release, "release", "", "release policy (unpin, keep)")
}

// resolveConfig layers the config file or preset, the demo argument and
// explicit flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	demo := config.DefaultDemo
	if len(args) > 0 {
		demo = args[0]
	}

	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
		if len(args) == 0 && cfg.Demo != "" {
			demo = cfg.Demo
		}
	case preset != "":
		cfg = config.GetPreset(demo, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s (available: %s)", demo, preset, strings.Join(config.ListPresets(demo), ", "))
		}
	default:
		cfg = config.DefaultConfig()
	}
	cfg.Demo = demo

	f := cmd.Flags()
	if f.Changed("frames") {
		cfg.Frames = frames
	}
	if f.Changed("n") {
		cfg.Cloth.N = gridSize
	}
	if f.Changed("solver") {
		cfg.Solver.Name = solverName
	}
	if f.Changed("iterations") {
		cfg.Solver.Iterations = iterations
	}
	if f.Changed("substeps") {
		cfg.Solver.SubSteps = subSteps
	}
	if f.Changed("release") {
		cfg.Release = release
	}
	return cfg, cfg.Validate()
}

func menuEntries() []viz.Entry {
	var entries []viz.Entry
	for _, d := range registry.List() {
		names := config.ListPresets(d)
		sort.Strings(names)
		for _, p := range names {
			entries = append(entries, viz.Entry{Demo: d, Preset: p})
		}
	}
	return entries
}

func openEntry(e viz.Entry) viz.BuildFunc {
	return func() (*sim.Simulation, error) {
		cfg := config.GetPreset(e.Demo, e.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s", e)
		}
		return registry.Build(cfg)
	}
}
