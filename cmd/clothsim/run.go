package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/stream"
	"github.com/san-kum/clothsim/internal/viz"
)

var (
	theme     string
	gifPath   string
	addr      string
	frameRate int
	saveRun   bool
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := registry.Build(cfg)
	if err != nil {
		return err
	}
	s.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running", "demo", cfg.Demo, "n", cfg.Cloth.N, "solver", cfg.Solver.Name,
		"iterations", cfg.Solver.Iterations, "frames", cfg.Frames)
	start := time.Now()
	result, err := s.Run(ctx, cfg.Frames, sampleRate)
	if result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run stopped early", "frame", result.Frames, "err", err)
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, serr := st.Save(cfg, result)
	if serr != nil {
		return serr
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("frames: %d in %v (%.0f fps)\n", result.Frames, elapsed.Round(time.Millisecond), float64(result.Frames)/elapsed.Seconds())
	printMetrics(result.Metrics)
	return err
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, k := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", k, m[k])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	build := func() (*sim.Simulation, error) {
		return registry.Build(cfg)
	}
	return viz.Run(build, viz.Options{Theme: theme, GIFPath: gifPath})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := registry.Build(cfg)
	if err != nil {
		return err
	}
	s.SetLogger(logger)

	hub := stream.NewHub(s.System.N, s.Mesh.Faces, logger)
	s.AddObserver(hub)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving", "addr", addr, "demo", cfg.Demo, "fps", frameRate)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return stream.Run(ctx, s, hub, frameRate)
	})
	g.Go(func() error {
		<-ctx.Done()
		hub.Close()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := automation.NewRunner(registry, logger).Run(ctx, sc)
	if rep == nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tACTION\tFRAME\tHIT\tGRABBED")
	for _, st := range rep.Steps {
		fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%d\n", st.Index, st.Action, st.Frame, st.Hit, st.Grabbed)
	}
	w.Flush()
	printMetrics(rep.Metrics)
	if err != nil {
		return err
	}

	if saveRun {
		cfg, cerr := sc.BuildConfig()
		if cerr != nil {
			return cerr
		}
		cfg.Frames = rep.Frames
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, &sim.Result{
			Name:      sc.Name,
			Positions: rep.Positions,
			Times:     rep.Times,
			Frames:    rep.Frames,
			Metrics:   rep.Metrics,
		})
		if err != nil {
			return err
		}
		fmt.Printf("run: %s\n", runID)
	}
	return nil
}

// loadRun returns the stored config of a run, falling back to defaults for
// runs saved without one.
func loadRun(st *storage.Store, runID string) (*storage.RunMetadata, *config.Config, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.Demo = meta.Demo
		cfg.Cloth.N = meta.N
	}
	return meta, cfg, nil
}
