package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/scene"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/topology"
)

var (
	particle   int
	axis       int
	outPath    string
	frameIndex int
)

var axisNames = [3]string{"x", "y", "z"}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDEMO\tTIME\tN\tSOLVER\tITER\tFRAMES\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Demo,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.N,
			run.Solver,
			run.Iterations,
			run.Frames,
			run.Samples,
		)
	}
	return w.Flush()
}

// loadTrajectory reads a run and extracts one particle's path. A negative
// index selects the grid centre.
func loadTrajectory(runID string, idx int) (*storage.RunMetadata, []cloth.Vec3, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	if idx < 0 {
		idx = topology.Center(meta.N)
	}
	if idx >= len(frames[0]) {
		return nil, nil, nil, fmt.Errorf("particle %d out of range (%d particles)", idx, len(frames[0]))
	}
	traj := make([]cloth.Vec3, len(frames))
	for i, f := range frames {
		traj[i] = f[idx]
	}
	return meta, traj, times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, _, err := loadTrajectory(args[0], particle)
	if err != nil {
		return err
	}
	idx := particle
	if idx < 0 {
		idx = topology.Center(meta.N)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("demo: %s\n", meta.Demo)
	fmt.Printf("particle: %d\n", idx)
	fmt.Printf("samples: %d\n\n", len(traj))

	if len(traj) < 2 {
		return fmt.Errorf("need at least 2 samples to plot")
	}
	for a := 0; a < 3; a++ {
		graph := asciigraph.Plot(analysis.Component(traj, a),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(axisNames[a]+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	if axis < 0 || axis > 2 {
		return fmt.Errorf("axis must be 0, 1 or 2")
	}
	meta, traj, times, err := loadTrajectory(args[0], particle)
	if err != nil {
		return err
	}
	if len(times) < 4 {
		return fmt.Errorf("need at least 4 samples, run has %d", len(times))
	}
	dt := times[1] - times[0]
	data := analysis.Component(traj, axis)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("axis: %s\n", axisNames[axis])
	fmt.Printf("sample interval: %.4fs\n", dt)
	fmt.Printf("dominant frequency: %.4f Hz\n\n", analysis.DominantFrequency(data, dt))

	spec := analysis.PowerSpectrum(data)
	if len(spec) > 1 {
		fmt.Println(asciigraph.Plot(spec[1:],
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum"),
		))
		fmt.Println()
	}

	if p := analysis.PhasePortrait(traj, times, axis); p != nil {
		fmt.Printf("phase portrait (%s vs d%s/dt)\n", axisNames[axis], axisNames[axis])
		fmt.Println(p.ASCII(80, 24))
	}
	return nil
}

func output() (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, times, err := loadTrajectory(args[0], particle)
	if err != nil {
		return err
	}
	out, closeOut, err := output()
	if err != nil {
		return err
	}
	defer closeOut()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "x", "y", "z"}); err != nil {
		return err
	}
	for i, p := range traj {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, v := range p {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := storage.ExportJSON(outPath, data); err != nil {
			return err
		}
		logger.Info("exported", "run", args[0], "path", outPath)
		return nil
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, cfg, err := loadRun(st, args[0])
	if err != nil {
		return err
	}

	var doc string
	if cmd.Flags().Changed("trajectory") {
		_, traj, _, err := loadTrajectory(args[0], particle)
		if err != nil {
			return err
		}
		doc = export.TrajectoryToSVG(traj, 0, 2, 640, 480, "#ff00ff")
	} else {
		frames, _, err := st.LoadFrames(args[0])
		if err != nil {
			return err
		}
		if len(frames) == 0 {
			return fmt.Errorf("run %s has no frames", args[0])
		}
		k := frameIndex
		if k < 0 {
			k = len(frames) - 1
		}
		if k >= len(frames) {
			return fmt.Errorf("frame %d out of range (%d samples)", k, len(frames))
		}

		s, err := registry.Build(cfg)
		if err != nil {
			return err
		}
		if len(frames[k]) != len(s.System.Particles) {
			return fmt.Errorf("stored frame has %d particles, config builds %d", len(frames[k]), len(s.System.Particles))
		}
		s.System.SetPositions(frames[k])
		opts := export.MeshOptions{Fix: s.Fix}
		if sp, ok := scene.Sphere(s); ok {
			opts.Sphere = sp
		}
		doc = export.MeshToSVG(s.Camera, s.System, opts)
	}

	out, closeOut, err := output()
	if err != nil {
		return err
	}
	defer closeOut()
	_, err = io.WriteString(out, doc+"\n")
	return err
}
