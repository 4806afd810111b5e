package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmera/protarea"
	"github.com/rmera/protarea/areaplot"
	"github.com/rmera/protarea/chemstat"
	"github.com/rmera/protarea/histo"
	"github.com/rmera/protarea/internal/logging"
	"github.com/rmera/protarea/traj/amberold"
	"github.com/rmera/protarea/traj/dcd"
	"github.com/rmera/protarea/traj/stf"
)

// closableTraj is a trajectory that needs to be closed once the analysis is done.
type closableTraj interface {
	protarea.Traj
	Close()
}

// openTraj opens name as a DCD trajectory if it has a .dcd extension (possibly
// followed by .gz or .lzw), as an ASCII Amber trajectory of natoms atoms if it ends
// in .crd or .mdcrd, and as an stf trajectory otherwise.
func openTraj(name string, natoms int, log *slog.Logger) (closableTraj, error) {
	base := strings.ToLower(filepath.Base(name))
	if ext := filepath.Ext(base); ext == ".crd" || ext == ".mdcrd" {
		t, err := amberold.New(name, natoms)
		if err != nil {
			return nil, err
		}
		log.Debug("trajectory opened", "file", name, "format", "mdcrd", "title", t.Title(), "box", t.HasBox())
		return t, nil
	}
	if strings.Contains(base, ".dcd") {
		t, err := dcd.New(name)
		if err != nil {
			return nil, err
		}
		log.Debug("trajectory opened", "file", name, "format", "dcd", "frames", t.Frames())
		return t, nil
	}
	t, header, err := stf.New(name)
	if err != nil {
		return nil, err
	}
	log.Debug("trajectory opened", "file", name, "format", "stf", "header", header)
	return t, nil
}

type options struct {
	pdb      string
	traj     string
	config   string
	out      string
	text     bool
	plot     string
	histo    string
	bins     int
	acf      string
	logLevel string
	skip     int
	stride   int
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "protarea --pdb structure.pdb [--traj trajectory.stf]",
		Short: "Protein area profiles along Z",
		Long: `protarea slices each frame along Z and, in every slice, sums the areas of the
2D Voronoi cells of the protein atoms, with the periodic images of the slice
around the box. Without a trajectory, only the PDB structure is analyzed.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd, o.config)
			if err != nil {
				return err
			}
			level, err := logging.ParseLevel(o.logLevel)
			if err != nil {
				return err
			}
			return run(cmd.Context(), o, cfg, logging.New(level), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.pdb, "pdb", "", "PDB file with the topology (and the box, in the CRYST1 record)")
	f.StringVar(&o.traj, "traj", "", "trajectory to analyze, stf (.stf, .stz, .stl, .str) DCD (.dcd, .dcd.gz, .dcd.lzw) or ASCII Amber (.crd, .mdcrd)")
	f.StringVar(&o.config, "config", "", "YAML file with the analysis parameters")
	f.Float64("zmin", 0, "lowest Z boundary")
	f.Float64("zmax", 0, "highest Z boundary")
	f.Float64("layer", 0, "slice thickness")
	f.Bool("nopbc", false, "don't add the periodic images")
	f.Bool("tolerant", false, "count degenerate cells as zero area")
	f.Int("workers", 0, "concurrent slice calculations (0 means one per CPU)")
	f.StringVar(&o.out, "out", "", "output file (default: standard output)")
	f.BoolVar(&o.text, "text", false, "write a text table instead of JSON")
	f.StringVar(&o.plot, "plot", "", "save a profile and a heat map as PREFIX_profile.png and PREFIX_heatmap.png")
	f.StringVar(&o.histo, "histo", "", "write the distribution of the area of each slice, as JSON, to this file")
	f.IntVar(&o.bins, "bins", 20, "bins in each area distribution")
	f.StringVar(&o.acf, "acf", "", "write the autocorrelation of the area of each slice, as JSON, to this file")
	f.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	f.IntVar(&o.skip, "skip", 0, "frames to skip at the beginning of the trajectory")
	f.IntVar(&o.stride, "stride", 1, "analyze one frame every stride frames")
	cmd.MarkFlagRequired("pdb")
	return cmd
}

// configFromFlags reads the configuration file, if any, and overrides it with the
// flags given in the command line.
func configFromFlags(cmd *cobra.Command, file string) (protarea.Config, error) {
	cfg := protarea.DefaultConfig()
	if file != "" {
		var err error
		if cfg, err = protarea.ReadConfigFile(file); err != nil {
			return cfg, err
		}
	}
	f := cmd.Flags()
	if f.Changed("zmin") {
		cfg.ZMin, _ = f.GetFloat64("zmin")
	}
	if f.Changed("zmax") {
		cfg.ZMax, _ = f.GetFloat64("zmax")
	}
	if f.Changed("layer") {
		cfg.Layer, _ = f.GetFloat64("layer")
	}
	if f.Changed("nopbc") {
		nopbc, _ := f.GetBool("nopbc")
		cfg.Periodic = !nopbc
	}
	if f.Changed("tolerant") {
		cfg.Tolerant, _ = f.GetBool("tolerant")
	}
	if f.Changed("workers") {
		cfg.Workers, _ = f.GetInt("workers")
	}
	return cfg, cfg.Validate()
}

func frameSource(o options, log *slog.Logger) (protarea.FrameSource, func(), error) {
	top, coords, box, err := protarea.PDBFileRead(o.pdb)
	if err != nil {
		return nil, nil, err
	}
	log.Info("topology read", "file", o.pdb, "atoms", top.Len(), "box", box)
	if o.traj == "" {
		F, err := protarea.NewFrame(0, coords, top.ProteinMask(), box)
		if err != nil {
			return nil, nil, err
		}
		return protarea.NewFrameSlice(F), func() {}, nil
	}
	t, err := openTraj(o.traj, top.Len(), log)
	if err != nil {
		return nil, nil, err
	}
	src, err := protarea.NewTrajSource(t, top, box, o.skip, o.stride)
	if err != nil {
		t.Close()
		return nil, nil, err
	}
	return src, t.Close, nil
}

func run(ctx context.Context, o options, cfg protarea.Config, log *slog.Logger, stdout io.Writer) error {
	src, closeSrc, err := frameSource(o, log)
	if err != nil {
		return err
	}
	defer closeSrc()
	A, err := protarea.NewAggregator(cfg, protarea.WithLogger(log))
	if err != nil {
		return err
	}
	T, runErr := A.Run(ctx, src)
	if runErr != nil {
		log.Error("some frames were not analyzed", "error", runErr)
	}
	if T == nil {
		return runErr
	}
	if err := writeTable(T, o, stdout); err != nil {
		return errors.Join(runErr, err)
	}
	if o.plot != "" {
		if err := plots(T, o.plot); err != nil {
			return errors.Join(runErr, err)
		}
	}
	if o.histo != "" {
		if err := writeHistograms(T, o.histo, o.bins); err != nil {
			return errors.Join(runErr, err)
		}
	}
	if o.acf != "" {
		if err := writeCorrelations(T, o.acf, log); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

func writeTable(T *protarea.AreaTable, o options, stdout io.Writer) error {
	w := stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if o.text {
		return T.WriteText(w)
	}
	b, err := T.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func plots(T *protarea.AreaTable, prefix string) error {
	title := strings.TrimSuffix(filepath.Base(prefix), filepath.Ext(prefix))
	if f, _ := T.Dims(); f == 0 {
		return fmt.Errorf("no frames to plot")
	}
	if err := areaplot.Profile(T, title, prefix+"_profile.png"); err != nil {
		return err
	}
	return areaplot.HeatMap(T, title, prefix+"_heatmap.png")
}

func writeHistograms(T *protarea.AreaTable, name string, bins int) error {
	H, err := histo.Columns(T.Rows(), bins)
	if err != nil {
		return err
	}
	for _, h := range H {
		h.Normalize()
	}
	b, err := json.MarshalIndent(H, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(name, b, 0o644)
}

type sliceCorrelation struct {
	Z   float64   `json:"z"`
	ACF []float64 `json:"acf"` //null for slices with constant area
	Tau float64   `json:"tau"` //integrated correlation time, in analyzed frames
}

func writeCorrelations(T *protarea.AreaTable, name string, log *slog.Logger) error {
	if f, _ := T.Dims(); f < 2 {
		return fmt.Errorf("at least 2 frames are needed for the autocorrelation")
	}
	z := T.SliceCenters()
	ret := make([]sliceCorrelation, len(z))
	for s := range z {
		ret[s].Z = z[s]
		acf, err := chemstat.AutoCorr(T.Column(s))
		if err != nil {
			log.Debug("no autocorrelation", "slice", s, "error", err)
			continue
		}
		ret[s].ACF = acf
		ret[s].Tau = chemstat.CorrelationTime(acf)
	}
	b, err := json.MarshalIndent(ret, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(name, b, 0o644)
}
