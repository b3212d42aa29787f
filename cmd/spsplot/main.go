package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sesps/spsplot/internal/config"
	"github.com/sesps/spsplot/internal/kinematics"
	"github.com/sesps/spsplot/internal/levels"
	"github.com/sesps/spsplot/internal/mass"
	"github.com/sesps/spsplot/internal/plot"
	"github.com/sesps/spsplot/internal/storage"
	"github.com/sesps/spsplot/internal/tui"
	"github.com/sesps/spsplot/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	beamEnergy float64
	angle      float64
	excitation float64

	field         float64
	rhoMin        float64
	rhoMax        float64
	dispersion    float64
	magnification float64
	refRadius     float64
	refZ          float64

	levelsFile  string
	levelsCache string
	labelMode   string
	plotWidth  int
	showCurve  bool
	saveRun    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spsplot",
		Short: "split-pole spectrograph level plotter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spsplot", "data directory")

	plotCmd := &cobra.Command{
		Use:   "plot [reaction ...]",
		Short: "place reaction levels on the focal plane",
		Args:  cobra.ArbitraryArgs,
		RunE:  runPlot,
	}
	addRunFlags(plotCmd)
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "strip width in columns")
	plotCmd.Flags().BoolVar(&showCurve, "curve", false, "draw ejectile KE curve")
	plotCmd.Flags().BoolVar(&saveRun, "save", false, "save run to the data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [reaction]",
		Short: "solve kinematics for a single excitation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	addRunFlags(solveCmd)
	solveCmd.Flags().Float64Var(&excitation, "ex", 0.0, "residual excitation (MeV)")

	levelsCmd := &cobra.Command{
		Use:   "levels [isotope]",
		Short: "show a bundled or file level list",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLevels,
	}
	levelsCmd.Flags().StringVar(&levelsFile, "file", "", "level list file")
	levelsCmd.Flags().StringVar(&levelsCache, "cache", "", "level cache file (isotope,[e1, e2, ...] rows)")

	massCmd := &cobra.Command{
		Use:   "mass [nuclide | Z A]",
		Short: "look up a nuclide mass",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runMass,
	}

	qCmd := &cobra.Command{
		Use:   "q [reaction]",
		Short: "reaction Q-value and threshold",
		Args:  cobra.ExactArgs(1),
		RunE:  runQ,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write run points as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write run points as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in reaction presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tREACTION\tBEAM(MEV)\tANGLE\tFIELD(KG)")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%.1f\t%.2f\n",
					name, p.Reaction, p.BeamEnergy, p.Angle, p.Spectrometer.Field)
			}
			return w.Flush()
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui [reaction]",
		Short: "interactive focal-plane explorer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	addRunFlags(tuiCmd)

	rootCmd.AddCommand(plotCmd, solveCmd, levelsCmd, massCmd, qCmd,
		listCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&beamEnergy, "beam", config.DefaultBeamEnergy, "beam kinetic energy (MeV)")
	cmd.Flags().Float64Var(&angle, "angle", config.DefaultAngle, "lab angle (degrees)")
	cmd.Flags().Float64Var(&field, "field", 0, "magnetic field (kG)")
	cmd.Flags().Float64Var(&rhoMin, "rho-min", 0, "acceptance window lower edge (cm)")
	cmd.Flags().Float64Var(&rhoMax, "rho-max", 0, "acceptance window upper edge (cm)")
	cmd.Flags().Float64Var(&dispersion, "dispersion", 0, "focal-plane dispersion")
	cmd.Flags().Float64Var(&magnification, "magnification", 0, "focal-plane magnification")
	cmd.Flags().Float64Var(&refRadius, "ref-rho", 0, "reference orbit radius (cm)")
	cmd.Flags().Float64Var(&refZ, "ref-z", 0, "detector offset of the reference orbit (cm)")
	cmd.Flags().StringVar(&levelsFile, "levels", "", "level list file")
	cmd.Flags().StringVar(&levelsCache, "cache", "", "level cache file (isotope,[e1, e2, ...] rows)")
	cmd.Flags().StringVar(&labelMode, "label", "", "point labels: excitation, ke or position")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig merges preset, config file and flags, in rising priority.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	if len(args) > 0 {
		cfg.Reaction = args[0]
	}
	if cmd.Flags().Changed("beam") {
		cfg.BeamEnergy = beamEnergy
	}
	if cmd.Flags().Changed("angle") {
		cfg.Angle = angle
	}
	if cmd.Flags().Changed("levels") {
		cfg.LevelsFile = levelsFile
	}
	if cmd.Flags().Changed("cache") {
		cfg.LevelsCache = levelsCache
	}
	if cmd.Flags().Changed("label") {
		cfg.LabelMode = labelMode
	}
	if cmd.Flags().Changed("field") {
		cfg.Spectrometer.Field = field
	}
	if cmd.Flags().Changed("rho-min") {
		cfg.Spectrometer.RhoMin = rhoMin
	}
	if cmd.Flags().Changed("rho-max") {
		cfg.Spectrometer.RhoMax = rhoMax
	}
	if cmd.Flags().Changed("dispersion") {
		cfg.Spectrometer.Dispersion = dispersion
	}
	if cmd.Flags().Changed("magnification") {
		cfg.Spectrometer.Magnification = magnification
	}
	if cmd.Flags().Changed("ref-rho") {
		cfg.Spectrometer.RefRadius = refRadius
	}
	if cmd.Flags().Changed("ref-z") {
		cfg.Spectrometer.RefZ = refZ
	}

	if err := cfg.Spectrometer.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildReaction(cfg *config.Config) (kinematics.Reaction, error) {
	table, err := mass.Load()
	if err != nil {
		return kinematics.Reaction{}, err
	}
	if cfg.Reaction != "" {
		return kinematics.ParseNotation(table, cfg.Reaction)
	}
	return kinematics.NewReaction(table,
		kinematics.ZA{Z: cfg.Target.Z, A: cfg.Target.A},
		kinematics.ZA{Z: cfg.Projectile.Z, A: cfg.Projectile.A},
		kinematics.ZA{Z: cfg.Ejectile.Z, A: cfg.Ejectile.A})
}

// loadLevels reads the configured level source: first a cache file keyed by
// the residual isotope, then a levels_file (a file on disk or a bundled
// isotope name), then the bundled list for the residual, then the ground
// state alone.
func loadLevels(cfg *config.Config, r kinematics.Reaction) ([]levels.Level, error) {
	if cfg.LevelsCache != "" {
		f, err := os.Open(cfg.LevelsCache)
		if err != nil {
			return nil, err
		}
		cached := levels.ParseCache(f)
		f.Close()
		if lv, ok := cached[r.Residual.Name()]; ok {
			return lv, nil
		}
	}
	if cfg.LevelsFile != "" {
		if _, statErr := os.Stat(cfg.LevelsFile); statErr != nil {
			if res, err := levels.Bundled(cfg.LevelsFile); err == nil {
				return res.Levels, nil
			}
		}
		res, err := levels.Load(cfg.LevelsFile)
		if err != nil {
			return nil, err
		}
		if len(res.Skipped) > 0 {
			fmt.Fprintln(os.Stderr, res.Summary())
		}
		return res.Levels, nil
	}
	if res, err := levels.Bundled(r.Residual.Name()); err == nil {
		return res.Levels, nil
	}
	return []levels.Level{{Energy: 0}}, nil
}

// runPlot renders one focal-plane section per reaction. With several
// reactions all share the beam, angle and spectrometer settings, so their
// strips line up row by row as on the detector.
func runPlot(cmd *cobra.Command, args []string) error {
	single := args
	if len(args) > 1 {
		single = args[:1]
	}
	cfg, err := resolveConfig(cmd, single)
	if err != nil {
		return err
	}
	mode, err := plot.ParseLabelMode(cfg.LabelMode)
	if err != nil {
		return err
	}

	notations := []string{cfg.Reaction}
	if len(args) > 1 {
		notations = args
	}

	var st *storage.Store
	if saveRun {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	for i, notation := range notations {
		rcfg := *cfg
		rcfg.Reaction = notation
		if i > 0 {
			// Level files apply to the first reaction only; the rest
			// fall back to bundled lists for their residuals.
			rcfg.LevelsFile = ""
		}

		r, err := buildReaction(&rcfg)
		if err != nil {
			return err
		}
		lv, err := loadLevels(&rcfg, r)
		if err != nil {
			return err
		}
		points, err := plot.Generate(r, rcfg.BeamEnergy, rcfg.Angle, rcfg.Spectrometer, lv, mode)
		if err != nil {
			return err
		}

		if i > 0 {
			fmt.Println()
		}
		fmt.Println(viz.Header(r.String(), rcfg.BeamEnergy, rcfg.Angle, rcfg.Spectrometer))
		fmt.Printf("Q = %.4f MeV\n\n", r.Qgs())
		if strip := viz.FocalPlaneStrip(points, rcfg.Spectrometer, plotWidth); strip != "" {
			fmt.Println(strip)
			fmt.Println()
		}
		fmt.Print(viz.PointsTable(points))
		if showCurve {
			if curve := viz.KECurve(points, plotWidth, 10); curve != "" {
				fmt.Println()
				fmt.Println(curve)
			}
		}

		if st != nil {
			runID, err := st.Save(r.String(), rcfg.BeamEnergy, rcfg.Angle, rcfg.Spectrometer, points)
			if err != nil {
				return err
			}
			fmt.Printf("\nrun id: %s\n", runID)
		}
	}

	return nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	r, err := buildReaction(cfg)
	if err != nil {
		return err
	}

	sol := kinematics.Solve(r, cfg.BeamEnergy, cfg.Angle, excitation)

	fmt.Println(viz.Header(r.String(), cfg.BeamEnergy, cfg.Angle, cfg.Spectrometer))
	fmt.Printf("excitation: %.4f MeV   Q: %.4f MeV   threshold: %.4f MeV\n",
		excitation, r.Qgs(), r.Threshold(excitation))
	fmt.Printf("kind: %s\n", sol.Kind)
	if sol.Kind == kinematics.Forbidden {
		return nil
	}

	printRoot := func(name string, root kinematics.Root) {
		fmt.Printf("%s: KE %.4f MeV  p %.4f MeV/c", name, root.KE, root.Momentum)
		if r.Ejectile.Z > 0 {
			brho := root.Rigidity(r.Ejectile.Z)
			pos, err := cfg.Spectrometer.Map(brho)
			if err == nil {
				fmt.Printf("  Brho %.3f kG*cm  rho %.3f cm  z %.3f cm", brho, pos.Rho, pos.Z)
			}
		}
		fmt.Println()
	}
	printRoot("forward", sol.Forward)
	if sol.Kind == kinematics.TwoRoots {
		printRoot("backward", sol.Backward)
	}

	return nil
}

func runLevels(cmd *cobra.Command, args []string) error {
	var res levels.ParseResult
	var err error
	switch {
	case levelsCache != "" && len(args) > 0:
		f, oerr := os.Open(levelsCache)
		if oerr != nil {
			return oerr
		}
		cached := levels.ParseCache(f)
		f.Close()
		lv, ok := cached[args[0]]
		if !ok {
			return fmt.Errorf("isotope %s not in cache %s", args[0], levelsCache)
		}
		res = levels.ParseResult{Levels: lv}
	case levelsFile != "":
		res, err = levels.Load(levelsFile)
	case len(args) > 0:
		res, err = levels.Bundled(args[0])
	default:
		fmt.Println("bundled level lists:")
		for _, iso := range levels.BundledIsotopes() {
			fmt.Printf("  %s\n", iso)
		}
		return nil
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EX(MEV)\tUNC(MEV)\tJPI")
	for _, lv := range res.Levels {
		ex := fmt.Sprintf("%.4f", lv.Energy)
		if lv.Approximate {
			ex = "~" + ex
		}
		fmt.Fprintf(w, "%s\t%.4g\t%s\n", ex, lv.Uncertainty, lv.JPi)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(res.Summary())

	return nil
}

func runMass(cmd *cobra.Command, args []string) error {
	table, err := mass.Load()
	if err != nil {
		return err
	}
	var z, a int
	if len(args) == 2 {
		if z, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("bad Z %q", args[0])
		}
		if a, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("bad A %q", args[1])
		}
	} else if z, a, err = parseNuclideArg(args[0]); err != nil {
		return err
	}
	n, err := table.Lookup(z, a)
	if err != nil {
		return err
	}
	fmt.Print(nuclideReport(n))

	return nil
}

// nuclideReport formats a mass lookup. MassExcess is carried in MeV
// internally; the dataset convention for display is keV.
func nuclideReport(n mass.Nuclide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  Z=%d A=%d\n", n.Name(), n.Z, n.A)
	fmt.Fprintf(&b, "mass excess: %.3f keV\n", n.MassExcess*1000)
	fmt.Fprintf(&b, "atomic mass: %.6f MeV/c^2 (%.6f u)\n", n.Mass, n.Mass/mass.AMU)
	return b.String()
}

// parseNuclideArg accepts "13C" or "Z:A" forms.
func parseNuclideArg(s string) (z, a int, err error) {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		z, err = strconv.Atoi(s[:i])
		if err != nil {
			return 0, 0, fmt.Errorf("bad nuclide %q", s)
		}
		a, err = strconv.Atoi(s[i+1:])
		if err != nil {
			return 0, 0, fmt.Errorf("bad nuclide %q", s)
		}
		return z, a, nil
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return 0, 0, fmt.Errorf("bad nuclide %q (want e.g. 13C or 6:13)", s)
	}
	a, _ = strconv.Atoi(s[:i])
	z, ok := mass.ZForSymbol(s[i:])
	if !ok {
		return 0, 0, fmt.Errorf("unknown element symbol %q", s[i:])
	}
	return z, a, nil
}

func runQ(cmd *cobra.Command, args []string) error {
	table, err := mass.Load()
	if err != nil {
		return err
	}
	r, err := kinematics.ParseNotation(table, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", r.String())
	fmt.Printf("Q(gs): %.4f MeV\n", r.Qgs())
	fmt.Printf("threshold: %.4f MeV\n", r.Threshold(0))

	return nil
}

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
	fmt.Fprintln(w, "ID\tREACTION\tTIME\tBEAM(MEV)\tANGLE\tFIELD(KG)\tPOINTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.1f\t%.2f\t%d\n",
			run.ID,
			run.Reaction,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.BeamEnergy,
			run.Angle,
			run.Spectrometer.Field,
			run.Points,
		)
	}

	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("reaction: %s\n", meta.Reaction)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("beam: %.2f MeV at %.1f deg\n", meta.BeamEnergy, meta.Angle)
	fmt.Printf("field: %.2f kG, rho window %.1f-%.1f cm\n",
		meta.Spectrometer.Field, meta.Spectrometer.RhoMin, meta.Spectrometer.RhoMax)
	fmt.Printf("points: %d\n", meta.Points)

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	points, err := st.LoadPoints(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	if err := w.Write([]string{"excitation_mev", "jpi", "status", "ke_mev", "rho_cm", "z_cm", "in_acceptance"}); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{
			strconv.FormatFloat(p.Level.Energy, 'g', -1, 64),
			p.Level.JPi,
			p.Status.String(),
			strconv.FormatFloat(p.KE, 'g', -1, 64),
			strconv.FormatFloat(p.Rho, 'g', -1, 64),
			strconv.FormatFloat(p.Z, 'g', -1, 64),
			strconv.FormatBool(p.InAcceptance),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()

	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	points, err := st.LoadPoints(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSONStdout(meta, points)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	r, err := buildReaction(cfg)
	if err != nil {
		return err
	}
	lv, err := loadLevels(cfg, r)
	if err != nil {
		return err
	}
	mode, err := plot.ParseLabelMode(cfg.LabelMode)
	if err != nil {
		return err
	}

	app := tui.NewApp(r, cfg.BeamEnergy, cfg.Angle, cfg.Spectrometer, lv, mode)
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
