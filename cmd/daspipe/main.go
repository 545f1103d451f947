package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/alitto/pond"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fathomrail/daspipe/config"
	"github.com/fathomrail/daspipe/internal/obslog"
	"github.com/fathomrail/daspipe/pipeline"
	"github.com/fathomrail/daspipe/serialize"
	"github.com/fathomrail/daspipe/source"
)

// run_capture wires and drives a single pipeline run to completion
// against the files discovered under root. plot is accepted for CLI
// surface compatibility but does nothing: plotting is an external
// collaborator outside the core's scope.
func run_capture(configPath, root, pattern, configURI string, filesOverride int, binary, save, plot bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if filesOverride > 0 {
		cfg.MaxFiles = filesOverride
	}
	cfg.SaveBinary = binary
	cfg.Save = save
	cfg.Plot = plot

	validated, err := config.Validate(cfg)
	if err != nil {
		return err
	}

	logger, err := obslog.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if plot {
		logger.Warn("plotting sink requested but not implemented in core; ignoring -p/--plot")
	}

	files, err := source.Discover(root, pattern, configURI, cfg.MaxFiles)
	if err != nil {
		return err
	}
	logger.Info("discovered source files", zap.Int("count", len(files)))

	if !cfg.Save {
		logger.Info("serializer sink disabled (-s/--save not set); running detection only")
	}

	format := serialize.FormatJSON
	if binary {
		format = serialize.FormatBinary
	}

	decoder := source.RawFloat32{Cols: validated.BatchShape.Cols}

	p, err := pipeline.New(validated, decoder, files, configURI, format, "daspipe", logger, cfg.Save)
	if err != nil {
		return err
	}

	if err := p.Run(); err != nil {
		return err
	}

	emitted, dropped := p.Stats()
	logger.Info("run complete", zap.Int("emitted", emitted), zap.Int("dropped", dropped))
	return nil
}

// run_capture_batch fans independent capture runs, one per entry in
// roots, out across a fixed worker pool. Each run is single-threaded
// internally; only the runs themselves execute concurrently.
func run_capture_batch(configPath string, roots []string, pattern, configURI string, filesOverride int, binary, save, plot bool) error {
	n := runtime.NumCPU()
	pool := pond.New(n, 0, pond.MinWorkers(n))
	defer pool.StopAndWait()

	bar := progressbar.Default(int64(len(roots)), "capturing")

	for _, r := range roots {
		root := r
		pool.Submit(func() {
			if err := run_capture(configPath, root, pattern, configURI, filesOverride, binary, save, plot); err != nil {
				color.Red("capture failed for %s: %v", root, err)
			}
			_ = bar.Add(1)
		})
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:  "daspipe",
		Usage: "real-time train-event capture for distributed acoustic sensing streams",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run a single capture against one root of source files",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "path to a daspipe config file"},
					&cli.StringFlag{Name: "root", Usage: "root URI/pathname to discover source files under", Required: true},
					&cli.StringFlag{Name: "pattern", Usage: "glob pattern matched against source file names", Value: "*"},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file"},
					&cli.BoolFlag{Name: "binary", Aliases: []string{"b"}, Usage: "write fragments in the binary NPY container instead of JSON"},
					&cli.BoolFlag{Name: "save", Aliases: []string{"s"}, Usage: "enable the serializer sink"},
					&cli.BoolFlag{Name: "plot", Aliases: []string{"p"}, Usage: "enable the plotting sink (out of core scope)"},
					&cli.IntFlag{Name: "files", Aliases: []string{"f"}, Usage: "override the configured source file count cap"},
				},
				Action: func(cCtx *cli.Context) error {
					return run_capture(cCtx.String("config"), cCtx.String("root"), cCtx.String("pattern"), cCtx.String("config-uri"), cCtx.Int("files"), cCtx.Bool("binary"), cCtx.Bool("save"), cCtx.Bool("plot"))
				},
			},
			{
				Name:  "batch",
				Usage: "run independent captures over several roots concurrently",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "path to a daspipe config file"},
					&cli.StringSliceFlag{Name: "root", Usage: "root URI/pathname to discover source files under (repeatable)", Required: true},
					&cli.StringFlag{Name: "pattern", Usage: "glob pattern matched against source file names", Value: "*"},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file"},
					&cli.BoolFlag{Name: "binary", Aliases: []string{"b"}, Usage: "write fragments in the binary NPY container instead of JSON"},
					&cli.BoolFlag{Name: "save", Aliases: []string{"s"}, Usage: "enable the serializer sink"},
					&cli.BoolFlag{Name: "plot", Aliases: []string{"p"}, Usage: "enable the plotting sink (out of core scope)"},
					&cli.IntFlag{Name: "files", Aliases: []string{"f"}, Usage: "override the configured source file count cap"},
				},
				Action: func(cCtx *cli.Context) error {
					return run_capture_batch(cCtx.String("config"), cCtx.StringSlice("root"), cCtx.String("pattern"), cCtx.String("config-uri"), cCtx.Int("files"), cCtx.Bool("binary"), cCtx.Bool("save"), cCtx.Bool("plot"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(fmt.Errorf("daspipe: %w", err))
	}
}
