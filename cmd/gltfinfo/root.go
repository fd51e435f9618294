package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/config"
	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/spf13/cobra"
)

var errImportFailed = errors.New("one or more imports failed")

type options struct {
	configPath string
	roots      []string
	logLevel   string
	flipY      bool
	profile    bool
	json       bool
}

// summary is the printed form of one import.
type summary struct {
	File        string   `json:"file"`
	ID          string   `json:"id,omitempty"`
	Path        string   `json:"path,omitempty"`
	Nodes       int      `json:"nodes"`
	Meshes      int      `json:"meshes"`
	Primitives  int      `json:"primitives"`
	Materials   int      `json:"materials"`
	Textures    int      `json:"textures"`
	Images      int      `json:"images"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "gltfinfo [flags] FILE...",
		Short:         "Import glTF/GLB files and summarize the result",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (.toml, .yaml or .json)")
	flags.StringArrayVarP(&opts.roots, "root", "r", nil, "search root, may be repeated; overrides the config roots")
	flags.StringVar(&opts.logLevel, "log-level", "", "verbose, debug, load, info, perf, warn or error")
	flags.BoolVar(&opts.flipY, "flip-y", false, "flip decoded images vertically")
	flags.BoolVar(&opts.profile, "profile", false, "log per-stage timings")
	flags.BoolVar(&opts.json, "json", false, "print summaries as JSON")
	return cmd
}

func run(cmd *cobra.Command, opts *options, files []string, stdout, stderr io.Writer) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.SearchRoots = opts.roots
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("flip-y") {
		cfg.FlipImagesY = opts.flipY
	}
	if flags.Changed("profile") {
		cfg.Profiling = opts.profile
	}
	// One-shot run: the cache is never revisited.
	cfg.Watch = false

	level, err := logx.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.Profiling {
		level = min(level, logx.LevelPerf)
	}

	l := loader.NewLoader(loader.BackendTypeGLTF,
		loader.WithConfig(cfg),
		loader.WithLogger(logx.New(stderr, level)),
	)
	defer l.Close()

	results, errs := l.LoadAll(files)

	summaries := make([]summary, len(files))
	failed := false
	for i, file := range files {
		summaries[i] = summarize(file, results[i], errs[i])
		failed = failed || errs[i] != nil
	}

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summaries); err != nil {
			return err
		}
	} else {
		for _, s := range summaries {
			printSummary(stdout, s)
		}
	}

	if failed {
		return errImportFailed
	}
	return nil
}

func summarize(file string, res *model.ImportResult, err error) summary {
	s := summary{File: file}
	if err != nil {
		s.Error = err.Error()
		return s
	}

	s.ID = res.ID.String()
	s.Path = res.Path
	s.Nodes = len(res.Nodes)
	s.Meshes = len(res.Meshes)
	s.Primitives = len(res.AllPrimitives())
	s.Materials = len(res.Materials)
	s.Textures = len(res.Textures)
	s.Images = len(res.Images)
	for _, d := range res.Diagnostics {
		s.Diagnostics = append(s.Diagnostics, d.Error())
	}
	return s
}

func printSummary(w io.Writer, s summary) {
	fmt.Fprintf(w, "%s\n", s.File)
	if s.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", s.Error)
		return
	}

	fmt.Fprintf(w, "  id:         %s\n", s.ID)
	fmt.Fprintf(w, "  path:       %s\n", s.Path)
	fmt.Fprintf(w, "  nodes:      %d\n", s.Nodes)
	fmt.Fprintf(w, "  meshes:     %d (%d primitives)\n", s.Meshes, s.Primitives)
	fmt.Fprintf(w, "  materials:  %d\n", s.Materials)
	fmt.Fprintf(w, "  textures:   %d\n", s.Textures)
	fmt.Fprintf(w, "  images:     %d\n", s.Images)
	if len(s.Diagnostics) > 0 {
		fmt.Fprintf(w, "  diagnostics:\n    %s\n", strings.Join(s.Diagnostics, "\n    "))
	}
}
