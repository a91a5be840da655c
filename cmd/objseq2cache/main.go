package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"objseq2cache/internal/config"
	"objseq2cache/internal/failure"
	"objseq2cache/internal/pipeline"
	"objseq2cache/internal/preview"
	"objseq2cache/internal/sequence"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	input := flag.String("input", "", "Directory containing the OBJ frame sequence")
	output := flag.String("output", "", "Output cache file path")
	fps := flag.Float64("fps", 0, "Sample rate in frames per second (default: 24)")
	ext := flag.String("ext", "", "Frame file extension (default: .obj)")
	prefetch := flag.Bool("prefetch", false, "Parse the next frame while the current one is written")
	previewPath := flag.String("preview", "", "Write a WebP preview of the first frame to this path")
	manifestPath := flag.String("manifest", "", "Write a JSON frame manifest to this path")

	flag.Usage = usage
	flag.Parse()

	// Load config
	cfg := config.Default()
	var baseDir string
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		baseDir = filepath.Dir(*configFile)
	}

	// CLI flags override config file
	var rate *float64
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "fps" {
			rate = fps
		}
	})
	cfg.Resolve(config.Flags{
		InputDir:     *input,
		OutputPath:   *output,
		SampleRate:   rate,
		Extension:    *ext,
		PreviewPath:  *previewPath,
		ManifestPath: *manifestPath,
		Prefetch:     *prefetch,
	}, baseDir)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		usage()
		os.Exit(1)
	}

	fmt.Println("OBJ sequence -> geometry cache")
	fmt.Printf("Input:  %s\n", cfg.InputDir)
	fmt.Printf("Output: %s\n", cfg.OutputPath)
	fmt.Printf("FPS:    %g\n", cfg.SampleRate)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := pipeline.Run(ctx, pipeline.Options{
		InputDir:     cfg.InputDir,
		OutputPath:   cfg.OutputPath,
		SampleRate:   cfg.SampleRate,
		Extension:    cfg.Extension,
		Prefetch:     cfg.Prefetch,
		PreviewPath:  cfg.PreviewPath,
		ManifestPath: cfg.ManifestPath,
		Preview: preview.Options{
			Size:        cfg.PreviewSize,
			Supersample: cfg.Supersample,
			Yaw:         cfg.PreviewYaw,
			Pitch:       cfg.PreviewPitch,
		},
		OnDiscover: printFrames,
		Progress: func(p pipeline.Progress) {
			fmt.Printf("Frame %d/%d: %s (%d vertices, %d faces) OK\n",
				p.Ordinal+1, p.Total, p.File, p.Vertices, p.Faces)
		},
	})
	if err != nil {
		reportError(err, cfg.OutputPath)
		os.Exit(1)
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Processed %d frames in %.1fs\n", len(sum.Frames), sum.Elapsed.Seconds())
	fmt.Printf("Output: %s\n", sum.Output)
	if cfg.PreviewPath != "" {
		fmt.Printf("Preview: %s\n", cfg.PreviewPath)
	}
	if cfg.ManifestPath != "" {
		fmt.Printf("Manifest: %s\n", cfg.ManifestPath)
	}
}

func printFrames(frames []sequence.Descriptor) {
	fmt.Printf("Found %d frame files:\n", len(frames))
	limit := 20
	if len(frames) < limit {
		limit = len(frames)
	}
	for i, f := range frames[:limit] {
		fmt.Printf("  [%d] %s\n", i, f.Name)
	}
	if len(frames) > limit {
		fmt.Printf("  ... %d more\n", len(frames)-limit)
	}
	fmt.Println()
}

func reportError(err error, output string) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var fe *failure.FrameError
	switch {
	case errors.Is(err, failure.ErrNoInput):
		fmt.Fprintln(os.Stderr, "No frame files found; check -input and -ext.")
	case errors.As(err, &fe):
		fmt.Fprintf(os.Stderr, "Conversion stopped at frame %d (%s). %s is incomplete and should be discarded.\n",
			fe.Ordinal+1, fe.File, output)
	}
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s -input <dir> -output <file.gcache> [-fps <rate>]\n\n", name)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExample:\n  %s -input ./obj_sequence -output ./output.gcache -fps 30\n", name)
}
