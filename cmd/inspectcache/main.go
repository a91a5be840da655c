package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"objseq2cache/internal/geocache"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Usage: inspectcache <file.gcache>")
		return 2
	}
	path := args[0]

	r, err := geocache.OpenReader(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer r.Close()

	meta := r.Meta()
	fmt.Fprintf(stdout, "Archive: %s (v%d)\n", meta.ArchiveID, meta.Version)
	fmt.Fprintf(stdout, "Object:  %s [%s]\n", meta.ObjectPath(), meta.Schema)
	fmt.Fprintf(stdout, "Timing:  start=%gs interval=%gs (%.3g fps)\n",
		meta.TimeSampling.Start, meta.TimeSampling.Interval, 1/meta.TimeSampling.Interval)
	fmt.Fprintf(stdout, "Samples: %d\n", r.NumSamples())

	failed := false
	for i := 0; i < r.NumSamples(); i++ {
		s, err := r.Sample(i)
		if err != nil {
			fmt.Fprintf(stderr, "  [%d] error: %v\n", i, err)
			failed = true
			continue
		}
		if err := s.Validate(); err != nil {
			fmt.Fprintf(stderr, "  [%d] invalid: %v\n", i, err)
			failed = true
		}

		minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
		maxX, maxY, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)
		for _, p := range s.Positions {
			x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			minZ, maxZ = math.Min(minZ, z), math.Max(maxZ, z)
		}
		fmt.Fprintf(stdout, "  [%d] t=%.4fs points=%d faces=%d indices=%d\n",
			i, r.Time(i), len(s.Positions), len(s.FaceCounts), len(s.FaceIndices))
		fmt.Fprintf(stdout, "      BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n", minX, maxX, minY, maxY, minZ, maxZ)
	}

	if failed {
		return 1
	}
	return 0
}
