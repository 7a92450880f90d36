// Command netview renders the weights of a packed evaluation network as
// two PNG images: a raw heatmap and a per-piece board view.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/hailam/netview/internal/config"
	"github.com/hailam/netview/internal/netfile"
	"github.com/hailam/netview/internal/render"
	"github.com/hailam/netview/internal/stats"
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	cfg.ApplyEnv()

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Locate(); err != nil {
		return err
	}

	// Start CPU profiling if requested (via flag or environment variable)
	if profilePath := cfg.CPUProfile; profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	net, err := netfile.Open(cfg.Path, cfg.NetOptions())
	if err != nil {
		return err
	}
	h := net.Header
	log.Printf("File version: %d (%s layout)", h.Version, net.Layout.Kind())
	log.Printf("Layer 0 size: %d", h.LayerSizes[0])
	log.Printf("Layer 1 size: %d", h.LayerSizes[1])
	if net.Layout.Kind() == netfile.KingBucket {
		log.Printf("King buckets: %d, output variants: %d", net.Layout.Buckets(), net.Layout.Variants())
	}

	if err := net.Validate(); err != nil {
		return err
	}

	curve, err := cfg.ResolveCurve(net.Layout)
	if err != nil {
		return err
	}
	opts := render.Options{Margin: cfg.Margin, Bucket: cfg.Bucket, Curve: curve}

	summary, err := stats.Summarize(net, opts.Bucket, curve)
	if err != nil {
		return err
	}
	summary.Log()

	imgs, err := render.Compose(net, opts)
	if err != nil {
		return err
	}
	if cfg.Labels {
		imgs.Labeled = render.Annotate(imgs.Board, net.Layout.Variants(), opts.Margin)
	}

	if err := render.WriteImages(imgs, cfg.OutputDir, cfg.Scale); err != nil {
		return err
	}
	log.Printf("Wrote %s and %s", filepath.Join(cfg.OutputDir, render.RawViewFile), filepath.Join(cfg.OutputDir, render.BoardViewFile))
	return nil
}
