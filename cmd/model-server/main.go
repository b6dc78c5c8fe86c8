package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/stub-model-server/internal/config"
	"github.com/ironsheep/stub-model-server/internal/detection"
	"github.com/ironsheep/stub-model-server/internal/geojson"
	"github.com/ironsheep/stub-model-server/internal/imaging"
	"github.com/ironsheep/stub-model-server/internal/logging"
	"github.com/ironsheep/stub-model-server/internal/models"
	"github.com/ironsheep/stub-model-server/internal/overlay"
	"github.com/ironsheep/stub-model-server/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("model-server %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printHelp()
		return
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "model-server: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(logging.Options{Verbose: cfg.Verbose, File: cfg.LogFile})

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "overlay":
		err = renderOverlay(cfg, logger, args)
	default:
		fmt.Fprintf(os.Stderr, "model-server: unknown command %q (see --help)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("%s failed: %v", cmd, err)
	}
}

func printHelp() {
	fmt.Println("model-server - stub detection model served over HTTP")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  model-server [serve]                       Serve /ping and /invocations")
	fmt.Println("  model-server overlay -in TILE -out PNG     Draw detections onto a tile")
	fmt.Println("               [-features JSON]              (from a saved response instead of the model)")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from ./.env):")
	fmt.Println("  MODEL_NAME=centerpoint|flood|aircraft   Model to serve (default centerpoint)")
	fmt.Println("  PORT=8080                               Listen port")
	fmt.Println("  VERBOSE=false                           Enable debug logging")
	fmt.Println("  LOG_FILE=                               Also log to this rotating file")
	fmt.Println("  BBOX_PERCENTAGE=0.1                     Box half-size relative to the tile")
	fmt.Println("  NUM_VERTICES=6                          Vertices of generated outlines")
	fmt.Println("  FLOOD_VOLUME=500                        Detections per flood request")
	fmt.Println("  ENABLE_SEGMENTATION=false               Emit polygon outlines")
	fmt.Println("  SIMPLIFY_TOLERANCE=0                    Contour simplification in pixels")
	fmt.Println("  FAULT_DETECTION=false                   Reject all-zero tiles")
	fmt.Println("  FAULT_THRESHOLD=0                       Largest sample treated as zero")
	fmt.Println("  FAULT_RESPONSE_STATUS=400               Status for rejected tiles (400 or 500)")
	fmt.Println("  MAX_PIXELS=0                            Largest accepted tile, 0 = unlimited")
	fmt.Println("  BODY_LIMIT_MB=100                       Largest accepted request body")
	fmt.Println("  RATE_LIMIT=0                            Requests per second per client, 0 = off")
	fmt.Println("  RATE_BURST=20                           Rate limit burst size")
	fmt.Println("  INFERENCE_URL=                          Inference service for the aircraft model")
	fmt.Println("  INFERENCE_TIMEOUT=30s                   Inference request timeout")
}

func newPipeline(cfg config.Config, logger *logrus.Logger) (*models.Pipeline, error) {
	model, err := models.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &models.Pipeline{
		Decoder: imaging.Decoder{
			FaultDetection: cfg.FaultDetection,
			FaultThreshold: uint8(cfg.FaultThreshold),
			MaxPixels:      cfg.MaxPixels,
			Log:            logger,
		},
		Model: model,
		Log:   logger,
	}, nil
}

func serve(cfg config.Config, logger *logrus.Logger) error {
	pipeline, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(
		server.WithConfig(cfg),
		server.WithLogger(logger),
		server.WithPipeline(pipeline),
	)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func renderOverlay(cfg config.Config, logger *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("overlay", flag.ContinueOnError)
	in := fs.String("in", "", "input tile")
	out := fs.String("out", "overlay.png", "output PNG")
	features := fs.String("features", "", "FeatureCollection JSON to draw instead of running the model")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	decoder := imaging.Decoder{MaxPixels: cfg.MaxPixels, Log: logger}
	raster, err := decoder.DecodeFile(*in)
	if err != nil {
		return err
	}

	var dets []detection.Detection
	if *features != "" {
		doc, err := os.ReadFile(*features)
		if err != nil {
			return err
		}
		fc, err := geojson.Unmarshal(doc)
		if err != nil {
			return fmt.Errorf("parse %s: %w", *features, err)
		}
		for _, f := range fc.Features {
			dets = append(dets, f.Detection())
		}
	} else {
		model, err := models.New(cfg, logger)
		if err != nil {
			return err
		}
		if dets, err = model.Detect(context.Background(), raster); err != nil {
			return err
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := imaging.EncodePNG(f, overlay.Render(raster.Image(), dets, overlay.Options{})); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"in":         *in,
		"out":        *out,
		"detections": len(dets),
	}).Info("Overlay written")
	return f.Close()
}
