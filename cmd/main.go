package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/edgeskate/internal/adapters/http/api"
	"github.com/okian/edgeskate/internal/adapters/player"
	app "github.com/okian/edgeskate/internal/app"
	"github.com/okian/edgeskate/internal/config"
	"github.com/okian/edgeskate/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// options holds CLI-only settings; everything else lands in config.Config.
type options struct {
	play    bool
	clear   bool
	sources []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := logger.InitWithWriter(stderr); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env), then flags.
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitFailure
	}
	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(ctx, cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
			}
		}()
	}

	svc := app.New(app.WithConfig(cfg), app.WithLogger(log.Named("pipeline")))

	if opts.play {
		return playSources(ctx, svc, opts, cfg.FrameDelay(), stdout, log)
	}
	return batchSources(ctx, svc, opts.sources, stdout, stderr)
}

// parseFlags applies command line flags on top of cfg. Flag defaults are
// the loaded config values, so only flags given explicitly change it.
func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("edgeskate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: edgeskate [flags] SOURCE...")
		fs.PrintDefaults()
	}

	opts := &options{}
	resolution := cfg.TargetResolution.String()
	fs.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "directory for exported sessions")
	fs.StringVar(&resolution, "resolution", resolution, "target resolution as HxW")
	fs.Float64Var(&cfg.DenoiseStrength, "denoise", cfg.DenoiseStrength, "denoise strength, 0 disables blur")
	fs.Float64Var(&cfg.EdgeThreshold, "threshold", cfg.EdgeThreshold, "edge threshold on normalized gradient magnitude")
	fs.Float64Var(&cfg.SmoothingFactor, "smoothing", cfg.SmoothingFactor, "course smoothing factor")
	fs.Float64Var(&cfg.BaseSpeed, "speed", cfg.BaseSpeed, "initial rider velocity")
	fs.IntVar(&cfg.TrickInterval, "trick-interval", cfg.TrickInterval, "path points between tricks, <= 0 disables tricks")
	fs.IntVar(&cfg.WorkerCount, "workers", cfg.WorkerCount, "batch worker count")
	fs.IntVar(&cfg.FrameDelayMS, "frame-delay", cfg.FrameDelayMS, "base playback delay in milliseconds")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics on this address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&opts.play, "play", false, "play sessions as ASCII animation instead of exporting")
	fs.BoolVar(&opts.clear, "clear", true, "clear the terminal between playback frames")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	res, err := config.ParseResolution(resolution)
	if err != nil {
		return nil, err
	}
	cfg.TargetResolution = res
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts.sources = fs.Args()
	if len(opts.sources) == 0 {
		fs.Usage()
		return nil, errors.New("at least one source is required")
	}
	return opts, nil
}

func batchSources(ctx context.Context, svc *app.Service, sources []string, stdout, stderr io.Writer) int {
	results, err := svc.BatchRun(ctx, sources)
	code := exitOK
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", r.Source, r.Err)
			code = exitFailure
			continue
		}
		fmt.Fprintln(stdout, r.Dir)
	}
	if err != nil {
		fmt.Fprintln(stderr, "batch failed:", err)
		code = exitFailure
	}
	return code
}

func playSources(ctx context.Context, svc *app.Service, opts *options, delay time.Duration, stdout io.Writer, log logger.Logger) int {
	for _, src := range opts.sources {
		session, err := svc.CreateSession(ctx, src)
		if err != nil {
			log.Error(ctx, "create session failed", logger.String("source", src), logger.Error(err))
			return exitFailure
		}
		err = player.Play(ctx, session,
			player.WithWriter(stdout),
			player.WithFrameDelay(delay),
			player.WithClear(opts.clear),
		)
		if err != nil {
			log.Error(ctx, "playback failed", logger.String("source", src), logger.Error(err))
			return exitFailure
		}
	}
	return exitOK
}

func startMetricsServer(ctx context.Context, addr string, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	api.NewServer().Register(ctx, mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()
	return srv
}
