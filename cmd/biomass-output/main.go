// Command biomass-output runs the biomass output extension over a landscape
// fixture. It loads YAML run parameters and a YAML landscape, then reports
// at the fixture's start time and every timestep until the duration is
// reached. Storage and telemetry are configured through BIOMASS_*
// environment variables.
package main

import (
	"context"
	"errors"
	"expvar"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"biomassoutput/internal/blob"
	"biomassoutput/internal/config"
	"biomassoutput/internal/core"
	"biomassoutput/internal/host/memory"
	"biomassoutput/internal/persistence"
	otelplatform "biomassoutput/internal/platform/otel"
)

const serviceName = "biomass-output"

type options struct {
	paramsPath    string
	landscapePath string
	duration      int
	traceFile     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		stop()
		config.Exitf("%s: %v", serviceName, err)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.paramsPath, "params", "biomass-output.yaml", "path to the YAML run parameters")
	fs.StringVar(&opts.landscapePath, "landscape", "", "path to the YAML landscape fixture")
	fs.IntVar(&opts.duration, "duration", 0, "last simulation year to report")
	fs.StringVar(&opts.traceFile, "trace-file", "", "write JSON trace lines to this file when no OTLP endpoint is set")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.landscapePath == "" {
		return options{}, errors.New("-landscape is required")
	}
	if opts.duration < 0 {
		return options{}, fmt.Errorf("-duration must be >= 0, got %d", opts.duration)
	}
	return opts, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func run(ctx context.Context, args []string, stderr io.Writer) (err error) {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	params, err := config.LoadParameters(opts.paramsPath)
	if err != nil {
		return err
	}
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	logger, err := newLogger(env.LogLevel, stderr)
	if err != nil {
		return err
	}

	shutdownTracing, err := otelplatform.Setup(ctx, serviceName, env.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := shutdownTracing(shutdownCtx); shutdownErr != nil {
			logger.Warn("tracer shutdown failed", "error", shutdownErr)
		}
	}()

	blobs, err := blob.Open(ctx, env.BlobConfig())
	if err != nil {
		return fmt.Errorf("open output store: %w", err)
	}
	tables, err := persistence.Open(ctx, env.TableConfig(blobs))
	if err != nil {
		return fmt.Errorf("open table store: %w", err)
	}
	defer func() {
		if closeErr := tables.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close table store: %w", closeErr)
		}
	}()

	recorders := core.MultiMetricsRecorder{core.NewExpvarMetricsRecorder("")}
	if env.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		prom, err := core.NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		recorders = append(recorders, prom)
		_, stopMetrics, err := serveMetrics(env.MetricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	extOpts := []core.Option{core.WithLogger(logger), core.WithMetricsRecorder(recorders)}
	switch {
	case env.OTelEndpoint != "":
		extOpts = append(extOpts, core.WithTracer(core.NewOTelTracer(nil)))
	case opts.traceFile != "":
		f, err := os.Create(opts.traceFile) // #nosec G304 - path supplied by operator
		if err != nil {
			return fmt.Errorf("trace file: %w", err)
		}
		defer func() { _ = f.Close() }()
		extOpts = append(extOpts, core.WithTracer(core.NewJSONTracer(f)))
	}

	host, err := memory.LoadFile(opts.landscapePath)
	if err != nil {
		return err
	}
	ext := core.NewExtension(params, blobs, tables, extOpts...)
	if err := ext.Initialize(ctx, host); err != nil {
		return err
	}
	logger.Info("extension ready", "name", ext.Name(), "version", ext.Version(),
		"timestep", ext.Timestep(), "blob_driver", blobs.Driver(), "table_driver", tables.Driver())
	return simulate(ctx, host, ext, opts.duration)
}

// simulate advances the host clock from its start time to duration in
// extension timesteps, running the extension at each step. A zero timestep
// reports once at the start time.
func simulate(ctx context.Context, host *memory.Host, ext *core.Extension, duration int) error {
	start := host.CurrentTime()
	step := ext.Timestep()
	for t := start; t <= duration || t == start; t += step {
		if err := ctx.Err(); err != nil {
			return err
		}
		host.SetTime(t)
		if err := ext.Run(ctx); err != nil {
			return fmt.Errorf("year %d: %w", t, err)
		}
		if step <= 0 {
			break
		}
	}
	return nil
}

// serveMetrics exposes Prometheus and expvar metrics on addr and returns the
// bound address with a stop function.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (string, func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("metrics listener: %w", err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
