// Command cs1000 takes measurements with a Minolta CS-1000 spectroradiometer
// and prints the results.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Station-Manager/cs1000"
	"github.com/Station-Manager/cs1000/config"
	"github.com/Station-Manager/cs1000/logging"
	"github.com/Station-Manager/cs1000/serial"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cs1000:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "YAML config file")
	port := flag.String("port", "", "serial device path, overrides device.port")
	baud := flag.Int("baud", 0, "baud rate, overrides device.baud_rate")
	count := flag.Int("count", 1, "number of measurements to take")
	format := flag.String("format", "", "output format: json or text")
	list := flag.Bool("list", false, "list available serial ports and exit")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	logLevel := flag.String("log-level", "", "log level, overrides log.level")
	flag.Parse()

	if *list {
		ports, err := serial.AvailablePorts()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	if *port != "" {
		cfg.Device.PortName = *port
	}
	if *baud != 0 {
		cfg.Device.BaudRate = *baud
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = *metricsAddr
	}
	if *count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", *count)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	if ok, err := serial.IsPortAvailable(cfg.Device.PortName); err == nil && !ok {
		log.Warn().Str("port", cfg.Device.PortName).Msg("port not in system port list")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *cs1000.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = cs1000.NewMetrics(reg)
		srv := serveMetrics(cfg.Metrics.Listen, reg, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	dev := cs1000.New(cs1000.WithLogger(log), cs1000.WithMetrics(metrics))
	if err := dev.Connect(ctx, cfg.Device); err != nil {
		return err
	}

	out := newPrinter(cfg.Output.Format, os.Stdout)
	var measureErr error
	for i := 0; i < *count; i++ {
		if ctx.Err() != nil {
			break
		}
		m, err := dev.Measure(ctx)
		if err != nil {
			measureErr = err
			break
		}
		if err := out.print(i+1, m); err != nil {
			measureErr = err
			break
		}
	}

	// ctx may already be cancelled; turning remote control off must still go out.
	return errors.Join(measureErr, dev.Disconnect(context.WithoutCancel(ctx)))
}

func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server")
		}
	}()
	return srv
}
