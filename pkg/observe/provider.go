package observe

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider is an installed SDK meter provider with its optional scrape
// endpoint.
type Provider struct {
	Metrics *Metrics

	mp       *sdkmetric.MeterProvider
	server   *http.Server
	listener net.Listener
	log      *slog.Logger
}

// InitProvider installs a global SDK meter provider exporting to a private
// Prometheus registry. When addr is non-empty it listens there and
// Serve exposes the registry on /metrics.
func InitProvider(addr string, log *slog.Logger) (*Provider, error) {
	if log == nil {
		log = slog.Default()
	}
	reg := prometheus.NewRegistry()
	exp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)

	met, err := NewMetrics(mp)
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, err
	}
	p := &Provider{Metrics: met, mp: mp, log: log}

	if addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			_ = mp.Shutdown(context.Background())
			return nil, err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		p.listener = ln
		p.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	return p, nil
}

// Addr returns the metrics listener address, or "" when not serving.
func (p *Provider) Addr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Serve blocks serving /metrics until ctx is done. Without an address it
// just waits for ctx.
func (p *Provider) Serve(ctx context.Context) error {
	if p.server == nil {
		<-ctx.Done()
		return nil
	}
	errc := make(chan error, 1)
	go func() { errc <- p.server.Serve(p.listener) }()
	p.log.Info("metrics endpoint listening", "addr", p.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
