package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetops-io/servicesched/infra/logger"
)

// StartPromServer exposes /metrics on the given port or address, separate
// from the scheduling API so scrapes never contend with dashboard traffic.
// The server runs until the context is canceled.
func StartPromServer(ctx context.Context, addr string) error {
	if addr != "" && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.New("metrics").Errorf("prom server shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
