package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BetsPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bets_placed_total",
			Help: "Total wagers accepted",
		},
	)

	BetsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bets_rejected_total",
			Help: "Total wagers rejected, by reason",
		},
		[]string{"reason"},
	)

	SettlementRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_runs_total",
			Help: "Total draw settlement runs",
		},
	)

	BetsSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bets_settled_total",
			Help: "Total bets resolved out of pending, by outcome",
		},
		[]string{"outcome"},
	)

	PayoutMinorUnits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payout_minor_units_total",
			Help: "Total winnings credited, in minor units",
		},
	)

	PayoutFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payout_failures_total",
			Help: "Total per-bet payout failures during settlement",
		},
	)
)

func Init() {
	prometheus.MustRegister(BetsPlaced)
	prometheus.MustRegister(BetsRejected)
	prometheus.MustRegister(SettlementRuns)
	prometheus.MustRegister(BetsSettled)
	prometheus.MustRegister(PayoutMinorUnits)
	prometheus.MustRegister(PayoutFailures)
}

type HealthFunc func(ctx context.Context) error

// StartMetricsServer runs a small HTTP server for /metrics and /healthz on
// its own port, detached from the main app.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
