package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	// Global logger instance
	Logger *zap.Logger

	// Metrics
	conversationsLoggedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversations_logged_total",
			Help: "Total number of scored message records written",
		},
		[]string{"verdict"},
	)

	riskEscalationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_escalations_total",
			Help: "Total number of policy escalations suggested",
		},
		[]string{"action"},
	)

	storeOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Time spent in store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func Init(ctx context.Context) error {
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		return err
	}

	prometheus.MustRegister(conversationsLoggedTotal)
	prometheus.MustRegister(riskEscalationsTotal)
	prometheus.MustRegister(storeOpDuration)

	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	return nil
}

// RecordConversationLogged records a written message record by verdict.
func RecordConversationLogged(groomingSuspected bool) {
	verdict := "clean"
	if groomingSuspected {
		verdict = "grooming_suspected"
	}
	conversationsLoggedTotal.WithLabelValues(verdict).Inc()
}

// RecordEscalation records a suggested policy action.
func RecordEscalation(action string) {
	riskEscalationsTotal.WithLabelValues(action).Inc()
}

// TimeStoreOp returns a function that records the duration of a store
// operation when called.
func TimeStoreOp(operation string) func() {
	timer := prometheus.NewTimer(storeOpDuration.WithLabelValues(operation))
	return func() {
		timer.ObserveDuration()
	}
}

// MetricsServer exposes /metrics; it implements the lifecycle component
// contract.
type MetricsServer struct {
	srv *http.Server
}

func NewMetricsServer(addr string) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &MetricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (m *MetricsServer) Start(_ context.Context) error {
	go func() {
		if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return nil
}

func (m *MetricsServer) Stop(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
