package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"pxv-pay/internal/config"

	"github.com/VictoriaMetrics/metrics"
)

func Setup(cfg config.Metrics, logger *slog.Logger) {
	if cfg.URL == "" {
		return
	}

	err := metrics.InitPush(cfg.URL, time.Duration(cfg.IntervalMs)*time.Millisecond, cfg.CommonLabels, true)
	if err != nil {
		logger.Error("Error initializing metrics push", "error", err)
	}
}

// Handler exposes all registered metrics in Prometheus text format.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
}
