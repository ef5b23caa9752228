package logging

import (
	"context"
	"log/slog"
	"os"

	"pxv-pay/internal/config"
	"pxv-pay/internal/logcontext"

	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"
)

const serviceName = "pxv-pay"

func GetLogger(cfg config.Logs) *slog.Logger {
	if cfg.URL == "" {
		return localLogger()
	}

	logger, err := remoteLogger(cfg.URL)
	if err != nil {
		fallback := localLogger()
		fallback.Error("Loki client unavailable, logging to stdout", "error", err)
		return fallback
	}
	return logger
}

func localLogger() *slog.Logger {
	return slog.New(logcontext.ContextHandler{Handler: slog.NewJSONHandler(os.Stdout, nil)}).With("service", serviceName)
}

func remoteLogger(url string) (*slog.Logger, error) {
	lokiConfig, err := loki.NewDefaultConfig(url)
	if err != nil {
		return nil, err
	}
	client, err := loki.New(lokiConfig)
	if err != nil {
		return nil, err
	}

	return slog.New(slogloki.Option{
		Level:  slog.LevelInfo,
		Client: client,
		AttrFromContext: []func(ctx context.Context) []slog.Attr{
			logcontext.Attrs,
		},
	}.NewLokiHandler()).With("service", serviceName), nil
}
