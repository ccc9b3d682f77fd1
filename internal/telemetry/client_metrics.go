package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	clientMetricsOnce sync.Once

	tokenRefreshCounter metric.Int64Counter
	sessionEndCounter   metric.Int64Counter
	loginCounter        metric.Int64Counter
)

// initClientMetrics registers the client instruments on the global meter provider. Until a
// provider is installed they record into a no-op meter.
func initClientMetrics() {
	clientMetricsOnce.Do(func() {
		meter := otel.Meter("workshopctl.apiclient")

		var err error
		tokenRefreshCounter, err = meter.Int64Counter(
			"apiclient.token_refresh.count",
			metric.WithDescription("Number of access token refreshes, by outcome"),
			metric.WithUnit("{refresh}"),
		)
		if err != nil {
			otel.Handle(err)
		}

		sessionEndCounter, err = meter.Int64Counter(
			"apiclient.session_end.count",
			metric.WithDescription("Number of sessions ended, by reason"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			otel.Handle(err)
		}

		loginCounter, err = meter.Int64Counter(
			"mockapi.login.count",
			metric.WithDescription("Number of login attempts on the mock backend, by outcome"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}

// RecordTokenRefresh counts one refresh. shared marks callers that waited on another
// caller's in-flight refresh.
func RecordTokenRefresh(ctx context.Context, success, shared bool) {
	initClientMetrics()
	if tokenRefreshCounter == nil {
		return
	}
	tokenRefreshCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", success),
		attribute.Bool("shared", shared),
	))
}

func RecordSessionEnd(ctx context.Context, reason string) {
	initClientMetrics()
	if sessionEndCounter == nil {
		return
	}
	sessionEndCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func RecordLogin(ctx context.Context, outcome string) {
	initClientMetrics()
	if loginCounter == nil {
		return
	}
	loginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
