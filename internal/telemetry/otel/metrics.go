package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics counts authentication decisions by credential scope and outcome.
// It satisfies the guard's DecisionRecorder.
type AuthMetrics struct {
	decisions metric.Int64Counter
}

// NewAuthMetrics creates the auth decision counter on the given meter provider.
func NewAuthMetrics(provider metric.MeterProvider) (*AuthMetrics, error) {
	meter := provider.Meter("platform.auth")
	decisions, err := meter.Int64Counter(
		"auth.decisions",
		metric.WithDescription("Authentication decisions by credential scope and outcome"),
	)
	if err != nil {
		return nil, err
	}
	return &AuthMetrics{decisions: decisions}, nil
}

// RecordDecision records one authentication decision.
func (m *AuthMetrics) RecordDecision(ctx context.Context, scope, outcome string) {
	if m == nil {
		return
	}
	m.decisions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("scope", scope),
			attribute.String("outcome", outcome),
		),
	)
}
